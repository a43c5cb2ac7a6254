// Package quote turns a customer's request into a priced set of installment
// plans.
package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/installment-plans/pkg/amortization"
	"github.com/iwvelando/installment-plans/pkg/constants"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrEmptyBatch is returned when a batch holds no requests.
	ErrEmptyBatch = errors.New("batch contains no quote requests")
	// ErrBatchTooLarge is returned when a batch exceeds the request limit.
	ErrBatchTooLarge = errors.New("batch holds too many quote requests")
)

// Request carries the form values for one quote.
type Request struct {
	ItemName          string  `json:"itemName" yaml:"itemName"`
	CustomerName      string  `json:"customerName" yaml:"customerName"`
	Principal         float64 `json:"principal" yaml:"principal"`
	AnnualRatePercent float64 `json:"annualRatePercent" yaml:"annualRatePercent"`
	AdvancePayment    float64 `json:"advancePayment" yaml:"advancePayment"`
	Durations         []int   `json:"durations,omitempty" yaml:"durations,omitempty"`
	IncludeSchedule   bool    `json:"includeSchedule,omitempty" yaml:"includeSchedule,omitempty"`
}

// Quote is the priced result for one request.
type Quote struct {
	ID                string                         `json:"id"`
	ItemName          string                         `json:"itemName"`
	CustomerName      string                         `json:"customerName"`
	IssuedAt          time.Time                      `json:"issuedAt"`
	Principal         float64                        `json:"principal"`
	AnnualRatePercent float64                        `json:"annualRatePercent"`
	AdvancePayment    float64                        `json:"advancePayment"`
	Plans             []amortization.PlanQuote       `json:"plans"`
	Schedules         map[int][]amortization.Payment `json:"schedules,omitempty"`
}

// Options configures a Service.
type Options struct {
	// Durations are used when a request does not list its own.
	Durations []int
	// BatchConcurrency bounds parallel work in Batch.
	BatchConcurrency int
	// MaxDurationMonths caps every quoted duration. Zero or anything above
	// constants.MaxDurationMonths means constants.MaxDurationMonths.
	MaxDurationMonths int
	// MaxBatchSize caps the requests in one Batch call, within
	// constants.MaxBatchSize.
	MaxBatchSize int
	// Now is the clock used to stamp quotes.
	Now func() time.Time
}

// Service prices quote requests.
type Service struct {
	logger       *zap.Logger
	durations    []int
	concurrency  int
	maxDuration  int
	maxBatchSize int
	now          func() time.Time
	schedules    *amortization.ScheduleGenerator
}

func clampLimit(value, ceiling int) int {
	if value <= 0 || value > ceiling {
		return ceiling
	}
	return value
}

// NewService constructs a quote service.
func NewService(logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	durations := opts.Durations
	if len(durations) == 0 {
		durations = amortization.DefaultDurations()
	}

	concurrency := opts.BatchConcurrency
	if concurrency <= 0 {
		concurrency = constants.DefaultBatchConcurrency
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		logger:       logger,
		durations:    append([]int(nil), durations...),
		concurrency:  concurrency,
		maxDuration:  clampLimit(opts.MaxDurationMonths, constants.MaxDurationMonths),
		maxBatchSize: clampLimit(opts.MaxBatchSize, constants.MaxBatchSize),
		now:          now,
		schedules:    amortization.NewScheduleGenerator(logger),
	}
}

// MaxDurationMonths returns the longest duration this service quotes.
func (s *Service) MaxDurationMonths() int {
	return s.maxDuration
}

// Durations returns the plan durations used when a request lists none.
func (s *Service) Durations() []int {
	return append([]int(nil), s.durations...)
}

// Quote prices a single request.
func (s *Service) Quote(ctx context.Context, req Request) (*Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	durations := req.Durations
	if len(durations) == 0 {
		durations = s.durations
	}
	for _, months := range durations {
		if months > s.maxDuration {
			return nil, fmt.Errorf("failed to compute plans: %w", amortization.NewInvalidInputError(
				"durations", float64(months), fmt.Sprintf("must be at most %d months", s.maxDuration)))
		}
	}

	plans, err := amortization.ComputePlans(req.Principal, req.AnnualRatePercent, req.AdvancePayment, durations)
	if err != nil {
		s.logger.Debug("rejected quote request",
			zap.String("op", "quote.Quote"),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to compute plans: %w", err)
	}

	q := &Quote{
		ID:                uuid.NewString(),
		ItemName:          strings.TrimSpace(req.ItemName),
		CustomerName:      strings.TrimSpace(req.CustomerName),
		IssuedAt:          s.now(),
		Principal:         req.Principal,
		AnnualRatePercent: req.AnnualRatePercent,
		AdvancePayment:    req.AdvancePayment,
		Plans:             plans,
	}
	if q.ItemName == "" {
		q.ItemName = constants.DefaultItemName
	}
	if q.CustomerName == "" {
		q.CustomerName = constants.DefaultCustomerName
	}

	if req.IncludeSchedule {
		q.Schedules = make(map[int][]amortization.Payment, len(plans))
		for _, plan := range plans {
			if _, done := q.Schedules[plan.DurationMonths]; done {
				continue
			}
			schedule, err := s.schedules.Generate(req.Principal, req.AnnualRatePercent, plan.DurationMonths)
			if err != nil {
				return nil, fmt.Errorf("failed to build %d month schedule: %w", plan.DurationMonths, err)
			}
			q.Schedules[plan.DurationMonths] = schedule
		}
	}

	s.logger.Debug("quote computed",
		zap.String("op", "quote.Quote"),
		zap.String("id", q.ID),
		zap.String("item", q.ItemName),
		zap.Int("plans", len(q.Plans)),
	)
	return q, nil
}

// Batch prices many requests concurrently. Results keep the order of reqs.
// If any request is invalid the whole batch fails and no quotes are returned.
func (s *Service) Batch(ctx context.Context, reqs []Request) ([]*Quote, error) {
	if len(reqs) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(reqs) > s.maxBatchSize {
		return nil, fmt.Errorf("%w: %d requests, limit is %d", ErrBatchTooLarge, len(reqs), s.maxBatchSize)
	}

	quotes := make([]*Quote, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range reqs {
		i := i
		g.Go(func() error {
			q, err := s.Quote(gctx, reqs[i])
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			quotes[i] = q
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("batch quoted",
		zap.String("op", "quote.Batch"),
		zap.Int("requests", len(reqs)),
	)
	return quotes, nil
}
