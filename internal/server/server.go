// Package server exposes the quote calculator over HTTP: an embedded web
// form plus a small JSON API.
package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/installment-plans/internal/config"
	"github.com/iwvelando/installment-plans/internal/export"
	"github.com/iwvelando/installment-plans/internal/quote"
	"github.com/iwvelando/installment-plans/pkg/amortization"
	"github.com/iwvelando/installment-plans/pkg/constants"
	"github.com/iwvelando/installment-plans/pkg/format"
	"github.com/iwvelando/installment-plans/pkg/output"
	"go.uber.org/zap"
)

//go:embed static/*
var staticFiles embed.FS

// invalidInputMessage is shown to users whenever a quote is rejected.
const invalidInputMessage = "Please enter valid inputs."

// Options configures the HTTP handler.
type Options struct {
	Service     *quote.Service
	Defaults    config.DefaultsConfig
	Export      config.ExportConfig
	MaxBodySize int64
	Version     string
}

type handler struct {
	logger      *zap.Logger
	service     *quote.Service
	defaults    config.DefaultsConfig
	export      config.ExportConfig
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the web UI and quote API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxBodySize := opts.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	service := opts.Service
	if service == nil {
		service = quote.NewService(logger, quote.Options{})
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		service:     service,
		defaults:    opts.Defaults,
		export:      opts.Export,
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
	}

	mux := http.NewServeMux()

	// Quote API endpoints
	mux.HandleFunc("/api/quote", h.handleQuote)
	mux.HandleFunc("/api/quote/export", h.handleExport)
	mux.HandleFunc("/api/quote/batch", h.handleBatch)

	// Form defaults and version for UI metadata
	mux.HandleFunc("/api/defaults", h.handleDefaults)
	mux.HandleFunc("/api/version", h.handleVersion)

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	fileServer := http.FileServer(http.FS(sub))
	mux.Handle("/", fileServer)

	return mux
}

type quoteResponse struct {
	Quote    *quote.Quote  `json:"quote"`
	Display  []planDisplay `json:"display"`
	Duration string        `json:"duration"`
}

type planDisplay struct {
	Label              string `json:"label"`
	AdvancePayment     string `json:"advancePayment"`
	TotalPayment       string `json:"totalPayment"`
	MonthlyInstallment string `json:"monthlyInstallment"`
}

type batchResponse struct {
	Quotes   []*quote.Quote `json:"quotes"`
	CSV      string         `json:"csv"`
	Duration string         `json:"duration"`
}

type defaultsResponse struct {
	Defaults  config.DefaultsConfig `json:"defaults"`
	Durations []int                 `json:"durations"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
	Field  string `json:"field,omitempty"`
}

func (h *handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleQuote"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	req, ok := h.decodeRequest(w, r, op)
	if !ok {
		return
	}

	q, err := h.service.Quote(r.Context(), req)
	if err != nil {
		h.respondQuoteError(w, err, op)
		return
	}

	display, err := h.buildDisplay(q)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError,
			errorResponse{Error: fmt.Sprintf("failed to format quote: %v", err)}, op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("quote computed",
		zap.String("op", op),
		zap.String("id", q.ID),
		zap.Int("plans", len(q.Plans)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, quoteResponse{
		Quote:    q,
		Display:  display,
		Duration: elapsed.String(),
	})
}

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	exportFormat := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if exportFormat == "" {
		exportFormat = constants.ExportFormatPDF
	}
	exporter, err := export.ForFormat(exportFormat, h.logger)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, errorResponse{Error: err.Error()}, op)
		return
	}

	req, ok := h.decodeRequest(w, r, op)
	if !ok {
		return
	}

	// Invalid input never reaches the exporter.
	q, err := h.service.Quote(r.Context(), req)
	if err != nil {
		h.respondQuoteError(w, err, op)
		return
	}

	var buf bytes.Buffer
	if err := exporter.Export(&buf, export.NewDocument(q, h.export)); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError,
			errorResponse{Error: fmt.Sprintf("failed to export quote: %v", err)}, op)
		return
	}

	fileName := export.FileName(q.ItemName, exporter.Format())
	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write export",
			zap.String("op", op),
			zap.Error(err),
		)
		return
	}

	h.logger.Info("quote exported",
		zap.String("op", op),
		zap.String("id", q.ID),
		zap.String("format", exporter.Format()),
	)
}

func (h *handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleBatch"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var body io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxBodySize); err != nil {
			h.respondBodyError(w, err, "failed to parse upload", op)
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, errorResponse{Error: "missing batch file"}, op)
			return
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				h.logger.Warn("failed to close uploaded file",
					zap.String("op", op),
					zap.Error(closeErr),
				)
			}
		}()
		body = file
	}

	reqs, err := quote.ParseBatch(body)
	if err != nil {
		h.respondBodyError(w, err, "failed to read batch", op)
		return
	}

	quotes, err := h.service.Batch(r.Context(), reqs)
	if err != nil {
		h.respondQuoteError(w, err, op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("batch computed",
		zap.String("op", op),
		zap.Int("quotes", len(quotes)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, batchResponse{
		Quotes:   quotes,
		CSV:      output.CsvString(quotes),
		Duration: elapsed.String(),
	})
}

func (h *handler) handleDefaults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, defaultsResponse{
		Defaults:  h.defaults,
		Durations: h.service.Durations(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) decodeRequest(w http.ResponseWriter, r *http.Request, op string) (quote.Request, bool) {
	var req quote.Request
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.respondBodyError(w, err, "failed to decode quote request", op)
		return req, false
	}
	return req, true
}

func (h *handler) buildDisplay(q *quote.Quote) ([]planDisplay, error) {
	symbol := h.export.CurrencySymbol
	if symbol == "" {
		symbol = constants.DefaultCurrencySymbol
	}

	display := make([]planDisplay, 0, len(q.Plans))
	for _, plan := range q.Plans {
		var amounts [3]string
		for i, amount := range []float64{plan.AdvancePayment, plan.TotalPayment, plan.MonthlyInstallment} {
			formatted, err := format.CurrencyWithSymbol(symbol, amount)
			if err != nil {
				return nil, fmt.Errorf("plan %d months: %w", plan.DurationMonths, err)
			}
			amounts[i] = formatted
		}
		display = append(display, planDisplay{
			Label:              format.PlanLabel(plan.DurationMonths),
			AdvancePayment:     amounts[0],
			TotalPayment:       amounts[1],
			MonthlyInstallment: amounts[2],
		})
	}
	return display, nil
}

func (h *handler) respondQuoteError(w http.ResponseWriter, err error, op string) {
	var invalid *amortization.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  invalidInputMessage,
			Detail: invalid.Error(),
			Field:  invalid.Field,
		}, op)
	case errors.Is(err, quote.ErrEmptyBatch), errors.Is(err, quote.ErrBatchTooLarge):
		h.respondErrorWithOp(w, http.StatusBadRequest, errorResponse{Error: err.Error()}, op)
	default:
		h.respondErrorWithOp(w, http.StatusInternalServerError,
			errorResponse{Error: fmt.Sprintf("failed to compute quote: %v", err)}, op)
	}
}

func (h *handler) respondBodyError(w http.ResponseWriter, err error, msg string, op string) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
			errorResponse{Error: fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodySize)}, op)
		return
	}
	if errors.Is(err, quote.ErrEmptyBatch) || errors.Is(err, quote.ErrBatchTooLarge) {
		h.respondErrorWithOp(w, http.StatusBadRequest, errorResponse{Error: err.Error()}, op)
		return
	}
	h.respondErrorWithOp(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("%s: %v", msg, err)}, op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, resp errorResponse, op string) {
	h.logger.Error("quote request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", resp.Error),
		zap.String("detail", resp.Detail),
	)

	h.writeJSON(w, status, resp)
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
