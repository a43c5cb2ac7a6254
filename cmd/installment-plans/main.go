package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/iwvelando/installment-plans/internal/config"
	"github.com/iwvelando/installment-plans/internal/export"
	"github.com/iwvelando/installment-plans/internal/quote"
	"github.com/iwvelando/installment-plans/pkg/amortization"
	"github.com/iwvelando/installment-plans/pkg/constants"
	"github.com/iwvelando/installment-plans/pkg/output"
	"github.com/iwvelando/installment-plans/pkg/validation"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is overridden at build time via -ldflags.
var version = "dev"

const invalidInputMessage = "Please enter valid inputs."

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// CLI override takes precedence
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
	case "json":
		zapConfig = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	} else {
		// stdout carries the quote table
		zapConfig.OutputPaths = []string{"stderr"}
	}

	return zapConfig.Build()
}

// loadConfiguration reads path, falling back to built-in defaults when the
// default config file is absent. The boolean reports whether it fell back.
func loadConfiguration(path string, explicit bool) (*config.Configuration, bool, error) {
	conf, err := config.LoadConfiguration(path)
	if err == nil {
		return conf, false, nil
	}
	if explicit {
		return nil, false, err
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
		conf, err = config.Default()
		return conf, err == nil, err
	}
	return nil, false, err
}

func logConfigFallback(logger *zap.Logger, f *cliFlags, op string) {
	if !f.configFallback {
		return
	}
	logger.Info("configuration file not found, using built-in defaults",
		zap.String("op", op),
		zap.String("path", f.configLocation),
		zap.String("example", constants.ExampleConfigFile),
	)
}

type cliFlags struct {
	configLocation string
	configSet      bool
	configFallback bool
	outputFormat   string
	logLevel       string
	item           string
	customer       string
	principal      float64
	rate           float64
	advance        float64
	durations      string
	exportFormat   string
	exportDir      string
	schedule       bool
	batch          string
	serve          bool
	serverConfig   string
	maxBody        string
	showVersion    bool
	set            map[string]bool
}

func parseFlags(args []string) (*cliFlags, error) {
	f := &cliFlags{}
	fsFlags := flag.NewFlagSet("installment-plans", flag.ContinueOnError)
	fsFlags.StringVar(&f.configLocation, "config", constants.DefaultConfigFile, "path to configuration file")
	fsFlags.StringVar(&f.outputFormat, "output-format", "", "type of output override: pretty, csv, json")
	fsFlags.StringVar(&f.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	fsFlags.StringVar(&f.item, "item", "", "item name printed on the quote")
	fsFlags.StringVar(&f.customer, "customer", "", "customer name printed on the quote")
	fsFlags.Float64Var(&f.principal, "principal", 0, "amount financed")
	fsFlags.Float64Var(&f.rate, "rate", 0, "annual interest rate in percent")
	fsFlags.Float64Var(&f.advance, "advance", 0, "advance payment due up front")
	fsFlags.StringVar(&f.durations, "durations", "", "comma-separated plan durations in months, e.g. 1,4,8,12")
	fsFlags.StringVar(&f.exportFormat, "export", "", "also write the quote document: pdf, csv")
	fsFlags.StringVar(&f.exportDir, "export-dir", ".", "directory for exported documents")
	fsFlags.BoolVar(&f.schedule, "schedule", false, "include the month-by-month schedule for each plan")
	fsFlags.StringVar(&f.batch, "batch", "", "YAML file of quote requests to price together")
	fsFlags.BoolVar(&f.serve, "serve", false, "run the web UI and JSON API")
	fsFlags.StringVar(&f.serverConfig, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	fsFlags.StringVar(&f.maxBody, "max-body", "", "request body limit override for -serve, e.g. 512K or 2M")
	fsFlags.BoolVar(&f.showVersion, "version", false, "print the version and exit")
	if err := fsFlags.Parse(args); err != nil {
		return nil, err
	}

	f.set = make(map[string]bool)
	fsFlags.Visit(func(fl *flag.Flag) {
		f.set[fl.Name] = true
	})
	f.configSet = f.set["config"]
	return f, nil
}

// buildRequest merges flags over the configured form defaults.
func buildRequest(f *cliFlags, conf *config.Configuration) (quote.Request, error) {
	req := quote.Request{
		ItemName:          conf.Defaults.ItemName,
		CustomerName:      conf.Defaults.CustomerName,
		Principal:         conf.Defaults.Principal,
		AnnualRatePercent: conf.Defaults.AnnualRatePercent,
		AdvancePayment:    conf.Defaults.AdvancePayment,
		IncludeSchedule:   f.schedule,
	}
	if f.set["item"] {
		req.ItemName = f.item
	}
	if f.set["customer"] {
		req.CustomerName = f.customer
	}
	if f.set["principal"] {
		req.Principal = f.principal
	}
	if f.set["rate"] {
		req.AnnualRatePercent = f.rate
	}
	if f.set["advance"] {
		req.AdvancePayment = f.advance
	}
	if strings.TrimSpace(f.durations) != "" {
		durations, err := validation.ParseDurations(f.durations)
		if err != nil {
			return req, err
		}
		req.Durations = durations
	}
	return req, nil
}

func main() {
	_ = godotenv.Load()

	f, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	if f.showVersion {
		fmt.Println(version)
		return
	}

	conf, fallback, err := loadConfiguration(f.configLocation, f.configSet)
	f.configFallback = fallback
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", f.configLocation, err)
		os.Exit(1)
	}

	if f.serve {
		os.Exit(runServer(f, conf))
	}

	logger, err := initializeLogger(conf.Logging, f.logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	code := run(context.Background(), logger, f, conf)
	if code != 0 {
		_ = logger.Sync()
		os.Exit(code)
	}
}

// run prices the request (or batch) and writes it to stdout.
func run(ctx context.Context, logger *zap.Logger, f *cliFlags, conf *config.Configuration) int {
	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if f.outputFormat != "" {
		outputFormat = f.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Error(err.Error(), zap.String("op", "main"))
		return 1
	}
	if f.exportFormat != "" {
		if err := validation.ValidateExportFormat(f.exportFormat); err != nil {
			logger.Error(err.Error(), zap.String("op", "main"))
			return 1
		}
	}

	logConfigFallback(logger, f, "main")

	warnings, err := conf.ValidateConfiguration()
	if err != nil {
		logger.Error("invalid configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return 1
	}
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	service := quote.NewService(logger, quote.Options{Durations: conf.Plans.Durations})

	var quotes []*quote.Quote
	if f.batch != "" {
		quotes, err = runBatch(ctx, service, f.batch, f.schedule)
	} else {
		var req quote.Request
		req, err = buildRequest(f, conf)
		if err == nil {
			var q *quote.Quote
			q, err = service.Quote(ctx, req)
			quotes = []*quote.Quote{q}
		}
	}
	if err != nil {
		if amortization.IsInvalidInput(err) {
			fmt.Fprintf(os.Stderr, "%s %v\n", invalidInputMessage, err)
		}
		logger.Error("failed to compute quote",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return 1
	}

	if err := output.Write(os.Stdout, outputFormat, quotes); err != nil {
		logger.Error("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return 1
	}

	if f.exportFormat != "" {
		for _, q := range quotes {
			path, err := exportQuote(logger, q, conf.Export, f.exportFormat, f.exportDir)
			if err != nil {
				logger.Error("failed to export quote",
					zap.String("op", "main"),
					zap.String("id", q.ID),
					zap.Error(err),
				)
				return 1
			}
			logger.Info("quote exported",
				zap.String("op", "main"),
				zap.String("path", path),
			)
		}
	}
	return 0
}

func runBatch(ctx context.Context, service *quote.Service, path string, schedule bool) ([]*quote.Quote, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer file.Close()

	reqs, err := quote.ParseBatch(file)
	if err != nil {
		return nil, err
	}
	if schedule {
		for i := range reqs {
			reqs[i].IncludeSchedule = true
		}
	}
	return service.Batch(ctx, reqs)
}

// exportQuote writes the quote document into dir and returns its path.
func exportQuote(logger *zap.Logger, q *quote.Quote, cfg config.ExportConfig, format, dir string) (string, error) {
	exporter, err := export.ForFormat(format, logger)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, export.FileName(q.ItemName, exporter.Format()))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := exporter.Export(file, export.NewDocument(q, cfg)); err != nil {
		_ = file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}
