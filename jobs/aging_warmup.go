package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-bff/internal/accounting"
	"github.com/odyssey-erp/odyssey-bff/internal/accounting/aging"
	"github.com/odyssey-erp/odyssey-bff/internal/accounting/reports"
	jobmetrics "github.com/odyssey-erp/odyssey-bff/internal/jobs"
)

// AgingBuilder builds (and caches) an aging report.
type AgingBuilder interface {
	Aging(ctx context.Context, req reports.AgingRequest) (reports.AgingReport, error)
}

// AgingWarmupJob pre-populates the aging cache for today.
type AgingWarmupJob struct {
	Reports AgingBuilder
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewAgingWarmupJob wires dependencies for the warmup handler.
func NewAgingWarmupJob(builder AgingBuilder, logger *slog.Logger, metrics *jobmetrics.Metrics) *AgingWarmupJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &AgingWarmupJob{
		Reports: builder,
		Logger:  logger,
		Metrics: metrics,
		clock:   time.Now,
	}
}

// Handle processes aging warmup tasks.
func (j *AgingWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("aging warmup: handler not configured")
	}
	var payload AgingWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("aging warmup: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	partyTypes, err := payload.partyTypes()
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	tracker := j.Metrics.Track(TaskAgingWarmup)
	return tracker.End(j.Run(ctx, payload.Company, partyTypes))
}

// Run builds the aging report of every party type concurrently.
func (j *AgingWarmupJob) Run(ctx context.Context, company string, partyTypes []accounting.PartyType) error {
	reportDate, _ := aging.ParseReportDate("", j.clock())
	logger := j.Logger.With(slog.String("company", company), slog.String("report_date", reportDate.Format(aging.DateLayout)))
	logger.Info("starting aging warmup")

	g, gctx := errgroup.WithContext(ctx)
	for _, pt := range partyTypes {
		g.Go(func() error {
			report, err := j.Reports.Aging(gctx, reports.AgingRequest{PartyType: pt, ReportDate: reportDate, Company: company})
			if err != nil {
				logger.Error("warm aging", slog.String("party_type", string(pt)), slog.Any("error", err))
				return fmt.Errorf("aging warmup %s: %w", pt, err)
			}
			j.Metrics.AddAgingRows(string(pt), len(report.Data))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("aging warmup complete", slog.Int("party_types", len(partyTypes)))
	return nil
}
