package services

import (
	"context"
	"fmt"
	"time"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"
	"restaurant_pos/pkg/logger"
)

// EventPublisher announces settled sales to the outside world.
type EventPublisher interface {
	PublishSaleSettled(ctx context.Context, sale *models.Sale) error
}

type ProcessorConfig struct {
	Interval    time.Duration
	MaxAttempts int
	BatchSize   int
	// MaxBackoff caps the quadratic retry delay.
	MaxBackoff time.Duration
}

// SideEffectProcessor drains the outbox written by settle. Local effects
// (stock, cash, customer stats) run in their own transaction together with
// marking the job done, so each is applied at most once. The sale event is
// published at least once.
type SideEffectProcessor struct {
	repos  *repository.Repositories
	stock  StockService
	cash   CashRegisterService
	crm    CRMService
	events EventPublisher
	cfg    ProcessorConfig
	log    *logger.Logger
	wake   chan struct{}
	now    func() time.Time
}

func NewSideEffectProcessor(
	repos *repository.Repositories,
	stock StockService,
	cash CashRegisterService,
	crm CRMService,
	events EventPublisher,
	cfg ProcessorConfig,
	log *logger.Logger,
) *SideEffectProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 8
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Minute
	}
	return &SideEffectProcessor{
		repos:  repos,
		stock:  stock,
		cash:   cash,
		crm:    crm,
		events: events,
		cfg:    cfg,
		log:    log,
		wake:   make(chan struct{}, 1),
		now:    time.Now,
	}
}

// Notify asks the running loop to drain the outbox now. It never blocks.
func (p *SideEffectProcessor) Notify() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Start runs the processing loop until ctx is cancelled.
func (p *SideEffectProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	p.log.Info("outbox_started", "Side-effect processor started", "interval", p.cfg.Interval.String())
	for {
		select {
		case <-ctx.Done():
			p.log.Info("outbox_stopped", "Side-effect processor stopped")
			return
		case <-ticker.C:
		case <-p.wake:
		}

		if _, err := p.ProcessPending(ctx); err != nil && ctx.Err() == nil {
			p.log.Error("outbox_poll", "Failed to process side effects", err)
		}
	}
}

// ProcessPending runs every due job once and reports how many completed.
func (p *SideEffectProcessor) ProcessPending(ctx context.Context) (int, error) {
	jobs, err := p.repos.Outbox.Due(ctx, p.now(), p.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to load due side effects: %w", err)
	}

	done := 0
	for _, job := range jobs {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
		if p.run(ctx, job) {
			done++
		}
	}
	return done, nil
}

func (p *SideEffectProcessor) run(ctx context.Context, job models.SideEffectJob) bool {
	attempts := job.Attempts + 1

	var err error
	switch models.SideEffectKind(job.Kind) {
	case models.EffectStockDeduction:
		err = p.runLocal(ctx, job, attempts, p.stock.DeductStockFromSale)
	case models.EffectCashTransaction:
		err = p.runLocal(ctx, job, attempts, p.cash.AddSaleTransaction)
	case models.EffectCustomerStats:
		err = p.runLocal(ctx, job, attempts, p.crm.UpdateCustomerStatsFromSale)
	case models.EffectSaleEvent:
		err = p.publish(ctx, job, attempts)
	default:
		err = fmt.Errorf("unknown side effect kind %q", job.Kind)
		attempts = p.cfg.MaxAttempts
	}

	if err == nil {
		p.log.Debug("outbox_job_done", "Side effect applied", "job_id", job.ID, "kind", job.Kind, "sale_id", job.SaleID, "attempts", attempts)
		return true
	}

	if attempts >= p.cfg.MaxAttempts {
		if markErr := p.repos.Outbox.MarkFailed(ctx, job.ID, attempts, err.Error()); markErr != nil {
			p.log.Error("outbox_mark_failed", "Failed to mark side effect as failed", markErr, "job_id", job.ID)
		}
		p.log.Error("outbox_job_failed", "Side effect gave up after max attempts", err,
			"job_id", job.ID, "kind", job.Kind, "sale_id", job.SaleID, "store_id", job.StoreID, "attempts", attempts)
		return false
	}

	next := p.now().Add(p.backoff(attempts))
	if markErr := p.repos.Outbox.MarkRetry(ctx, job.ID, attempts, next, err.Error()); markErr != nil {
		p.log.Error("outbox_mark_retry", "Failed to reschedule side effect", markErr, "job_id", job.ID)
	}
	p.log.Warn("outbox_job_retry", "Side effect failed, will retry",
		"job_id", job.ID, "kind", job.Kind, "sale_id", job.SaleID, "attempts", attempts, "next_attempt_at", next, "error", err.Error())
	return false
}

func (p *SideEffectProcessor) runLocal(ctx context.Context, job models.SideEffectJob, attempts int, apply func(context.Context, *repository.Repositories, *models.Sale) error) error {
	return p.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		sale, err := tx.Sales.GetByIDUnscoped(ctx, job.SaleID)
		if err != nil {
			return fmt.Errorf("failed to load sale %d: %w", job.SaleID, err)
		}
		if err := apply(ctx, tx, sale); err != nil {
			return err
		}
		return tx.Outbox.MarkDone(ctx, job.ID, attempts)
	})
}

func (p *SideEffectProcessor) publish(ctx context.Context, job models.SideEffectJob, attempts int) error {
	if p.events != nil {
		sale, err := p.repos.Sales.GetByIDUnscoped(ctx, job.SaleID)
		if err != nil {
			return fmt.Errorf("failed to load sale %d: %w", job.SaleID, err)
		}
		if err := p.events.PublishSaleSettled(ctx, sale); err != nil {
			return err
		}
	}
	return p.repos.Outbox.MarkDone(ctx, job.ID, attempts)
}

func (p *SideEffectProcessor) backoff(attempts int) time.Duration {
	delay := time.Duration(attempts*attempts) * time.Second
	if delay > p.cfg.MaxBackoff {
		return p.cfg.MaxBackoff
	}
	return delay
}
