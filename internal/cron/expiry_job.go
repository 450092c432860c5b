package cron

import (
	"context"
	"fmt"

	"github.com/hardlinehq/hardline-backend/internal/reservation"
	"github.com/hardlinehq/hardline-backend/pkg/logger"
)

type staleSweeper interface {
	ExpireStale(ctx context.Context) (reservation.SweepResult, error)
}

// ExpiryJobParams configure the reservation expiry job.
type ExpiryJobParams struct {
	Logger       *logger.Logger
	Reservations staleSweeper
}

// NewExpiryJob builds the job that times out stale stock holds.
func NewExpiryJob(params ExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reservations == nil {
		return nil, fmt.Errorf("reservation service required")
	}
	return &expiryJob{
		logg:         params.Logger,
		reservations: params.Reservations,
	}, nil
}

type expiryJob struct {
	logg         *logger.Logger
	reservations staleSweeper
}

func (j *expiryJob) Name() string { return "reservation-expiry" }

func (j *expiryJob) Run(ctx context.Context) error {
	result, err := j.reservations.ExpireStale(ctx)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"scanned": result.Scanned,
		"expired": result.Expired,
	})
	if err != nil {
		return fmt.Errorf("expire stale reservations: %w", err)
	}
	j.logg.Info(logCtx, "reservation expiry sweep complete")
	return nil
}
