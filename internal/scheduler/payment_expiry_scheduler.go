package scheduler

import (
	"context"
	"time"

	"github.com/lumiskin/skincare-backend/internal/app/service"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const (
	// DefaultSweepSpec runs the payment sweep every minute
	DefaultSweepSpec = "@every 1m"
	resetCleanupSpec = "@hourly"
	sweepJobTimeout  = 30 * time.Second
)

// PaymentExpiryScheduler runs the periodic housekeeping jobs: expiring
// abandoned gateway payments and purging stale password reset tokens
type PaymentExpiryScheduler struct {
	cron          *cron.Cron
	sweepSpec     string
	expiry        service.PaymentExpiryService
	passwordReset service.PasswordResetService
	now           func() time.Time
}

// NewPaymentExpiryScheduler creates the scheduler; passwordReset may be nil
func NewPaymentExpiryScheduler(sweepSpec string, expiry service.PaymentExpiryService, passwordReset service.PasswordResetService) *PaymentExpiryScheduler {
	if sweepSpec == "" {
		sweepSpec = DefaultSweepSpec
	}
	return &PaymentExpiryScheduler{
		cron:          cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		sweepSpec:     sweepSpec,
		expiry:        expiry,
		passwordReset: passwordReset,
		now:           time.Now,
	}
}

// RunSweep executes one payment expiry pass
func (s *PaymentExpiryScheduler) RunSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepJobTimeout)
	defer cancel()

	if _, err := s.expiry.SweepExpired(ctx, s.now()); err != nil {
		logger.Error("Scheduled payment expiry sweep failed", err)
	}
}

// RunResetCleanup deletes expired or used password reset tokens
func (s *PaymentExpiryScheduler) RunResetCleanup() {
	if s.passwordReset == nil {
		return
	}
	deleted, err := s.passwordReset.CleanupExpired(s.now())
	if err != nil {
		logger.Error("Scheduled password reset cleanup failed", err)
		return
	}
	if deleted > 0 {
		logger.Info("Expired password reset tokens removed", map[string]interface{}{
			"count": deleted,
		})
	}
}

// Start registers the jobs and starts the cron runner
func (s *PaymentExpiryScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.sweepSpec, s.RunSweep); err != nil {
		logger.Error("Failed to add cron job for payment expiry", err, map[string]interface{}{
			"spec": s.sweepSpec,
		})
		return err
	}
	if _, err := s.cron.AddFunc(resetCleanupSpec, s.RunResetCleanup); err != nil {
		logger.Error("Failed to add cron job for password reset cleanup", err)
		return err
	}

	s.cron.Start()
	logger.Info("Payment expiry scheduler started", map[string]interface{}{
		"spec": s.sweepSpec,
	})
	return nil
}

// Stop waits for running jobs to finish
func (s *PaymentExpiryScheduler) Stop() {
	logger.Info("Stopping payment expiry scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Payment expiry scheduler stopped", nil)
}
