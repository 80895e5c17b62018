package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lumiskin/skincare-backend/internal/app/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpiry struct {
	calls []time.Time
	err   error
}

func (f *fakeExpiry) SweepExpired(ctx context.Context, now time.Time) (*service.ExpirySummary, error) {
	f.calls = append(f.calls, now)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("sweep must run with a deadline")
	}
	return &service.ExpirySummary{}, f.err
}

type fakeReset struct {
	service.PasswordResetService
	cleaned int
}

func (f *fakeReset) CleanupExpired(now time.Time) (int64, error) {
	f.cleaned++
	return 2, nil
}

func TestPaymentExpiryScheduler_Jobs(t *testing.T) {
	expiry := &fakeExpiry{}
	reset := &fakeReset{}
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	s := NewPaymentExpiryScheduler("", expiry, reset)
	s.now = func() time.Time { return fixed }
	assert.Equal(t, DefaultSweepSpec, s.sweepSpec)

	s.RunSweep()
	require.Len(t, expiry.calls, 1)
	assert.Equal(t, fixed, expiry.calls[0])

	expiry.err = errors.New("db down")
	s.RunSweep()
	assert.Len(t, expiry.calls, 2)

	s.RunResetCleanup()
	assert.Equal(t, 1, reset.cleaned)

	NewPaymentExpiryScheduler("", expiry, nil).RunResetCleanup()
}

func TestPaymentExpiryScheduler_StartRejectsBadSpec(t *testing.T) {
	s := NewPaymentExpiryScheduler("not a cron spec", &fakeExpiry{}, nil)
	assert.Error(t, s.Start())

	s = NewPaymentExpiryScheduler("@every 1h", &fakeExpiry{}, nil)
	require.NoError(t, s.Start())
	s.Stop()
}
