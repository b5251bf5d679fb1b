package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SyedTahirHussan/codebuff-sub001/internal/clock"
	cycledomain "github.com/SyedTahirHussan/codebuff-sub001/internal/cycle/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cycleStub struct {
	due     []string
	dueErr  error
	resets  []string
	failFor map[string]error
}

func (c *cycleStub) TriggerReset(_ context.Context, userID string) (*cycledomain.ResetResult, error) {
	if err, ok := c.failFor[userID]; ok {
		return nil, err
	}
	c.resets = append(c.resets, userID)
	return &cycledomain.ResetResult{Applied: true}, nil
}

func (c *cycleStub) DueUserIDs(context.Context, time.Time, int) ([]string, error) {
	return c.due, c.dueErr
}

func newScheduler(stub *cycleStub) *Scheduler {
	return New(Params{
		Log:      zap.NewNop(),
		Clock:    clock.NewFakeClock(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)),
		CycleSvc: stub,
		Config:   Config{Enabled: true},
	})
}

func TestRunOnceResetsDueUsers(t *testing.T) {
	stub := &cycleStub{due: []string{"u1", "u2", "u3"}}
	s := newScheduler(stub)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, []string{"u1", "u2", "u3"}, stub.resets)
}

func TestRunOnceNoDueUsers(t *testing.T) {
	stub := &cycleStub{}
	s := newScheduler(stub)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.Empty(t, stub.resets)
}

func TestRunOnceContinuesPastFailures(t *testing.T) {
	wantErr := errors.New("reset failed")
	stub := &cycleStub{
		due:     []string{"u1", "u2", "u3"},
		failFor: map[string]error{"u2": wantErr},
	}
	s := newScheduler(stub)

	err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, wantErr)
	// The failing user does not stop the rest of the batch.
	assert.Equal(t, []string{"u1", "u3"}, stub.resets)
}

func TestRunOncePropagatesListError(t *testing.T) {
	wantErr := errors.New("db down")
	stub := &cycleStub{dueErr: wantErr}
	s := newScheduler(stub)

	assert.ErrorIs(t, s.RunOnce(context.Background()), wantErr)
}
