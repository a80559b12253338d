package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/revboard/internal/clock"
	dashboarddomain "github.com/smallbiznis/revboard/internal/dashboard/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type dashboardStub struct {
	lastReq dashboarddomain.GetMetricsRequest
	calls   int
	err     error
}

func (s *dashboardStub) GetMetrics(_ context.Context, req dashboarddomain.GetMetricsRequest) (dashboarddomain.GetMetricsResponse, error) {
	s.calls++
	s.lastReq = req
	return dashboarddomain.GetMetricsResponse{}, s.err
}

func TestRunOnceRefreshesTrailingWindow(t *testing.T) {
	stub := &dashboardStub{}
	sched, err := New(Params{
		Dashboard: stub,
		Clock:     clock.NewFakeClock(time.Date(2024, 3, 30, 12, 0, 0, 0, time.UTC)),
		Log:       zap.NewNop(),
	})
	assert.NoError(t, err)

	assert.NoError(t, sched.RunOnce(context.Background()))
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, "2024-03-30", stub.lastReq.End.Format(time.DateOnly))
	assert.Equal(t, "2024-03-01", stub.lastReq.Start.Format(time.DateOnly))
	assert.Equal(t, dashboarddomain.GranularityDay, stub.lastReq.Granularity)
}

func TestRunOncePropagatesError(t *testing.T) {
	stub := &dashboardStub{err: assert.AnError}
	sched, err := New(Params{
		Dashboard: stub,
		Clock:     clock.NewFakeClock(time.Now()),
		Log:       zap.NewNop(),
	})
	assert.NoError(t, err)
	assert.Error(t, sched.RunOnce(context.Background()))
}

func TestRunForeverStopsOnCancel(t *testing.T) {
	stub := &dashboardStub{}
	sched, err := New(Params{
		Dashboard: stub,
		Clock:     clock.NewFakeClock(time.Now()),
		Log:       zap.NewNop(),
		Config:    Config{RunInterval: time.Hour},
	})
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.RunForever(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunForever did not stop after cancel")
	}
	assert.Equal(t, 1, stub.calls)
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Params{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
