package service

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// Clock ticks realtime sessions at a fixed rate
type Clock struct {
	svc      GameService
	interval time.Duration
	log      *logrus.Entry
}

// NewClock creates a clock ticking realtime sessions fps times per second
func NewClock(svc GameService, fps int) *Clock {
	if fps <= 0 {
		fps = 60
	}
	return &Clock{
		svc:      svc,
		interval: time.Second / time.Duration(fps),
		log:      logrus.WithField("component", "clock"),
	}
}

// Interval returns the time between ticks
func (c *Clock) Interval() time.Duration {
	return c.interval
}

// Run ticks until ctx is cancelled
func (c *Clock) Run(ctx context.Context) {
	t := time.NewTicker(c.interval)
	defer t.Stop()

	c.log.WithField("interval", c.interval).Info("clock started")
	for {
		select {
		case <-ctx.Done():
			c.log.Info("clock stopped")
			return
		case <-t.C:
			c.Step(ctx)
		}
	}
}

// Step advances every realtime session by one tick
func (c *Clock) Step(ctx context.Context) {
	ids, err := c.svc.RealtimeSessions(ctx)
	if err != nil {
		c.log.WithError(err).Warn("failed to list realtime sessions")
		return
	}
	for _, id := range ids {
		c.tickSession(ctx, id)
	}
}

// tickSession isolates a panicking session so the clock keeps running
func (c *Clock) tickSession(ctx context.Context, id string) {
	defer func() {
		if err := recover(); err != nil {
			c.log.WithField("session_id", id).Errorf("tick panic: %v", err)
			hub := sentry.CurrentHub().Clone()
			hub.ConfigureScope(func(scope *sentry.Scope) {
				scope.SetTag("session_id", id)
			})
			hub.Recover(fmt.Errorf("tick panic: %v", err))
			hub.Flush(time.Second * 2)
		}
	}()

	if _, err := c.svc.Tick(ctx, id, 1); err != nil {
		c.log.WithError(err).WithField("session_id", id).Debug("realtime tick failed")
	}
}
