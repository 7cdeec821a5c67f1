package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one run of a periodic job.
type Task func(ctx context.Context, now time.Time)

// PeriodicConfig configures a Periodic runner.
type PeriodicConfig struct {
	Interval time.Duration
	Logger   *zap.Logger
}

// Periodic runs a task on a fixed interval in a single background goroutine.
type Periodic struct {
	name     string
	task     Task
	interval time.Duration
	logger   *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewPeriodic builds a runner for task.
func NewPeriodic(name string, task Task, cfg PeriodicConfig) *Periodic {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Periodic{name: name, task: task, interval: cfg.Interval, logger: cfg.Logger}
}

// Start launches the ticker goroutine. Safe to call once.
func (p *Periodic) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go p.loop()
	p.started = true
	p.logger.Sugar().Infow("periodic job started", "job", p.name, "interval", p.interval)
}

// Stop cancels the runner and waits for an in-progress run to finish.
func (p *Periodic) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.started = false
	p.mu.Unlock()
	p.wg.Wait()
	p.logger.Sugar().Infow("periodic job stopped", "job", p.name)
}

func (p *Periodic) loop() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.ctx.Done():
			return
		case now := <-ticker.C:
			p.run(now)
		}
	}
}

func (p *Periodic) run(now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Sugar().Errorw("periodic job panicked", "job", p.name, "panic", r)
		}
	}()
	p.task(p.ctx, now)
}
