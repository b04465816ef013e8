package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tartampluch/go-birthday-reminders/internal/config"
)

// Poller owns the recurring check of a PollingScheduler. Ticks run on a single
// goroutine, so a slow scan delays the next tick instead of overlapping it.
type Poller struct {
	scheduler *PollingScheduler
	interval  time.Duration

	// OnError, when set, receives the storage failure of a check. It runs on
	// the poller goroutine and must not block.
	OnError func(error)

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	checkCh chan struct{}
}

// NewPoller creates a stopped poller. A non-positive interval falls back to
// config.PollInterval.
func NewPoller(s *PollingScheduler, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = config.PollInterval
	}
	return &Poller{
		scheduler: s,
		interval:  interval,
		checkCh:   make(chan struct{}, config.ChannelBufferSize),
	}
}

// Start requests permission if it was never asked, runs an immediate check,
// then checks on every interval until Stop is called or ctx is cancelled.
// Calling Start on a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(runCtx, p.done)
}

// Stop releases the ticker and waits for an in-flight check to finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// CheckNow asks the running loop for an extra check without waiting for the next tick.
func (p *Poller) CheckNow() {
	select {
	case p.checkCh <- struct{}{}:
	default:
	}
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	log := slog.With(config.LogKeyComponent, config.CompPoller)

	if backend := p.scheduler.Backend; backend != nil && backend.Permission() == PermissionDefault {
		if perm, err := backend.RequestPermission(ctx); err != nil {
			log.Debug(config.MsgPermissionFail, config.LogKeyError, err)
		} else if perm != PermissionGranted {
			log.Debug(config.MsgPermissionDenied, config.LogKeyPermission, perm)
		}
	}

	p.check(ctx, log)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log.Info(config.MsgPollStart, config.LogKeyInterval, p.interval)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgPollStop)
			return
		case <-p.checkCh:
			p.check(ctx, log)
		case <-ticker.C:
			p.check(ctx, log)
		}
	}
}

func (p *Poller) check(ctx context.Context, log *slog.Logger) {
	fired, err := p.scheduler.Check(ctx)
	if err == nil {
		return
	}
	log.Error(config.MsgCheckFail, config.LogKeyCount, fired, config.LogKeyError, err)
	if p.OnError != nil {
		p.OnError(err)
	}
}
