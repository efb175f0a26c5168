// AngelaMos | 2026
// service.go

package verifier

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carterperez-dev/stackrec/internal/core"
)

// Service runs verification passes on an interval under the supervisor.
// At most one pass runs at a time, whether scheduled or triggered.
type Service struct {
	verifier    *Verifier
	interval    time.Duration
	warmOnStart bool

	running sync.Mutex
	last    atomic.Pointer[Report]
}

func NewService(v *Verifier, interval time.Duration, warmOnStart bool) *Service {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Service{
		verifier:    v,
		interval:    interval,
		warmOnStart: warmOnStart,
	}
}

func (s *Service) Serve(ctx context.Context) error {
	if s.warmOnStart {
		if _, err := s.verifier.Warm(ctx); err != nil {
			slog.Warn("initial cache warm incomplete", "error", err)
		}
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_, err := s.RunPass(ctx)
			if err != nil && !errors.Is(err, ErrPassInProgress) {
				slog.Error("scheduled verification pass", "error", err)
			}
		}
	}
}

// RunPass runs one pass now. It returns ErrPassInProgress when another
// pass holds the guard.
func (s *Service) RunPass(ctx context.Context) (Report, error) {
	if !s.running.TryLock() {
		return Report{}, ErrPassInProgress
	}
	defer s.running.Unlock()

	return s.run(ctx)
}

// Trigger starts a pass in the background and returns immediately. The
// pass is detached from ctx so it outlives the triggering request.
func (s *Service) Trigger(ctx context.Context) error {
	if !s.running.TryLock() {
		return ErrPassInProgress
	}

	go func() {
		defer s.running.Unlock()
		if _, err := s.run(context.WithoutCancel(ctx)); err != nil {
			slog.Error("triggered verification pass", "error", err)
		}
	}()
	return nil
}

func (s *Service) run(ctx context.Context) (Report, error) {
	report, err := s.verifier.VerifyAll(ctx)
	if err == nil || errors.Is(err, core.ErrCollaboratorUnavailable) {
		s.last.Store(&report)
	}
	return report, err
}

// LastReport returns the most recent pass report, if any pass has run.
func (s *Service) LastReport() (Report, bool) {
	r := s.last.Load()
	if r == nil {
		return Report{}, false
	}
	return *r, true
}

func (s *Service) Verifier() *Verifier {
	return s.verifier
}

func (s *Service) String() string {
	return "stack-verifier"
}
