// AngelaMos | 2026
// tree.go

package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

type TreeConfig struct {
	FailureThreshold float64
	FailureDecay     float64
	FailureBackoff   time.Duration
	ShutdownTimeout  time.Duration
}

func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Tree supervises the API layer (HTTP server) and the background layer
// (stack verifier) independently, so a crashing verifier never takes the
// recommendation endpoint down with it.
type Tree struct {
	root       *suture.Supervisor
	api        *suture.Supervisor
	background *suture.Supervisor
}

func NewTree(logger *slog.Logger, cfg TreeConfig) *Tree {
	defaults := DefaultTreeConfig()
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.FailureDecay == 0 {
		cfg.FailureDecay = defaults.FailureDecay
	}
	if cfg.FailureBackoff == 0 {
		cfg.FailureBackoff = defaults.FailureBackoff
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}

	childSpec := suture.Spec{
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
	}

	rootSpec := childSpec
	rootSpec.EventHook = (&sutureslog.Handler{Logger: logger}).MustHook()

	root := suture.New("stackrec", rootSpec)
	api := suture.New("api-layer", childSpec)
	background := suture.New("background-layer", childSpec)

	root.Add(api)
	root.Add(background)

	return &Tree{
		root:       root,
		api:        api,
		background: background,
	}
}

func (t *Tree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.api.Add(svc)
}

func (t *Tree) AddBackgroundService(svc suture.Service) suture.ServiceToken {
	return t.background.Add(svc)
}

func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

func (t *Tree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
