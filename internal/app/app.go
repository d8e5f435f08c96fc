package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	stdhttp "net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirebattle-server/internal/config"
	"github.com/vovakirdan/wirebattle-server/internal/core"
	"github.com/vovakirdan/wirebattle-server/internal/events"
	applog "github.com/vovakirdan/wirebattle-server/internal/log"
	"github.com/vovakirdan/wirebattle-server/internal/store"
	"github.com/vovakirdan/wirebattle-server/internal/store/sqlite"
	"github.com/vovakirdan/wirebattle-server/internal/transport/http"
	"github.com/vovakirdan/wirebattle-server/internal/transport/tcp"
)

// App wires together core, storage and transport layers.
type App struct {
	hub             *core.Hub
	results         chan core.MatchRecord
	recorder        *Recorder
	store           store.MatchStore
	publisher       events.Publisher
	battleLn        net.Listener
	admin           *stdhttp.Server
	adminLn         net.Listener
	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// Options overrides collaborators, mostly for tests.
type Options struct {
	// Dice replaces the random source of the hub.
	Dice core.Dice
}

// New constructs the application and binds its listeners. A bind failure on
// the battle port is returned and should abort startup.
func New(ctx context.Context, cfg config.Config, logger *zerolog.Logger, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	pub, err := events.New(cfg.NATSURL, cfg.NATSSubject, applog.Component(logger, "events"))
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("init publisher: %w", err)
	}

	a := &App{
		store:           st,
		publisher:       pub,
		results:         make(chan core.MatchRecord, cfg.ResultBuffer),
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}
	a.recorder = NewRecorder(st, pub, applog.Component(logger, "recorder"))
	a.hub = core.NewHub(core.Options{
		PollTimeout:   cfg.PollTimeout,
		WriteTimeout:  cfg.WriteTimeout,
		MaxLineLength: cfg.MaxLineLength,
		Dice:          opts.Dice,
		Results:       a.results,
	}, applog.Component(logger, "hub"))

	a.battleLn, err = tcp.Listen(ctx, cfg.ListenAddr())
	if err != nil {
		a.cleanup()
		return nil, err
	}

	if cfg.AdminAddr != "" {
		a.admin = http.NewServer(a.hub, st, cfg, applog.Component(logger, "http"))
		a.adminLn, err = net.Listen("tcp", cfg.AdminAddr)
		if err != nil {
			_ = a.battleLn.Close()
			a.cleanup()
			return nil, fmt.Errorf("listen admin %s: %w", cfg.AdminAddr, err)
		}
	}

	return a, nil
}

// BattleAddr is the bound address of the battle listener.
func (a *App) BattleAddr() string {
	return a.battleLn.Addr().String()
}

// AdminAddr is the bound address of the admin server, or "" when disabled.
func (a *App) AdminAddr() string {
	if a.adminLn == nil {
		return ""
	}
	return a.adminLn.Addr().String()
}

// Run serves until ctx is cancelled or a listener fails, then shuts down.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.recorder.Run(ctx, a.results)
	}()

	go a.hub.Run(ctx)

	serverErr := make(chan error, 2)
	go func() {
		serverErr <- tcp.Serve(ctx, a.battleLn, func(ctx context.Context, conn net.Conn) bool {
			return a.hub.Accept(ctx, conn)
		}, applog.Component(a.log, "tcp"))
	}()

	if a.admin != nil {
		go func() {
			a.log.Info().Str("addr", a.adminLn.Addr().String()).Msg("admin server ready")
			if err := a.admin.Serve(a.adminLn); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
				serverErr <- fmt.Errorf("admin server: %w", err)
				return
			}
			serverErr <- nil
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serverErr:
		if runErr == nil && ctx.Err() == nil {
			runErr = errors.New("listener stopped unexpectedly")
		}
	}
	cancel()

	if a.admin != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), a.shutdownTimeout)
		a.log.Info().Msg("shutting down admin server")
		if err := a.admin.Shutdown(shutdownCtx); err != nil {
			a.log.Warn().Err(err).Msg("admin shutdown")
		}
		stop()
	}

	<-a.hub.Done()
	close(a.results)
	wg.Wait()

	a.cleanup()
	return runErr
}

// cleanup closes the publisher and database.
func (a *App) cleanup() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close publisher")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
