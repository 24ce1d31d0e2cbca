package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edgefn/modelgate/internal/config"
	"github.com/edgefn/modelgate/internal/engine"
	"github.com/edgefn/modelgate/internal/lang"
	"github.com/edgefn/modelgate/internal/logx"
	"github.com/edgefn/modelgate/internal/telemetry"
	"github.com/edgefn/modelgate/internal/vision"
)

// Run starts the server from a config file path and blocks until shutdown.
func Run(cfgPath string) error {
	startedAt := time.Now().Unix()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	accessLogger, accessClose, accessColor, err := openAccessLogger(cfg)
	if err != nil {
		return fmt.Errorf("init access log: %w", err)
	}
	if accessClose != nil {
		defer func() { _ = accessClose.Close() }()
	}

	gin.SetMode(gin.ReleaseMode)

	det := lang.Whatlang{}
	st := &state{}
	st.ApplyConfig(cfg, det)
	st.SetStartedAtUnix(startedAt)

	var sink telemetry.Sink = telemetry.NopSink{}
	if cfg.Logging.Telemetry {
		sink = &telemetry.LogSink{L: log.Default()}
	}

	eng := &engine.Dev{ModelID: cfg.Model.ID, Pace: 15 * time.Millisecond}
	srv := NewServer(st, eng, vision.Local{}, sink)
	router := NewRouter(srv, cfg.Server.MaxBodyBytes, accessLogger, accessColor)

	httpServer := &http.Server{
		Addr:    cfg.Server.Listen,
		Handler: router,
		// no WriteTimeout: streamed generations hold the connection open for
		// as long as the engine produces snapshots
		ReadTimeout: time.Duration(cfg.Server.ReadTimeoutMs) * time.Millisecond,
		IdleTimeout: time.Duration(cfg.Server.IdleTimeoutMs) * time.Millisecond,
	}

	stopReload := installReloadHandlers(cfgPath, st, det)
	if stopReload != nil {
		defer stopReload()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("modelgate listening on %s (model=%s)", cfg.Server.Listen, cfg.Model.ID)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-stop:
	}

	grace := time.Duration(cfg.Server.ShutdownGraceS) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// installReloadHandlers reloads the reloadable config subset on SIGHUP and on
// file change. Returns a stop function, or nil when nothing is watchable.
func installReloadHandlers(cfgPath string, st *state, det lang.Detector) func() {
	apply := func(cfg *config.Config) {
		st.ApplyConfig(cfg, det)
		log.Printf("config reloaded (model=%s, languages=%d)", cfg.Model.ID, len(cfg.Languages))
	}

	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGHUP)
	go func() {
		for range ch {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				log.Printf("reload failed: %v", err)
				continue
			}
			apply(cfg)
		}
	}()

	var stopWatch func()
	if strings.TrimSpace(cfgPath) != "" {
		if _, err := os.Stat(cfgPath); err == nil {
			sw, werr := config.Watch(cfgPath, apply)
			if werr != nil {
				log.Printf("config watch disabled: %v", werr)
			} else {
				stopWatch = sw
			}
		}
	}

	return func() {
		signal.Stop(ch)
		close(ch)
		if stopWatch != nil {
			stopWatch()
		}
	}
}

func openAccessLogger(cfg *config.Config) (*log.Logger, io.Closer, bool, error) {
	if cfg == nil || !cfg.Logging.AccessLog {
		return nil, nil, false, nil
	}

	path := strings.TrimSpace(cfg.Logging.AccessLogPath)
	if path == "" {
		return log.New(os.Stdout, "", 0), nil, logx.StdoutColor(), nil
	}

	dir := filepath.Dir(path)
	if strings.TrimSpace(dir) != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, false, err
		}
	}
	// #nosec G304 -- access_log_path comes from trusted config/env.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, false, err
	}
	return log.New(f, "", 0), f, false, nil
}
