package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"iplay/catalog"
	"iplay/config"
	"iplay/daemon"
	"iplay/location"
	"iplay/tui"
)

func main() {
	var err error
	args := os.Args[1:]
	switch {
	case len(args) > 0 && args[0] == "compile":
		err = runCompile(args[1:])
	case len(args) > 0 && args[0] == "serve":
		err = runServe(args[1:])
	default:
		err = runPlayer(args)
	}
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func runPlayer(args []string) error {
	cfg, err := config.Load(args, os.Getenv)
	if err != nil {
		return err
	}
	log, closeLog, err := newLogger(cfg.LogPath, cfg.Debug)
	if err != nil {
		return err
	}
	defer closeLog()

	session, err := location.LoadSession(cfg.SessionPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.SessionPath).Msg("session ignored")
	}
	start := cfg.URL
	if start == "" {
		start = session.URL
	}
	if start == "" {
		start = "/"
	}
	history, err := location.NewHistory(start, log)
	if err != nil {
		return err
	}

	sources := []catalog.Source{catalog.NewHTTPSource(cfg.CatalogURL, nil)}
	if cfg.CatalogDir != "" {
		sources = append(sources, catalog.NewDirSource(cfg.CatalogDir))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	mpv := daemon.New(cfg.MPV, cfg.Socket, log)
	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = mpv.Start(startCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("start player: %w", err)
	}
	defer func() {
		if err := mpv.Close(); err != nil {
			log.Warn().Err(err).Msg("stop player")
		}
	}()

	log.Info().Str("url", history.URL()).Str("catalog", cfg.CatalogURL).Msg("starting")
	err = tui.Run(ctx, tui.Options{
		Log:     log,
		History: history,
		Catalog: catalog.NewClient(log, sources...),
		Player:  mpv,
	})

	if serr := location.SaveSession(cfg.SessionPath, location.Session{URL: history.URL()}); serr != nil {
		log.Error().Err(serr).Str("path", cfg.SessionPath).Msg("save session")
	}
	return err
}

func runCompile(args []string) error {
	cfg, err := config.LoadCompile(args, os.Getenv)
	if err != nil {
		return err
	}
	log := consoleLogger(cfg.Debug)
	return catalog.Compile(cfg.Input, cfg.Output, log)
}

func runServe(args []string) error {
	cfg, err := config.LoadServe(args, os.Getenv)
	if err != nil {
		return err
	}
	log := consoleLogger(cfg.Debug)
	if cfg.LogPath != "" {
		var closeLog func()
		log, closeLog, err = newLogger(cfg.LogPath, cfg.Debug)
		if err != nil {
			return err
		}
		defer closeLog()
	}

	if fi, err := os.Stat(cfg.Dir); err != nil || !fi.IsDir() {
		return fmt.Errorf("invalid catalog directory %q", cfg.Dir)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           catalog.NewServer(catalog.NewDirSource(cfg.Dir), log).Router(),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("dir", cfg.Dir).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-done:
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}
	log.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown failed")
		_ = srv.Close()
	}
	log.Info().Msg("server stopped")
	return nil
}

// newLogger logs to a file since the UI owns the terminal.
func newLogger(path string, debug bool) (zerolog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log: %w", err)
	}
	return build(f, debug), func() { _ = f.Close() }, nil
}

func consoleLogger(debug bool) zerolog.Logger {
	return build(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}, debug)
}

func build(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
