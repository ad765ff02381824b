package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/earworm/internal/catalog"
	"github.com/abhisek/earworm/internal/config"
	"github.com/abhisek/earworm/internal/logging"
	"github.com/abhisek/earworm/internal/progress"
	"github.com/abhisek/earworm/internal/store"
)

// runtime holds the resources every command shares.
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	closers []io.Closer
}

// openRuntime resolves configuration from flags, environment and file, then
// opens the log and the SQLite store.
func openRuntime(cmd *cobra.Command) (*runtime, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.Options{File: cfgFile})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Apply(overridesFromFlags(cmd))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg}

	if cfg.LogFile != "" {
		if err := store.EnsureDir(cfg.LogFile); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	logger, closer, err := logging.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	rt.logger = logger
	rt.closers = append(rt.closers, closer)

	if err := store.EnsureDir(cfg.DB); err != nil {
		rt.Close()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(cfg.DB)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	rt.store = st
	rt.closers = append(rt.closers, st)

	logger.Debug("runtime ready", "db", cfg.DB, "catalog", cfg.Catalog, "progress", cfg.ProgressBackend)
	return rt, nil
}

// overridesFromFlags collects the flags that map onto config keys. Only flags
// the user actually set override lower layers.
func overridesFromFlags(cmd *cobra.Command) config.Overrides {
	flags := cmd.Flags()
	get := func(name string) string {
		if f := flags.Lookup(name); f != nil && f.Changed {
			return f.Value.String()
		}
		return ""
	}
	o := config.Overrides{
		Catalog:         get("catalog"),
		DB:              get("db"),
		User:            get("user"),
		PlayMode:        get("mode"),
		ProgressBackend: get("progress"),
		LogFile:         get("log-file"),
	}
	if f := flags.Lookup("no-open"); f != nil && f.Changed {
		noOpen, _ := flags.GetBool("no-open")
		open := !noOpen
		o.OpenBrowser = &open
	}
	return o
}

// Close releases everything openRuntime acquired, newest first.
func (rt *runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i].Close())
	}
	rt.closers = nil
	return errors.Join(errs...)
}

// catalog returns the configured catalog file.
func (rt *runtime) catalog() *catalog.File {
	return catalog.NewFile(rt.cfg.Catalog, rt.logger)
}

// progressBackend returns the configured progress store.
func (rt *runtime) progressBackend() progress.Backend {
	if rt.cfg.ProgressBackend == config.BackendJSON {
		return progress.NewFileBackend(rt.cfg.ProgressDir)
	}
	return rt.store.ProgressRepo()
}

// requireUser returns the configured user or an error naming the flag.
func (rt *runtime) requireUser() (string, error) {
	if rt.cfg.User == "" {
		return "", errors.New("no user given: pass --user or set EARWORM_USER")
	}
	return rt.cfg.User, nil
}

// openTracker loads user's progress.
func (rt *runtime) openTracker(ctx context.Context, user string) (*progress.Tracker, error) {
	tr, err := progress.Open(ctx, user, rt.progressBackend())
	if err != nil {
		return nil, fmt.Errorf("load progress for %s: %w", user, err)
	}
	return tr, nil
}

// displayPath shortens p relative to the working directory when possible.
func displayPath(p string) string {
	if rel, err := filepath.Rel(".", p); err == nil && !filepath.IsAbs(rel) && len(rel) < len(p) {
		return rel
	}
	return p
}
