package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/samber/do"

	"cool-semant/config"
	"cool-semant/layout"
	"cool-semant/semant"
)

// options are the command-line settings that feed the container.
type options struct {
	configPath string
	verbose    bool
	entryClass string
	stderr     io.Writer
}

// layoutBuilder turns an analysis result into object and vtable layouts.
type layoutBuilder func(*semant.Result) (*layout.Layout, error)

// newContainer wires the services of one run. Everything is built lazily on
// first Invoke.
func newContainer(opts options) *do.Injector {
	i := do.New()

	do.ProvideValue(i, opts)

	do.Provide(i, func(i *do.Injector) (config.Config, error) {
		o := do.MustInvoke[options](i)
		cfg, err := config.Load(o.configPath)
		if err != nil {
			return cfg, err
		}
		if o.entryClass != "" {
			cfg.EntryClass = o.entryClass
		}
		if o.verbose {
			cfg.LogLevel = "debug"
		}
		return cfg, nil
	})

	do.Provide(i, func(i *do.Injector) (*slog.Logger, error) {
		o := do.MustInvoke[options](i)
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, err
		}
		lvl, err := cfg.Level()
		if err != nil {
			return nil, err
		}
		handler := slog.NewTextHandler(o.stderr, &slog.HandlerOptions{Level: lvl})
		return slog.New(handler).With("run", uuid.NewString()), nil
	})

	do.Provide(i, func(i *do.Injector) (*semant.Analyzer, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		log, err := do.Invoke[*slog.Logger](i)
		if err != nil {
			return nil, err
		}
		return semant.NewAnalyzer(cfg, log.With("component", "semant")), nil
	})

	do.Provide(i, func(i *do.Injector) (layoutBuilder, error) {
		return layout.Build, nil
	})

	return i
}
