package main

import (
	"fmt"
	"log/slog"

	"gamegrove/internal/workspace"
	"gamegrove/pkg/config"
	"gamegrove/pkg/fsys"
	"gamegrove/pkg/launch"
	"gamegrove/pkg/logging"
	"gamegrove/pkg/telemetry"
	"gamegrove/pkg/template"
)

// app holds what every command needs once config is loaded.
type app struct {
	cfg       *config.Config
	locator   *template.Locator
	manager   *workspace.Manager
	collector *telemetry.Collector
	closeLog  func() error
}

func newApp(configPath, logLevel string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	closeLog, err := logging.Init(cfg.Log, "gamegrove")
	if err != nil {
		return nil, fmt.Errorf("failed to init logging: %w", err)
	}

	afs := fsys.OS()
	ctx, err := template.DetectContext(afs, cfg.Templates.ResourceDir, cfg.Templates.Markers)
	if err != nil {
		closeLog()
		return nil, err
	}
	ctx.ExtraRoots = cfg.Templates.SearchRoots
	locator := template.NewLocator(afs, ctx.SearchRoots())

	collector := openCollector(cfg)

	opts := workspace.Options{
		WorkspaceRoot: cfg.Workspace.Root,
		DefaultRoot:   config.DefaultRoot(),
		Editor:        cfg.Editor.Command,
	}
	if collector != nil {
		opts.Recorder = collector
	}

	return &app{
		cfg:       cfg,
		locator:   locator,
		manager:   workspace.NewManager(afs, locator, launch.ExecLauncher{}, opts),
		collector: collector,
		closeLog:  closeLog,
	}, nil
}

// openCollector returns nil when telemetry is off or its database cannot be
// opened; commands never fail because of telemetry.
func openCollector(cfg *config.Config) *telemetry.Collector {
	tcfg := telemetry.LoadTelemetryConfig(fsys.OS(), telemetry.DefaultConfigPath())
	tcfg.Enabled = tcfg.Enabled && cfg.Telemetry.Enabled
	if !tcfg.Enabled {
		return nil
	}

	collector, err := telemetry.NewCollector(telemetry.DefaultDBPath(), tcfg)
	if err != nil {
		slog.Warn("telemetry disabled", "error", err)
		return nil
	}
	if _, err := collector.StartSession(); err != nil {
		slog.Debug("failed to start telemetry session", "error", err)
	}
	return collector
}

func (a *app) Close() {
	if a.collector != nil {
		if err := a.collector.EndSession(); err != nil {
			slog.Debug("failed to end telemetry session", "error", err)
		}
		a.collector.Close()
	}
	if a.closeLog != nil {
		a.closeLog()
	}
}
