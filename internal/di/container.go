// Package di wires the infrastructure adapters into a ready engine.
package di

import (
	"context"
	"fmt"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/application/port/output"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/diagnose"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/engine"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/infrastructure/analyzer/openai"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/infrastructure/config"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/infrastructure/driver/rod"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/infrastructure/env"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/infrastructure/logger"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/infrastructure/ocr"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/perception/icons"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/perception/match"
)

type Container struct {
	Driver   *rod.Adapter
	OCR      *ocr.Adapter
	Analyzer output.AnalyzerPort // nil when disabled
	Logger   output.LoggerPort
	Session  *engine.Session
	Engine   *engine.Engine
	Config   *config.Config
}

func NewContainer(ctx context.Context, cfg *config.Config, runName string) (*Container, error) {
	log, err := logger.NewLoggerAdapter(logger.Options{
		Dir:        cfg.Logger.Dir,
		RunName:    runName,
		Verbose:    cfg.Logger.Verbose,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	driver, err := rod.NewAdapter(ctx, rod.Config{
		MirrorURL:  cfg.Mirror.URL,
		Headless:   cfg.Mirror.Headless,
		SlowMotion: cfg.Mirror.SlowMotion,
		Timeout:    cfg.Mirror.Timeout,
	})
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("create driver: %w", err)
	}

	scale := cfg.OCR.PixelScale
	if scale == 0 {
		if s, err := driver.PixelScale(ctx); err == nil && s > 0 {
			scale = s
		} else {
			scale = 1
		}
	}
	perception, err := ocr.NewAdapter(cfg.OCR.Language, scale)
	if err != nil {
		driver.Close()
		log.Close()
		return nil, fmt.Errorf("create ocr: %w", err)
	}

	var analyzer output.AnalyzerPort
	if cfg.Analyzer.Enabled {
		envService := env.NewService()
		apiKey, err := envService.Require("MIRROIR_ANALYZER_API_KEY")
		if err != nil {
			log.Warn("analyzer enabled but unusable", "error", err)
		} else {
			analyzer = openai.NewAdapter(openai.Config{
				APIKey:  apiKey,
				Model:   cfg.Analyzer.Model,
				BaseURL: cfg.Analyzer.BaseURL,
				Logger:  log,
			})
		}
	}

	matcher := match.NewMatcher()
	session := engine.NewSession(cfg.Report.ScreenshotDir)
	eng := engine.New(
		engine.Config{
			SettleDelay:       cfg.Engine.SettleDelay,
			PollInterval:      cfg.Engine.PollInterval,
			DefaultTimeout:    cfg.Engine.DefaultTimeout,
			DefaultMaxScrolls: cfg.Engine.MaxScrolls,
			DefaultMeasureMax: cfg.Engine.MeasureMax,
		},
		engine.Target{
			Window:     driver,
			Menu:       driver,
			Actuator:   driver,
			Perception: perception,
			Snapshot:   driver,
		},
		matcher,
		icons.NewDetector(icons.Config{}, log),
		diagnose.New(matcher),
		session,
		log,
	)

	return &Container{
		Driver:   driver,
		OCR:      perception,
		Analyzer: analyzer,
		Logger:   log,
		Session:  session,
		Engine:   eng,
		Config:   cfg,
	}, nil
}

func (c *Container) Close() {
	if c.Driver != nil {
		c.Driver.Close()
	}
	if c.OCR != nil {
		_ = c.OCR.Close()
	}
	if c.Logger != nil {
		_ = c.Logger.Close()
	}
}
