package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/compiled"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/di"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/diagnose"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/report"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/scenario"
)

var runCmd = &cobra.Command{
	Use:   "run <scenario.yaml> [more ...]",
	Short: "Run scenarios, replaying compiled hints when they are fresh",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		learn, _ := cmd.Flags().GetBool("learn")
		noReplay, _ := cmd.Flags().GetBool("no-replay")
		junitPath, _ := cmd.Flags().GetString("junit")
		if junitPath == "" {
			junitPath = appConfig.Report.JUnitPath
		}
		return runScenarios(cmd.Context(), args, runOptions{
			learn:     learn,
			noReplay:  noReplay,
			junitPath: junitPath,
		})
	},
}

func init() {
	runCmd.Flags().Bool("learn", false, "record per-step hints and write the compiled sidecar on success")
	runCmd.Flags().Bool("no-replay", false, "ignore compiled sidecars and always run full perception")
	runCmd.Flags().String("junit", "", "write a JUnit XML report to this path")
	rootCmd.AddCommand(runCmd)
}

type runOptions struct {
	learn     bool
	noReplay  bool
	junitPath string
}

func runScenarios(ctx context.Context, paths []string, opts runOptions) error {
	appConfig.Mirror.URL = mirrorURL()

	runName := filepath.Base(paths[0])
	container, err := di.NewContainer(ctx, appConfig, runName)
	if err != nil {
		return err
	}
	defer container.Close()

	console := report.NewConsole(os.Stdout)
	eng := container.Engine
	var results []entity.ScenarioResult
	failures := 0

	for _, path := range paths {
		scn, err := scenario.Load(path)
		if err != nil {
			// Unparseable scenarios abort the batch; everything after the
			// files are loaded is folded into step results instead.
			return err
		}
		source, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read scenario: %w", err)
		}
		hash := compiled.HashSource(source)

		win, err := container.Driver.Size(ctx)
		if err != nil {
			return fmt.Errorf("query window size: %w", err)
		}

		eng.UseHints(nil)
		eng.Learn(nil)

		var recorder *compiled.Recorder
		replaying := false
		switch {
		case opts.learn:
			recorder = compiled.NewRecorder()
			eng.Learn(recorder)
		case !opts.noReplay:
			sidecar := compiled.SidecarPath(path)
			cache, err := compiled.Load(sidecar)
			if err != nil {
				container.Logger.Warn("ignoring unreadable sidecar", "path", sidecar, "error", err)
			} else if cache != nil {
				if staleErr := compiled.CheckFreshness(cache, hash, win); staleErr != nil {
					container.Logger.Info("compiled scenario is stale, running full perception",
						"scenario", scn.Name, "reason", staleErr.Error())
				} else {
					eng.UseHints(cache)
					replaying = true
				}
			}
		}

		result := eng.Run(ctx, scn)
		console.Scenario(result)
		results = append(results, result)
		if !result.Passed() {
			failures++
		}

		snap := container.Session.FinalizeAndClear()
		if replaying && !result.Passed() {
			console.Diagnoses(snap.Diagnoses)
			advice := diagnose.Escalate(ctx, container.Analyzer, appConfig.Analyzer.Timeout,
				scn.Name, snap.Diagnoses, container.Logger)
			console.Advice(advice)
		}

		if opts.learn && result.Passed() {
			orientation, err := container.Driver.Orientation(ctx)
			if err != nil {
				orientation = "portrait"
			}
			built := recorder.Build(scn, hash, win, orientation)
			sidecar := compiled.SidecarPath(path)
			if err := compiled.Save(sidecar, built); err != nil {
				return fmt.Errorf("save compiled scenario: %w", err)
			}
			container.Logger.Info("compiled scenario written", "path", sidecar)
		}
	}

	if opts.junitPath != "" {
		f, err := os.Create(opts.junitPath)
		if err != nil {
			return fmt.Errorf("create junit report: %w", err)
		}
		defer f.Close()
		if err := report.WriteJUnit(f, results); err != nil {
			return fmt.Errorf("write junit report: %w", err)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failures, len(results))
	}
	return nil
}
