package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/domspec/packages/core/config"
	"github.com/abdul-hamid-achik/domspec/packages/core/runner"
	"github.com/abdul-hamid-achik/domspec/packages/history"
	"github.com/abdul-hamid-achik/domspec/packages/output"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <file...>",
	Short: "Run page checks from domspec files",
	Long: `Run the checks defined in one or more .domspec.yaml files.

Examples:
  domspec run site.domspec.yaml
  domspec run ./specs/*.yaml --wait 5000
  domspec run site.domspec.yaml --watch
  domspec run site.domspec.yaml --save --verbose`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

// watchDebounceDelay is the debounce delay for file watch events.
const watchDebounceDelay = 300 * time.Millisecond

var (
	runConfigPath string
	runWaitMs     int
	runIntervalMs int
	runBail       bool
	runVerbose    bool
	runNoColor    bool
	runJSON       bool
	runWatch      bool
	runSave       bool
)

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "config file path")
	runCmd.Flags().IntVar(&runWaitMs, "wait", 0, "default wait budget per check in milliseconds")
	runCmd.Flags().IntVar(&runIntervalMs, "interval", 0, "pause between resolution attempts in milliseconds")
	runCmd.Flags().BoolVar(&runBail, "bail", false, "stop on first failing check")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "verbose output (includes resolution latencies)")
	runCmd.Flags().BoolVar(&runNoColor, "no-color", false, "disable colored output")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "emit results as JSON")
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "re-run when spec files change")
	runCmd.Flags().BoolVar(&runSave, "save", false, "save results to the run history")
}

func loadRunConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(runConfigPath)
	if err != nil {
		return nil, err
	}

	overrides := &config.Config{
		DefaultWaitMs:  runWaitMs,
		PollIntervalMs: runIntervalMs,
	}
	if runBail {
		overrides.Bail = config.BoolPtr(true)
	}
	if runVerbose {
		overrides.Verbose = config.BoolPtr(true)
	}
	if runNoColor {
		overrides.NoColor = config.BoolPtr(true)
	}
	return cfg.Merge(overrides), nil
}

func runnerConfig(cfg *config.Config) *runner.Config {
	return &runner.Config{
		DefaultWait:  cfg.DefaultWait(),
		PollInterval: cfg.PollInterval(),
		FetchTimeout: cfg.FetchTimeout(),
		FetchRate:    cfg.FetchRatePerSec,
		Bail:         cfg.GetBail(),
		Verbose:      cfg.GetVerbose(),
	}
}

func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}

	if runWatch {
		return watchAndRun(cmd.Context(), cfg, args)
	}

	failed, err := runFiles(cmd.Context(), cfg, args)
	if err != nil {
		return err
	}
	if failed {
		os.Exit(1)
	}
	return nil
}

func runFiles(ctx context.Context, cfg *config.Config, files []string) (bool, error) {
	formatter := output.NewConsoleFormatter(
		output.WithVerbose(cfg.GetVerbose()),
		output.WithNoColor(cfg.GetNoColor()),
	)

	var store *history.Store
	if runSave {
		path := cfg.HistoryPath
		if path == "" {
			path = ".domspec_history.db"
		}
		var err error
		store, err = history.Open(path)
		if err != nil {
			return false, err
		}
		defer store.Close()
	}

	anyFailed := false
	for _, file := range files {
		r := runner.NewRunner(runnerConfig(cfg))
		result, err := r.RunFile(ctx, file)
		if err != nil {
			return false, err
		}

		if runJSON {
			if err := output.NewJSONFormatter(os.Stdout).FormatResult(result); err != nil {
				return false, err
			}
		} else {
			formatter.FormatResult(result)
			formatter.FormatMetrics(r.Metrics())
		}

		if store != nil {
			id, err := store.Save(ctx, result)
			if err != nil {
				return false, err
			}
			if !runJSON {
				fmt.Fprintf(os.Stdout, "Saved run %s\n", id)
			}
		}

		if !result.Passed() {
			anyFailed = true
			if cfg.GetBail() {
				break
			}
		}
	}
	return anyFailed, nil
}

func watchAndRun(ctx context.Context, cfg *config.Config, files []string) error {
	formatter := output.NewConsoleFormatter(output.WithNoColor(cfg.GetNoColor()))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	for _, file := range files {
		dir := filepath.Dir(file)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				formatter.FormatError(fmt.Errorf("failed to watch %s: %w", dir, err))
			}
			watchedDirs[dir] = true
		}
	}

	if _, err := runFiles(ctx, cfg, files); err != nil {
		formatter.FormatError(err)
	}
	fmt.Println("\nWatching for changes... (ctrl-c to stop)")

	var debounce *time.Timer
	rerun := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounceDelay, func() {
				select {
				case rerun <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			formatter.FormatError(err)
		case <-rerun:
			if _, err := runFiles(ctx, cfg, files); err != nil {
				formatter.FormatError(err)
			}
			fmt.Println("\nWatching for changes... (ctrl-c to stop)")
		}
	}
}
