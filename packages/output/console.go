package output

import (
	"fmt"
	"io"
	"os"

	"github.com/abdul-hamid-achik/domspec/packages/core/runner"
	"github.com/abdul-hamid-achik/domspec/packages/metrics"
	"github.com/fatih/color"
)

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatResult(result *runner.RunResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s\n\n", bold("Running: "+result.SpecFile))

	for _, page := range result.Pages {
		fmt.Fprintf(f.writer, "  %s %s\n", bold(page.Name), cyan("("+page.Target+")"))

		for _, check := range page.Checks {
			symbol := green("✓")
			if !check.Passed {
				symbol = red("✗")
			}
			fmt.Fprintf(f.writer, "    %s %s %s\n",
				symbol, check.Description, cyan(fmt.Sprintf("(%dms)", check.Duration.Milliseconds())))

			if !check.Passed && check.Message != "" {
				fmt.Fprintf(f.writer, "      %s %s\n", red("→"), check.Message)
			}
		}
	}

	failed := result.Failed()
	passed := result.Total() - failed

	fmt.Fprintf(f.writer, "\nChecks: ")
	if passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", passed)))
	}
	if failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", failed)))
	}
	fmt.Fprintf(f.writer, "%d total\n", result.Total())
	fmt.Fprintf(f.writer, "Time:   %dms\n", result.Duration.Milliseconds())
}

// FormatMetrics prints resolution latency percentiles; verbose mode only.
func (f *ConsoleFormatter) FormatMetrics(s metrics.Summary) {
	if !f.verbose || s.Count == 0 {
		return
	}
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(f.writer, "\n%s\n", cyan("Resolutions"))
	fmt.Fprintf(f.writer, "  count: %d\n", s.Count)
	fmt.Fprintf(f.writer, "  p50:   %v\n", s.P50)
	fmt.Fprintf(f.writer, "  p95:   %v\n", s.P95)
	fmt.Fprintf(f.writer, "  p99:   %v\n", s.P99)
	fmt.Fprintf(f.writer, "  max:   %v\n", s.Max)
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}
