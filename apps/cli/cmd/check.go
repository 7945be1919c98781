package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/abdul-hamid-achik/domspec/packages/assert"
	"github.com/abdul-hamid-achik/domspec/packages/count"
	"github.com/abdul-hamid-achik/domspec/packages/document"
	"github.com/abdul-hamid-achik/domspec/packages/query"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <url>",
	Short: "Run a single ad-hoc check against a page",
	Long: `Run one check against a URL without writing a spec file.

Examples:
  domspec check https://example.com --css "div.banner"
  domspec check https://example.com --css ".item" --count 3
  domspec check https://example.com --text "Welcome back" --wait 5000
  domspec check https://example.com --css ".spinner" --negated`,
	Args: cobra.ExactArgs(1),
	RunE: checkCommand,
}

var (
	checkCSS     string
	checkText    string
	checkCount   int
	checkMin     int
	checkMax     int
	checkWaitMs  int
	checkNegated bool
)

func init() {
	checkCmd.Flags().StringVar(&checkCSS, "css", "", "css locator to check")
	checkCmd.Flags().StringVar(&checkText, "text", "", "text to check")
	checkCmd.Flags().IntVar(&checkCount, "count", -1, "require exactly this many matches")
	checkCmd.Flags().IntVar(&checkMin, "minimum", -1, "require at least this many matches")
	checkCmd.Flags().IntVar(&checkMax, "maximum", -1, "require at most this many matches")
	checkCmd.Flags().IntVar(&checkWaitMs, "wait", 0, "wait budget in milliseconds")
	checkCmd.Flags().BoolVar(&checkNegated, "negated", false, "assert absence instead of presence")
}

func checkCountOptions() count.Options {
	var opts count.Options
	if checkCount >= 0 {
		opts.Count = count.Int(checkCount)
	}
	if checkMin >= 0 {
		opts.Minimum = count.Int(checkMin)
	}
	if checkMax >= 0 {
		opts.Maximum = count.Int(checkMax)
	}
	return opts
}

func checkCommand(cmd *cobra.Command, args []string) error {
	if (checkCSS == "") == (checkText == "") {
		return fmt.Errorf("exactly one of --css and --text is required")
	}

	ctx := cmd.Context()
	asserterOpts := []assert.Option{}
	if checkWaitMs > 0 {
		asserterOpts = append(asserterOpts, assert.WithDefaultWait(time.Duration(checkWaitMs)*time.Millisecond))
	}
	asserter := assert.New(document.NewLive(args[0]), asserterOpts...)

	var err error
	var description string
	switch {
	case checkCSS != "":
		var q *query.SelectorQuery
		q, err = query.NewSelector(query.KindCSS, checkCSS, query.WithCount(checkCountOptions()))
		if err != nil {
			return err
		}
		description = q.Describe()
		if checkNegated {
			err = asserter.AssertNoSelector(ctx, q)
		} else {
			err = asserter.AssertSelector(ctx, q)
		}
	default:
		var q *query.TextQuery
		q, err = query.NewText(checkText, query.WithTextCount(checkCountOptions()))
		if err != nil {
			return err
		}
		description = q.Describe()
		if checkNegated {
			err = asserter.AssertNoText(ctx, q)
		} else {
			err = asserter.AssertText(ctx, q)
		}
	}

	if err != nil {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s %v\n", red("✗"), err)
		os.Exit(1)
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green("✓"), description)
	return nil
}
