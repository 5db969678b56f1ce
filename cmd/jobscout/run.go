package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/agent"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/present"
	"github.com/amishk599/jobscout/internal/tui"
)

var (
	runLocation string
	runCompany  string
	runPlain    bool
	runSlack    bool
)

var runCmd = &cobra.Command{
	Use:   "run [title]",
	Short: "Research one job title",
	Long: "Runs the agent for a job title and shows skills, a sample resume and cover letter,\n" +
		"job listings and related posts. Without a title, picks from agent.suggested_titles.",
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runLocation, "location", "", "narrow job and post searches to a location (default: agent.location)")
	runCmd.Flags().StringVar(&runCompany, "company", "", "narrow post searches to a company (default: agent.company)")
	runCmd.Flags().BoolVar(&runPlain, "plain", false, "print the trace and a Markdown report instead of the interactive UI")
	runCmd.Flags().BoolVar(&runSlack, "slack", false, "also post job listings to output.slack_webhook_url")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	// The interactive UI owns the terminal, so logs only go out in plain mode.
	logger := discardLogger()
	if runPlain {
		logger = setupLogger(os.Stderr, debug)
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	title, err := resolveTitle(args, cfg.Agent.SuggestedTitles)
	if err != nil {
		return err
	}
	if title == "" {
		return nil
	}

	req := agent.Request{
		Goal:     title,
		Location: firstNonEmpty(runLocation, cfg.Agent.Location),
		Company:  firstNonEmpty(runCompany, cfg.Agent.Company),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exec, closeFn, err := buildExecutor(ctx, cfg, logger)
	defer closeFn()
	if err != nil {
		return err
	}

	var (
		mem   *model.Memory
		trace []string
	)
	if runPlain {
		mem, err = exec.RunRequest(ctx, req, func(line string) {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		})
	} else {
		mem, trace, err = tui.RunLoader(ctx, title, func(ctx context.Context, trace func(string)) (*model.Memory, error) {
			return exec.RunRequest(ctx, req, trace)
		})
	}
	if errors.Is(err, tui.ErrCancelled) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("agent run failed: %w", err)
	}

	report := present.BuildReport(title, mem)
	for _, p := range setupPublishers(cfg, runSlack, logger) {
		if err := p.Publish(ctx, report); err != nil {
			logger.Warn("publish failed", "error", err)
		}
	}

	if runPlain {
		fmt.Fprintln(cmd.OutOrStdout())
		return present.WriteMarkdown(cmd.OutOrStdout(), report)
	}
	return tui.RunViewer(report, trace)
}

// resolveTitle returns the title argument, or asks the user to pick one of
// the suggestions. An empty title with a nil error means the user quit.
func resolveTitle(args []string, suggestions []string) (string, error) {
	if len(args) == 1 && args[0] != "" {
		return args[0], nil
	}
	if runPlain || len(suggestions) == 0 {
		return "", errors.New("a job title is required (or configure agent.suggested_titles)")
	}
	return tui.RunTitlePicker(suggestions)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
