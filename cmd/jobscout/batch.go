package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/agent"
	"github.com/amishk599/jobscout/internal/batch"
)

var (
	batchOut      string
	batchLocation string
	batchCompany  string
	batchSlack    bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Research every job title listed in a file",
	Long: "Reads one job title per line (blank lines and # comments are skipped), runs the agent\n" +
		"for each title in turn and writes one Markdown report per title.",
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "reports", "directory for the Markdown reports")
	batchCmd.Flags().StringVar(&batchLocation, "location", "", "location hint for every run (default: agent.location)")
	batchCmd.Flags().StringVar(&batchCompany, "company", "", "company hint for every run (default: agent.company)")
	batchCmd.Flags().BoolVar(&batchSlack, "slack", false, "also post job listings to output.slack_webhook_url")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(os.Stdout, debug)
	cfg := mustLoad(logger)

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open titles: %w", err)
	}
	titles, err := batch.ReadTitles(f)
	f.Close()
	if err != nil {
		return err
	}
	if len(titles) == 0 {
		logger.Warn("no titles found", "file", args[0])
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exec, closeFn, err := buildExecutor(ctx, cfg, logger)
	defer closeFn()
	if err != nil {
		logger.Error("failed to build agent", "error", err)
		os.Exit(1)
	}

	sink, err := batch.NewDirSink(batchOut, logger, setupPublishers(cfg, batchSlack, logger)...)
	if err != nil {
		return err
	}

	b := batch.New(exec, sink, cfg.Batch.Pause, logger)
	sum, err := b.Run(ctx, titles, agent.Request{
		Location: firstNonEmpty(batchLocation, cfg.Agent.Location),
		Company:  firstNonEmpty(batchCompany, cfg.Agent.Company),
	})
	if err != nil {
		logger.Warn("batch interrupted", "error", err, "completed", len(sum.Succeeded)+len(sum.Failed))
		return nil
	}
	if len(sum.Failed) > 0 {
		return fmt.Errorf("%d of %d titles failed: %v", len(sum.Failed), len(titles), sum.Failed)
	}
	return nil
}
