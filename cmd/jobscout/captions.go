package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/store"
)

var (
	captionsFile      string
	captionsK         int
	captionsOlderThan time.Duration
)

var captionsCmd = &cobra.Command{
	Use:   "captions",
	Short: "Manage the caption similarity store",
	Long:  "Stores post captions with their embeddings and scores new text against the closest ones.",
}

var captionsAddCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Add a caption (or one caption per line of --file)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCaptionsAdd,
}

var captionsScoreCmd = &cobra.Command{
	Use:   "score <text>",
	Short: "Score text against the k nearest stored captions (0 to 1)",
	Args:  cobra.ExactArgs(1),
	RunE:  runCaptionsScore,
}

var captionsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete captions older than --older-than",
	RunE:  runCaptionsPrune,
}

func init() {
	captionsAddCmd.Flags().StringVarP(&captionsFile, "file", "f", "", "file with one caption per line")
	captionsScoreCmd.Flags().IntVar(&captionsK, "k", store.DefaultNeighbors, "number of nearest captions to average")
	captionsPruneCmd.Flags().DurationVar(&captionsOlderThan, "older-than", 30*24*time.Hour, "age of captions to delete")
	captionsCmd.AddCommand(captionsAddCmd, captionsScoreCmd, captionsPruneCmd)
	rootCmd.AddCommand(captionsCmd)
}

func runCaptionsAdd(cmd *cobra.Command, args []string) error {
	var texts []string
	if len(args) == 1 {
		texts = append(texts, args[0])
	}
	if captionsFile != "" {
		f, err := os.Open(captionsFile)
		if err != nil {
			return fmt.Errorf("open captions file: %w", err)
		}
		lines, err := store.ReadCaptions(f)
		f.Close()
		if err != nil {
			return err
		}
		texts = append(texts, lines...)
	}
	if len(texts) == 0 {
		return errors.New("nothing to add: pass a caption or --file")
	}

	logger := setupLogger(os.Stderr, debug)
	cfg := mustLoad(logger)
	cfg.Captions.Enabled = true

	st, err := setupCaptionStore(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	added := 0
	for _, t := range texts {
		if err := st.AddCaption(ctx, t); err != nil {
			logger.Error("add caption failed", "caption", truncate(t, 40), "error", err)
			continue
		}
		added++
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added %d of %d captions\n", added, len(texts))
	return nil
}

func runCaptionsScore(cmd *cobra.Command, args []string) error {
	logger := setupLogger(os.Stderr, debug)
	cfg := mustLoad(logger)
	cfg.Captions.Enabled = true

	st, err := setupCaptionStore(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	score, err := st.Similarity(context.Background(), args[0], captionsK)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%.3f\n", score)
	return nil
}

func runCaptionsPrune(cmd *cobra.Command, args []string) error {
	logger := setupLogger(os.Stderr, debug)
	cfg := mustLoad(logger)

	st, err := store.NewSQLiteCaptionStore(cfg.Captions.DBPath, nil)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := st.Cleanup(context.Background(), captionsOlderThan)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d captions\n", n)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
