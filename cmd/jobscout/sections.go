package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/markdown"
)

var sectionsResume bool

var sectionsCmd = &cobra.Command{
	Use:   "sections <file>",
	Short: "Split a Markdown document into its ## sections",
	Long:  "Prints each \"## \" section of a generated resume or cover letter. Use - to read stdin.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSections,
}

func init() {
	sectionsCmd.Flags().BoolVar(&sectionsResume, "resume", false, "treat a \"# \" header as the contact section")
	rootCmd.AddCommand(sectionsCmd)
}

func runSections(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	secs := markdown.Split(string(data))
	if sectionsResume {
		secs = markdown.SplitResume(string(data))
	}
	if len(secs) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "no sections found")
		return nil
	}

	out := cmd.OutOrStdout()
	for i, s := range secs {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "[%s]\n", s.Name)
		fmt.Fprintln(out, strings.Repeat("─", len([]rune(s.Name))+2))
		fmt.Fprintln(out, s.Body)
	}
	return nil
}
