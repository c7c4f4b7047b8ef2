package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"medical-consult-assistant/internal/emotion"
	"medical-consult-assistant/internal/prompt"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "analyze",
		Short:         "Score patient utterances and preview fallback questions offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newScoreCmd(), newFallbackCmd())
	return root
}

func newScoreCmd() *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "score [text...]",
		Short: "Print the emotion analysis of each utterance as JSON",
		Long:  "Each argument is scored as one utterance. With no arguments, every non-blank stdin line is scored.",
		RunE: func(cmd *cobra.Command, args []string) error {
			texts := args
			if len(texts) == 0 {
				var err error
				if texts, err = readLines(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			scorer := emotion.NewScorer(emotion.NewVaderAnalyzer())
			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			for _, text := range texts {
				res, err := scorer.Analyze(cmd.Context(), text)
				if err != nil {
					return fmt.Errorf("score %q: %w", text, err)
				}
				if err := enc.Encode(res); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	return cmd
}

func newFallbackCmd() *cobra.Command {
	var (
		count    int
		language string
	)
	cmd := &cobra.Command{
		Use:   "fallback [text]",
		Short: "Print the locally generated follow-up questions for an utterance",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			_, err := fmt.Fprintln(cmd.OutOrStdout(), prompt.FallbackQuestions(text, prompt.ParseLanguage(language), count))
			return err
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", prompt.DefaultQuestionCount, "number of questions")
	cmd.Flags().StringVarP(&language, "language", "l", string(prompt.EnglishUS), "en-US or hi-IN")
	return cmd
}

func readLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return out, nil
}
