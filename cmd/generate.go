package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/tutorleap/qgen/internal/llm"
	"github.com/tutorleap/qgen/internal/qgen"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a question paper and print it as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		board, _ := cmd.Flags().GetString("board")
		toBoard, _ := cmd.Flags().GetString("to-board")
		grade, _ := cmd.Flags().GetString("grade")
		subject, _ := cmd.Flags().GetString("subject")
		topic, _ := cmd.Flags().GetString("topic")
		format, _ := cmd.Flags().GetString("format")
		count, _ := cmd.Flags().GetInt("count")
		answers, _ := cmd.Flags().GetBool("answers")
		offline, _ := cmd.Flags().GetBool("offline")

		ctx := context.Background()

		var provider llm.Provider
		if !offline {
			p, err := llm.NewProviderFromEnv(ctx, nil)
			if err != nil {
				log.Printf("warning: no LLM provider configured (%v); generating fallback questions", err)
			} else {
				provider = p
			}
		}

		engine := qgen.New(provider, qgen.DefaultConfig())
		result, err := engine.Generate(ctx, qgen.Request{
			Board:          board,
			ToBoard:        toBoard,
			Grade:          grade,
			Subject:        subject,
			Topic:          topic,
			Format:         qgen.Format(format),
			Count:          count,
			IncludeAnswers: answers,
		})
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	generateCmd.Flags().String("board", "CBSE", "Source board")
	generateCmd.Flags().String("to-board", "", "Target board for conversion papers")
	generateCmd.Flags().String("grade", "", "Grade (required)")
	generateCmd.Flags().String("subject", "", "Subject (required)")
	generateCmd.Flags().String("topic", "", "Topic (default: General)")
	generateCmd.Flags().String("format", string(qgen.FormatMixed), "Paper format: MCQ, ShortAnswer, Extended, or Mixed")
	generateCmd.Flags().Int("count", 10, "Number of questions")
	generateCmd.Flags().Bool("answers", true, "Include model answers")
	generateCmd.Flags().Bool("offline", false, "Skip the LLM and use the deterministic generator only")

	generateCmd.MarkFlagRequired("grade")
	generateCmd.MarkFlagRequired("subject")
}
