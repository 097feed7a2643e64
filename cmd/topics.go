package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tutorleap/qgen/internal/taxonomy"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Print the topic pool for a subject and grade",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		grade, _ := cmd.Flags().GetString("grade")

		band := taxonomy.GradeBand(grade)

		if subject == "" {
			fmt.Printf("Boards: %s\n", strings.Join(taxonomy.Boards(), ", "))
			fmt.Printf("Subjects for grades %s: %s\n", band, strings.Join(taxonomy.Subjects(band), ", "))
			return nil
		}

		fmt.Printf("Topics for %s, grades %s:\n", subject, band)
		for _, t := range taxonomy.ResolveTopics(subject, band) {
			fmt.Printf("  %s\n", t)
		}
		return nil
	},
}

func init() {
	topicsCmd.Flags().String("subject", "", "Subject (omit to list boards and subjects)")
	topicsCmd.Flags().String("grade", "10", "Grade used to pick the band")
}
