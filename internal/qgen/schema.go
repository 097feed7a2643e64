package qgen

import "github.com/tutorleap/qgen/internal/llm"

// PaperSchema defines the JSON schema for question generation responses.
var PaperSchema = &llm.Schema{
	Name:        "question-paper",
	Description: "A list of exam questions with answers and metadata",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The full question text shown to the student",
						},
						"type": map[string]any{
							"type":        "string",
							"enum":        []any{"multiple_choice", "short_answer", "extended"},
							"description": "How the student answers",
						},
						"options": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "string",
							},
							"description": "Exactly 4 options for multiple_choice. Empty array otherwise.",
						},
						"answer": map[string]any{
							"type":        "string",
							"description": "The correct answer. For multiple choice: the text of the correct option verbatim.",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why the answer is correct, suitable for the target grade",
						},
						"difficulty": map[string]any{
							"type":        "string",
							"enum":        []any{"Easy", "Medium", "Hard"},
							"description": "Declared difficulty of the question",
						},
						"topic": map[string]any{
							"type":        "string",
							"description": "The curriculum topic this question covers",
						},
						"marks": map[string]any{
							"type":        "integer",
							"minimum":     1,
							"description": "Marks awarded for a correct answer",
						},
					},
					"required":             []any{"question", "type", "answer", "difficulty", "topic", "marks"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}
