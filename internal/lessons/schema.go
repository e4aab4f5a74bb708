package lessons

import "github.com/abhisek/nibble/internal/llm"

var quizItemSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"question": map[string]any{"type": "string"},
		"options": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "string"},
			"minItems": 4,
			"maxItems": 4,
		},
		"correctIndex": map[string]any{
			"type":    "integer",
			"minimum": 0,
			"maximum": 3,
		},
		"explanation": map[string]any{"type": "string"},
	},
	"required": []any{"question", "options", "correctIndex"},
}

var quizArraySchema = map[string]any{
	"type":     "array",
	"items":    quizItemSchema,
	"minItems": 3,
	"maxItems": 3,
}

// LessonSchema defines the JSON schema for lesson content.
var LessonSchema = &llm.Schema{
	Name:        "lesson-content",
	Description: "A short food-literacy lesson with sections, a 3-question quiz and notes",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Lesson title",
			},
			"overview": map[string]any{
				"type":        "string",
				"description": "2-3 sentence introduction",
			},
			"sections": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"heading": map[string]any{"type": "string"},
						"body":    map[string]any{"type": "string"},
					},
					"required": []any{"heading", "body"},
				},
				"minItems": 1,
			},
			"quiz": quizArraySchema,
			"notes": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"title", "overview", "sections", "quiz", "notes"},
	},
}

// QuizSchema defines the JSON schema for quiz regeneration.
var QuizSchema = &llm.Schema{
	Name:        "lesson-quiz",
	Description: "Exactly three multiple-choice questions with four options each",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"quiz": quizArraySchema,
		},
		"required": []any{"quiz"},
	},
}
