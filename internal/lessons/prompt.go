package lessons

import (
	"fmt"
	"strings"
)

const lessonSystemPrompt = `You are Nibble, a friendly food-literacy coach. You write short, practical lessons about nutrition, food labels, food safety and healthy eating on a budget for adults with no background in nutrition.`

func buildLessonUserMessage(hint LessonHint, opts Options) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Lesson: %s\n", hint.Title)
	if hint.Subtitle != "" {
		fmt.Fprintf(&b, "Focus: %s\n", hint.Subtitle)
	}
	if opts.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s\n", opts.Tone)
	}
	if opts.Difficulty != "" {
		fmt.Fprintf(&b, "Difficulty: %s\n", opts.Difficulty)
	}

	b.WriteString(`
Instructions:
Respond with a single JSON object and nothing else. No markdown, no code fences.
Use exactly these keys:
- "title": the lesson title.
- "overview": 2-3 sentences introducing the topic.
- "sections": an array of 2-4 objects with "heading" and "body". Each body is 2-4 plain sentences.
- "quiz": an array of exactly 3 objects with "question", "options" (exactly 4 strings) and "correctIndex" (0-3).
- "notes": an array of 1-3 short practical takeaways.
Keep the advice general and evidence based. Do not give medical advice.`)

	return b.String()
}

const quizSystemPrompt = `You are Nibble, a friendly food-literacy coach. You write short multiple-choice quizzes that check understanding of a lesson.`

func buildQuizUserMessage(content LessonContent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Lesson: %s\n", content.Title)
	if content.Overview != "" {
		fmt.Fprintf(&b, "Overview: %s\n", content.Overview)
	}
	for _, s := range content.Sections {
		fmt.Fprintf(&b, "- %s: %s\n", s.Heading, s.Body)
	}
	if len(content.Quiz) > 0 {
		b.WriteString("\nAvoid repeating these questions:\n")
		for _, q := range content.Quiz {
			fmt.Fprintf(&b, "- %s\n", q.Question)
		}
	}

	b.WriteString(`
Instructions:
Respond with a single JSON object and nothing else: {"quiz": [...]}.
The quiz has exactly 3 questions. Each has "question", "options" (exactly 4 strings) and "correctIndex" (0-3).
Vary which option is correct.`)

	return b.String()
}
