// Package quiz coerces model-generated quizzes into a fixed shape and
// scores submitted answers.
package quiz

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// QuestionCount is the number of questions every quiz has.
	QuestionCount = 3
	// OptionCount is the number of options every question has.
	OptionCount = 4
	// PassPercent is the minimum score that counts as a pass.
	PassPercent = 70
)

// Question is one multiple-choice question.
type Question struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation,omitempty"`
}

var (
	textKeys    = []string{"question", "q", "prompt", "text", "title"}
	optionKeys  = []string{"options", "choices", "answers"}
	indexKeys   = []string{"correctIndex", "correct_index", "correctAnswerIndex", "answerIndex", "correct"}
	answerKeys  = []string{"answer", "correctAnswer", "correct_answer", "correct"}
	wrapperKeys = []string{"questions", "quiz", "items"}

	labelRe = regexp.MustCompile(`^\s*\(?[A-Da-d][.):]\s*`)
)

// Enforce returns exactly QuestionCount questions with OptionCount options
// each, whatever raw holds. Invalid or missing entries become fillers.
func Enforce(raw any) []Question {
	return EnforceFor(raw, "")
}

// EnforceFor is Enforce with the lesson topic used in filler questions.
func EnforceFor(raw any, topic string) []Question {
	items := asList(raw)
	if len(items) > QuestionCount {
		items = items[:QuestionCount]
	}

	out := make([]Question, 0, QuestionCount)
	for _, item := range items {
		if q, ok := coerceQuestion(item); ok {
			out = append(out, q)
		}
	}

	fillers := Fillers(topic)
	for i := 0; len(out) < QuestionCount; i++ {
		out = append(out, fillers[i%len(fillers)])
	}
	return out
}

// asList unwraps raw into a slice of entries.
func asList(raw any) []any {
	switch v := raw.(type) {
	case nil:
		return nil
	case []any:
		return v
	case map[string]any:
		for _, k := range wrapperKeys {
			if inner, ok := v[k]; ok {
				return asList(inner)
			}
		}
		return nil
	case string:
		return nil
	}

	// Typed values ([]Question, []map[string]any, ...) go through JSON.
	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil
	}
	if _, ok := generic.([]any); !ok {
		if _, ok := generic.(map[string]any); !ok {
			return nil
		}
	}
	return asList(generic)
}

func coerceQuestion(item any) (Question, bool) {
	var obj map[string]any
	switch v := item.(type) {
	case string:
		obj = map[string]any{"question": v}
	case map[string]any:
		obj = v
	default:
		return Question{}, false
	}

	text := firstString(obj, textKeys)
	if text == "" {
		return Question{}, false
	}

	options := cleanOptions(firstPresent(obj, optionKeys))
	answer := stripLabel(firstString(obj, answerKeys))

	correct := ""
	if idx, ok := firstIndex(obj, len(options)); ok {
		correct = options[idx]
	} else if answer != "" {
		if idx, ok := letterIndex(answer); ok && idx < len(options) {
			correct = options[idx]
		} else {
			correct = answer
		}
	} else if len(options) > 0 {
		correct = options[0]
	}

	options = placeCorrect(options, correct)
	options = pad(options, correct)

	q := Question{
		Question:     text,
		Options:      options,
		CorrectIndex: indexOf(options, correct),
		Explanation:  firstString(obj, []string{"explanation", "rationale"}),
	}
	if q.CorrectIndex < 0 {
		q.CorrectIndex = 0
	}
	return q, true
}

// cleanOptions accepts an array of strings or {text|label|value} objects,
// or a letter-keyed map, and returns de-duplicated, label-stripped text.
func cleanOptions(raw any) []string {
	var values []any
	switch v := raw.(type) {
	case []any:
		values = v
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			values = append(values, v[k])
		}
	default:
		return nil
	}

	var out []string
	for _, val := range values {
		var s string
		switch t := val.(type) {
		case string:
			s = t
		case map[string]any:
			s = firstString(t, []string{"text", "label", "value"})
		case float64, bool:
			s = fmt.Sprint(t)
		}
		s = stripLabel(s)
		if s == "" || indexOf(out, s) >= 0 {
			continue
		}
		out = append(out, s)
	}
	return out
}

// placeCorrect makes sure correct is among the first OptionCount options.
func placeCorrect(options []string, correct string) []string {
	if correct == "" {
		return truncate(options)
	}
	idx := indexOf(options, correct)
	switch {
	case idx < 0:
		options = append([]string{correct}, options...)
	case idx >= OptionCount:
		options = append([]string{}, options...)
		options[OptionCount-1], options[idx] = options[idx], options[OptionCount-1]
	}
	return truncate(options)
}

func truncate(options []string) []string {
	if len(options) > OptionCount {
		return options[:OptionCount]
	}
	return options
}

// pad fills options up to OptionCount with distractors derived from the answer.
func pad(options []string, answer string) []string {
	if len(options) >= OptionCount {
		return options
	}
	var candidates []string
	if answer != "" {
		candidates = append(candidates, "Not "+lowerFirst(answer))
	}
	candidates = append(candidates, "None of the above", "All of the above", "I'm not sure", "It depends")

	out := append([]string{}, options...)
	for _, c := range candidates {
		if len(out) == OptionCount {
			break
		}
		if indexOf(out, c) < 0 {
			out = append(out, c)
		}
	}
	for n := 1; len(out) < OptionCount; n++ {
		if c := "Option " + strconv.Itoa(n); indexOf(out, c) < 0 {
			out = append(out, c)
		}
	}
	return out
}

func firstPresent(obj map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(obj map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// firstIndex returns the first numeric correct-index field within [0, n).
func firstIndex(obj map[string]any, n int) (int, bool) {
	for _, k := range indexKeys {
		var idx int
		switch v := obj[k].(type) {
		case float64:
			if v != math.Trunc(v) {
				continue
			}
			idx = int(v)
		case int:
			idx = v
		case json.Number:
			i, err := v.Int64()
			if err != nil {
				continue
			}
			idx = int(i)
		default:
			continue
		}
		if idx >= 0 && idx < n {
			return idx, true
		}
	}
	return 0, false
}

func letterIndex(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 1 {
		return 0, false
	}
	c := s[0] | 0x20
	if c < 'a' || c > 'd' {
		return 0, false
	}
	return int(c - 'a'), true
}

func stripLabel(s string) string {
	return strings.TrimSpace(labelRe.ReplaceAllString(strings.TrimSpace(s), ""))
}

func indexOf(options []string, s string) int {
	for i, o := range options {
		if strings.EqualFold(strings.TrimSpace(o), strings.TrimSpace(s)) {
			return i
		}
	}
	return -1
}

func lowerFirst(s string) string {
	first, n := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return s
	}
	// Keep acronyms like "BMI" intact.
	if second, _ := utf8.DecodeRuneInString(s[n:]); unicode.IsUpper(first) && unicode.IsUpper(second) {
		return s
	}
	return string(unicode.ToLower(first)) + s[n:]
}
