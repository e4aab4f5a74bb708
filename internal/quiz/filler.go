package quiz

import "strings"

// Fillers returns the generic questions used to complete a short quiz.
func Fillers(topic string) []Question {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = "this lesson"
	}
	return []Question{
		{
			Question: "Which habit best applies what you learned in " + topic + "?",
			Options: []string{
				"Checking the information before choosing a food",
				"Choosing by packaging colour",
				"Buying whatever is on sale",
				"Ignoring labels entirely",
			},
			CorrectIndex: 0,
		},
		{
			Question: "What is a good first step when you are unsure about something from " + topic + "?",
			Options: []string{
				"Look it up in a reliable source",
				"Guess and move on",
				"Trust the front-of-pack claim",
				"Avoid the food forever",
			},
			CorrectIndex: 0,
		},
		{
			Question: "Why does " + topic + " matter for everyday eating?",
			Options: []string{
				"It helps you make informed food choices",
				"It has no effect on health",
				"It only matters to chefs",
				"It only applies to restaurant food",
			},
			CorrectIndex: 0,
		},
	}
}
