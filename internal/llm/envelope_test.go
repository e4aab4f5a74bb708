package llm

import "testing"

func TestDetectEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind EnvelopeKind
		text string
	}{
		{"generated text array", `[{"generated_text":" hello "}]`, EnvelopeGeneratedText, "hello"},
		{"generated text object", `{"generated_text":"hi"}`, EnvelopeGeneratedText, "hi"},
		{"text field", `{"text":"from server"}`, EnvelopeText, "from server"},
		{"output text", `{"outputText":"ok"}`, EnvelopeOutputText, "ok"},
		{"output string", `{"output":["first"]}`, EnvelopeOutputContent, "first"},
		{"output content text", `{"output":[{"content":[{"text":"nested"}]}]}`, EnvelopeOutputContent, "nested"},
		{"candidate string", `{"candidates":[{"content":"cand"}]}`, EnvelopeCandidateContent, "cand"},
		{"candidate parts", `{"candidates":[{"content":{"parts":[{"text":"a"},{"text":"b"}]}}]}`, EnvelopeCandidateContent, "ab"},
		{"data text", `{"data":[{"text":"d"}]}`, EnvelopeDataText, "d"},
		{"json string", `"just a string"`, EnvelopePlainString, "just a string"},
		{"not json", `plain words`, EnvelopePlainString, "plain words"},
		{"unknown object", `{"foo":1}`, EnvelopeRaw, `{"foo":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := DetectEnvelope([]byte(tt.body))
			if env.Kind != tt.kind {
				t.Fatalf("kind = %q, want %q", env.Kind, tt.kind)
			}
			if got := env.Text(); got != tt.text {
				t.Fatalf("text = %q, want %q", got, tt.text)
			}
		})
	}
}

func TestDetectEnvelope_EmptyOutputFallsThrough(t *testing.T) {
	env := DetectEnvelope([]byte(`{"output":[]}`))
	if env.Kind != EnvelopeRaw {
		t.Fatalf("kind = %q, want raw", env.Kind)
	}
}
