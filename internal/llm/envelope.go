package llm

import (
	"strings"

	"github.com/tidwall/gjson"
)

// EnvelopeKind tags one of the known response body shapes returned by
// text generation backends.
type EnvelopeKind string

const (
	// [{"generated_text": "..."}] or {"generated_text": "..."}
	EnvelopeGeneratedText EnvelopeKind = "generated_text_array"
	// {"text": "..."}
	EnvelopeText EnvelopeKind = "text"
	// {"outputText": "..."}
	EnvelopeOutputText EnvelopeKind = "output_text"
	// {"output": ["..." | {"content": ["..." | {"text": "..."}]}]}
	EnvelopeOutputContent EnvelopeKind = "output_content"
	// {"candidates": [{"content": "..." | {"parts": [{"text": "..."}]}}]}
	EnvelopeCandidateContent EnvelopeKind = "candidate_content"
	// {"data": [{"text": "..."}]}
	EnvelopeDataText EnvelopeKind = "data_text"
	// a bare JSON string, or a body that is not JSON at all
	EnvelopePlainString EnvelopeKind = "plain_string"
	// anything else; unwrapped as the whole body
	EnvelopeRaw EnvelopeKind = "raw"
)

// Envelope is a classified backend response body.
type Envelope struct {
	Kind EnvelopeKind
	body []byte
}

type envelopeVariant struct {
	kind   EnvelopeKind
	match  func(doc gjson.Result) bool
	unwrap func(doc gjson.Result) string
}

// envelopeVariants is checked in order; the first match wins.
var envelopeVariants = []envelopeVariant{
	{EnvelopeGeneratedText, matchGeneratedText, unwrapGeneratedText},
	{EnvelopeText, isStringAt("text"), stringAt("text")},
	{EnvelopeOutputText, isStringAt("outputText"), stringAt("outputText")},
	{EnvelopeOutputContent, matchOutputContent, unwrapOutputContent},
	{EnvelopeCandidateContent, matchCandidateContent, unwrapCandidateContent},
	{EnvelopeDataText, isStringAt("data.0.text"), stringAt("data.0.text")},
}

// DetectEnvelope classifies a response body. Bodies that match no known
// shape are tagged EnvelopeRaw.
func DetectEnvelope(body []byte) Envelope {
	if !gjson.ValidBytes(body) {
		return Envelope{Kind: EnvelopePlainString, body: body}
	}
	doc := gjson.ParseBytes(body)
	if doc.Type == gjson.String {
		return Envelope{Kind: EnvelopePlainString, body: body}
	}
	for _, v := range envelopeVariants {
		if v.match(doc) {
			return Envelope{Kind: v.kind, body: body}
		}
	}
	return Envelope{Kind: EnvelopeRaw, body: body}
}

// Text unwraps the generated text according to the envelope kind.
func (e Envelope) Text() string {
	switch e.Kind {
	case EnvelopePlainString:
		return unwrapPlainString(e.body)
	case EnvelopeRaw, "":
		return strings.TrimSpace(string(e.body))
	}
	doc := gjson.ParseBytes(e.body)
	for _, v := range envelopeVariants {
		if v.kind == e.Kind {
			return strings.TrimSpace(v.unwrap(doc))
		}
	}
	return strings.TrimSpace(string(e.body))
}

// UnwrapText is shorthand for DetectEnvelope(body).Text().
func UnwrapText(body []byte) string {
	return DetectEnvelope(body).Text()
}

func unwrapPlainString(body []byte) string {
	if gjson.ValidBytes(body) {
		doc := gjson.ParseBytes(body)
		if doc.Type == gjson.String {
			return strings.TrimSpace(doc.String())
		}
	}
	return strings.TrimSpace(string(body))
}

func isStringAt(path string) func(gjson.Result) bool {
	return func(doc gjson.Result) bool {
		return doc.IsObject() && doc.Get(path).Type == gjson.String
	}
}

func stringAt(path string) func(gjson.Result) string {
	return func(doc gjson.Result) string {
		return doc.Get(path).String()
	}
}

func matchGeneratedText(doc gjson.Result) bool {
	if doc.IsArray() {
		return doc.Get("0.generated_text").Type == gjson.String
	}
	return doc.IsObject() && doc.Get("generated_text").Type == gjson.String
}

func unwrapGeneratedText(doc gjson.Result) string {
	if doc.IsArray() {
		return doc.Get("0.generated_text").String()
	}
	return doc.Get("generated_text").String()
}

func matchOutputContent(doc gjson.Result) bool {
	return doc.IsObject() && doc.Get("output").IsArray() && unwrapOutputContent(doc) != ""
}

func unwrapOutputContent(doc gjson.Result) string {
	for _, o := range doc.Get("output").Array() {
		if o.Type == gjson.String {
			return o.String()
		}
		for _, c := range o.Get("content").Array() {
			if c.Type == gjson.String {
				return c.String()
			}
			if t := c.Get("text"); t.Type == gjson.String {
				return t.String()
			}
		}
	}
	return ""
}

func matchCandidateContent(doc gjson.Result) bool {
	return doc.IsObject() && unwrapCandidateContent(doc) != ""
}

func unwrapCandidateContent(doc gjson.Result) string {
	content := doc.Get("candidates.0.content")
	if content.Type == gjson.String {
		return content.String()
	}
	var parts []string
	for _, p := range content.Get("parts").Array() {
		if t := p.Get("text"); t.Type == gjson.String {
			parts = append(parts, t.String())
		}
	}
	return strings.Join(parts, "")
}
