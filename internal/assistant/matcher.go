package assistant

import (
	"errors"
	"strings"
)

// ErrBlankMessage rejects empty or whitespace-only input before any
// matching happens.
var ErrBlankMessage = errors.New("assistant: message must not be blank")

// Response is the responder's answer to one message.
type Response struct {
	Reply    string `json:"reply"`
	Category string `json:"category"`
	Matched  bool   `json:"matched"`
}

// Respond scans the knowledge base in table order and returns the
// first entry whose pattern set matches a substring of the message,
// case-insensitively. Pure: identical input, identical output.
func Respond(message string) (*Response, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrBlankMessage
	}

	lower := strings.ToLower(message)
	for _, e := range kb {
		for _, p := range e.Patterns {
			if strings.Contains(lower, p) {
				return &Response{Reply: e.Reply, Category: e.Category, Matched: true}, nil
			}
		}
	}
	return &Response{Reply: fallbackReply(), Category: fallbackCategory, Matched: false}, nil
}

// fallbackReply lists every topic the table covers.
func fallbackReply() string {
	var b strings.Builder
	b.WriteString("I'm not sure about that one. I can help with these topics:\n\n")
	for _, c := range Categories() {
		b.WriteString("- ")
		b.WriteString(c)
		b.WriteString("\n")
	}
	b.WriteString("\nTry asking about one of them, e.g. \"how do I spot phishing?\"")
	return b.String()
}
