// Package phase labels how far along the scripted concierge journey a
// conversation is. The label drives client-side hints only; it never alters
// what is sent to the model.
package phase

import (
	"strings"

	"github.com/cloudwego/eino/schema"
)

// Phase is the coarse position of a conversation in the four-stage journey.
type Phase string

const (
	Greeting      Phase = "greeting"
	Scoping       Phase = "scoping"
	Ideation      Phase = "ideation"
	Consolidation Phase = "consolidation"
)

// recentWindow is how many trailing turns are scanned for scoping keywords.
const recentWindow = 4

// consolidationTriggers are matched against the current message only.
var consolidationTriggers = []string{
	"this looks perfect", "let's do this", "book it", "save this",
	"i love it", "sounds great", "perfect plan", "let's go with this",
}

// scopingKeywords are matched against the trailing window of the history.
var scopingKeywords = []string{
	"budget", "how long", "duration", "travelers", "preference",
	"what kind", "looking for", "interested in",
}

// Classify derives the conversation phase from the prior turns and the
// current user message (not yet part of history). Rules apply in strict
// priority order and the first match wins: short history is always a
// greeting, a consolidation trigger in the current message beats any scoping
// keyword in the history, and ideation is the default. The function is pure
// and total: every input maps to exactly one phase.
func Classify(history []*schema.Message, currentMessage string) Phase {
	if len(history) <= 2 {
		return Greeting
	}

	current := strings.ToLower(currentMessage)
	for _, trigger := range consolidationTriggers {
		if strings.Contains(current, trigger) {
			return Consolidation
		}
	}

	recent := history
	if len(recent) > recentWindow {
		recent = recent[len(recent)-recentWindow:]
	}
	var sb strings.Builder
	for _, msg := range recent {
		if msg == nil {
			continue
		}
		sb.WriteString(msg.Content)
		sb.WriteString(" ")
	}
	recentText := strings.ToLower(sb.String())

	for _, keyword := range scopingKeywords {
		if strings.Contains(recentText, keyword) {
			return Scoping
		}
	}

	return Ideation
}
