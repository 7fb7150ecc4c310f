package phase

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

func turns(contents ...string) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(contents))
	for i, c := range contents {
		if i%2 == 0 {
			msgs = append(msgs, schema.UserMessage(c))
		} else {
			msgs = append(msgs, schema.AssistantMessage(c, nil))
		}
	}
	return msgs
}

func TestClassifyEmptyHistoryIsGreeting(t *testing.T) {
	assert.Equal(t, Greeting, Classify(nil, "hello"))
	assert.Equal(t, Greeting, Classify([]*schema.Message{}, "book it now"))
}

func TestClassifyShortHistoryIsGreeting(t *testing.T) {
	history := turns("hi", "Selamat Datang!")
	// A consolidation trigger cannot fire while the history is short.
	assert.Equal(t, Greeting, Classify(history, "this looks perfect"))
}

func TestClassifyHistoryBoundary(t *testing.T) {
	two := turns("hi", "hello")
	three := turns("hi", "hello", "tell me about penang")

	assert.Equal(t, Greeting, Classify(two, "anything"))
	assert.Equal(t, Ideation, Classify(three, "anything"))
}

func TestClassifyConsolidationTrigger(t *testing.T) {
	history := turns("hi", "hello", "show me places", "here are some ideas")

	assert.Equal(t, Consolidation, Classify(history, "This looks PERFECT, thanks"))
	assert.Equal(t, Consolidation, Classify(history, "ok let's do this"))
	assert.Equal(t, Consolidation, Classify(history, "please book it"))
}

func TestClassifyConsolidationBeatsScoping(t *testing.T) {
	history := turns("hi", "hello", "what is your budget?", "around 2000 ringgit")

	assert.Equal(t, Consolidation, Classify(history, "sounds great, save this"))
}

func TestClassifyScopingKeywordInRecentWindow(t *testing.T) {
	history := turns("hi", "hello", "what kind of trip?", "a beach holiday")

	assert.Equal(t, Scoping, Classify(history, "somewhere quiet"))
}

func TestClassifyScopingIsCaseInsensitive(t *testing.T) {
	history := turns("hi", "hello", "WHAT IS YOUR BUDGET?", "flexible")

	assert.Equal(t, Scoping, Classify(history, "not sure yet"))
}

func TestClassifyScopingKeywordOutsideWindowIgnored(t *testing.T) {
	// The budget question is five turns back, outside the scanned window.
	history := turns(
		"what is my budget you ask",
		"noted",
		"great",
		"more ideas please",
		"island hopping",
		"sure, here are islands",
	)

	assert.Equal(t, Ideation, Classify(history, "tell me more"))
}

func TestClassifyDefaultsToIdeation(t *testing.T) {
	history := turns("hi", "hello", "tell me about KL", "KL is great")

	assert.Equal(t, Ideation, Classify(history, "what else is there"))
}

func TestClassifyNilEntriesIgnored(t *testing.T) {
	history := []*schema.Message{
		schema.UserMessage("hi"),
		nil,
		schema.AssistantMessage("hello", nil),
		schema.UserMessage("what kind of food do you like?"),
	}

	assert.Equal(t, Scoping, Classify(history, "spicy food"))
}
