// Package directive parses the bracketed machine-readable instructions the
// concierge model embeds in its replies and separates them from the prose
// shown to the traveller.
package directive

// Action is a redirect instruction emitted by the model, e.g.
// [ACTION: Hotel, Grand Hyatt Kuala Lumpur]. Type is free text; the client
// maps it onto its known card categories and falls back to a generic card
// for anything it does not recognise.
type Action struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Result is the outcome of one extraction pass over a model reply.
// ImageQueries holds every SEARCH_IMAGE query in document order, followed by
// every legacy [IMAGE: RETRIEVE: ...] query in document order. Duplicates
// are kept. LegacyImageRefs collects bare [IMAGE: ...] payloads that carry
// no retrievable query and act only as a presence signal.
type Result struct {
	CleanedText     string   `json:"cleaned_text"`
	ImageQueries    []string `json:"image_queries"`
	Actions         []Action `json:"actions"`
	LegacyImageRefs []string `json:"-"`
}

// ContainsImages reports whether the reply referenced any image, either via
// a retrievable query or a bare legacy marker.
func (r Result) ContainsImages() bool {
	return len(r.ImageQueries) > 0 || len(r.LegacyImageRefs) > 0
}

// ContainsActions reports whether the reply carried any action directive.
func (r Result) ContainsActions() bool {
	return len(r.Actions) > 0
}
