package directive

import (
	"regexp"
	"strings"

	logx "github.com/malaysia-ai/concierge-server/pkg/logger"
)

// basic safety limit to avoid pathological inputs
const maxContentLen = 128 * 1024 // 128KB

// The directive grammar is a fixed textual convention, not a strict
// protocol: anything that does not match is left in the prose untouched.
// Quoted queries accept either quote style and cannot contain quotes.
var (
	searchImageRe   = regexp.MustCompile(`\[SEARCH_IMAGE:\s*["']([^"']+)["']\s*\]`)
	imageRetrieveRe = regexp.MustCompile(`\[IMAGE:\s*RETRIEVE:\s*["']([^"']+)["']\s*\]`)
	bareImageRe     = regexp.MustCompile(`\[IMAGE:\s*([^\]]+)\]`)
	actionRe        = regexp.MustCompile(`\[ACTION:\s*([^,\]]+),\s*([^\]]+)\]`)

	spaceRunRe     = regexp.MustCompile(`[ \t]+`)
	blankLineRunRe = regexp.MustCompile(`\n\s*\n\s*\n+`)
)

// Extract scans a completed model reply for image-search and action
// directives. It is total: malformed directives stay in CleanedText verbatim
// and no error is ever returned. Callers running it over streamed output
// must accumulate the full text first, since directives are not
// chunk-aligned.
func Extract(content string) Result {
	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "directive_extractor").
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
	}

	res := Result{
		ImageQueries: []string{},
		Actions:      []Action{},
	}

	// SEARCH_IMAGE queries first, legacy RETRIEVE queries appended after,
	// each group in document order.
	for _, m := range searchImageRe.FindAllStringSubmatch(content, -1) {
		res.ImageQueries = append(res.ImageQueries, m[1])
	}
	for _, m := range imageRetrieveRe.FindAllStringSubmatch(content, -1) {
		res.ImageQueries = append(res.ImageQueries, m[1])
	}

	// Bare [IMAGE: ...] markers are a legacy presence signal only. The
	// pattern also matches the RETRIEVE form, so those captures are
	// filtered back out.
	for _, m := range bareImageRe.FindAllStringSubmatch(content, -1) {
		payload := m[1]
		if strings.HasPrefix(payload, "RETRIEVE:") || strings.HasPrefix(payload, "SEARCH_IMAGE:") {
			continue
		}
		res.LegacyImageRefs = append(res.LegacyImageRefs, payload)
	}

	for _, m := range actionRe.FindAllStringSubmatch(content, -1) {
		res.Actions = append(res.Actions, Action{
			Type: strings.TrimSpace(m[1]),
			Name: strings.TrimSpace(m[2]),
		})
	}

	cleaned := searchImageRe.ReplaceAllString(content, "")
	cleaned = imageRetrieveRe.ReplaceAllString(cleaned, "")
	cleaned = bareImageRe.ReplaceAllString(cleaned, "")
	cleaned = actionRe.ReplaceAllString(cleaned, "")
	res.CleanedText = Normalize(cleaned)

	return res
}

// Normalize collapses runs of horizontal whitespace to a single space and
// runs of blank lines to at most one, then trims the result. Extraction
// applies it after directive spans are removed, so for directive-free text
// Extract(text).CleanedText == Normalize(text).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	cleaned := spaceRunRe.ReplaceAllString(text, " ")
	cleaned = blankLineRunRe.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}
