// Package normalize turns raw model output into speakable plain text.
//
// Models are asked for plain text but routinely return markdown headings,
// emphasis markers, and bracketed stage directions ("[host]", "[music]")
// anyway. Normalize strips all of that deterministically so the result can
// go straight to a TTS engine.
package normalize

import (
	"regexp"
	"strings"
)

var (
	// Bracketed stage directions: [host], [music], [sound effect].
	// Matches innermost pairs only; Normalize applies it repeatedly so
	// nested directions vanish too.
	stagePattern = regexp.MustCompile(`\[[^\[\]]*\]`)

	// Markdown heading markers at line start.
	headingPattern = regexp.MustCompile(`(?m)^[ \t]{0,3}#{1,6}[ \t]*`)

	// Horizontal rules: lines of ---, ***, ___.
	rulePattern = regexp.MustCompile(`(?m)^[ \t]*(?:[-*_][ \t]*){3,}$`)

	// Bullet list markers at line start.
	bulletPattern = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)

	// Underscore emphasis pairs; the inner text is kept.
	underscorePattern = regexp.MustCompile(`_([^_\n]+)_`)

	spacePattern     = regexp.MustCompile(`[ \t]+`)
	lineEdgePattern  = regexp.MustCompile(`(?m)[ \t]+$|^[ \t]+`)
	blankRunPattern  = regexp.MustCompile(`\n{3,}`)
	emphasisReplacer = strings.NewReplacer("**", "", "__", "", "*", "", "`", "")
)

// Normalize cleans raw text for speech. It is pure, deterministic, and
// idempotent; it never fails. An empty result for non-empty input is
// reported by the return value alone, and the caller decides whether that
// is a validation error.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	text := strings.ReplaceAll(raw, "\r\n", "\n")

	// Innermost-out to a fixed point: removing "[sound]" from
	// "[[sound] of rain]" reconstitutes a bracket pair that a single pass
	// would leave behind.
	for {
		next := stagePattern.ReplaceAllString(text, "")
		if next == text {
			break
		}
		text = next
	}
	text = rulePattern.ReplaceAllString(text, "")
	text = headingPattern.ReplaceAllString(text, "")
	text = bulletPattern.ReplaceAllString(text, "")
	text = emphasisReplacer.Replace(text)
	text = underscorePattern.ReplaceAllString(text, "$1")

	// Collapse what the removals left behind: runs of spaces, trailing and
	// leading space on lines, and runs of blank lines.
	text = spacePattern.ReplaceAllString(text, " ")
	text = lineEdgePattern.ReplaceAllString(text, "")
	text = blankRunPattern.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
