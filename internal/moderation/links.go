package moderation

import "regexp"

// Word characters for boundary purposes are Unicode letters, digits and underscore.
const (
	linkBoundaryLeft  = `(?:^|[^\p{L}\p{N}_])`
	linkBoundaryRight = `(?:$|[^\p{L}\p{N}_])`
)

var (
	linkPattern = regexp.MustCompile(`(?i)` + linkBoundaryLeft + `(` +
		`(?:https?://|www\.)\S+` +
		`|t\.me/\S+` +
		`|telegram\.me/\S+` +
		`|(?:\S+\.)+(?:com|in|net|org|io|me|app|xyz|co)` + linkBoundaryRight + `\S*` +
		`)`)

	codeBlockPattern = regexp.MustCompile("(?s)```.*?```")
)

// StripCodeBlocks removes fenced ``` spans, including multi-line ones.
func StripCodeBlocks(text string) string {
	return codeBlockPattern.ReplaceAllString(text, "")
}

// ContainsLink reports whether text outside code blocks carries a link.
func ContainsLink(text string) bool {
	return linkPattern.MatchString(StripCodeBlocks(text))
}
