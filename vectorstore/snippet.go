package vectorstore

// SnippetMaxChars bounds the display snippet stored in a point's
// payload. The snippet is truncated independently of the embedded text.
const SnippetMaxChars = 300

// Snippet returns the display form of message content: at most
// SnippetMaxChars characters, ellipsis-suffixed when truncated.
func Snippet(content string) string {
	runes := []rune(content)
	if len(runes) <= SnippetMaxChars {
		return content
	}
	return string(runes[:SnippetMaxChars]) + "..."
}
