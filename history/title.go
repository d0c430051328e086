package history

// TitleFallback is used when a session has no user message yet.
const TitleFallback = "New Chat"

// TitleMaxLen is the hard cut applied to derived titles, in characters.
const TitleMaxLen = 30

// DeriveTitle returns the content of the first user message, cut to
// TitleMaxLen characters. There is no ellipsis and no word-boundary trimming.
// An empty first user message falls back to TitleFallback.
func DeriveTitle(messages []Message) string {
	title := TitleFallback
	for _, msg := range messages {
		if msg.Role != RoleUser {
			continue
		}
		if msg.Content != "" {
			title = msg.Content
		}
		break
	}

	runes := []rune(title)
	if len(runes) > TitleMaxLen {
		return string(runes[:TitleMaxLen])
	}
	return title
}
