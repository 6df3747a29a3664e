package dialogue

import "strings"

// ExitTokens are the commands that abort a conversation. Matching is case-insensitive.
var ExitTokens = []string{"salir", "exit", "quit"}

// IsExitCommand reports whether text is an explicit exit command.
func IsExitCommand(text string) bool {
	t := strings.TrimSpace(text)
	for _, tok := range ExitTokens {
		if strings.EqualFold(t, tok) {
			return true
		}
	}
	return false
}
