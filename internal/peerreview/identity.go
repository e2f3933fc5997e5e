package peerreview

import "strings"

// ParseIdentity extracts the email from a team member cell written as
// "email - name" or "name - email". The first token is tried, then the third,
// then the last so that multi-word names still resolve.
func ParseIdentity(cell string) (string, bool) {
	tokens := strings.Fields(cell)
	if len(tokens) == 0 {
		return "", false
	}

	candidates := []int{0, 2, len(tokens) - 1}
	for _, i := range candidates {
		if i < len(tokens) && strings.Contains(tokens[i], "@") {
			return tokens[i], true
		}
	}
	return "", false
}
