package dita

import "strings"

// SplitTokens splits a whitespace-separated token attribute (@chunk) into
// its individual tokens. An empty or absent value yields nil.
func SplitTokens(value string) []string {
	return strings.Fields(value)
}

// JoinTokens is the inverse of SplitTokens.
func JoinTokens(tokens []string) string {
	return strings.Join(tokens, " ")
}

// HasToken reports whether the token set contains the given token exactly.
func HasToken(tokens []string, token string) bool {
	for _, t := range tokens {
		if t == token {
			return true
		}
	}
	return false
}

// TokenByPrefix returns the first token carrying the given category prefix
// ("by-", "select-"), or def when the set is empty or carries none.
// Unknown tokens are skipped, which keeps the attribute forward-compatible.
func TokenByPrefix(tokens []string, prefix, def string) string {
	if len(tokens) == 0 {
		return def
	}
	for _, t := range tokens {
		if strings.HasPrefix(t, prefix) {
			return t
		}
	}
	return def
}
