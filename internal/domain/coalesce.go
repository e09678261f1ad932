package domain

import "strings"

// CoalesceTrimmed returns the first value that is not empty or whitespace-only.
func CoalesceTrimmed(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), b)
}
