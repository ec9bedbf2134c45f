package utils

import (
	"strings"
)

// CompactSQL collapses whitespace runs so multi-line queries log on one line.
func CompactSQL(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func StrEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}
