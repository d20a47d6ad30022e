package utils

import (
	"strings"
	"unicode/utf8"
)

// Preview shortens code to its first non-empty line for table output.
func Preview(code string, max int) string {
	line, rest, _ := strings.Cut(strings.TrimSpace(code), "\n")
	line = strings.TrimSpace(line)
	if len(line) > max {
		return Truncate(line, max) + "..."
	}
	if strings.TrimSpace(rest) != "" {
		return line + " ..."
	}
	return line
}

// Truncate returns at most n bytes of s without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
