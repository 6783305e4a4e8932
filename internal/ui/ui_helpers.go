package ui

import (
	"fmt"
	"strings"
)

// embed field values are capped by Discord at 1024 characters
const maxFieldLen = 1024

func numberedList(names []string, offset int) string {
	if len(names) == 0 {
		return "—"
	}
	var b strings.Builder
	for i, n := range names {
		fmt.Fprintf(&b, "%d) %s\n", offset+i+1, safe(n))
	}
	return clip(strings.TrimRight(b.String(), "\n"))
}

func bulletList(names []string) string {
	if len(names) == 0 {
		return "—"
	}
	var b strings.Builder
	for _, n := range names {
		fmt.Fprintf(&b, "• %s\n", safe(n))
	}
	return clip(strings.TrimRight(b.String(), "\n"))
}

func quoteBlock(s string) string {
	if s == "" {
		return "> —"
	}
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = "> " + lines[i]
	}
	return strings.Join(lines, "\n")
}

// fallback to falsy data
func safe(s string) string {
	t := strings.TrimSpace(s)
	if t == "" || t == "-" {
		return "—"
	}
	return t
}

func clip(s string) string {
	if len(s) <= maxFieldLen {
		return s
	}
	cut := strings.LastIndex(s[:maxFieldLen-4], "\n")
	if cut < 0 {
		cut = maxFieldLen - 4
	}
	return s[:cut] + "\n…"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
