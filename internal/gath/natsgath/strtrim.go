package natsgath

import "strings"

// trimToRect clips multi-line output to at most maxHeight lines of
// maxWidth characters, marking elisions. Keeps streamed messages small.
func trimToRect(s string, maxHeight int, maxWidth int) string {
	if s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
		lines = append(lines, "[...]")
	}
	for i, line := range lines {
		if len(line) > maxWidth {
			lines[i] = line[:maxWidth] + "[...]"
		}
	}
	return strings.Join(lines, "\n")
}
