package parser

import "strings"

// normalizeLines collapses every line-ending style to \n, trims each line and
// drops the empties. Order is preserved: the parsers rely on label/value
// adjacency in the normalized sequence.
func normalizeLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// lineAt returns the line at index i, or "" when i is out of range. Keeps the
// window scans free of bounds checks.
func lineAt(lines []string, i int) string {
	if i < 0 || i >= len(lines) {
		return ""
	}
	return lines[i]
}
