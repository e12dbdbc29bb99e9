package extract

import "strings"

// splitLines splits source into lines without their terminators. A trailing
// newline does not produce an extra empty line.
func splitLines(source []byte) []string {
	text := strings.ReplaceAll(string(source), "\r\n", "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// indentWidth counts leading spaces and tabs, one column each.
func indentWidth(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// splitTopLevel splits s on sep, ignoring separators nested inside
// brackets or quoted strings.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' && quote != '`' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// indexTopLevel returns the index of the first c in s that is outside
// brackets and quoted strings, or -1.
func indexTopLevel(s string, c byte) int {
	parts := splitTopLevel(s, c)
	if len(parts) < 2 {
		return -1
	}
	return len(parts[0])
}

// bracketScanner tracks bracket depth across successive chunks of text,
// skipping quoted strings and line comments introduced by comment.
type bracketScanner struct {
	comment string
	depth   int
	opened  bool
	quote   byte
}

// feed consumes chunk and returns the index just past the bracket that
// brings the depth back to zero, or -1 if the brackets are still open.
func (s *bracketScanner) feed(chunk string) int {
	for i := 0; i < len(chunk); i++ {
		c := chunk[i]
		if s.quote != 0 {
			if c == '\\' && s.quote != '`' {
				i++
			} else if c == s.quote {
				s.quote = 0
			}
			continue
		}
		if s.comment != "" && strings.HasPrefix(chunk[i:], s.comment) {
			return -1
		}
		switch c {
		case '"', '\'', '`':
			s.quote = c
		case '(', '[', '{':
			s.depth++
			s.opened = true
		case ')', ']', '}':
			s.depth--
			if s.opened && s.depth == 0 {
				return i + 1
			}
		}
	}
	// Single-line strings do not continue past the end of a line.
	if s.quote != '`' {
		s.quote = 0
	}
	return -1
}
