package app

import "strings"

// jsonCandidates returns the balanced top-level {...} spans of s in order of
// appearance. Braces inside JSON string literals do not count toward depth.
// An opening brace that never balances is skipped and scanning resumes at the
// next one. When no span balances, the first-{ to last-} span is returned so
// malformed payloads still surface as decode errors.
func jsonCandidates(s string) []string {
	var out []string
	for i := 0; i < len(s); {
		j := strings.IndexByte(s[i:], '{')
		if j < 0 {
			break
		}
		start := i + j
		if end := matchBrace(s, start); end > 0 {
			out = append(out, s[start:end+1])
			i = end + 1
			continue
		}
		i = start + 1
	}
	if len(out) > 0 {
		return out
	}

	first, last := strings.IndexByte(s, '{'), strings.LastIndexByte(s, '}')
	if first >= 0 && last > first {
		return []string{s[first : last+1]}
	}
	return nil
}

// matchBrace returns the index of the brace closing s[start], or -1.
func matchBrace(s string, start int) int {
	depth := 0
	inStr, esc := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
