package llm

import "strings"

// repairJSON applies a best-effort cleanup to malformed model output: strip
// Markdown code fences, keep the first balanced {...} or [...] slice, then
// drop trailing commas before closing brackets. The result of repairing an
// already-repaired string is the string itself.
func repairJSON(s string) string {
	out := stripFences(s)
	if slice, ok := firstBalanced(out); ok {
		out = slice
	}
	out = stripTrailingCommas(out)
	return strings.TrimSpace(out)
}

// stripFences removes a leading ```/```json fence line and a trailing ```
// line, if present.
func stripFences(s string) string {
	out := strings.TrimSpace(s)
	if !strings.HasPrefix(out, "```") {
		return out
	}
	if i := strings.IndexByte(out, '\n'); i >= 0 {
		out = out[i+1:]
	} else {
		out = strings.TrimPrefix(out, "```")
	}
	out = strings.TrimSpace(out)
	if strings.HasSuffix(out, "```") {
		out = strings.TrimSpace(out[:len(out)-3])
	}
	return out
}

// firstBalanced returns the first balanced top-level object or array slice.
// Braces inside JSON strings do not count; escape sequences are honoured.
// Safe to scan bytes: ASCII delimiters never occur inside UTF-8 continuation
// bytes.
func firstBalanced(s string) (string, bool) {
	var (
		depth    int
		start    = -1
		open     byte
		closing  byte
		inString bool
		escape   bool
	)
	for i := 0; i < len(s); i++ {
		b := s[i]
		if escape {
			escape = false
			continue
		}
		if inString {
			switch b {
			case '\\':
				escape = true
			case '"':
				inString = false
			}
			continue
		}
		switch {
		case b == '"' && depth > 0:
			inString = true
		case depth == 0 && (b == '{' || b == '['):
			open = b
			closing = '}'
			if b == '[' {
				closing = ']'
			}
			start = i
			depth = 1
		case depth > 0 && b == open:
			depth++
		case depth > 0 && b == closing:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// stripTrailingCommas removes commas that directly precede a closing } or ],
// outside of strings.
func stripTrailingCommas(s string) string {
	var (
		sb       strings.Builder
		inString bool
		escape   bool
	)
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		if !inString && b == ',' {
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue // drop the comma
			}
		}
		if escape {
			escape = false
		} else if inString {
			switch b {
			case '\\':
				escape = true
			case '"':
				inString = false
			}
		} else if b == '"' {
			inString = true
		}
		sb.WriteByte(b)
	}
	return sb.String()
}
