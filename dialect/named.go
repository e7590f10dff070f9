package dialect

import (
	"strings"
)

// Rebind rewrites @name, :name and $name tokens into the dialect's positional
// placeholders. lookup maps a token name (without prefix) to the index of a
// declared parameter; tokens it does not know are left as they are. The
// returned order lists, for each emitted placeholder, the parameter index to
// bind. Quoted strings, quoted identifiers, comments and PostgreSQL
// dollar-quoted bodies are skipped.
func Rebind(query string, d Dialect, lookup func(name string) (int, bool)) (string, []int) {
	numbered := d.Placeholder(1) != d.Placeholder(2)

	var sb strings.Builder
	sb.Grow(len(query))
	var order []int
	assigned := make(map[int]int) // param index -> placeholder number

	i := 0
	for i < len(query) {
		c := query[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			end := skipQuoted(query, i, c)
			sb.WriteString(query[i:end])
			i = end
			continue
		case c == '-' && i+1 < len(query) && query[i+1] == '-':
			end := strings.IndexByte(query[i:], '\n')
			if end < 0 {
				end = len(query) - i
			}
			sb.WriteString(query[i : i+end])
			i += end
			continue
		case c == '/' && i+1 < len(query) && query[i+1] == '*':
			end := strings.Index(query[i+2:], "*/")
			if end < 0 {
				sb.WriteString(query[i:])
				i = len(query)
			} else {
				sb.WriteString(query[i : i+end+4])
				i += end + 4
			}
			continue
		case c == '@' || c == ':' || c == '$':
			if i+1 < len(query) && query[i+1] == c {
				// ::cast, @@global, $$body$$
				if c == '$' {
					end := skipDollarQuoted(query, i, "$$")
					sb.WriteString(query[i:end])
					i = end
					continue
				}
				sb.WriteString(query[i : i+2])
				i += 2
				continue
			}
			if i > 0 && isIdentChar(query[i-1]) {
				break
			}
			j := i + 1
			if j >= len(query) || !isIdentStart(query[j]) {
				break
			}
			for j < len(query) && isIdentChar(query[j]) {
				j++
			}
			if c == '$' && j < len(query) && query[j] == '$' {
				end := skipDollarQuoted(query, i, query[i:j+1])
				sb.WriteString(query[i:end])
				i = end
				continue
			}
			idx, ok := lookup(query[i+1 : j])
			if !ok {
				sb.WriteString(query[i:j])
				i = j
				continue
			}
			if numbered {
				n, seen := assigned[idx]
				if !seen {
					order = append(order, idx)
					n = len(order)
					assigned[idx] = n
				}
				sb.WriteString(d.Placeholder(n))
			} else {
				order = append(order, idx)
				sb.WriteString(d.Placeholder(len(order)))
			}
			i = j
			continue
		}
		sb.WriteByte(c)
		i++
	}
	return sb.String(), order
}

func skipQuoted(s string, start int, quote byte) int {
	i := start + 1
	for i < len(s) {
		if s[i] == quote {
			if i+1 < len(s) && s[i+1] == quote {
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return len(s)
}

func skipDollarQuoted(s string, start int, tag string) int {
	body := start + len(tag)
	end := strings.Index(s[body:], tag)
	if end < 0 {
		return len(s)
	}
	return body + end + len(tag)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
