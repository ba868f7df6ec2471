package cli

import (
	"fmt"
	"strings"
	"unicode"
)

// splitLine breaks a command line into words. Single or double quotes group
// words; a backslash escapes the next rune inside double quotes and outside
// quotes. The quotes themselves are dropped, so `title="New roof"` becomes
// the single word `title=New roof`.
func splitLine(line string) ([]string, error) {
	var (
		words   []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case unicode.IsSpace(r):
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("%w: unterminated %c quote", ErrUsage, quote)
	}
	if escaped {
		return nil, fmt.Errorf("%w: trailing backslash", ErrUsage)
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words, nil
}

// args holds key=value pairs and the bare words left over, in order.
type args struct {
	named      map[string]string
	positional []string
}

func parseArgs(words []string) args {
	a := args{named: make(map[string]string)}
	for _, w := range words {
		if k, v, ok := strings.Cut(w, "="); ok && k != "" {
			a.named[strings.ToLower(k)] = v
			continue
		}
		a.positional = append(a.positional, w)
	}
	return a
}

// get returns the named value, falling back to the i-th positional word.
func (a args) get(key string, i int) string {
	if v, ok := a.named[key]; ok {
		return v
	}
	if i >= 0 && i < len(a.positional) {
		return a.positional[i]
	}
	return ""
}

// require is get that fails on a blank value.
func (a args) require(key string, i int) (string, error) {
	v := a.get(key, i)
	if strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%w: %s is required", ErrUsage, key)
	}
	return v, nil
}
