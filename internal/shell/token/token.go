// Package token splits command lines into words.
//
// Words are separated by unquoted whitespace. Single and double quotes
// group text, including whitespace, into one word; the quotes themselves
// are stripped. Pipeline punctuation ("|", ">", ">>") is not special here;
// the builder interprets it after splitting.
package token

import (
	"fmt"
	"strings"
	"unicode"
)

// Split tokenizes line. An unterminated quote is an error.
func Split(line string) ([]string, error) {
	var (
		tokens  []string
		current strings.Builder
		quote   rune // active quote character, 0 when outside quotes
		inWord  bool
	)

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case unicode.IsSpace(r):
			if inWord {
				tokens = append(tokens, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if inWord {
		tokens = append(tokens, current.String())
	}
	return tokens, nil
}
