package sqlguard

import "strings"

// TokenKind classifies a scanned token.
type TokenKind int

const (
	// TokenKeyword is a recognized SQL query keyword (select, from, where, ...).
	TokenKeyword TokenKind = iota
	// TokenIdentifier is a bareword that is not a recognized keyword.
	TokenIdentifier
	// TokenNumber is a numeric literal.
	TokenNumber
	// TokenString is a single-quoted string literal, content excluded.
	TokenString
	// TokenPunct is any other single character (punctuation, operators).
	TokenPunct
)

// Token is one lexical unit of a candidate query.
type Token struct {
	Kind TokenKind
	// Text is the raw token text. For TokenString it is always the empty
	// placeholder "''": literal contents are discarded during scanning so
	// they can neither trigger keyword matches nor smuggle identifiers.
	Text string
}

// Lower returns the token text lowercased.
func (t Token) Lower() string {
	return strings.ToLower(t.Text)
}

func isWordStart(r byte) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isWordPart(r byte) bool {
	return isWordStart(r) || (r >= '0' && r <= '9')
}

func isDigit(r byte) bool {
	return r >= '0' && r <= '9'
}

// Tokenize splits SQL text into typed tokens. String literals are isolated
// first: everything between single quotes collapses into a single
// TokenString with empty content, so the later keyword and identifier scans
// only ever see text outside quoted regions. Whitespace is dropped.
//
// The scanner is deliberately not a SQL grammar. It only needs to be sound:
// every bareword outside a string literal must surface as a token the
// validator can inspect.
func Tokenize(text string) []Token {
	var tokens []Token
	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '\'':
			// Consume to the closing quote. An unterminated literal swallows
			// the rest of the text, which is safe: nothing inside it can be
			// mistaken for an identifier.
			j := i + 1
			for j < len(text) && text[j] != '\'' {
				j++
			}
			if j < len(text) {
				j++
			}
			tokens = append(tokens, Token{Kind: TokenString, Text: "''"})
			i = j
		case isWordStart(c):
			j := i + 1
			for j < len(text) && isWordPart(text[j]) {
				j++
			}
			word := text[i:j]
			kind := TokenIdentifier
			if keywords[strings.ToLower(word)] {
				kind = TokenKeyword
			}
			tokens = append(tokens, Token{Kind: kind, Text: word})
			i = j
		case isDigit(c):
			j := i + 1
			for j < len(text) && (isDigit(text[j]) || text[j] == '.') {
				j++
			}
			tokens = append(tokens, Token{Kind: TokenNumber, Text: text[i:j]})
			i = j
		default:
			tokens = append(tokens, Token{Kind: TokenPunct, Text: string(c)})
			i++
		}
	}
	return tokens
}

// Identifiers returns the identifier tokens of a token stream. The table
// allowlist check is a plain filter over this slice.
func Identifiers(tokens []Token) []Token {
	var out []Token
	for _, t := range tokens {
		if t.Kind == TokenIdentifier {
			out = append(out, t)
		}
	}
	return out
}
