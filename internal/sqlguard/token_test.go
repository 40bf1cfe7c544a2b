package sqlguard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestTokenizeKinds tests classification of each token kind
func TestTokenizeKinds(t *testing.T) {
	tokens := Tokenize("SELECT nom_du_jeu FROM jeux WHERE joueurs_min <= 2 AND nom_du_jeu LIKE '%Citadelles%'")

	var kinds []TokenKind
	var texts []string
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
		texts = append(texts, tok.Text)
	}

	assert.Equal(t, []TokenKind{
		TokenKeyword,    // SELECT
		TokenIdentifier, // nom_du_jeu
		TokenKeyword,    // FROM
		TokenIdentifier, // jeux
		TokenKeyword,    // WHERE
		TokenIdentifier, // joueurs_min
		TokenPunct,      // <
		TokenPunct,      // =
		TokenNumber,     // 2
		TokenKeyword,    // AND
		TokenIdentifier, // nom_du_jeu
		TokenKeyword,    // LIKE
		TokenString,     // literal placeholder
	}, kinds)

	assert.Equal(t, "''", texts[len(texts)-1], "literal content must be discarded")
}

// TestTokenizeLiteralIsolation tests that quoted regions produce no barewords
func TestTokenizeLiteralIsolation(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"keywords in literal", "'DROP TABLE jeux'"},
		{"identifier in literal", "'secret_column'"},
		{"spaces and accents", "'Culture générale, Rapidité'"},
		{"semicolon in literal", "'a;b'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := Tokenize(tt.input)
			assert.Len(t, tokens, 1)
			assert.Equal(t, TokenString, tokens[0].Kind)
			assert.Equal(t, "''", tokens[0].Text)
		})
	}
}

// TestTokenizeUnterminatedLiteral tests that a dangling quote swallows the tail
func TestTokenizeUnterminatedLiteral(t *testing.T) {
	tokens := Tokenize("SELECT * FROM jeux WHERE nom_du_jeu = 'oops")

	last := tokens[len(tokens)-1]
	assert.Equal(t, TokenString, last.Kind)

	// Nothing after the opening quote may surface as an identifier.
	for _, tok := range Identifiers(tokens) {
		assert.NotEqual(t, "oops", tok.Text)
	}
}

// TestTokenizeAdjacentQuotes tests empty and doubled literals
func TestTokenizeAdjacentQuotes(t *testing.T) {
	tokens := Tokenize("'' ''")
	assert.Len(t, tokens, 2)
	for _, tok := range tokens {
		assert.Equal(t, TokenString, tok.Kind)
	}
}

// TestIdentifiersFilter tests the identifier projection used by the allowlist check
func TestIdentifiersFilter(t *testing.T) {
	tokens := Tokenize("SELECT type_de_jeu, joueurs_max FROM jeux LIMIT 5")

	idents := Identifiers(tokens)
	var names []string
	for _, tok := range idents {
		names = append(names, tok.Text)
	}
	assert.Equal(t, []string{"type_de_jeu", "joueurs_max", "jeux"}, names)
}

// TestTokenizeNumbers tests numeric literal scanning
func TestTokenizeNumbers(t *testing.T) {
	tokens := Tokenize("10 2.5 007")
	for _, tok := range tokens {
		assert.Equal(t, TokenNumber, tok.Kind)
	}
}
