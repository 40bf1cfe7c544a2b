// Package sqlguard decides whether a candidate SQL text is safe to run
// against the games table. It is not a SQL parser: safety comes from
// tokenization, string-literal isolation, keyword exclusion and a column
// allowlist. The filter is sound by construction: nothing containing a
// mutating keyword, a statement separator or an unlisted identifier can
// pass. The price is that some exotic but valid SELECT shapes are rejected.
// Loosening the keyword or identifier checks to admit more syntax defeats
// the design; do not relax them without re-analyzing soundness.
package sqlguard

import (
	"strings"

	"github.com/aa196883/boardgame-crud/internal/errors"
	"github.com/aa196883/boardgame-crud/internal/schema"
)

// Rejection reasons reported in Result.Reason.
const (
	ReasonNotASelect       = "not-a-select"
	ReasonWrongTable       = "wrong-table"
	ReasonForbiddenKeyword = "forbidden-keyword"
	reasonUnknownIdentPfx  = "unknown-identifier: "
)

// keywords are the query keywords the tokenizer recognizes.
var keywords = schema.SQLKeywords

// forbidden are statement keywords that fail validation on sight.
var forbidden = func() map[string]bool {
	set := make(map[string]bool, len(schema.ForbiddenKeywords))
	for _, kw := range schema.ForbiddenKeywords {
		set[kw] = true
	}
	return set
}()

// Result is the verdict for one candidate query.
type Result struct {
	Safe bool
	// Reason names the offending rule or token when unsafe, empty otherwise.
	Reason string
}

// Validator checks SQL text against the fixed games schema. The zero value
// is not usable; construct with New. A Validator holds no mutable state and
// is safe for concurrent use without synchronization.
type Validator struct {
	table   string
	columns map[string]bool
}

// New returns a validator bound to the fixed table and column allowlist.
func New() *Validator {
	return &Validator{
		table:   schema.TableName,
		columns: schema.AllowedColumns,
	}
}

// Validate runs the ordered safety checks over text. It is deterministic
// and side-effect free: identical input always yields an identical result.
//
// Check order matters and each step short-circuits:
//  1. text must begin with SELECT (case-insensitive, whitespace trimmed)
//  2. text must contain "FROM <table>" (case-insensitive)
//  3. no statement separator ';' anywhere, not even inside literals
//  4. no forbidden statement keyword as a whole word outside literals
//  5. every remaining bareword identifier must be an allowlisted column
func (v *Validator) Validate(text string) Result {
	trimmed := strings.TrimSpace(text)
	lowered := strings.ToLower(trimmed)

	if !strings.HasPrefix(lowered, "select") {
		return Result{Reason: ReasonNotASelect}
	}

	if !strings.Contains(lowered, "from "+v.table) {
		return Result{Reason: ReasonWrongTable}
	}

	// A semicolon opens the door to statement stacking, so it is rejected
	// wherever it appears. The check deliberately ignores quoting.
	if strings.Contains(trimmed, ";") {
		return Result{Reason: ReasonForbiddenKeyword}
	}

	tokens := Tokenize(trimmed)

	for _, tok := range tokens {
		if tok.Kind != TokenIdentifier && tok.Kind != TokenKeyword {
			continue
		}
		if forbidden[tok.Lower()] {
			return Result{Reason: ReasonForbiddenKeyword}
		}
	}

	for _, tok := range Identifiers(tokens) {
		if tok.Lower() == v.table {
			continue
		}
		if v.columns[tok.Text] {
			continue
		}
		return Result{Reason: reasonUnknownIdentPfx + tok.Text}
	}

	return Result{Safe: true}
}

// Check is Validate returning a typed error instead of a Result.
// It returns nil when the text is safe.
func (v *Validator) Check(text string) error {
	res := v.Validate(text)
	if res.Safe {
		return nil
	}
	switch {
	case res.Reason == ReasonNotASelect:
		return errors.NewNotASelectError()
	case res.Reason == ReasonWrongTable:
		return errors.NewWrongTableError(v.table)
	case res.Reason == ReasonForbiddenKeyword:
		return errors.NewForbiddenKeywordError(findForbiddenToken(text))
	case strings.HasPrefix(res.Reason, reasonUnknownIdentPfx):
		return errors.NewUnknownIdentifierError(strings.TrimPrefix(res.Reason, reasonUnknownIdentPfx))
	default:
		return errors.New(errors.ErrCodeInvalidInput, "query failed safety checks")
	}
}

// CheckPrefix applies only the leading-SELECT check. It exists for the
// historical operator-trust policy; the full Check is the default.
func (v *Validator) CheckPrefix(text string) error {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if !strings.HasPrefix(lowered, "select") {
		return errors.NewNotASelectError()
	}
	return nil
}

// findForbiddenToken names the first forbidden token for error reporting.
func findForbiddenToken(text string) string {
	if strings.Contains(text, ";") {
		return ";"
	}
	for _, tok := range Tokenize(strings.TrimSpace(text)) {
		if (tok.Kind == TokenIdentifier || tok.Kind == TokenKeyword) && forbidden[tok.Lower()] {
			return tok.Lower()
		}
	}
	return ""
}
