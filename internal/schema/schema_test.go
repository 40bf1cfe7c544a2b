package schema

import "testing"

func TestNormalizeSortKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"name", "name"},
		{"players", "players"},
		{"duration", "duration"},
		{"type", "type"},
		{"complexite", "complexite"},
		{"", "name"},
		{"rating", "name"},
		{"NAME", "name"},
	}

	for _, tt := range tests {
		if got := NormalizeSortKey(tt.input); got != tt.want {
			t.Errorf("NormalizeSortKey(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeDirection(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"asc", "asc"},
		{"desc", "desc"},
		{"", "asc"},
		{"DESC", "asc"},
		{"down", "asc"},
	}

	for _, tt := range tests {
		if got := NormalizeDirection(tt.input); got != tt.want {
			t.Errorf("NormalizeDirection(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestColumnMapCoversAllColumns(t *testing.T) {
	if len(ColumnMap) != len(Columns) {
		t.Fatalf("ColumnMap has %d entries, want %d", len(ColumnMap), len(Columns))
	}
	for api, col := range ColumnMap {
		if !AllowedColumns[col] {
			t.Errorf("ColumnMap[%q] = %q is not an allowed column", api, col)
		}
	}
}

func TestForbiddenKeywordsAreNotQueryKeywords(t *testing.T) {
	for _, kw := range ForbiddenKeywords {
		if SQLKeywords[kw] {
			t.Errorf("%q is both forbidden and a recognized query keyword", kw)
		}
	}
}
