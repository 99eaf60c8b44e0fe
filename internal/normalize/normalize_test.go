package normalize

import "testing"

func TestQuery(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"  클린 코드  ", "클린 코드"},
		{"클린\t코드", "클린 코드"},
		{"클린   코드", "클린 코드"},
		// Full-width Latin folds to ASCII.
		{"ｇｏｌａｎｇ", "golang"},
		// Decomposed jamo composes to the syllable form.
		{"\u1112\u1161\u11ab\u1100\u1161\u11bc", "한강"},
		{"clean code", "clean code"},
	}

	for _, tt := range tests {
		if got := Query(tt.input); got != tt.expected {
			t.Errorf("Query(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
