package report

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name   string
		suffix string
		want   string
	}{
		{"삼성전자 (쌍)", " (쌍)", "삼성전자"},
		{"삼성전자", " (쌍)", "삼성전자"},
		{"삼성전자 (쌍)", "", "삼성전자 (쌍)"},
		{"", " (쌍)", ""},
	}

	for _, tt := range tests {
		if got := NormalizeName(tt.name, tt.suffix); got != tt.want {
			t.Errorf("NormalizeName(%q, %q) = %q, want %q", tt.name, tt.suffix, got, tt.want)
		}
	}
}

func TestNormalizeNameRoundTrip(t *testing.T) {
	// normalize -> mark -> normalize yields the original
	suffix := " (쌍)"
	original := "삼성전자"

	marked := NormalizeName(original, suffix) + suffix
	if got := NormalizeName(marked, suffix); got != original {
		t.Errorf("Round trip produced %q, want %q", got, original)
	}
}
