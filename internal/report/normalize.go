package report

import "strings"

// NormalizeName strips the pairing suffix from a display name.
// 이력 시트에 " (쌍)" 이 붙은 채로 저장된 종목명도 비교 전에 반드시 정규화한다.
func NormalizeName(name, suffix string) string {
	if suffix == "" {
		return name
	}
	return strings.ReplaceAll(name, suffix, "")
}

// NormalizeNames strips the pairing suffix from every name, preserving order
func NormalizeNames(names []string, suffix string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = NormalizeName(n, suffix)
	}
	return out
}
