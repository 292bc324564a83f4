package report

import "strings"

var (
	CriticalKeywords = []string{"error", "fallo", "alarma", "crítico"}
	AnalogKeywords   = []string{"analógico"}
	DigitalKeywords  = []string{"digital"}
)

// MatchKeyword returns the first keyword contained in text, compared
// case-insensitively, or "" when none matches.
func MatchKeyword(text string, keywords []string) string {
	if len(keywords) == 0 || text == "" {
		return ""
	}
	lower := strings.ToLower(text)
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if strings.Contains(lower, k) {
			return k
		}
	}
	return ""
}

func ContainsAny(text string, keywords []string) bool {
	return MatchKeyword(text, keywords) != ""
}

// KeywordSubset keeps the rows whose text (as returned by field) mentions any
// keyword. Each keyword list is applied on its own.
func KeywordSubset[T any](rows []T, field func(T) string, keywords []string) []T {
	var out []T
	for _, r := range rows {
		if ContainsAny(field(r), keywords) {
			out = append(out, r)
		}
	}
	return out
}

func auditText(r AuditRow) string { return r.Text }

func alarmMessage(r AlarmRow) string { return r.Message }
