package domain

import "strings"

// DefaultKeywords is the fixed keyword set scanned when no override is
// configured.
var DefaultKeywords = []string{"cluster", "protocol", "ai"}

// KeywordReport aggregates keyword credits across a scanned item set.
// Total always equals the sum of Counts.
type KeywordReport struct {
	Total  int
	Counts map[string]int
}

// ScanKeywords counts case-insensitive whole-token keyword occurrences
// across the items. Each keyword is credited at most once per item no
// matter how many times it appears in that item's text. A leading '#'
// (hashtag) counts as a token boundary. The report carries an entry for
// every keyword, zeros included. Items without scannable text are skipped.
func ScanKeywords(items []Item, keywords []string) KeywordReport {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}

	counts := make(map[string]int, len(keywords))
	for _, kw := range keywords {
		counts[strings.ToLower(kw)] = 0
	}

	total := 0
	for _, item := range items {
		text := strings.ToLower(itemText(item))
		if text == "" {
			continue
		}
		for kw := range counts {
			if containsToken(text, kw) {
				counts[kw]++
				total++
			}
		}
	}

	return KeywordReport{Total: total, Counts: counts}
}

// itemText concatenates every string-valued field of the item, including
// string values one nesting level down.
func itemText(item Item) string {
	var b strings.Builder
	for _, v := range item {
		switch tv := v.(type) {
		case string:
			b.WriteString(tv)
			b.WriteByte(' ')
		case map[string]any:
			for _, nested := range tv {
				if s, ok := nested.(string); ok {
					b.WriteString(s)
					b.WriteByte(' ')
				}
			}
		}
	}
	return b.String()
}

// containsToken reports whether token occurs in text as a whole token:
// the characters adjacent to the match must be absent or non-alphanumeric.
func containsToken(text, token string) bool {
	if token == "" {
		return false
	}
	for from := 0; ; {
		i := strings.Index(text[from:], token)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(token)
		if boundaryAt(text, start-1) && boundaryAt(text, end) {
			return true
		}
		from = start + 1
	}
}

func boundaryAt(text string, pos int) bool {
	if pos < 0 || pos >= len(text) {
		return true
	}
	return !isAlphanumeric(text[pos])
}

func isAlphanumeric(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
