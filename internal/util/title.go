package util

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/kpenchev/tvprograma-go/internal/constants"
)

// NormalizeTitle projects a title onto its matching key: every letter or
// digit is lowercased per codepoint, everything else becomes a space, runs
// of spaces collapse to one. Cyrillic and Latin are treated uniformly; no
// transliteration happens, so "Титаник" and "titanic" stay distinct keys.
func NormalizeTitle(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// SeriesSuffixStripper removes trailing season/episode markers from series
// titles ("Клиника Сезон 3, Епизод 5" -> "Клиника"). The marker tokens are
// configuration, so new languages are a data change.
type SeriesSuffixStripper struct {
	re *regexp.Regexp
}

func NewSeriesSuffixStripper(markers []string) *SeriesSuffixStripper {
	quoted := make([]string, 0, len(markers))
	for _, m := range markers {
		if m = strings.TrimSpace(m); m != "" {
			quoted = append(quoted, regexp.QuoteMeta(m))
		}
	}
	if len(quoted) == 0 {
		return &SeriesSuffixStripper{}
	}
	pattern := `(?i)[, ]*(` + strings.Join(quoted, "|") + `)\s*\d+.*$`
	return &SeriesSuffixStripper{re: regexp.MustCompile(pattern)}
}

func (s *SeriesSuffixStripper) Strip(title string) string {
	if s == nil || s.re == nil {
		return strings.TrimSpace(title)
	}
	return strings.TrimSpace(s.re.ReplaceAllString(title, ""))
}

// ExtractYear finds the first standalone 4-digit number in text that is a
// plausible release year (MinFilmYear .. next year). Longer digit runs are
// not years and are skipped entirely.
func ExtractYear(text string) (int, bool) {
	minYear := constants.MatcherConfig.MinFilmYear
	maxYear := time.Now().Year() + 1
	runStart := -1
	runes := []rune(text)
	for i := 0; i <= len(runes); i++ {
		isDigit := i < len(runes) && runes[i] >= '0' && runes[i] <= '9'
		if isDigit {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		if runStart >= 0 {
			if i-runStart == 4 {
				year, err := strconv.Atoi(string(runes[runStart:i]))
				if err == nil && year >= minYear && year <= maxYear {
					return year, true
				}
			}
			runStart = -1
		}
	}
	return 0, false
}
