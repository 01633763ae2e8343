package service

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kpenchev/tvprograma-go/internal/constants"
	"github.com/kpenchev/tvprograma-go/internal/domain"
	"go.uber.org/zap"
)

// Date path segments understood by the listings site.
const (
	DatePathToday     = "Днес"
	DatePathYesterday = "Вчера"
	DatePathTomorrow  = "Утре"
)

// Phrases that open the description part of a combined title cell when the
// site omits the <strong> markup.
var descriptionKeywords = []string{
	"Спорт", "Повторение", "Документален", "Сериал", "Волейбол",
	"Футбол", "Баскетбол", "Хокей", "Анимация", "Ток шоу", "Криминале",
}

var (
	keywordSplitRe  = buildKeywordSplitRe()
	leadInSplitRe   = regexp.MustCompile(`-\s+(Повторение|На\s+живо|Голямо|Малко|Премиера)`)
	sentenceStartRe = regexp.MustCompile(`^[A-ZА-Я][а-яa-z]+\.`)
)

func buildKeywordSplitRe() *regexp.Regexp {
	quoted := make([]string, len(descriptionKeywords))
	for i, kw := range descriptionKeywords {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	// \b does not work for Cyrillic, so the boundary is spelled out.
	return regexp.MustCompile(`-\s+(` + strings.Join(quoted, "|") + `)([\s,.:]|$)`)
}

// ListingsScraper pulls one channel's daily schedule from the Bulgarian TV
// listings site and parses it into broadcast entries. Channel and date
// fields are filled in by the fetcher.
type ListingsScraper struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

func NewListingsScraper(baseURL string, logger *zap.Logger) *ListingsScraper {
	return &ListingsScraper{
		httpClient: &http.Client{
			Timeout: constants.HTTPConfig.ListingsTimeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// FetchPrograms scrapes the schedule of channelID for the given date path.
// The site serves today at /tv/{channel} and other days at
// /tv/{channel}/{datePath}/.
func (s *ListingsScraper) FetchPrograms(ctx context.Context, channelID, datePath string) ([]*domain.BroadcastEntry, error) {
	var url string
	if datePath == DatePathToday || datePath == "" {
		url = fmt.Sprintf("%s/tv/%s", s.baseURL, channelID)
	} else {
		url = fmt.Sprintf("%s/tv/%s/%s/", s.baseURL, channelID, datePath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listings site returned status %d for %s", resp.StatusCode, url)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listings page: %w", err)
	}

	programs := s.parsePrograms(doc)
	s.logger.Debug("Fetched channel listing",
		zap.String("channel", channelID),
		zap.String("date_path", datePath),
		zap.Int("programs", len(programs)),
	)

	return programs, nil
}

func (s *ListingsScraper) parsePrograms(doc *goquery.Document) []*domain.BroadcastEntry {
	programs := make([]*domain.BroadcastEntry, 0)

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		link := row.Find(`a[href*="/predavane/"]`).First()
		if link.Length() == 0 {
			return
		}

		timeText := strings.TrimSpace(row.Find("td").First().Text())
		if !isTimeFormat(timeText) {
			return
		}

		var title, description string
		strong := link.Find("strong").First()
		if strong.Length() > 0 {
			title = strings.TrimSpace(strong.Text())
			clone := link.Clone()
			clone.Find("strong").Remove()
			description = strings.TrimSpace(clone.Text())
			description = strings.TrimSpace(strings.TrimLeft(description, ",-"))
		} else {
			title, description = splitTitleDescription(strings.TrimSpace(link.Text()))
		}

		if title == "" {
			return
		}

		programs = append(programs, &domain.BroadcastEntry{
			Time:        timeText,
			Title:       title,
			Description: description,
		})
	})

	return programs
}

// splitTitleDescription separates a combined "Title - Description" cell.
// Sports fixtures like "Team1 - Team2" must stay intact, so a dash only
// splits when what follows looks like a description.
func splitTitleDescription(full string) (title, description string) {
	if loc := keywordSplitRe.FindStringIndex(full); loc != nil {
		return strings.TrimSpace(full[:loc[0]]), strings.TrimSpace(full[loc[0]+1:])
	}

	if loc := leadInSplitRe.FindStringIndex(full); loc != nil {
		return strings.TrimSpace(full[:loc[0]]), strings.TrimSpace(full[loc[0]+1:])
	}

	if idx := strings.LastIndex(full, " - "); idx >= 0 {
		second := strings.TrimSpace(full[idx+3:])
		if sentenceStartRe.MatchString(second) || startsWithKeyword(second) {
			return strings.TrimSpace(full[:idx]), second
		}
	}

	return full, ""
}

func startsWithKeyword(s string) bool {
	for _, kw := range descriptionKeywords {
		if strings.HasPrefix(s, kw) {
			return true
		}
	}
	return false
}

func isTimeFormat(text string) bool {
	parts := strings.Split(text, ":")
	if len(parts) != 2 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
		for _, r := range part {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
