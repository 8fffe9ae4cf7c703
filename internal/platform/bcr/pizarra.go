// Package bcr scrapes the BCR pizarra page for the day's board prices in ARS
// per tonne.
package bcr

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/PatriPorrato/AgroBot/internal/domain"
)

var (
	sojaRe  = regexp.MustCompile(`(?i)\bSoja\b`)
	maizRe  = regexp.MustCompile(`(?i)\bMa[ií]z\b`)
	trigoRe = regexp.MustCompile(`(?i)\bTrigo\b`)
	moneyRe = regexp.MustCompile(`\$[\d\.\,]+`)
	fechaRe = regexp.MustCompile(`(?i)Precios Pizarra del d[ií]a\D*(\d{2}/\d{2}/\d{4})`)
)

// Scraper fetches and parses the pizarra page.
type Scraper struct {
	url        string
	httpClient *http.Client
	now        func() time.Time
}

// NewScraper creates a Scraper for the given page URL.
func NewScraper(url string, timeout time.Duration) *Scraper {
	return &Scraper{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// Fetch implements domain.BoardScraper. A reachable page with no commodity
// values yields an empty quote (valid: the board is simply not published);
// network or HTTP failures wrap domain.ErrSourceUnavailable.
func (s *Scraper) Fetch(ctx context.Context) (domain.BoardQuote, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return domain.BoardQuote{}, fmt.Errorf("bcr: create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.BoardQuote{}, fmt.Errorf("bcr: fetch pizarra: %w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.BoardQuote{}, fmt.Errorf("bcr: fetch pizarra: %w: status %d", domain.ErrSourceUnavailable, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return domain.BoardQuote{}, fmt.Errorf("bcr: parse pizarra: %w: %v", domain.ErrSourceUnavailable, err)
	}

	return s.parse(doc), nil
}

func (s *Scraper) parse(doc *goquery.Document) domain.BoardQuote {
	quote := domain.BoardQuote{Date: s.boardDate(doc)}

	// The page groups each commodity inside a card-like container; scan them
	// all and take the first amount found next to each commodity word.
	doc.Find("div.card, div.views-row, section").Each(func(_ int, sel *goquery.Selection) {
		text := strings.Join(strings.Fields(sel.Text()), " ")

		if sojaRe.MatchString(text) && !quote.Soja.Valid {
			quote.Soja = firstAmount(text)
		}
		if maizRe.MatchString(text) && !quote.Maiz.Valid {
			quote.Maiz = firstAmount(text)
		}
		if trigoRe.MatchString(text) && !quote.Trigo.Valid {
			quote.Trigo = firstAmount(text)
		}
	})

	return quote
}

// boardDate extracts the date from the "Precios Pizarra del día DD/MM/YYYY"
// heading, defaulting to today (UTC) when the heading is missing or mangled.
func (s *Scraper) boardDate(doc *goquery.Document) time.Time {
	if m := fechaRe.FindStringSubmatch(doc.Text()); m != nil {
		if d, err := time.Parse("02/01/2006", m[1]); err == nil {
			return d
		}
	}
	return s.now().UTC().Truncate(24 * time.Hour)
}
