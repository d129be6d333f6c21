package bazaar

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"bazaar-flipper/internal/logger"
	"bazaar-flipper/internal/numfmt"
)

// ScrapeSource is the legacy acquisition path: it renders the public listing
// page in a headless browser and parses the product table. Slower and coarser
// than the API (human-formatted numbers, no order-book depth), kept for
// deployments without an API key.
type ScrapeSource struct {
	url     string
	timeout time.Duration
}

// NewScrapeSource creates the rendered-page quote source.
func NewScrapeSource(url string, timeout time.Duration) *ScrapeSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ScrapeSource{url: url, timeout: timeout}
}

// Mode identifies this source for cache TTL selection and logging.
func (s *ScrapeSource) Mode() string { return "scrape" }

// FetchSnapshot renders the listing page and parses every product row.
func (s *ScrapeSource) FetchSnapshot(ctx context.Context) ([]RawQuote, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(s.url),
		chromedp.WaitVisible("table tbody tr", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("render listing page: %w: %v", ErrUnavailable, err)
	}

	quotes, err := parseListingHTML(html)
	if err != nil {
		return nil, err
	}
	logger.Info("Bazaar", fmt.Sprintf("Scraped %d product rows", len(quotes)))
	return quotes, nil
}

// parseListingHTML extracts RawQuotes from the rendered listing table.
// Expected row layout: title cell (anchor + icon), buy price, sell price,
// weekly insta-buys, weekly insta-sells. Unparseable rows are skipped.
func parseListingHTML(html string) ([]RawQuote, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w: %v", ErrUnavailable, err)
	}

	rows := doc.Find("table tbody tr")
	if rows.Length() == 0 {
		return nil, fmt.Errorf("parse listing page: %w: no product rows", ErrUnavailable)
	}

	var quotes []RawQuote
	rows.Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 5 {
			return
		}

		titleCell := cells.Eq(0)
		title := strings.TrimSpace(titleCell.Text())
		if title == "" {
			return
		}
		href, _ := titleCell.Find("a").Attr("href")
		img, _ := titleCell.Find("img").Attr("src")

		// Stable id from the product link slug; positional index otherwise.
		id := strconv.Itoa(i)
		if idx := strings.LastIndex(href, "/"); idx >= 0 && idx < len(href)-1 {
			id = href[idx+1:]
		}

		q := RawQuote{
			ProductID:        id,
			DisplayName:      title,
			WeeklyBuyVolume:  parseCell(cells.Eq(3)),
			WeeklySellVolume: parseCell(cells.Eq(4)),
			Href:             href,
			Img:              img,
			RawText:          strings.Join(strings.Fields(row.Text()), " "),
		}
		// A missing price leaves that book empty, which yields a zero
		// reference price downstream, never a coerced 0 order.
		if v := parseCell(cells.Eq(1)); v != nil {
			q.BuyOrders = []Order{{PricePerUnit: *v}}
		}
		if v := parseCell(cells.Eq(2)); v != nil {
			q.SellOrders = []Order{{PricePerUnit: *v}}
		}
		quotes = append(quotes, q)
	})

	if len(quotes) == 0 {
		return nil, fmt.Errorf("parse listing page: %w: every row unreadable", ErrUnavailable)
	}
	return quotes, nil
}

func parseCell(cell *goquery.Selection) *float64 {
	v, ok := numfmt.Parse(cell.Text())
	if !ok {
		return nil
	}
	return &v
}
