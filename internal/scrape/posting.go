package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Posting is what autofill could extract from a job-posting page.
type Posting struct {
	Company string `json:"company"`
	Role    string `json:"role"`
	URL     string `json:"url"`
}

type Fetcher struct {
	limiter *HostLimiter
	hc      *http.Client
}

func NewFetcher(limiter *HostLimiter) *Fetcher {
	return &Fetcher{
		limiter: limiter,
		hc:      &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchPosting downloads a posting page and extracts company and role.
func (f *Fetcher) FetchPosting(ctx context.Context, rawURL string) (Posting, error) {
	if err := f.limiter.WaitURL(ctx, rawURL); err != nil {
		return Posting{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Posting{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	res, err := f.hc.Do(req)
	if err != nil {
		return Posting{}, fmt.Errorf("fetch posting: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Posting{}, fmt.Errorf("fetch posting: upstream status %s", res.Status)
	}

	p, err := ParsePosting(io.LimitReader(res.Body, 2<<20))
	if err != nil {
		return Posting{}, err
	}
	p.URL = rawURL
	return p, nil
}

// ParsePosting pulls company/role out of posting HTML. Greenhouse and
// Lever pages carry og: meta tags; generic pages fall back to h1/title.
func ParsePosting(r io.Reader) (Posting, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Posting{}, fmt.Errorf("parse posting html: %w", err)
	}

	var p Posting

	if v, ok := doc.Find(`meta[property="og:site_name"]`).Attr("content"); ok {
		p.Company = cleanText(v)
	}
	if v, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		p.Role = cleanText(v)
	}

	if p.Role == "" {
		p.Role = cleanText(doc.Find("h1").First().Text())
	}
	if p.Role == "" {
		p.Role = cleanText(doc.Find("title").First().Text())
	}

	// "Senior Engineer - Acme" / "Senior Engineer at Acme" title shapes
	if p.Company == "" && p.Role != "" {
		for _, sep := range []string{" at ", " - ", " | ", " – "} {
			if i := strings.LastIndex(p.Role, sep); i > 0 {
				p.Company = cleanText(p.Role[i+len(sep):])
				p.Role = cleanText(p.Role[:i])
				break
			}
		}
	}

	if p.Company == "" && p.Role == "" {
		return Posting{}, fmt.Errorf("no company or role found in page")
	}
	return p, nil
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
