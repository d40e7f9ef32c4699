package crawler

import (
	"regexp"
	"strings"

	"sjsage522/refurbworker/helpers"
	"sjsage522/refurbworker/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// Defaults for the Apple China refurbished listing
var (
	ProductHrefPattern = regexp.MustCompile(`/shop/product/\w+/a`)
	RefurbishedPrefix  = "翻新"
)

// Discoverer turns a listing page into unique candidate records
type Discoverer struct {
	origin      string
	hrefPattern *regexp.Regexp
	titlePrefix string
}

// NewDiscoverer creates a discoverer that resolves relative links against origin
func NewDiscoverer(origin string) *Discoverer {
	return &Discoverer{
		origin:      origin,
		hrefPattern: ProductHrefPattern,
		titlePrefix: RefurbishedPrefix,
	}
}

// Discover returns one candidate per product URL, in first-seen order
func (d *Discoverer) Discover(html string) ([]CandidateRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.NewParsing("listing", "failed to parse listing HTML", err)
	}

	var candidates []CandidateRecord
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !d.hrefPattern.MatchString(href) {
			return
		}

		title := helpers.CollapseSpace(s.Text())
		if title == "" || !strings.HasPrefix(title, d.titlePrefix) {
			return
		}

		link := helpers.AbsoluteURL(d.origin, href)
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}

		candidates = append(candidates, CandidateRecord{Title: title, URL: link})
	})

	return candidates, nil
}
