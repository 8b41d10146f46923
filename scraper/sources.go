package scraper

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-tech-catalog/models"
	"github.com/aluiziolira/go-tech-catalog/parser"
)

// Site selects the markup extractor used for a source.
type Site string

const (
	SiteFlipkart Site = "flipkart"
	SiteAmazon   Site = "amazon"
)

// Source is one search page the scraper visits.
type Source struct {
	Name     string
	URL      string
	Site     Site
	Category string
}

// DefaultSources returns the two search pages the catalog is built from.
func DefaultSources() []Source {
	return []Source{
		{
			Name:     "Flipkart",
			URL:      "https://www.flipkart.com/search?q=smartphone",
			Site:     SiteFlipkart,
			Category: "smartphone",
		},
		{
			Name:     "Amazon",
			URL:      "https://www.amazon.in/s?k=laptop",
			Site:     SiteAmazon,
			Category: "laptop",
		},
	}
}

// siteParser pulls the raw title, price and link out of one candidate block.
type siteParser struct {
	blocks string
	base   string
	fields func(block *goquery.Selection) (title, price, href string)
}

var sites = map[Site]siteParser{
	SiteFlipkart: {
		blocks: "div[data-id]",
		base:   "https://www.flipkart.com",
		fields: func(block *goquery.Selection) (string, string, string) {
			anchor := block.Find("a.IRpwTa").First()
			title := anchor.Text()
			if strings.TrimSpace(title) == "" {
				title, _ = anchor.Attr("title")
			}
			href, _ := anchor.Attr("href")
			price := block.Find("div._30jeq3").First().Text()
			return title, price, href
		},
	},
	SiteAmazon: {
		blocks: "div[data-component-type='s-search-result']",
		base:   "https://www.amazon.in",
		fields: func(block *goquery.Selection) (string, string, string) {
			title := block.Find("h2 a span").First().Text()
			if strings.TrimSpace(title) == "" {
				title = block.Find("h2 span").First().Text()
			}
			href, ok := block.Find("h2 a").First().Attr("href")
			if !ok {
				href, _ = block.Find("a.a-link-normal").First().Attr("href")
			}
			price := block.Find(".a-price .a-offscreen").First().Text()
			return title, price, href
		},
	},
}

// extractItems returns one outcome per candidate block, up to limit blocks.
func extractItems(doc *goquery.Selection, src Source, limit int, fetchedAt time.Time) ([]models.ItemOutcome, error) {
	site, ok := sites[src.Site]
	if !ok {
		return nil, fmt.Errorf("no extractor for site %q", src.Site)
	}

	var outcomes []models.ItemOutcome
	doc.Find(site.blocks).EachWithBreak(func(i int, block *goquery.Selection) bool {
		if i >= limit {
			return false
		}
		outcomes = append(outcomes, site.outcome(i, block, src, fetchedAt))
		return true
	})
	return outcomes, nil
}

func (sp siteParser) outcome(index int, block *goquery.Selection, src Source, fetchedAt time.Time) models.ItemOutcome {
	outcome := models.ItemOutcome{Source: src.Name, Index: index}

	rawTitle, rawPrice, href := sp.fields(block)
	title := parser.NormalizeText(rawTitle)
	if title == "" {
		outcome.Skip = models.SkipMissingTitle
		return outcome
	}

	price := parser.NormalizeText(rawPrice)
	if price == "" {
		price = parser.ExtractPrice(block.Text())
	}
	if price == parser.PriceNotAvailable {
		outcome.Skip = models.SkipMissingPrice
		return outcome
	}

	scrapedAt := fetchedAt
	outcome.Product = &models.Product{
		Title:       title,
		Description: fmt.Sprintf("Popular %s from %s", src.Category, src.Name),
		Price:       price,
		Category:    src.Category,
		Link:        absoluteLink(sp.base, href),
		Source:      src.Name,
		ScrapedAt:   &scrapedAt,
	}
	return outcome
}

// absoluteLink resolves href against base. A block without an href keeps an
// empty link so it is never mistaken for a duplicate of another link-less block.
func absoluteLink(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return base + href
}
