package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aluiziolira/go-tech-catalog/models"
)

// PriceNotAvailable is returned by ExtractPrice when no pattern matches.
const PriceNotAvailable = "Price not available"

// RupeeMarker is the only currency notation ParsePriceBucket recognises.
const RupeeMarker = "₹"

// Tried in order; the first pattern that matches anywhere wins.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`AED [\d,]+`),
	regexp.MustCompile(`Rs\.?\s*[\d,]+`),
	regexp.MustCompile(`\$[\d,]+`),
	regexp.MustCompile(`USD\s*[\d,]+`),
	regexp.MustCompile(`INR\s*[\d,]+`),
}

var rupeeAmount = regexp.MustCompile(`₹([\d,]+)`)

// Bucket is one of the four disjoint price ranges used for statistics.
type Bucket string

const (
	BucketUnder10k  Bucket = "under_10k"
	Bucket10kTo50k  Bucket = "10k_50k"
	Bucket50kTo100k Bucket = "50k_100k"
	BucketAbove100k Bucket = "above_100k"
)

// Buckets lists every bucket in ascending order.
var Buckets = []Bucket{BucketUnder10k, Bucket10kTo50k, Bucket50kTo100k, BucketAbove100k}

// ExtractPrice pulls the first recognisable price substring out of free text.
func ExtractPrice(text string) string {
	for _, pattern := range pricePatterns {
		if match := pattern.FindString(text); match != "" {
			return match
		}
	}
	return PriceNotAvailable
}

// ParsePriceBucket classifies a rupee-denominated price. Prices in any other
// notation report ok=false.
func ParsePriceBucket(price string) (Bucket, bool) {
	if !strings.Contains(price, RupeeMarker) {
		return "", false
	}
	match := rupeeAmount.FindStringSubmatch(price)
	if match == nil {
		return "", false
	}
	digits := strings.ReplaceAll(match[1], ",", "")
	if digits == "" {
		return "", false
	}
	value, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return "", false
	}

	switch {
	case value < 10_000:
		return BucketUnder10k, true
	case value < 50_000:
		return Bucket10kTo50k, true
	case value < 100_000:
		return Bucket50kTo100k, true
	default:
		return BucketAbove100k, true
	}
}

// TruncateTitle trims whitespace and shortens titles longer than max runes,
// appending an ellipsis. Titles of max runes or fewer are returned without one.
func TruncateTitle(title string, max int) string {
	title = NormalizeText(title)
	if max <= 0 || utf8.RuneCountInString(title) <= max {
		return title
	}
	runes := []rune(title)
	return strings.TrimSpace(string(runes[:max])) + "..."
}

// NormalizeText collapses internal whitespace runs and trims the ends.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Validation failures, matched with errors.Is.
var (
	ErrMissingTitle = errors.New("missing title")
	ErrMissingPrice = errors.New("missing price")
)

// ValidateProduct ensures a scraped record carries the required fields.
func ValidateProduct(p *models.Product) error {
	if p == nil {
		return fmt.Errorf("nil product: %w", ErrMissingTitle)
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("validate product: %w", ErrMissingTitle)
	}
	price := strings.TrimSpace(p.Price)
	if price == "" || price == PriceNotAvailable {
		return fmt.Errorf("validate %s: %w", p.Title, ErrMissingPrice)
	}
	return nil
}
