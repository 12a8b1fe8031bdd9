// Package parser turns catalogue page HTML into records.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/bookcatalog/models"
)

// ErrStructure is returned when a listing lacks markup the extractor relies on.
var ErrStructure = errors.New("parser: unexpected page structure")

const (
	listingSelector = "article.product_pod"
	titleSelector   = "h3 a"
	priceSelector   = "p.price_color"
	stockSelector   = "p.instock.availability"
	ratingSelector  = "p.star-rating"
	imageSelector   = "img"
)

// ExtractOptions tunes extraction.
type ExtractOptions struct {
	// SkipMalformed drops a listing with missing markup instead of failing
	// the whole page.
	SkipMalformed bool
}

// Extract returns every listing on the page in document order. A page with
// no listings yields an empty slice and a nil error.
func Extract(content, baseURL string) ([]models.Record, error) {
	return ExtractWithOptions(content, baseURL, ExtractOptions{})
}

// ExtractWithOptions is Extract with tuning.
func ExtractWithOptions(content, baseURL string, opts ExtractOptions) ([]models.Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	listings := doc.Find(listingSelector)
	records := make([]models.Record, 0, listings.Length())

	var extractErr error
	listings.EachWithBreak(func(i int, s *goquery.Selection) bool {
		record, err := extractRecord(s, baseURL)
		if err != nil {
			err = fmt.Errorf("listing %d: %w", i+1, err)
			if opts.SkipMalformed {
				slog.Warn("skipping malformed listing", slog.Any("error", err))
				return true
			}
			extractErr = err
			return false
		}
		records = append(records, record)
		return true
	})
	if extractErr != nil {
		return nil, extractErr
	}
	// Skipping every listing must not look like the end of the catalogue.
	if listings.Length() > 0 && len(records) == 0 {
		return nil, fmt.Errorf("%w: all %d listings malformed", ErrStructure, listings.Length())
	}

	return records, nil
}

func extractRecord(s *goquery.Selection, baseURL string) (models.Record, error) {
	title, err := childAttr(s, titleSelector, "title")
	if err != nil {
		return models.Record{}, err
	}
	price, err := childText(s, priceSelector)
	if err != nil {
		return models.Record{}, err
	}
	stock, err := childText(s, stockSelector)
	if err != nil {
		return models.Record{}, err
	}

	class, err := childAttr(s, ratingSelector, "class")
	if err != nil {
		return models.Record{}, err
	}
	tokens := strings.Fields(class)
	if len(tokens) < 2 {
		return models.Record{}, fmt.Errorf("%w: %s has no rating token", ErrStructure, ratingSelector)
	}
	rating := tokens[1]
	if !IsRating(rating) {
		return models.Record{}, fmt.Errorf("%w: unknown rating %q", ErrStructure, rating)
	}

	src, err := childAttr(s, imageSelector, "src")
	if err != nil {
		return models.Record{}, err
	}

	return models.Record{
		Title:    strings.TrimSpace(title),
		Price:    price,
		Stock:    NormalizeText(stock),
		Rating:   rating,
		ImageURL: ResolveImageURL(baseURL, src),
	}, nil
}

func childText(s *goquery.Selection, selector string) (string, error) {
	child := s.Find(selector).First()
	if child.Length() == 0 {
		return "", fmt.Errorf("%w: missing %s", ErrStructure, selector)
	}
	return strings.TrimSpace(child.Text()), nil
}

func childAttr(s *goquery.Selection, selector, attr string) (string, error) {
	child := s.Find(selector).First()
	if child.Length() == 0 {
		return "", fmt.Errorf("%w: missing %s", ErrStructure, selector)
	}
	value, ok := child.Attr(attr)
	if !ok {
		return "", fmt.Errorf("%w: %s has no %s attribute", ErrStructure, selector, attr)
	}
	return value, nil
}
