package parser

import (
	"fmt"
	"strings"

	"github.com/aluiziolira/bookcatalog/models"
)

// ValidateRecord ensures the extractor captured the required fields.
func ValidateRecord(r models.Record) error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("record missing title")
	}
	if strings.TrimSpace(r.Price) == "" {
		return fmt.Errorf("record missing price for %s", r.Title)
	}
	if !IsRating(r.Rating) {
		return fmt.Errorf("record has invalid rating %q for %s", r.Rating, r.Title)
	}
	if strings.TrimSpace(r.ImageURL) == "" {
		return fmt.Errorf("record missing image url for %s", r.Title)
	}
	return nil
}

// NormalizeText collapses runs of whitespace into single spaces.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// RatingToNumeric converts the textual rating to a numeric scale.
// Unknown words map to 0.
func RatingToNumeric(rating string) int {
	switch strings.ToLower(strings.TrimSpace(rating)) {
	case "one":
		return 1
	case "two":
		return 2
	case "three":
		return 3
	case "four":
		return 4
	case "five":
		return 5
	default:
		return 0
	}
}

// IsRating reports whether rating is one of the five rating words.
func IsRating(rating string) bool {
	return RatingToNumeric(rating) > 0
}

// ResolveImageURL strips the leading "../" segments from src and joins the
// remainder onto base.
func ResolveImageURL(base, src string) string {
	rest := strings.TrimSpace(src)
	for strings.HasPrefix(rest, "../") {
		rest = strings.TrimPrefix(rest, "../")
	}
	rest = strings.TrimLeft(rest, "/")
	return strings.TrimRight(base, "/") + "/" + rest
}
