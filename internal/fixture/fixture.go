// Package fixture builds catalogue pages shaped like books.toscrape.com for tests.
package fixture

import (
	"fmt"
	"strings"
)

var ratings = []string{"One", "Two", "Three", "Four", "Five"}

// Listing is one product_pod entry.
type Listing struct {
	Title  string
	Price  string
	Stock  string
	Rating string
	Image  string
}

// Listings returns count generated listings numbered from first.
func Listings(first, count int) []Listing {
	out := make([]Listing, 0, count)
	for i := 0; i < count; i++ {
		id := first + i
		out = append(out, Listing{
			Title:  fmt.Sprintf("Book %d", id),
			Price:  fmt.Sprintf("£%d.%02d", 10+id%40, id%100),
			Stock:  "In stock",
			Rating: Rating(id),
			Image:  fmt.Sprintf("../media/cache/%02x/book-%d.jpg", id%256, id),
		})
	}
	return out
}

// Rating returns the rating word used for listing id.
func Rating(id int) string {
	return ratings[id%len(ratings)]
}

// CatalogPage renders count generated listings numbered from first.
func CatalogPage(first, count int) string {
	return Page(Listings(first, count)...)
}

// Page renders the given listings inside the site's page chrome.
func Page(listings ...Listing) string {
	var builder strings.Builder
	builder.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>All products</title></head><body>")
	builder.WriteString("<div class=\"page_inner\"><section><ol class=\"row\">")

	for _, l := range listings {
		builder.WriteString("<li class=\"col-xs-6 col-sm-4 col-md-3 col-lg-3\"><article class=\"product_pod\">")
		fmt.Fprintf(&builder, "<div class=\"image_container\"><a href=\"book/index.html\"><img src=\"%s\" alt=\"%s\" class=\"thumbnail\"></a></div>", l.Image, escape(l.Title))
		fmt.Fprintf(&builder, "<p class=\"star-rating %s\"><i class=\"icon-star\"></i></p>", l.Rating)
		fmt.Fprintf(&builder, "<h3><a href=\"book/index.html\" title=\"%s\">%s</a></h3>", escape(l.Title), escape(l.Title))
		builder.WriteString("<div class=\"product_price\">")
		fmt.Fprintf(&builder, "<p class=\"price_color\">%s</p>", escape(l.Price))
		fmt.Fprintf(&builder, "<p class=\"instock availability\">\n    <i class=\"icon-ok\"></i>\n    \n        %s\n    \n</p>", escape(l.Stock))
		builder.WriteString("</div></article></li>")
	}

	builder.WriteString("</ol></section></div></body></html>")
	return builder.String()
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\"", "&quot;")
	return r.Replace(s)
}
