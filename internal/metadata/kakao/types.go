// Package kakao provides a client for the Kakao book-search API.
package kakao

import (
	"time"

	"github.com/chaekjang/chaekjang-server/internal/domain"
)

// searchResponse is the raw Kakao API response.
type searchResponse struct {
	Meta      meta       `json:"meta"`
	Documents []Document `json:"documents"`
}

// meta carries pagination bookkeeping for a result page.
type meta struct {
	TotalCount    int  `json:"total_count"`
	PageableCount int  `json:"pageable_count"`
	IsEnd         bool `json:"is_end"`
}

// Document is a single book document on the wire. Exported because the
// legacy flat-file documents use the same shape and the import watcher
// reuses the conversion.
type Document struct {
	Title       string   `json:"title"`
	Contents    string   `json:"contents"`
	URL         string   `json:"url"`
	ISBN        string   `json:"isbn"`
	Datetime    string   `json:"datetime"`
	Authors     []string `json:"authors"`
	Publisher   string   `json:"publisher"`
	Translators []string `json:"translators"`
	Price       int      `json:"price"`
	SalePrice   int      `json:"sale_price"`
	Thumbnail   string   `json:"thumbnail"`
	Status      string   `json:"status"`
}

// ToDomain converts a wire document to a BookRecord.
// An unparseable datetime degrades to the zero time rather than failing
// the whole page.
func (d *Document) ToDomain() domain.BookRecord {
	publishedAt, err := time.Parse(time.RFC3339, d.Datetime)
	if err != nil {
		publishedAt = time.Time{}
	}

	return domain.BookRecord{
		ISBN:         d.ISBN,
		Title:        d.Title,
		Authors:      d.Authors,
		Translators:  d.Translators,
		Publisher:    d.Publisher,
		Contents:     d.Contents,
		URL:          d.URL,
		ThumbnailURL: d.Thumbnail,
		Price:        d.Price,
		SalePrice:    d.SalePrice,
		Status:       d.Status,
		PublishedAt:  publishedAt,
	}
}
