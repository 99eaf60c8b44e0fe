// Package domain contains the core data model for book search and favorites.
package domain

import "time"

// BookRecord is an immutable book description as returned by the search
// provider. Identity is ISBN; records with an empty ISBN can be displayed
// but cannot participate in like or dedup logic.
type BookRecord struct {
	ISBN         string    `json:"isbn"`
	Title        string    `json:"title"`
	Authors      []string  `json:"authors"`
	Translators  []string  `json:"translators,omitempty"`
	Publisher    string    `json:"publisher"`
	Contents     string    `json:"contents"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Price        int       `json:"price"`
	SalePrice    int       `json:"sale_price"`
	Status       string    `json:"status,omitempty"`
	PublishedAt  time.Time `json:"published_at"`

	// CoverBlurhash is a compact placeholder for the thumbnail, computed
	// when the book is liked. Empty when probing failed or never ran.
	CoverBlurhash string `json:"cover_blurhash,omitempty"`
}

// SearchPage is one page of provider results. Pages are 1-indexed by the
// provider; accumulation is append-only per query identity.
type SearchPage struct {
	Items         []BookRecord `json:"items"`
	TotalCount    int          `json:"total_count"`
	PageableCount int          `json:"pageable_count"`
	IsLast        bool         `json:"is_last"`
}
