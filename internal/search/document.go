// Package search provides full-text search over the liked-books shelf
// using Bleve. Shelf search is local and offline: it answers "which of my
// liked books match" without touching the upstream book provider.
package search

import (
	"strings"

	"github.com/chaekjang/chaekjang-server/internal/domain"
)

// LikedDocument is the Bleve document for one liked book.
// Authors and translators are denormalized into single text fields so a
// person search is one field match instead of an array traversal.
type LikedDocument struct {
	ISBN        string `json:"isbn"`
	Title       string `json:"title"`
	Contents    string `json:"contents,omitempty"`
	Authors     string `json:"authors,omitempty"`
	Translators string `json:"translators,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
	Status      string `json:"status,omitempty"`
	Price       int    `json:"price,omitempty"`
	PublishedAt int64  `json:"published_at"` // Unix millis, for recency sorting
	LikedAt     int64  `json:"liked_at"`     // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve indexes Go struct field names as-is, but the mapping uses
// lowercase names, so the conversion is explicit.
func (d *LikedDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"isbn":  d.ISBN,
		"title": d.Title,
	}
	if d.Contents != "" {
		m["contents"] = d.Contents
	}
	if d.Authors != "" {
		m["authors"] = d.Authors
	}
	if d.Translators != "" {
		m["translators"] = d.Translators
	}
	if d.Publisher != "" {
		m["publisher"] = d.Publisher
	}
	if d.Status != "" {
		m["status"] = d.Status
	}
	if d.Price > 0 {
		m["price"] = d.Price
	}
	if d.PublishedAt != 0 {
		m["published_at"] = d.PublishedAt
	}
	if d.LikedAt != 0 {
		m["liked_at"] = d.LikedAt
	}
	return m
}

// BookToDocument converts a liked book record to its index document.
// likedAt is when the book entered the shelf, in Unix millis.
func BookToDocument(book *domain.BookRecord, likedAt int64) *LikedDocument {
	doc := &LikedDocument{
		ISBN:        book.ISBN,
		Title:       book.Title,
		Contents:    book.Contents,
		Authors:     strings.Join(book.Authors, " "),
		Translators: strings.Join(book.Translators, " "),
		Publisher:   book.Publisher,
		Status:      book.Status,
		Price:       book.Price,
		LikedAt:     likedAt,
	}
	if !book.PublishedAt.IsZero() {
		doc.PublishedAt = book.PublishedAt.UnixMilli()
	}
	return doc
}
