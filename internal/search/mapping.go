package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for liked-book documents.
//
// The corpus is mostly Korean book metadata, so text fields use the CJK
// analyzer (bigram tokenization) rather than a stemming analyzer. ISBN
// and status are exact-match keywords; published_at and liked_at are
// numeric for recency sorting.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = cjk.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = cjk.AnalyzerName
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	// Contents blurb - searchable but not stored (the shelf document
	// already holds the full record)
	contentsFieldMapping := bleve.NewTextFieldMapping()
	contentsFieldMapping.Analyzer = cjk.AnalyzerName
	contentsFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("contents", contentsFieldMapping)

	authorsFieldMapping := bleve.NewTextFieldMapping()
	authorsFieldMapping.Analyzer = cjk.AnalyzerName
	authorsFieldMapping.Store = true
	authorsFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("authors", authorsFieldMapping)

	translatorsFieldMapping := bleve.NewTextFieldMapping()
	translatorsFieldMapping.Analyzer = cjk.AnalyzerName
	translatorsFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("translators", translatorsFieldMapping)

	publisherFieldMapping := bleve.NewTextFieldMapping()
	publisherFieldMapping.Analyzer = cjk.AnalyzerName
	publisherFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("publisher", publisherFieldMapping)

	// --- Keyword fields (exact match) ---

	isbnFieldMapping := bleve.NewTextFieldMapping()
	isbnFieldMapping.Analyzer = keyword.Name
	isbnFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("isbn", isbnFieldMapping)

	statusFieldMapping := bleve.NewTextFieldMapping()
	statusFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("status", statusFieldMapping)

	// --- Numeric fields (range queries, sorting) ---

	priceFieldMapping := bleve.NewNumericFieldMapping()
	priceFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("price", priceFieldMapping)

	publishedAtFieldMapping := bleve.NewNumericFieldMapping()
	publishedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("published_at", publishedAtFieldMapping)

	likedAtFieldMapping := bleve.NewNumericFieldMapping()
	likedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("liked_at", likedAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
