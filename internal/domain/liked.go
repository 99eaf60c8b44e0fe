package domain

import "fmt"

// LikedBooks is the persisted liked-set document: an ordered ISBN list
// plus cached records. Invariant: every liked ISBN has exactly one cached
// record and vice versa. The persisted order is preserved for stable
// serialization; membership ignores order.
type LikedBooks struct {
	ISBNs []string     `json:"isbns"`
	Books []BookRecord `json:"books"`
}

// Contains reports whether isbn is in the liked set.
func (l *LikedBooks) Contains(isbn string) bool {
	for _, id := range l.ISBNs {
		if id == isbn {
			return true
		}
	}
	return false
}

// Get returns the cached record for isbn.
func (l *LikedBooks) Get(isbn string) (BookRecord, bool) {
	for i := range l.Books {
		if l.Books[i].ISBN == isbn {
			return l.Books[i], true
		}
	}
	return BookRecord{}, false
}

// Add appends book to the liked set. Idempotent: returns false without
// modifying the document when the ISBN is already present or empty.
func (l *LikedBooks) Add(book BookRecord) bool {
	if book.ISBN == "" || l.Contains(book.ISBN) {
		return false
	}
	l.ISBNs = append(l.ISBNs, book.ISBN)
	l.Books = append(l.Books, book)
	return true
}

// Remove deletes isbn from both the ISBN list and the cached records.
// Idempotent: returns false when the ISBN was absent.
func (l *LikedBooks) Remove(isbn string) bool {
	if isbn == "" || !l.Contains(isbn) {
		return false
	}

	isbns := l.ISBNs[:0]
	for _, id := range l.ISBNs {
		if id != isbn {
			isbns = append(isbns, id)
		}
	}
	l.ISBNs = isbns

	books := l.Books[:0]
	for _, b := range l.Books {
		if b.ISBN != isbn {
			books = append(books, b)
		}
	}
	l.Books = books
	return true
}

// CheckInvariant verifies that ISBNs and the cached records describe the
// same set. Loaded documents are checked before use so a corrupt external
// write cannot leak half-applied state into the pipeline.
func (l *LikedBooks) CheckInvariant() error {
	if len(l.ISBNs) != len(l.Books) {
		return fmt.Errorf("liked set mismatch: %d isbns, %d records", len(l.ISBNs), len(l.Books))
	}
	seen := make(map[string]bool, len(l.ISBNs))
	for _, id := range l.ISBNs {
		if seen[id] {
			return fmt.Errorf("duplicate liked isbn %q", id)
		}
		seen[id] = true
	}
	for i := range l.Books {
		if !seen[l.Books[i].ISBN] {
			return fmt.Errorf("cached record %q has no liked isbn", l.Books[i].ISBN)
		}
	}
	return nil
}
