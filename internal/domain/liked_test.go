package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBook(isbn, title string) BookRecord {
	return BookRecord{
		ISBN:    isbn,
		Title:   title,
		Authors: []string{"author"},
	}
}

func TestLikedBooks_AddIsIdempotent(t *testing.T) {
	var liked LikedBooks

	assert.True(t, liked.Add(testBook("9788966260959", "클린 코드")))
	assert.False(t, liked.Add(testBook("9788966260959", "클린 코드")))

	assert.Equal(t, []string{"9788966260959"}, liked.ISBNs)
	assert.Len(t, liked.Books, 1)
	require.NoError(t, liked.CheckInvariant())
}

func TestLikedBooks_AddRejectsEmptyISBN(t *testing.T) {
	var liked LikedBooks

	assert.False(t, liked.Add(testBook("", "untracked")))
	assert.Empty(t, liked.ISBNs)
	assert.Empty(t, liked.Books)
}

func TestLikedBooks_AddThenRemoveRoundTrips(t *testing.T) {
	var liked LikedBooks
	liked.Add(testBook("111", "one"))

	liked.Add(testBook("222", "two"))
	assert.True(t, liked.Remove("222"))

	assert.Equal(t, []string{"111"}, liked.ISBNs)
	_, ok := liked.Get("222")
	assert.False(t, ok)
	require.NoError(t, liked.CheckInvariant())
}

func TestLikedBooks_RemoveAbsentIsNoop(t *testing.T) {
	var liked LikedBooks
	liked.Add(testBook("111", "one"))

	assert.False(t, liked.Remove("999"))
	assert.Equal(t, []string{"111"}, liked.ISBNs)
}

func TestLikedBooks_CheckInvariant(t *testing.T) {
	tests := []struct {
		name    string
		doc     LikedBooks
		wantErr bool
	}{
		{"empty", LikedBooks{}, false},
		{
			"consistent",
			LikedBooks{ISBNs: []string{"1"}, Books: []BookRecord{{ISBN: "1"}}},
			false,
		},
		{
			"missing record",
			LikedBooks{ISBNs: []string{"1"}},
			true,
		},
		{
			"duplicate isbn",
			LikedBooks{ISBNs: []string{"1", "1"}, Books: []BookRecord{{ISBN: "1"}, {ISBN: "1"}}},
			true,
		},
		{
			"orphan record",
			LikedBooks{ISBNs: []string{"1"}, Books: []BookRecord{{ISBN: "2"}}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.CheckInvariant()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
