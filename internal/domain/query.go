package domain

import "fmt"

// SearchTarget restricts a search to a single provider field.
// The zero value means unrestricted free-text search; an empty string
// parses to the zero value so "" and "no target" compare equal everywhere
// (history dedup, query identity).
type SearchTarget string

// Search targets supported by the provider.
const (
	TargetNone      SearchTarget = ""
	TargetTitle     SearchTarget = "title"
	TargetISBN      SearchTarget = "isbn"
	TargetPublisher SearchTarget = "publisher"
	TargetPerson    SearchTarget = "person"
)

// ParseTarget converts a string to a SearchTarget.
func ParseTarget(s string) (SearchTarget, error) {
	switch SearchTarget(s) {
	case TargetNone, TargetTitle, TargetISBN, TargetPublisher, TargetPerson:
		return SearchTarget(s), nil
	default:
		return TargetNone, fmt.Errorf("unknown search target %q", s)
	}
}

// SearchSort orders provider results.
type SearchSort string

// Sort orders supported by the provider. Accuracy is the default.
const (
	SortAccuracy    SearchSort = "accuracy"
	SortLatest      SearchSort = "latest"
	SortPublishTime SearchSort = "publish_time"
)

// ParseSort converts a string to a SearchSort. Empty means accuracy.
func ParseSort(s string) (SearchSort, error) {
	switch SearchSort(s) {
	case "", SortAccuracy:
		return SortAccuracy, nil
	case SortLatest, SortPublishTime:
		return SearchSort(s), nil
	default:
		return SortAccuracy, fmt.Errorf("unknown sort order %q", s)
	}
}

// SearchQuery is the effective query sent to the provider.
type SearchQuery struct {
	Text   string       `json:"text"`
	Target SearchTarget `json:"target,omitempty"`
	Sort   SearchSort   `json:"sort,omitempty"`
}

// Active reports whether the query should issue fetches at all.
// Empty text means no fetch and an empty result set.
func (q SearchQuery) Active() bool {
	return q.Text != ""
}

// Identity is the comparable identity of a query: any change in text,
// target, or sort resets pagination, and pages from two identities are
// never concatenated.
func (q SearchQuery) Identity() string {
	sort := q.Sort
	if sort == "" {
		sort = SortAccuracy
	}
	return q.Text + "\x1f" + string(q.Target) + "\x1f" + string(sort)
}
