package domain

// DefaultHistoryLimit caps the persisted search history length.
const DefaultHistoryLimit = 8

// SearchHistoryEntry is one recorded search: the query pair, a snapshot
// of the most recently fetched page, and the reported total. Timestamp
// (epoch milliseconds) is the entry's identity and sort key.
type SearchHistoryEntry struct {
	Query      string       `json:"query"`
	Target     SearchTarget `json:"target,omitempty"`
	Timestamp  int64        `json:"timestamp"`
	Results    []BookRecord `json:"results"`
	TotalCount int          `json:"total_count"`
}

// SearchHistory is the persisted history document, newest first.
// Invariant: at most one entry per (query, target) pair and at most
// limit entries overall.
type SearchHistory struct {
	Items []SearchHistoryEntry `json:"items"`
}

// Record inserts entry at the front, removing any prior entry for the
// same (query, target) pair first and truncating to limit afterwards.
// A non-positive limit falls back to DefaultHistoryLimit.
func (h *SearchHistory) Record(entry SearchHistoryEntry, limit int) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	items := h.Items[:0]
	for _, it := range h.Items {
		if it.Query == entry.Query && it.Target == entry.Target {
			continue
		}
		items = append(items, it)
	}

	h.Items = append([]SearchHistoryEntry{entry}, items...)
	if len(h.Items) > limit {
		h.Items = h.Items[:limit]
	}
}

// Remove deletes the entry with the exact timestamp.
// Returns false when no entry matched.
func (h *SearchHistory) Remove(timestamp int64) bool {
	for i, it := range h.Items {
		if it.Timestamp == timestamp {
			h.Items = append(h.Items[:i], h.Items[i+1:]...)
			return true
		}
	}
	return false
}
