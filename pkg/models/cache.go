package models

// CacheEntry is one remembered query and the answer it produced.
type CacheEntry struct {
	Query     string `json:"query"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

// CacheDocument is the full contents of one cache namespace file.
type CacheDocument struct {
	Entries []CacheEntry `json:"entries"`
}

// Find returns the answer stored for query.
func (d *CacheDocument) Find(query string) (string, bool) {
	for _, e := range d.Entries {
		if e.Query == query {
			return e.Answer, true
		}
	}
	return "", false
}

// Insert drops any entry with the same query and appends the new one,
// so a query never appears twice.
func (d *CacheDocument) Insert(query, answer, timestamp string) {
	kept := d.Entries[:0]
	for _, e := range d.Entries {
		if e.Query != query {
			kept = append(kept, e)
		}
	}
	d.Entries = append(kept, CacheEntry{
		Query:     query,
		Answer:    answer,
		Timestamp: timestamp,
	})
}
