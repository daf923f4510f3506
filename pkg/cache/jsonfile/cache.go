// Package jsonfile is an exact-match query/answer cache kept as one
// pretty-printed JSON document per namespace file.
//
// Every operation reads the whole document and Store writes it back in
// full. There is no locking: two processes storing into the same
// namespace at once can lose one of the updates.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/aish-cli/aish/pkg/models"
)

// Clock returns the current time.
type Clock func() time.Time

// Cache resolves namespaces to files under a root directory.
type Cache struct {
	root string
	now  Clock
}

// New creates a Cache rooted at dir.
func New(dir string) *Cache {
	return &Cache{root: dir, now: time.Now}
}

// NewHome creates a Cache rooted at the user's home directory.
func NewHome() (*Cache, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, &Error{Op: "resolve home", Kind: ErrHomeDirUnresolvable, Err: err}
	}
	return New(home), nil
}

// WithClock sets the clock used for entry timestamps.
func (c *Cache) WithClock(now Clock) *Cache {
	c.now = now
	return c
}

// Path returns the file backing namespace.
func (c *Cache) Path(namespace string) string {
	return filepath.Join(c.root, namespace)
}

// Lookup returns the answer stored for query in namespace.
func (c *Cache) Lookup(namespace, query string) (string, bool, error) {
	if err := checkText(c.Path(namespace), "query", query); err != nil {
		return "", false, err
	}
	doc, err := c.Load(namespace)
	if err != nil {
		return "", false, err
	}
	answer, ok := doc.Find(query)
	return answer, ok, nil
}

// Store records answer for query, replacing any earlier answer.
func (c *Cache) Store(namespace, query, answer string) error {
	if err := checkText(c.Path(namespace), "query", query); err != nil {
		return err
	}
	if err := checkText(c.Path(namespace), "answer", answer); err != nil {
		return err
	}
	doc, err := c.Load(namespace)
	if err != nil {
		return err
	}
	doc.Insert(query, answer, Timestamp(c.now()))
	return c.Save(namespace, doc)
}

// Load reads every entry of namespace. A missing file is an empty document.
func (c *Cache) Load(namespace string) (*models.CacheDocument, error) {
	path := c.Path(namespace)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &models.CacheDocument{Entries: []models.CacheEntry{}}, nil
	}
	if err != nil {
		return nil, &Error{Op: "read", Path: path, Kind: ErrIO, Err: err}
	}

	doc, err := decode(data)
	if err != nil {
		return nil, &Error{Op: "parse", Path: path, Kind: ErrParse, Err: err}
	}
	return doc, nil
}

// Save overwrites namespace with doc.
func (c *Cache) Save(namespace string, doc *models.CacheDocument) error {
	path := c.Path(namespace)
	for _, e := range doc.Entries {
		if err := checkText(path, "query", e.Query); err != nil {
			return err
		}
		if err := checkText(path, "answer", e.Answer); err != nil {
			return err
		}
	}
	data, err := encode(doc)
	if err != nil {
		return &Error{Op: "encode", Path: path, Kind: ErrIO, Err: err}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return &Error{Op: "write", Path: path, Kind: ErrIO, Err: err}
	}
	return nil
}

// Timestamp formats t as RFC 3339 in UTC with second precision.
func Timestamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

// checkText rejects strings that JSON cannot carry unchanged. Invalid
// UTF-8 would be rewritten to U+FFFD and never match again.
func checkText(path, name, s string) error {
	if utf8.ValidString(s) {
		return nil
	}
	return &Error{Op: "check " + name, Path: path, Kind: ErrNotText, Err: fmt.Errorf("%q", s)}
}

// decode parses a cache document. Field names match exactly, absent or
// null fields are errors and unknown fields are ignored.
func decode(data []byte) (*models.CacheDocument, error) {
	if !utf8.Valid(data) {
		return nil, errors.New("invalid UTF-8")
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}
	rawEntries, err := field(top, "entries")
	if err != nil {
		return nil, err
	}
	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(rawEntries, &entries); err != nil {
		return nil, fmt.Errorf("field \"entries\": %w", err)
	}

	doc := &models.CacheDocument{Entries: make([]models.CacheEntry, 0, len(entries))}
	for i, raw := range entries {
		var e models.CacheEntry
		fields := []struct {
			name string
			dst  *string
		}{
			{"query", &e.Query},
			{"answer", &e.Answer},
			{"timestamp", &e.Timestamp},
		}
		for _, f := range fields {
			if err := stringField(raw, f.name, f.dst); err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
		}
		doc.Entries = append(doc.Entries, e)
	}
	return doc, nil
}

func field(obj map[string]json.RawMessage, name string) (json.RawMessage, error) {
	v, ok := obj[name]
	if !ok || string(v) == "null" {
		return nil, fmt.Errorf("missing field %q", name)
	}
	return v, nil
}

func stringField(obj map[string]json.RawMessage, name string, dst *string) error {
	v, err := field(obj, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	return nil
}

// encode renders doc indented by two spaces with a single trailing newline.
func encode(doc *models.CacheDocument) ([]byte, error) {
	out := *doc
	if out.Entries == nil {
		out.Entries = []models.CacheEntry{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
