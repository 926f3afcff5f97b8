package words

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
)

var ErrDuplicateSlug = errors.New("duplicate slug")

// Collection maps slugs to records and remembers insertion order. The words
// collection is inserted in ascending slug order; home words are inserted
// latest first.
type Collection struct {
	slugs   []string
	records map[string]*Record
}

func newCollection(capacity int) *Collection {
	return &Collection{
		slugs:   make([]string, 0, capacity),
		records: make(map[string]*Record, capacity),
	}
}

func (c *Collection) add(r *Record) error {
	if prev, ok := c.records[r.Slug]; ok {
		return fmt.Errorf("%w %q (%q, %q)", ErrDuplicateSlug, r.Slug, prev.Word, r.Word)
	}
	c.slugs = append(c.slugs, r.Slug)
	c.records[r.Slug] = r
	return nil
}

func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.slugs)
}

func (c *Collection) Get(slug string) (*Record, bool) {
	if c == nil {
		return nil, false
	}
	r, ok := c.records[slug]
	return r, ok
}

// Slugs returns the slugs in collection order.
func (c *Collection) Slugs() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.slugs)
}

// Records returns the records in collection order.
func (c *Collection) Records() []*Record {
	if c == nil {
		return nil
	}
	out := make([]*Record, len(c.slugs))
	for i, slug := range c.slugs {
		out[i] = c.records[slug]
	}
	return out
}

// All iterates slug/record pairs in collection order.
func (c *Collection) All() iter.Seq2[string, *Record] {
	return func(yield func(string, *Record) bool) {
		if c == nil {
			return
		}
		for _, slug := range c.slugs {
			if !yield(slug, c.records[slug]) {
				return
			}
		}
	}
}

// ByDate returns the records ordered by submission date, latest first. Ties
// keep collection order; records without a date sort last.
func (c *Collection) ByDate() []*Record {
	out := c.Records()
	slices.SortStableFunc(out, func(a, b *Record) int {
		return b.Submitted.Compare(a.Submitted)
	})
	return out
}

// MarshalJSON writes the collection as a JSON object in collection order.
func (c *Collection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, slug := range c.slugs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalPlain(slug)
		if err != nil {
			return nil, err
		}
		value, err := marshalPlain(c.records[slug])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", slug, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WriteJSON writes the collection pretty-printed with two-space indentation.
func (c *Collection) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// marshalPlain marshals v without escaping HTML characters, so text that is
// already entity-escaped is stored verbatim.
func marshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
