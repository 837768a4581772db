package menuparse

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Categories is an insertion ordered mapping of category name to items
// the zero value is ready to use
type Categories struct {
	order []string
	items map[string][]string
}

// Start opens name as the current category with an empty item list
// a repeated name keeps its first position and drops the items collected so far
func (c *Categories) Start(name string) {
	if c.items == nil {
		c.items = make(map[string][]string)
	}
	if _, seen := c.items[name]; !seen {
		c.order = append(c.order, name)
	}
	c.items[name] = []string{}
}

// Append adds item under name, opening the category when needed
func (c *Categories) Append(name, item string) {
	if _, ok := c.items[name]; !ok {
		c.Start(name)
	}
	c.items[name] = append(c.items[name], item)
}

// Set replaces the items of name, mostly useful when rebuilding from storage
func (c *Categories) Set(name string, items ...string) {
	c.Start(name)
	c.items[name] = append(c.items[name], items...)
}

// Len returns the number of categories
func (c Categories) Len() int { return len(c.order) }

// Names returns category names in first seen order
func (c Categories) Names() []string { return append([]string(nil), c.order...) }

// Items returns a copy of the items under name
func (c Categories) Items(name string) []string {
	src := c.items[name]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Has reports whether name was ever started
func (c Categories) Has(name string) bool {
	_, ok := c.items[name]
	return ok
}

// MarshalJSON writes an object whose keys follow insertion order
func (c Categories) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		items := c.items[name]
		if items == nil {
			items = []string{}
		}
		v, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object and keeps the key order found in the input
func (c *Categories) UnmarshalJSON(b []byte) error {
	*c = Categories{}
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("menuparse: categories must be a json object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("menuparse: unexpected category key %v", tok)
		}
		var items []string
		if err := dec.Decode(&items); err != nil {
			return fmt.Errorf("menuparse: category %q: %w", name, err)
		}
		c.Set(name, items...)
	}
	_, err = dec.Token()
	return err
}
