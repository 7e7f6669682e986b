package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CartographyEntry is the representative record kept for a lot within a context.
type CartographyEntry struct {
	Version      string `json:"version"`
	Category     string `json:"category"`
	Status       string `json:"status"`
	DeliveryDate string `json:"delivery_date"` // DateLayout, empty when unknown.
	Mantis       string `json:"mantis"`
}

// CartographyLot pairs a lot name with its entry.
type CartographyLot struct {
	Name  string
	Entry CartographyEntry
}

// CartographyContext holds the lots of one context in first-seen order.
type CartographyContext struct {
	Name string
	Lots []CartographyLot
}

type cartographyKey struct {
	context string
	lot     string
}

// Cartography is the context → lot → entry report. Both levels keep
// insertion order, and the JSON form is an object whose key order matches.
type Cartography struct {
	Contexts []CartographyContext

	ctxIdx map[string]int
	lotIdx map[cartographyKey]int
}

func (c *Cartography) ensureIndex() {
	if c.ctxIdx != nil {
		return
	}
	c.ctxIdx = make(map[string]int, len(c.Contexts))
	c.lotIdx = make(map[cartographyKey]int)
	for ci, ctx := range c.Contexts {
		c.ctxIdx[ctx.Name] = ci
		for li, lot := range ctx.Lots {
			c.lotIdx[cartographyKey{ctx.Name, lot.Name}] = li
		}
	}
}

// Get returns the entry stored for (context, lot).
func (c *Cartography) Get(context, lot string) (CartographyEntry, bool) {
	c.ensureIndex()
	ci, ok := c.ctxIdx[context]
	if !ok {
		return CartographyEntry{}, false
	}
	li, ok := c.lotIdx[cartographyKey{context, lot}]
	if !ok {
		return CartographyEntry{}, false
	}
	return c.Contexts[ci].Lots[li].Entry, true
}

// Set stores entry for (context, lot). New contexts and lots are appended;
// existing ones are replaced in place.
func (c *Cartography) Set(context, lot string, entry CartographyEntry) {
	c.ensureIndex()
	ci, ok := c.ctxIdx[context]
	if !ok {
		c.Contexts = append(c.Contexts, CartographyContext{Name: context})
		ci = len(c.Contexts) - 1
		c.ctxIdx[context] = ci
	}

	key := cartographyKey{context, lot}
	if li, ok := c.lotIdx[key]; ok {
		c.Contexts[ci].Lots[li].Entry = entry
		return
	}
	c.Contexts[ci].Lots = append(c.Contexts[ci].Lots, CartographyLot{Name: lot, Entry: entry})
	c.lotIdx[key] = len(c.Contexts[ci].Lots) - 1
}

// Len returns the total number of (context, lot) entries.
func (c *Cartography) Len() int {
	n := 0
	for _, ctx := range c.Contexts {
		n += len(ctx.Lots)
	}
	return n
}

// MarshalJSON encodes the cartography as nested objects, preserving order.
func (c *Cartography) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for ci, ctx := range c.Contexts {
		if ci > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONKey(&buf, ctx.Name); err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		for li, lot := range ctx.Lots {
			if li > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONKey(&buf, lot.Name); err != nil {
				return nil, err
			}
			entry, err := json.Marshal(lot.Entry)
			if err != nil {
				return nil, fmt.Errorf("marshal entry %s/%s: %w", ctx.Name, lot.Name, err)
			}
			buf.Write(entry)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONKey(buf *bytes.Buffer, key string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	return nil
}

// UnmarshalJSON decodes nested objects produced by MarshalJSON, keeping key order.
func (c *Cartography) UnmarshalJSON(data []byte) error {
	*c = Cartography{}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	for dec.More() {
		context, err := readKey(dec)
		if err != nil {
			return err
		}
		if err := expectDelim(dec, '{'); err != nil {
			return err
		}
		if !dec.More() {
			// Keep empty contexts so the structure round-trips as written.
			c.ensureIndex()
			if _, ok := c.ctxIdx[context]; !ok {
				c.Contexts = append(c.Contexts, CartographyContext{Name: context})
				c.ctxIdx[context] = len(c.Contexts) - 1
			}
		}
		for dec.More() {
			lot, err := readKey(dec)
			if err != nil {
				return err
			}
			var entry CartographyEntry
			if err := dec.Decode(&entry); err != nil {
				return fmt.Errorf("decode entry %s/%s: %w", context, lot, err)
			}
			c.Set(context, lot, entry)
		}
		if err := expectDelim(dec, '}'); err != nil {
			return err
		}
	}
	return expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read cartography: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("read cartography: expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("read cartography key: %w", err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("read cartography key: expected string, got %v", tok)
	}
	return key, nil
}
