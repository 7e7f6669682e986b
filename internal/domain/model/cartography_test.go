package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCartography() *Cartography {
	c := &Cartography{}
	c.Set("Interfaces", "gateway", CartographyEntry{Version: "4", Category: "ITF", Status: "Delivered", DeliveryDate: "2025-03-10", Mantis: "0012"})
	c.Set("Application", "core", CartographyEntry{Version: "1.10", Category: "APP", Status: "Validated (production)", Mantis: "0007"})
	c.Set("Application", "billing", CartographyEntry{Version: "2", Category: "APP", Status: "Delivered", Mantis: "0009"})
	return c
}

func TestCartography_SetReplacesInPlace(t *testing.T) {
	c := sampleCartography()
	c.Set("Application", "core", CartographyEntry{Version: "2.0", Mantis: "0042"})

	got, ok := c.Get("Application", "core")
	require.True(t, ok)
	assert.Equal(t, "2.0", got.Version)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, "core", c.Contexts[1].Lots[0].Name, "replacement keeps position")
}

func TestCartography_GetMissing(t *testing.T) {
	c := sampleCartography()

	_, ok := c.Get("Batch", "core")
	assert.False(t, ok)
	_, ok = c.Get("Application", "gateway")
	assert.False(t, ok)
}

func TestCartography_MarshalPreservesOrder(t *testing.T) {
	data, err := json.Marshal(sampleCartography())
	require.NoError(t, err)

	s := string(data)
	assert.Less(t, strings.Index(s, `"Interfaces"`), strings.Index(s, `"Application"`))
	assert.Less(t, strings.Index(s, `"core"`), strings.Index(s, `"billing"`))
}

func TestCartography_JSONRoundTrip(t *testing.T) {
	orig := sampleCartography()

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var decoded Cartography
	require.NoError(t, json.Unmarshal(data, &decoded))

	if diff := cmp.Diff(triples(orig), triples(&decoded)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, orig.Contexts, decoded.Contexts)
}

func TestCartography_UnmarshalRejectsNonObject(t *testing.T) {
	var c Cartography
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &c))
}

func TestCartography_EmptyMarshal(t *testing.T) {
	data, err := json.Marshal(&Cartography{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

type triple struct{ Context, Lot, Version string }

func triples(c *Cartography) []triple {
	var out []triple
	for _, ctx := range c.Contexts {
		for _, lot := range ctx.Lots {
			out = append(out, triple{ctx.Name, lot.Name, lot.Entry.Version})
		}
	}
	return out
}
