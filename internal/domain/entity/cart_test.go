package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func price(v float64) *float64 { return &v }

func TestOptionsEqual(t *testing.T) {
	t.Parallel()

	t.Run("empty sets are equal", func(t *testing.T) {
		require.True(t, OptionsEqual(nil, nil))
		require.True(t, OptionsEqual(nil, []ItemOption{}))
		require.True(t, OptionsEqual([]ItemOption{}, []ItemOption{}))
	})

	t.Run("order never matters", func(t *testing.T) {
		a := []ItemOption{
			{Name: "size", Value: "large", Price: price(20)},
			{Name: "spice", Value: "hot"},
		}
		b := []ItemOption{
			{Name: "spice", Value: "hot"},
			{Name: "size", Value: "large", Price: price(20)},
		}
		require.True(t, OptionsEqual(a, b))
		require.True(t, OptionsEqual(b, a))
	})

	t.Run("cardinality splits", func(t *testing.T) {
		a := []ItemOption{{Name: "size", Value: "large"}}
		b := []ItemOption{{Name: "size", Value: "large"}, {Name: "size", Value: "large"}}
		require.False(t, OptionsEqual(a, b))
	})

	t.Run("price participates in equality", func(t *testing.T) {
		a := []ItemOption{{Name: "size", Value: "large", Price: price(20)}}
		b := []ItemOption{{Name: "size", Value: "large", Price: price(25)}}
		c := []ItemOption{{Name: "size", Value: "large"}}
		require.False(t, OptionsEqual(a, b))
		require.False(t, OptionsEqual(a, c))
	})

	t.Run("extra attributes participate in equality", func(t *testing.T) {
		a := []ItemOption{{Name: "size", Value: "large", Extra: map[string]any{"sku": "L1"}}}
		b := []ItemOption{{Name: "size", Value: "large", Extra: map[string]any{"sku": "L2"}}}
		c := []ItemOption{{Name: "size", Value: "large"}}
		require.False(t, OptionsEqual(a, b))
		require.False(t, OptionsEqual(a, c))
		require.True(t, OptionsEqual(a, a))
	})

	t.Run("value type matters", func(t *testing.T) {
		a := []ItemOption{{Name: "count", Value: "2"}}
		b := []ItemOption{{Name: "count", Value: float64(2)}}
		require.False(t, OptionsEqual(a, b))
	})
}

func TestCanonicalIsDeterministic(t *testing.T) {
	t.Parallel()

	o := ItemOption{
		Name:  "size",
		Value: "large",
		Price: price(20),
		Extra: map[string]any{"b": 1.0, "a": "x", "c": true},
	}
	first := o.Canonical()
	for i := 0; i < 50; i++ {
		require.Equal(t, first, o.Canonical())
	}
	// Keys come out sorted regardless of insertion order.
	require.JSONEq(t, `{"a":"x","b":1,"c":true,"name":"size","price":20,"value":"large"}`, first)
}

func TestItemOptionJSONRoundTrip(t *testing.T) {
	t.Parallel()

	raw := `{"name":"size","value":"large","price":20,"sku":"L1","organic":true}`
	var o ItemOption
	require.NoError(t, json.Unmarshal([]byte(raw), &o))
	require.Equal(t, "size", o.Name)
	require.Equal(t, "large", o.Value)
	require.Equal(t, 20.0, *o.Price)
	require.Equal(t, map[string]any{"sku": "L1", "organic": true}, o.Extra)

	// Equality survives a storage round trip.
	enc, err := EncodeOptions([]ItemOption{o})
	require.NoError(t, err)
	dec, err := DecodeOptions(enc)
	require.NoError(t, err)
	require.True(t, OptionsEqual([]ItemOption{o}, dec))
}

func TestItemOptionRejectsMalformedRecords(t *testing.T) {
	t.Parallel()

	var o ItemOption
	require.Error(t, json.Unmarshal([]byte(`{"name":42}`), &o))
	require.Error(t, json.Unmarshal([]byte(`{"name":"size","price":"20"}`), &o))
}

func TestDecodeOptionsEmpty(t *testing.T) {
	t.Parallel()

	dec, err := DecodeOptions(nil)
	require.NoError(t, err)
	require.NotNil(t, dec)
	require.Empty(t, dec)

	enc, err := EncodeOptions(nil)
	require.NoError(t, err)
	require.Equal(t, "[]", string(enc))
}
