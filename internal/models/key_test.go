package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCacheKeyOrderInsensitive(t *testing.T) {
	a := NewCacheKey("main", 777, []float64{121, 6, 51})
	b := NewCacheKey("main", 777, []float64{51, 121, 6})
	assert.Equal(t, a, b)
	assert.Equal(t, "main|777|6,51,121", a.String())
}

func TestCacheKeyTextRoundTrip(t *testing.T) {
	orig := NewCacheKey("main", 56.5, []float64{1, 55.5})

	text, err := orig.MarshalText()
	require.NoError(t, err)

	var parsed CacheKey
	require.NoError(t, parsed.UnmarshalText(text))
	assert.Equal(t, orig, parsed)
}

func TestCacheKeyAsJSONMapKey(t *testing.T) {
	key := NewCacheKey("main", 56, []float64{1, 55})
	data, err := json.Marshal(map[CacheKey]int{key: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"main|56|1,55": 3}`, string(data))

	var decoded map[CacheKey]int
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 3, decoded[key])
}

func TestCacheKeyUnmarshalMalformed(t *testing.T) {
	var k CacheKey
	assert.Error(t, k.UnmarshalText([]byte("no-separators")))
	assert.Error(t, k.UnmarshalText([]byte("main|not-a-number|1,2")))
}

func TestOperandSignature(t *testing.T) {
	assert.Equal(t, "", OperandSignature(nil))
	assert.Equal(t, "5", OperandSignature([]float64{5}))
	assert.Equal(t, "-2,3,10", OperandSignature([]float64{10, -2, 3}))
}
