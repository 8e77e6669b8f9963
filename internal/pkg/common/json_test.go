package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject_Plain(t *testing.T) {
	got, err := ExtractJSONObject(`{"found":true}`)
	require.NoError(t, err)
	assert.Equal(t, `{"found":true}`, got)
}

func TestExtractJSONObject_WrappedInProse(t *testing.T) {
	raw := "Sure! Here is the estimate:\n```json\n{\"calories\": 550}\n```\nLet me know if you need more."

	got, err := ExtractJSONObject(raw)
	require.NoError(t, err)
	assert.Equal(t, `{"calories": 550}`, got)
}

func TestExtractJSONObject_NoBraces(t *testing.T) {
	_, err := ExtractJSONObject("I could not find that product.")
	assert.Error(t, err)
}

func TestExtractJSONObject_ReversedBraces(t *testing.T) {
	_, err := ExtractJSONObject("} oops {")
	assert.Error(t, err)
}

func TestQuoteJSONKeys(t *testing.T) {
	raw := `{name: "big mac", nutrition: {calories: 550, protein_g: 25}}`
	want := `{"name": "big mac", "nutrition": {"calories": 550, "protein_g": 25}}`

	assert.Equal(t, want, QuoteJSONKeys(raw))
}

func TestQuoteJSONKeys_AlreadyQuoted(t *testing.T) {
	raw := `{"name": "big mac"}`
	assert.Equal(t, raw, QuoteJSONKeys(raw))
}

func TestParseJSON_RejectsTrailingData(t *testing.T) {
	var v map[string]interface{}
	err := ParseJSON(`{"a":1} {"b":2}`, &v)
	assert.Error(t, err)
}

func TestParseJSONStrict_UnknownField(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	err := ParseJSONStrict(`{"name":"x","extra":1}`, &v)
	assert.Error(t, err)

	require.NoError(t, ParseJSON(`{"name":"x","extra":1}`, &v))
	assert.Equal(t, "x", v.Name)
}
