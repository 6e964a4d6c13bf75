package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNullableNumber(t *testing.T) {
	tests := []struct {
		raw     string
		want    *float64
		wantErr bool
	}{
		{`null`, nil, false},
		{`""`, nil, false},
		{`"  "`, nil, false},
		{`1200`, ptr(1200), false},
		{`"1200.50"`, ptr(1200.5), false},
		{`" 42 "`, ptr(42), false},
		{`"abc"`, nil, true},
		{`"NaN"`, nil, true},
		{`"Inf"`, nil, true},
		{`true`, nil, true},
		{`[1]`, nil, true},
	}
	for _, tt := range tests {
		got, err := nullableNumber("rentFrom", json.RawMessage(tt.raw))
		if tt.wantErr {
			ve := requireValidation(t, err)
			require.Contains(t, ve.Message, "rentFrom", tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		require.Equal(t, tt.want, got, tt.raw)
	}
}

func TestRequiredInt(t *testing.T) {
	for raw, want := range map[string]int{`2`: 2, `"3"`: 3, `"0"`: 0, `2.0`: 2} {
		got, ok := requiredInt(json.RawMessage(raw))
		require.True(t, ok, raw)
		require.Equal(t, want, got, raw)
	}
	for _, raw := range []string{`"two"`, `2.5`, `null`, `""`, `false`, `1e12`} {
		_, ok := requiredInt(json.RawMessage(raw))
		require.False(t, ok, raw)
	}
}

func TestBooleanCoercion(t *testing.T) {
	truthy := []string{`true`, `1`, `2.5`, `"true"`, `"TRUE"`, `"1"`, `"on"`, `"yes"`}
	falsy := []string{`false`, `0`, `null`, `"false"`, `"0"`, `"off"`, `"no"`, `""`}
	for _, raw := range truthy {
		v, err := boolean("available", json.RawMessage(raw))
		require.NoError(t, err, raw)
		require.True(t, v, raw)
	}
	for _, raw := range falsy {
		v, err := boolean("available", json.RawMessage(raw))
		require.NoError(t, err, raw)
		require.False(t, v, raw)
	}
	for _, raw := range []string{`"maybe"`, `[]`, `{}`} {
		_, err := boolean("available", json.RawMessage(raw))
		requireValidation(t, err)
	}
}

func TestAmenities(t *testing.T) {
	got, err := amenities(json.RawMessage(`[" Parking ", "", "  ", null, "Laundry", 24]`))
	require.NoError(t, err)
	require.Equal(t, []string{"Parking", "Laundry", "24"}, got)

	got, err = amenities(json.RawMessage(`[]`))
	require.NoError(t, err)
	require.Empty(t, got)

	for _, raw := range []string{`"Parking"`, `null`, `{"a":1}`, `[{"a":1}]`} {
		_, err := amenities(json.RawMessage(raw))
		requireValidation(t, err)
	}
}

func TestText(t *testing.T) {
	v, err := text("name", json.RawMessage(`"  Main St  "`))
	require.NoError(t, err)
	require.Equal(t, "Main St", v)

	v, err = text("zip", json.RawMessage(`4448`))
	require.NoError(t, err)
	require.Equal(t, "4448", v)

	_, err = text("name", json.RawMessage(`["x"]`))
	requireValidation(t, err)
}

func TestParseFields(t *testing.T) {
	f, err := ParseFields([]byte(`{"a": 1, "b": null}`))
	require.NoError(t, err)
	require.True(t, f.has("b"))
	require.True(t, f.blank("b"))
	require.True(t, f.blank("missing"))
	require.False(t, f.blank("a"))

	for _, body := range []string{`null`, `[]`, `"x"`, `{`} {
		_, err := ParseFields([]byte(body))
		requireValidation(t, err)
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Main St":               "main-st",
		"  6 Main St. / Unit A": "6-main-st-unit-a",
		"Élan Apartments":       "lan-apartments",
		"!!!":                   "property",
	}
	for in, want := range tests {
		require.Equal(t, want, Slugify(in), in)
	}
}

func ptr(f float64) *float64 { return &f }
