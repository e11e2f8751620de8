package canon

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBytesSortsObjectKeys(t *testing.T) {
	require := require.New(t)
	a, err := Bytes(map[string]any{"b": 1, "a": 2})
	require.NoError(err)
	require.Equal(`{"a":2,"b":1}`, string(a))
}

func TestBytesIsOrderIndependent(t *testing.T) {
	require := require.New(t)
	a, err := Bytes(map[string]any{"product": "widget", "amount": 10})
	require.NoError(err)
	b, err := Bytes(map[string]any{"amount": 10, "product": "widget"})
	require.NoError(err)
	require.Equal(a, b)
}

func TestBytesIntegersHaveNoDecimalPoint(t *testing.T) {
	require := require.New(t)
	out, err := Bytes(map[string]any{"amount": 1200})
	require.NoError(err)
	require.Equal(`{"amount":1200}`, string(out))
}

func TestBytesNestedStructures(t *testing.T) {
	require := require.New(t)
	out, err := Bytes(map[string]any{
		"items": []any{"a", "b"},
		"meta":  map[string]any{"z": 1, "a": 2},
	})
	require.NoError(err)
	require.Equal(`{"items":["a","b"],"meta":{"a":2,"z":1}}`, string(out))
}

func TestBytesRejectsNaNAndInf(t *testing.T) {
	_, err := Bytes(map[string]any{"x": math.NaN()})
	require.Error(t, err)
	var target *ErrNotCanonicalizable
	require.ErrorAs(t, err, &target)

	_, err = Bytes(map[string]any{"x": math.Inf(1)})
	require.Error(t, err)
}

func TestBytesFromJSONMatchesBytes(t *testing.T) {
	require := require.New(t)
	v := map[string]any{"b": 1, "a": "two"}
	want, err := Bytes(v)
	require.NoError(err)

	got, err := BytesFromJSON([]byte(`{"b":1,"a":"two"}`))
	require.NoError(err)
	require.Equal(want, got)
}

func TestBytesEscapesStrings(t *testing.T) {
	require := require.New(t)
	out, err := Bytes(map[string]any{"note": "quote\" and \\backslash"})
	require.NoError(err)
	require.Contains(string(out), `\"`)
}

// TestBytesDoesNotHTMLEscape guards against encoding/json's default
// HTML-safe escaping of '<', '>' and '&', which would make hash_T and
// every signature diverge from a plain json.dumps implementation.
func TestBytesDoesNotHTMLEscape(t *testing.T) {
	require := require.New(t)
	out, err := Bytes(map[string]any{"route": "A->B", "tag": "<ok> & ok"})
	require.NoError(err)
	require.Equal(`{"route":"A->B","tag":"<ok> & ok"}`, string(out))
}
