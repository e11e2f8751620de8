// Package canon implements the canonical-bytes rule: a deterministic JSON
// rendering used everywhere a hash or signature is computed. Two documents
// that denote the same JSON value canonicalize to identical bytes regardless
// of map key order, Go struct field order, or how the value was decoded.
package canon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// ErrNotCanonicalizable is returned when a value has no representation in
// the canonical JSON data model (e.g. NaN/Inf floats, map keys json.Marshal
// cannot render as strings, or a value json.Marshal itself rejects).
type ErrNotCanonicalizable struct {
	Reason string
}

func (e *ErrNotCanonicalizable) Error() string {
	return fmt.Sprintf("canon: not canonicalizable: %s", e.Reason)
}

// Bytes renders v — typically a map[string]any decoded from JSON, or any
// json.Marshal-able Go value — as canonical JSON: object keys sorted
// lexicographically at every level, no insignificant whitespace, UTF-8
// output, integers without a decimal point, and lowercase literals for
// booleans and null.
//
// The encoder is pure and total over the JSON data model: it never mutates
// its input and never depends on external state.
func Bytes(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, &ErrNotCanonicalizable{Reason: err.Error()}
	}
	var generic any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, &ErrNotCanonicalizable{Reason: err.Error()}
	}
	var buf bytes.Buffer
	if err := encodeValue(&buf, generic); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BytesFromJSON re-canonicalizes an already-marshaled JSON document,
// verifying it denotes a value this encoder can render.
func BytesFromJSON(raw json.RawMessage) ([]byte, error) {
	var generic any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, &ErrNotCanonicalizable{Reason: err.Error()}
	}
	var buf bytes.Buffer
	if err := encodeValue(&buf, generic); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v any) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case json.Number:
		return encodeNumber(buf, t)
	case string:
		return encodeString(buf, t)
	case []any:
		return encodeArray(buf, t)
	case map[string]any:
		return encodeObject(buf, t)
	default:
		return &ErrNotCanonicalizable{Reason: fmt.Sprintf("unsupported type %T", v)}
	}
}

func encodeNumber(buf *bytes.Buffer, n json.Number) error {
	if i, err := n.Int64(); err == nil {
		buf.WriteString(strconv.FormatInt(i, 10))
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return &ErrNotCanonicalizable{Reason: "invalid number literal " + n.String()}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return &ErrNotCanonicalizable{Reason: "NaN/Inf is not representable in canonical JSON"}
	}
	buf.WriteString(n.String())
	return nil
}

// encodeString writes s as a JSON string literal without HTML-escaping
// '<', '>' and '&'. encoding/json's default Marshal escapes those three
// runes for safe embedding in HTML, which the canonical form must not do:
// a document containing any of them would otherwise canonicalize to bytes
// that diverge from every other implementation's plain json.dumps output.
func encodeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return &ErrNotCanonicalizable{Reason: err.Error()}
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

func encodeArray(buf *bytes.Buffer, arr []any) error {
	buf.WriteByte('[')
	for i, item := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeValue(buf, item); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func encodeObject(buf *bytes.Buffer, obj map[string]any) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeString(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := encodeValue(buf, obj[k]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}
