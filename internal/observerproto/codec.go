package observerproto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// NormalizeEncoding maps an empty encoding to JSON and rejects unknown ones.
func NormalizeEncoding(enc string) (string, error) {
	switch enc {
	case "", EncodingJSON:
		return EncodingJSON, nil
	case EncodingMsgpack:
		return EncodingMsgpack, nil
	}
	return "", fmt.Errorf("unsupported encoding %q", enc)
}

// Encode serializes an observer message. Msgpack frames reuse the json field names so both
// encodings decode into the same client-side shape.
func Encode(v any, enc string) ([]byte, error) {
	if enc != EncodingMsgpack {
		return json.Marshal(v)
	}
	var buf bytes.Buffer
	e := msgpack.NewEncoder(&buf)
	e.SetCustomStructTag("json")
	if err := e.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Decode(b []byte, enc string, v any) error {
	if enc != EncodingMsgpack {
		return json.Unmarshal(b, v)
	}
	d := msgpack.NewDecoder(bytes.NewReader(b))
	d.SetCustomStructTag("json")
	return d.Decode(v)
}
