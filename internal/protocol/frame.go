package protocol

import (
	"encoding/json"
	"errors"
)

// ErrNotObject is returned by Parse for valid JSON that is not an object.
var ErrNotObject = errors.New("frame is not a JSON object")

// Frame is one JSON message exchanged over a socket. Ad hoc top-level
// fields are preserved so plugin frames can be broadcast verbatim.
type Frame map[string]any

// Parse decodes raw bytes into a Frame.
func Parse(data []byte) (Frame, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return Frame(obj), nil
}

// Marshal encodes the frame to JSON. Frames are built from decoded JSON
// and string constants, so encoding cannot fail.
func (f Frame) Marshal() []byte {
	data, _ := json.Marshal(f)
	return data
}

// Type returns the top-level "type" field, or "".
func (f Frame) Type() string {
	return f.Str("type")
}

// ID returns the top-level "id" field, or "".
func (f Frame) ID() string {
	return f.Str("id")
}

// Realm returns the realm carried by the envelope: the top-level
// "realm" field if present, otherwise "payload.realm".
func (f Frame) Realm() string {
	if r := f.Str("realm"); r != "" {
		return r
	}
	return f.PayloadStr("realm")
}

// Payload returns the "payload" object, or nil.
func (f Frame) Payload() map[string]any {
	p, _ := f["payload"].(map[string]any)
	return p
}

// Str returns a top-level string field, or "".
func (f Frame) Str(key string) string {
	s, _ := f[key].(string)
	return s
}

// PayloadStr returns a string field nested under "payload", or "".
func (f Frame) PayloadStr(key string) string {
	s, _ := f.Payload()[key].(string)
	return s
}

// Field returns the named value from the payload if present there,
// falling back to the envelope's top level. Legacy producers use both.
func (f Frame) Field(keys ...string) any {
	p := f.Payload()
	for _, k := range keys {
		if v, ok := p[k]; ok {
			return v
		}
	}
	for _, k := range keys {
		if v, ok := f[k]; ok {
			return v
		}
	}
	return nil
}

// FieldStr is Field narrowed to strings.
func (f Frame) FieldStr(keys ...string) string {
	s, _ := f.Field(keys...).(string)
	return s
}

// WithRealm returns a shallow copy of the frame with the top-level
// realm set. The original is left untouched so concurrent broadcasts
// never mutate a shared map.
func (f Frame) WithRealm(realm string) Frame {
	out := make(Frame, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	out["realm"] = realm
	return out
}
