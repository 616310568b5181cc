package model

import (
	"bytes"
	"encoding/json"
)

// Fingerprint maps platform-capability names to observed values (string,
// number, or boolean). Entries keep insertion order so report output is
// deterministic. Capabilities that could not be probed are simply absent.
type Fingerprint struct {
	names  []string
	values map[string]any
}

// NewFingerprint returns an empty fingerprint.
func NewFingerprint() *Fingerprint {
	return &Fingerprint{values: make(map[string]any)}
}

// Set records a capability value. Setting an existing name overwrites the
// value but keeps its original position.
func (f *Fingerprint) Set(name string, value any) {
	if _, ok := f.values[name]; !ok {
		f.names = append(f.names, name)
	}
	f.values[name] = value
}

// Get returns the value for a capability name.
func (f *Fingerprint) Get(name string) (any, bool) {
	v, ok := f.values[name]
	return v, ok
}

// Names returns the capability names in insertion order.
func (f *Fingerprint) Names() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Len returns the number of recorded capabilities.
func (f *Fingerprint) Len() int {
	return len(f.names)
}

// MarshalJSON renders the fingerprint as a JSON object preserving insertion
// order, so serialized reports stay byte-stable across runs with the same
// inputs.
func (f *Fingerprint) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range f.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores the fingerprint from a JSON object. Key order in the
// source document becomes the insertion order.
func (f *Fingerprint) UnmarshalJSON(data []byte) error {
	f.names = nil
	f.values = make(map[string]any)

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	// Opening brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		f.Set(name, value)
	}
	// Closing brace.
	_, err := dec.Token()
	return err
}
