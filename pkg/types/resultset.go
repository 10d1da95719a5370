// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformed reports a response body that is not a valid result set.
var ErrMalformed = errors.New("malformed result set")

// Record is one item returned by a database: ordered key/value data with no
// enforced schema. Values keep their received JSON so that re-encoding a
// record reproduces it.
type Record struct {
	keys   []string
	values map[string]json.RawMessage
}

// NewRecord builds a record from alternating key/value strings. A trailing
// key without a value is ignored.
func NewRecord(kv ...string) Record {
	var r Record
	for i := 0; i+1 < len(kv); i += 2 {
		raw, _ := encodeJSON(kv[i+1])
		r.set(kv[i], raw)
	}
	return r
}

func (r *Record) set(key string, raw json.RawMessage) {
	if r.values == nil {
		r.values = make(map[string]json.RawMessage)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = raw
}

// Get returns the value of key as text. Missing keys and null values yield
// "". Arrays are joined with ", " and other non-string values are returned
// as their JSON text.
func (r Record) Get(key string) string {
	raw, ok := r.values[key]
	if !ok {
		return ""
	}
	return rawText(raw)
}

// Has reports whether key carries a non-empty value.
func (r Record) Has(key string) bool {
	return r.Get(key) != ""
}

// Keys returns the record keys in received order.
func (r Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.keys) }

// Equal reports whether both records have the same keys in the same order
// with equivalent JSON values.
func (r Record) Equal(o Record) bool {
	if len(r.keys) != len(o.keys) {
		return false
	}
	for i, k := range r.keys {
		if o.keys[i] != k || !rawEqual(r.values[k], o.values[k]) {
			return false
		}
	}
	return true
}

// MarshalJSON writes the record as an object with keys in received order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encodeJSON(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(r.values[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	*r = Record{}
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return fmt.Errorf("record: %w", err)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("record field %q: %w", key, err)
		}
		r.set(key, raw)
	}
	return expectDelim(dec, '}')
}

// DatabaseResult is the outcome for one database: either an error message
// or an ordered list of records in server rank order.
type DatabaseResult struct {
	Records []Record
	Error   string
	failed  bool
}

// Found returns a successful result holding recs.
func Found(recs ...Record) DatabaseResult {
	return DatabaseResult{Records: recs}
}

// Failure returns a failed result carrying msg.
func Failure(msg string) DatabaseResult {
	return DatabaseResult{Error: msg, failed: true}
}

// Failed reports whether the database returned an error entry.
func (d DatabaseResult) Failed() bool { return d.failed }

// Contributes reports whether the database has at least one record.
func (d DatabaseResult) Contributes() bool {
	return !d.failed && len(d.Records) > 0
}

// Equal compares the tag and the payload.
func (d DatabaseResult) Equal(o DatabaseResult) bool {
	if d.failed != o.failed {
		return false
	}
	if d.failed {
		return d.Error == o.Error
	}
	if len(d.Records) != len(o.Records) {
		return false
	}
	for i := range d.Records {
		if !d.Records[i].Equal(o.Records[i]) {
			return false
		}
	}
	return true
}

// MarshalJSON writes {"error": msg} for failures and an array otherwise.
func (d DatabaseResult) MarshalJSON() ([]byte, error) {
	if d.failed {
		return encodeJSON(map[string]string{"error": d.Error})
	}
	recs := d.Records
	if recs == nil {
		recs = []Record{}
	}
	return encodeJSON(recs)
}

// UnmarshalJSON accepts an array of records, an object with an "error" key,
// or null (no records).
func (d *DatabaseResult) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("%w: empty database entry", ErrMalformed)
	}
	switch trimmed[0] {
	case 'n':
		*d = DatabaseResult{}
		return nil
	case '[':
		var recs []Record
		if err := json.Unmarshal(trimmed, &recs); err != nil {
			return err
		}
		*d = Found(recs...)
		return nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		raw, ok := obj["error"]
		if !ok {
			return fmt.Errorf("%w: object entry without error key", ErrMalformed)
		}
		*d = Failure(rawText(raw))
		return nil
	default:
		return fmt.Errorf("%w: unexpected database entry %.20s", ErrMalformed, trimmed)
	}
}

// ResultSet maps database names to their results, in response order.
// The zero value is an empty set ready to use.
type ResultSet struct {
	names   []string
	entries map[string]DatabaseResult
}

// Set stores res under name. A new name is appended; an existing one keeps
// its position.
func (s *ResultSet) Set(name string, res DatabaseResult) {
	if s.entries == nil {
		s.entries = make(map[string]DatabaseResult)
	}
	if _, ok := s.entries[name]; !ok {
		s.names = append(s.names, name)
	}
	s.entries[name] = res
}

// Get returns the result stored under name.
func (s ResultSet) Get(name string) (DatabaseResult, bool) {
	res, ok := s.entries[name]
	return res, ok
}

// Names returns the database names in response order.
func (s ResultSet) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of databases in the set.
func (s ResultSet) Len() int { return len(s.names) }

// IsEmpty reports whether the set has no databases at all.
func (s ResultSet) IsEmpty() bool { return len(s.names) == 0 }

// Clone returns a copy whose name order and entry map are independent of s.
func (s ResultSet) Clone() ResultSet {
	var c ResultSet
	for _, name := range s.names {
		c.Set(name, s.entries[name])
	}
	return c
}

// Equal reports whether both sets hold equal entries in the same order.
func (s ResultSet) Equal(o ResultSet) bool {
	if len(s.names) != len(o.names) {
		return false
	}
	for i, name := range s.names {
		if o.names[i] != name || !s.entries[name].Equal(o.entries[name]) {
			return false
		}
	}
	return true
}

// MarshalJSON writes the set as an object in response order.
func (s ResultSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encodeJSON(name)
		if err != nil {
			return nil, err
		}
		val, err := s.entries[name].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping key order. A literal null
// leaves the set unchanged.
func (s *ResultSet) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	rs, err := DecodeResultSet(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*s = rs
	return nil
}

// DecodeResultSet reads one result set object from r. Anything other than
// a JSON object whose values are valid database entries is ErrMalformed.
func DecodeResultSet(r io.Reader) (ResultSet, error) {
	dec := json.NewDecoder(r)
	if err := expectDelim(dec, '{'); err != nil {
		return ResultSet{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var rs ResultSet
	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return ResultSet{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return ResultSet{}, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
		}
		var res DatabaseResult
		if err := res.UnmarshalJSON(raw); err != nil {
			if errors.Is(err, ErrMalformed) {
				return ResultSet{}, fmt.Errorf("%s: %w", name, err)
			}
			return ResultSet{}, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
		}
		rs.Set(name, res)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return ResultSet{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if tok, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = fmt.Errorf("unexpected %v", tok)
		}
		return ResultSet{}, fmt.Errorf("%w: trailing data after result set: %v", ErrMalformed, err)
	}
	return rs, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

// encodeJSON marshals v without HTML escaping and without the trailing
// newline json.Encoder appends.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func rawText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err == nil {
			parts := make([]string, 0, len(items))
			for _, item := range items {
				if t := rawText(item); t != "" {
					parts = append(parts, t)
				}
			}
			return strings.Join(parts, ", ")
		}
	}
	return string(trimmed)
}

func rawEqual(a, b json.RawMessage) bool {
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return bytes.Equal(a, b)
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}
