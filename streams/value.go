// fedcore is a server framework for implementing an ActivityPub application.
// Copyright (C) 2019 Cory Slep
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package streams is the ontology facade: it resolves a JSON-LD map into a
// typed ActivityStreams value, serializes one back, and answers "is this
// value, or a type it extends from, X?" questions. It deliberately does not
// attempt to be a complete AS2 vocabulary; it implements only the shapes the
// side-effect engine in package pub needs to read and write.
package streams

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// PublicIRI and its historical aliases denote the public, world-addressable
// pseudo-collection used in "to"/"cc"/etc.
const (
	PublicIRI           = "https://www.w3.org/ns/activitystreams#Public"
	PublicIRIAlias      = "as:Public"
	PublicIRIAliasShort = "Public"
)

// IsPublicIRI reports whether s is one of the known spellings of the public
// collection pseudo-IRI.
func IsPublicIRI(s string) bool {
	return s == PublicIRI || s == PublicIRIAlias || s == PublicIRIAliasShort
}

// Value is a typed ActivityStreams value backed by its raw JSON-LD map. The
// raw map is always reachable via Raw, so a caller that needs to tell
// "absent" from "present and null" never needs a second parallel
// structure.
type Value struct {
	raw map[string]interface{}
}

// New wraps an empty value of the given type.
func New(typeName string) *Value {
	return &Value{raw: map[string]interface{}{"type": typeName}}
}

// Resolve turns a JSON-LD map into a typed Value. It is intentionally
// permissive: the only requirement is that the map carry a "type".
func Resolve(m map[string]interface{}) (*Value, error) {
	if m == nil {
		return nil, fmt.Errorf("streams: cannot resolve nil map")
	}
	if _, ok := m["type"]; !ok {
		return nil, fmt.Errorf("streams: %w", ErrUnmatchedType)
	}
	return &Value{raw: m}, nil
}

// ResolveJSON parses raw JSON bytes and resolves the result.
func ResolveJSON(b []byte) (*Value, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("streams: invalid JSON: %w", err)
	}
	return Resolve(m)
}

// Serialize returns the value's JSON-LD map representation. The returned
// map is the value's own backing map; callers that mutate it must Clone
// first if they need to preserve the original.
func Serialize(v *Value) (map[string]interface{}, error) {
	if v == nil {
		return nil, fmt.Errorf("streams: cannot serialize nil value")
	}
	return v.raw, nil
}

// Raw exposes the backing map directly.
func (v *Value) Raw() map[string]interface{} {
	return v.raw
}

// Clone performs a deep copy via JSON round-trip, matching the teacher's own
// reliance on marshal/unmarshal for typed<->raw conversions rather than a
// hand-rolled deep-copy walker.
func (v *Value) Clone() *Value {
	b, err := json.Marshal(v.raw)
	if err != nil {
		// raw originated from json.Unmarshal or our own setters; it is
		// always marshalable.
		panic(fmt.Sprintf("streams: value failed to marshal during clone: %s", err))
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		panic(fmt.Sprintf("streams: value failed to unmarshal during clone: %s", err))
	}
	return &Value{raw: m}
}

// Type returns the value's primary type name, or "" if untyped.
func (v *Value) Type() string {
	switch t := v.raw["type"].(type) {
	case string:
		return t
	case []interface{}:
		if len(t) > 0 {
			if s, ok := t[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

// Is reports whether the value's type is, or extends, target.
func (v *Value) Is(target string) bool {
	return IsOrExtends(v.Type(), target)
}

// IsActivity reports whether the value is a valid Activity: its type is or
// extends "Activity", and it carries an id.
func (v *Value) IsActivity() bool {
	if !v.Is("Activity") {
		return false
	}
	_, err := v.ID()
	return err == nil
}

// ID returns the value's id property.
func (v *Value) ID() (*url.URL, error) {
	s, ok := v.raw["id"].(string)
	if !ok || s == "" {
		return nil, fmt.Errorf("streams: %w", ErrMissingID)
	}
	return url.Parse(s)
}

// SetID sets the value's id property.
func (v *Value) SetID(id *url.URL) {
	v.raw["id"] = id.String()
}

// HasProperty reports whether key is present in the raw map, regardless of
// its value (including an explicit JSON null). This is the "key absent vs.
// present with null" distinction the Update side effect depends on.
func (v *Value) HasProperty(key string) bool {
	_, ok := v.raw[key]
	return ok
}

// IsExplicitNull reports whether key is present and its JSON value is null.
func (v *Value) IsExplicitNull(key string) bool {
	val, ok := v.raw[key]
	return ok && val == nil
}

// DeleteProperty removes key entirely.
func (v *Value) DeleteProperty(key string) {
	delete(v.raw, key)
}

// SetProperty sets an arbitrary property to an arbitrary JSON-compatible
// value.
func (v *Value) SetProperty(key string, val interface{}) {
	v.raw[key] = val
}

// StringProperty returns a single string-valued property (used for
// "summary", "content", "name", "formerType", and the like).
func (v *Value) StringProperty(key string) (string, bool) {
	s, ok := v.raw[key].(string)
	return s, ok
}

// Published returns the "published" property, if present and parseable.
func (v *Value) Published() (time.Time, bool) {
	return v.timeProperty("published")
}

// Updated returns the "updated" property, if present and parseable.
func (v *Value) Updated() (time.Time, bool) {
	return v.timeProperty("updated")
}

func (v *Value) timeProperty(key string) (time.Time, bool) {
	s, ok := v.raw[key].(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SetTimeProperty sets a time-valued property using RFC3339, the wire format
// ActivityStreams uses for xsd:dateTime.
func (v *Value) SetTimeProperty(key string, t time.Time) {
	v.raw[key] = t.UTC().Format(time.RFC3339)
}
