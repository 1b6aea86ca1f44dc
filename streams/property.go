// fedcore is a server framework for implementing an ActivityPub application.
// Copyright (C) 2020 Cory Slep
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

package streams

import "net/url"

// toSlice normalizes a raw JSON-LD property value (absent, a scalar, or an
// array) into a slice of its elements.
func toSlice(raw interface{}) []interface{} {
	if raw == nil {
		return nil
	}
	if s, ok := raw.([]interface{}); ok {
		return s
	}
	return []interface{}{raw}
}

// elementValue resolves one property element (a bare IRI string or an
// embedded object map) into a *Value.
func elementValue(elem interface{}) *Value {
	switch e := elem.(type) {
	case string:
		return &Value{raw: map[string]interface{}{"id": e}}
	case map[string]interface{}:
		return &Value{raw: e}
	default:
		return nil
	}
}

// elementID resolves one property element to its IRI, whether it is a bare
// IRI string or an embedded object carrying an "id".
func elementID(elem interface{}) (*url.URL, error) {
	switch e := elem.(type) {
	case string:
		return url.Parse(e)
	case map[string]interface{}:
		id, ok := e["id"].(string)
		if !ok || id == "" {
			return nil, ErrMissingID
		}
		return url.Parse(id)
	default:
		return nil, ErrMissingID
	}
}

// Values returns every element of a (possibly absent, scalar, or array-
// valued) property as a *Value, resolving embedded objects and wrapping bare
// IRIs as id-only values.
func (v *Value) Values(key string) []*Value {
	elems := toSlice(v.raw[key])
	out := make([]*Value, 0, len(elems))
	for _, e := range elems {
		if val := elementValue(e); val != nil {
			out = append(out, val)
		}
	}
	return out
}

// IRIs returns the IRIs of every element of a property, whether the
// elements are bare IRIs or embedded objects.
func (v *Value) IRIs(key string) []*url.URL {
	elems := toSlice(v.raw[key])
	out := make([]*url.URL, 0, len(elems))
	for _, e := range elems {
		if id, err := elementID(e); err == nil {
			out = append(out, id)
		}
	}
	return out
}

// HasIRI reports whether a property contains the given IRI among its
// elements.
func (v *Value) HasIRI(key string, iri *url.URL) bool {
	for _, id := range v.IRIs(key) {
		if id.String() == iri.String() {
			return true
		}
	}
	return false
}

// SetIRIs overwrites a property with a plain array of IRI strings. Engine
// code always writes addressing properties (to/bto/cc/bcc/audience) and
// reference properties (actor/object/target) back out this way, even when
// it originally read embedded objects in, since downstream federated peers
// only need the id.
func (v *Value) SetIRIs(key string, iris []*url.URL) {
	if len(iris) == 0 {
		delete(v.raw, key)
		return
	}
	arr := make([]interface{}, len(iris))
	for i, id := range iris {
		arr[i] = id.String()
	}
	v.raw[key] = arr
}

// SetValues overwrites a property with an array of embedded values.
func (v *Value) SetValues(key string, vals []*Value) {
	if len(vals) == 0 {
		delete(v.raw, key)
		return
	}
	arr := make([]interface{}, len(vals))
	for i, val := range vals {
		arr[i] = val.raw
	}
	v.raw[key] = arr
}

// AppendIRI adds an IRI to the end of a property's element list, preserving
// whatever elements are already there.
func (v *Value) AppendIRI(key string, iri *url.URL) {
	elems := toSlice(v.raw[key])
	v.raw[key] = append(elems, iri.String())
}

// PrependIRI adds an IRI to the front of a property's element list.
func (v *Value) PrependIRI(key string, iri *url.URL) {
	elems := toSlice(v.raw[key])
	v.raw[key] = append([]interface{}{iri.String()}, elems...)
}
