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

// itemsKey returns the property name holding a collection's members: plain
// Collections use "items", Ordered(Collection|CollectionPage) use
// "orderedItems".
func (v *Value) itemsKey() string {
	if v.Is("OrderedCollection") {
		return "orderedItems"
	}
	return "items"
}

// IsCollection reports whether the value is a Collection or OrderedCollection
// (or a page of either).
func (v *Value) IsCollection() bool {
	return v.Is("Collection")
}

// Items returns the collection's member IRIs in order.
func (v *Value) Items() []*url.URL {
	return v.IRIs(v.itemsKey())
}

// SetItems overwrites the collection's members.
func (v *Value) SetItems(iris []*url.URL) {
	v.SetIRIs(v.itemsKey(), iris)
}

// PrependItem adds an IRI to the front of the collection.
func (v *Value) PrependItem(iri *url.URL) {
	v.PrependIRI(v.itemsKey(), iri)
}

// RemoveItem removes every occurrence of iri from the collection.
func (v *Value) RemoveItem(iri *url.URL) {
	items := v.Items()
	out := make([]*url.URL, 0, len(items))
	for _, id := range items {
		if id.String() != iri.String() {
			out = append(out, id)
		}
	}
	v.SetItems(out)
}

// NewOrderedCollection builds a bare OrderedCollection with the given id and
// members, the shape inboxes/outboxes/followers/following/liked/likes/shares
// collections all share. The orderedItems array is always present, even when
// empty, so stores patching the JSON directly have something to append to.
func NewOrderedCollection(id *url.URL, items []*url.URL) *Value {
	v := New("OrderedCollection")
	v.SetID(id)
	v.SetProperty("totalItems", len(items))
	v.SetProperty("orderedItems", iriStrings(items))
	return v
}

// NewCollection builds a bare (unordered) Collection.
func NewCollection(id *url.URL, items []*url.URL) *Value {
	v := New("Collection")
	v.SetID(id)
	v.SetProperty("totalItems", len(items))
	v.SetProperty("items", iriStrings(items))
	return v
}

func iriStrings(items []*url.URL) []interface{} {
	arr := make([]interface{}, len(items))
	for i, id := range items {
		arr[i] = id.String()
	}
	return arr
}

// DedupeOrderedItems returns a copy of c whose member list contains only
// the first occurrence of each distinct id, preserving order. It is a
// pure function: c itself is not mutated.
func DedupeOrderedItems(c *Value) *Value {
	out := c.Clone()
	seen := make(map[string]bool)
	items := out.Items()
	deduped := make([]*url.URL, 0, len(items))
	for _, id := range items {
		s := id.String()
		if seen[s] {
			continue
		}
		seen[s] = true
		deduped = append(deduped, id)
	}
	out.SetItems(deduped)
	return out
}
