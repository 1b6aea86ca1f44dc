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

package pub

import (
	"net/url"

	"github.com/hearthgate/fedcore/streams"
)

// addressingKeys are every property that can carry recipients.
var addressingKeys = []string{"to", "bto", "cc", "bcc", "audience"}

// directAddressingKeys excludes the two hidden-recipient properties, used by
// inbox-forwarding's "direct recipients" step.
var directAddressingKeys = []string{"to", "cc", "audience"}

// hiddenAddressingKeys are the two properties that must never leave this
// instance once an activity is delivered.
var hiddenAddressingKeys = []string{"bto", "bcc"}

// DedupeIRIs returns the distinct IRIs in iris, preserving first-seen order.
func DedupeIRIs(iris []*url.URL) []*url.URL {
	seen := make(map[string]bool, len(iris))
	out := make([]*url.URL, 0, len(iris))
	for _, u := range iris {
		s := u.String()
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, u)
	}
	return out
}

// ExtractRecipients unions the IRIs addressed by the given properties,
// deduplicated.
func ExtractRecipients(v *streams.Value, keys []string) []*url.URL {
	var out []*url.URL
	for _, k := range keys {
		out = append(out, v.IRIs(k)...)
	}
	return DedupeIRIs(out)
}

// ExtractAllRecipients unions to/bto/cc/bcc/audience.
func ExtractAllRecipients(v *streams.Value) []*url.URL {
	return ExtractRecipients(v, addressingKeys)
}

// ExtractDirectRecipients unions to/cc/audience, excluding the hidden
// bto/bcc properties.
func ExtractDirectRecipients(v *streams.Value) []*url.URL {
	return ExtractRecipients(v, directAddressingKeys)
}

// PartitionPublic splits recipients into the public pseudo-IRI (if present)
// and everyone else.
func PartitionPublic(recipients []*url.URL) (others []*url.URL, isPublic bool) {
	others = make([]*url.URL, 0, len(recipients))
	for _, r := range recipients {
		if streams.IsPublicIRI(r.String()) {
			isPublic = true
			continue
		}
		others = append(others, r)
	}
	return others, isPublic
}

// NormalizeRecipients normalizes addressing between a Create and its
// wrapped objects: for every address kind in {to, bto, cc, bcc, audience},
// the activity's set is made equal to the
// union of that kind across the activity and each wrapped object. Sibling
// objects are never merged with each other; each is unioned only with the
// activity itself, one at a time, and the activity accumulates the union of
// all of them.
func NormalizeRecipients(activity *streams.Value, objects []*streams.Value) {
	origActivity := make(map[string][]*url.URL, len(addressingKeys))
	for _, key := range addressingKeys {
		origActivity[key] = append([]*url.URL{}, activity.IRIs(key)...)
	}

	for _, key := range addressingKeys {
		union := append([]*url.URL{}, origActivity[key]...)
		for _, obj := range objects {
			union = append(union, obj.IRIs(key)...)
		}
		activity.SetIRIs(key, DedupeIRIs(union))
	}

	// Each object is normalized only against the activity's original
	// addressing, never against a sibling object's.
	for _, obj := range objects {
		for _, key := range addressingKeys {
			merged := append([]*url.URL{}, origActivity[key]...)
			merged = append(merged, obj.IRIs(key)...)
			obj.SetIRIs(key, DedupeIRIs(merged))
		}
	}
}

// StripHiddenRecipients removes bto/bcc from activity and from every object
// value embedded directly in its "object" property; values nested deeper
// than that are left as they are. It mutates activity in place.
func StripHiddenRecipients(activity *streams.Value) {
	for _, key := range hiddenAddressingKeys {
		activity.DeleteProperty(key)
	}
	objects := activity.Values("object")
	for _, obj := range objects {
		for _, key := range hiddenAddressingKeys {
			obj.DeleteProperty(key)
		}
	}
	if len(objects) > 0 {
		activity.SetValues("object", objects)
	}
}

// ObjectsMatchActivityOrigin reports whether every object id referenced by
// activity shares activity's id's host.
func ObjectsMatchActivityOrigin(activity *streams.Value) (bool, error) {
	actID, err := activity.ID()
	if err != nil {
		return false, err
	}
	for _, obj := range activity.IRIs("object") {
		if obj.Host != actID.Host {
			return false, nil
		}
	}
	return true, nil
}
