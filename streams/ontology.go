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

// extends maps an ActivityStreams type name to its immediate supertype, just
// far enough to answer the "is this value, or a type it extends from, X?"
// questions the engine actually asks (Activity-ness, Collection-ness,
// Object-ness). It is not a complete reproduction of the AS2 core vocabulary
// graph.
var extends = map[string]string{
	// Activities.
	"Create":   "Activity",
	"Update":   "Activity",
	"Delete":   "Activity",
	"Follow":   "Activity",
	"Accept":   "Activity",
	"Reject":   "Activity",
	"Add":      "Activity",
	"Remove":   "Activity",
	"Like":     "Activity",
	"Announce": "Activity",
	"Undo":     "Activity",
	"Block":    "Activity",

	// Other standard activities, so a host application's own activity
	// types still validate as Activities even though this engine has no
	// default side effects for them.
	"Arrive":              "IntransitiveActivity",
	"Travel":              "IntransitiveActivity",
	"IntransitiveActivity": "Activity",
	"Flag":                "Activity",
	"Ignore":              "Activity",
	"Join":                "Activity",
	"Leave":               "Activity",
	"Offer":               "Activity",
	"Invite":              "Offer",
	"Question":            "Activity",
	"TentativeAccept":     "Accept",
	"TentativeReject":     "Reject",
	"View":                "Activity",
	"Listen":              "Activity",
	"Read":                "Activity",
	"Move":                "Activity",

	// Collections.
	"OrderedCollection":     "Collection",
	"OrderedCollectionPage": "OrderedCollection",
	"CollectionPage":        "Collection",

	// Objects.
	"Tombstone":    "Object",
	"Note":         "Object",
	"Article":      "Object",
	"Image":        "Object",
	"Video":        "Object",
	"Audio":        "Object",
	"Document":     "Object",
	"Page":         "Object",
	"Event":        "Object",
	"Place":        "Object",
	"Profile":      "Object",
	"Relationship": "Object",
	"Mention":      "Link",

	// Actor types.
	"Person":       "Object",
	"Group":        "Object",
	"Organization": "Object",
	"Application":  "Object",
	"Service":      "Object",
}

// IsOrExtends reports whether typeName is target or (transitively) extends
// it, walking the ontology graph above.
func IsOrExtends(typeName, target string) bool {
	seen := make(map[string]bool)
	for typeName != "" && !seen[typeName] {
		if typeName == target {
			return true
		}
		seen[typeName] = true
		typeName = extends[typeName]
	}
	return false
}
