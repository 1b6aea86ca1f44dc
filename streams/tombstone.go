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

import "time"

// NewTombstone produces a Tombstone replacing orig, preserving its id and
// former type and its published/updated timestamps, and stamping a new
// "deleted" timestamp.
func NewTombstone(orig *Value, now time.Time) *Value {
	id, _ := orig.ID()
	t := New("Tombstone")
	if id != nil {
		t.SetID(id)
	}
	t.SetProperty("formerType", orig.Type())
	if pub, ok := orig.Published(); ok {
		t.SetTimeProperty("published", pub)
	}
	if upd, ok := orig.Updated(); ok {
		t.SetTimeProperty("updated", upd)
	}
	t.SetTimeProperty("deleted", now)
	return t
}
