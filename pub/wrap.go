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

// WrapInCreate handles the bare-object case: when a C2S outbox POST
// submits a bare object instead of an activity, the engine wraps it in a
// Create whose actor is the submitting actor and whose recipients are
// copied from the object.
func WrapInCreate(obj *streams.Value, actor *url.URL) *streams.Value {
	create := streams.New("Create")
	create.SetIRIs("actor", []*url.URL{actor})
	create.SetValues("object", []*streams.Value{obj})
	for _, key := range addressingKeys {
		create.SetIRIs(key, obj.IRIs(key))
	}
	return create
}

// AddNewIDs mints a fresh id for v and,
// when v is an Activity, for every embedded object in its "object" property
// that does not already carry one.
func AddNewIDs(ctx *Context, v *streams.Value) error {
	if !v.HasProperty("id") {
		id, err := ctx.DB.NewID(ctx.Go, v)
		if err != nil {
			return err
		}
		v.SetID(id)
	}
	if !v.Is("Activity") {
		return nil
	}
	objects := v.Values("object")
	changed := false
	for _, obj := range objects {
		if obj.HasProperty("id") {
			continue
		}
		id, err := ctx.DB.NewID(ctx.Go, obj)
		if err != nil {
			return err
		}
		obj.SetID(id)
		changed = true
	}
	if changed {
		v.SetValues("object", objects)
	}
	return nil
}
