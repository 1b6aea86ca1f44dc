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
	"github.com/hearthgate/fedcore/streams"
)

// sideEffectDeleteC2S applies a client-submitted Delete: each referenced
// object is replaced in place with a Tombstone, never
// physically removed, so the outbox/collections that still reference its id
// resolve to something.
func sideEffectDeleteC2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	tombstones, err := replaceWithTombstones(ctx, activity, RealClock{})
	if err != nil {
		return nil, err
	}
	activity.SetValues("object", tombstones)
	return resolveC2SActivityHandler(ctx).Dispatch(ctx, activity)
}

// sideEffectDeleteS2S implements Delete (S2S): requires the referenced
// objects to share the activity's origin, then physically removes them.
func sideEffectDeleteS2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	ok, err := ObjectsMatchActivityOrigin(activity)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrWrongOrigin("Delete object does not share the activity's origin")
	}
	ids := activity.IRIs("object")
	if len(ids) == 0 {
		return nil, ErrObjectRequired("Delete requires at least one object")
	}
	for _, id := range ids {
		if err := ctx.DB.Delete(ctx.Go, id); err != nil {
			return nil, err
		}
	}
	return resolveS2SActivityHandler(ctx).Dispatch(ctx, activity)
}

func replaceWithTombstones(ctx *Context, activity *streams.Value, clock Clock) ([]*streams.Value, error) {
	ids := activity.IRIs("object")
	if len(ids) == 0 {
		return nil, ErrObjectRequired("Delete requires at least one object")
	}
	out := make([]*streams.Value, 0, len(ids))
	for _, id := range ids {
		orig, err := ctx.DB.Get(ctx.Go, id)
		if err != nil {
			return nil, err
		}
		tomb := streams.NewTombstone(orig, clock.Now().UTC())
		stored, err := ctx.DB.Update(ctx.Go, tomb)
		if err != nil {
			return nil, err
		}
		out = append(out, stored)
	}
	return out, nil
}
