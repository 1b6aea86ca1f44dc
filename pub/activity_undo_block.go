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
	"fmt"

	"github.com/hearthgate/fedcore/streams"
)

// sideEffectUndoC2S and sideEffectUndoS2S are identical for both halves: the union of actors on the Undo must
// cover the union of actors on every activity it references, dereferencing
// a reference given only as an IRI. No collection state is touched here:
// an Undo of a Like/Follow/Announce relies on the application's own handler
// (registered in the C2S/S2S handler table) to reverse the earlier side
// effect, since only it knows which collection that was.
func sideEffectUndoC2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	if err := checkUndoAuthority(ctx, activity); err != nil {
		return nil, err
	}
	return resolveC2SActivityHandler(ctx).Dispatch(ctx, activity)
}

func sideEffectUndoS2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	if err := checkUndoAuthority(ctx, activity); err != nil {
		return nil, err
	}
	return resolveS2SActivityHandler(ctx).Dispatch(ctx, activity)
}

func checkUndoAuthority(ctx *Context, activity *streams.Value) error {
	undoActors := activity.IRIs("actor")
	if len(undoActors) == 0 {
		return ErrActorRequired("Undo requires an actor")
	}
	objects := activity.Values("object")
	if len(objects) == 0 {
		return ErrObjectRequired("Undo requires at least one object")
	}
	for _, obj := range objects {
		target := obj
		if !target.HasProperty("actor") {
			id, err := obj.ID()
			if err != nil {
				return err
			}
			deref, err := dereferenceVia(ctx, id)
			if err != nil {
				return err
			}
			target = deref
		}
		targetActors := target.IRIs("actor")
		if !allIn(targetActors, undoActors) {
			return fmt.Errorf("pub: Undo actor %v does not cover referenced activity's actor %v", undoActors, targetActors)
		}
	}
	return nil
}

// sideEffectBlockC2S marks the current request non-deliverable: a Block
// must never be federated to the blocked party.
func sideEffectBlockC2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	ctx.State.Deliverable = false
	return resolveC2SActivityHandler(ctx).Dispatch(ctx, activity)
}

// sideEffectBlockS2S has no default side effect beyond the activity
// handler: whether to actually block future activity from the named actor
// is policy the host application owns.
func sideEffectBlockS2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	return resolveS2SActivityHandler(ctx).Dispatch(ctx, activity)
}
