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

// sideEffectCreateC2S applies a client-submitted Create: union every actor
// id into every object's attributedTo, and the reverse; normalize
// recipients between the activity and its wrapped objects; persist
// each wrapped object. The activity itself is persisted by PostOutbox, not
// here.
func sideEffectCreateC2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	objects := activity.Values("object")
	if len(objects) == 0 {
		return nil, ErrObjectRequired("Create requires at least one object")
	}

	actors := activity.IRIs("actor")
	if len(actors) == 0 {
		return nil, ErrActorRequired("Create requires an actor")
	}
	allActors := append([]*url.URL{}, actors...)
	for _, obj := range objects {
		allActors = append(allActors, obj.IRIs("attributedTo")...)
	}
	allActors = DedupeIRIs(allActors)
	activity.SetIRIs("actor", allActors)
	for _, obj := range objects {
		obj.SetIRIs("attributedTo", allActors)
	}

	NormalizeRecipients(activity, objects)

	for _, obj := range objects {
		stored, _, err := ctx.DB.Create(ctx.Go, obj)
		if err != nil {
			return nil, err
		}
		*obj = *stored
	}
	activity.SetValues("object", objects)

	return resolveC2SActivityHandler(ctx).Dispatch(ctx, activity)
}

// sideEffectCreateS2S implements Create (S2S): persist every wrapped object,
// dereferencing it first if the activity carried only its IRI.
func sideEffectCreateS2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	objects := activity.Values("object")
	if len(objects) == 0 {
		return nil, ErrObjectRequired("Create requires at least one object")
	}

	resolved := make([]*streams.Value, 0, len(objects))
	for _, obj := range objects {
		if !obj.HasProperty("type") {
			id, err := obj.ID()
			if err != nil {
				return nil, err
			}
			deref, err := dereferenceVia(ctx, id)
			if err != nil {
				return nil, err
			}
			obj = deref
		}
		stored, _, err := ctx.DB.Create(ctx.Go, obj)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, stored)
	}
	activity.SetValues("object", resolved)

	return resolveS2SActivityHandler(ctx).Dispatch(ctx, activity)
}

// dereferenceVia fetches iri using a transport scoped to the current box.
func dereferenceVia(ctx *Context, iri *url.URL) (*streams.Value, error) {
	t, err := ctx.DB.NewTransport(ctx.Go, ctx.State.BoxIRI, ctx.State.AppAgent)
	if err != nil {
		return nil, err
	}
	v, err := t.Dereference(ctx.Go, iri)
	if err != nil {
		return nil, ErrTransportFailure(err)
	}
	return v, nil
}
