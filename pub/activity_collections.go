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

// sideEffectAddC2S and sideEffectAddS2S are identical for both halves: if we own the target and it is a
// Collection or OrderedCollection, prepend the object ids to it; otherwise
// this is a no-op beyond the activity handler.
func sideEffectAddC2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	if err := applyAdd(ctx, activity); err != nil {
		return nil, err
	}
	return resolveC2SActivityHandler(ctx).Dispatch(ctx, activity)
}

func sideEffectAddS2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	if err := applyAdd(ctx, activity); err != nil {
		return nil, err
	}
	return resolveS2SActivityHandler(ctx).Dispatch(ctx, activity)
}

func applyAdd(ctx *Context, activity *streams.Value) error {
	objects := activity.IRIs("object")
	targets := activity.IRIs("target")
	if len(objects) == 0 {
		return ErrObjectRequired("Add requires at least one object")
	}
	if len(targets) == 0 {
		return ErrTargetRequired("Add requires a target")
	}
	for _, target := range targets {
		owns, err := ctx.DB.Owns(ctx.Go, target)
		if err != nil {
			return err
		}
		if !owns {
			continue
		}
		if err := ctx.DB.UpdateCollection(ctx.Go, target, CollectionUpdate{Add: objects}); err != nil {
			return err
		}
	}
	return nil
}

// sideEffectRemoveC2S and sideEffectRemoveS2S are Add's mirror image.
func sideEffectRemoveC2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	if err := applyRemove(ctx, activity); err != nil {
		return nil, err
	}
	return resolveC2SActivityHandler(ctx).Dispatch(ctx, activity)
}

func sideEffectRemoveS2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	if err := applyRemove(ctx, activity); err != nil {
		return nil, err
	}
	return resolveS2SActivityHandler(ctx).Dispatch(ctx, activity)
}

func applyRemove(ctx *Context, activity *streams.Value) error {
	objects := activity.IRIs("object")
	targets := activity.IRIs("target")
	if len(objects) == 0 {
		return ErrObjectRequired("Remove requires at least one object")
	}
	if len(targets) == 0 {
		return ErrTargetRequired("Remove requires a target")
	}
	for _, target := range targets {
		owns, err := ctx.DB.Owns(ctx.Go, target)
		if err != nil {
			return err
		}
		if !owns {
			continue
		}
		if err := ctx.DB.UpdateCollection(ctx.Go, target, CollectionUpdate{Remove: objects}); err != nil {
			return err
		}
	}
	return nil
}

// sideEffectLikeC2S appends the liked object ids to the actor's own liked
// collection.
func sideEffectLikeC2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	objects := activity.IRIs("object")
	if len(objects) == 0 {
		return nil, ErrObjectRequired("Like requires at least one object")
	}
	for _, actorIRI := range activity.IRIs("actor") {
		actor, err := ctx.DB.Get(ctx.Go, actorIRI)
		if err != nil {
			return nil, err
		}
		liked, err := actor.Liked()
		if err != nil {
			continue
		}
		if err := ctx.DB.UpdateCollection(ctx.Go, liked, CollectionUpdate{Add: objects}); err != nil {
			return nil, err
		}
	}
	return resolveC2SActivityHandler(ctx).Dispatch(ctx, activity)
}

// sideEffectLikeS2S implements Like (S2S): for each liked object this
// instance owns, fold the Like's id into that object's likes collection,
// creating it if absent.
func sideEffectLikeS2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	if err := foldIntoOwnedCollection(ctx, activity, "likes"); err != nil {
		return nil, err
	}
	return resolveS2SActivityHandler(ctx).Dispatch(ctx, activity)
}

// sideEffectAnnounceS2S implements Announce (S2S): the same fold, into the
// announced object's shares collection.
func sideEffectAnnounceS2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	if err := foldIntoOwnedCollection(ctx, activity, "shares"); err != nil {
		return nil, err
	}
	return resolveS2SActivityHandler(ctx).Dispatch(ctx, activity)
}

// sideEffectAnnounceC2S has no default side effect beyond the activity
// handler.
func sideEffectAnnounceC2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	return resolveC2SActivityHandler(ctx).Dispatch(ctx, activity)
}

// foldIntoOwnedCollection prepends activity's id into the property-named
// collection (likes/shares) of every object it references that this
// instance owns, creating the collection in place if the object does not
// carry one yet.
func foldIntoOwnedCollection(ctx *Context, activity *streams.Value, property string) error {
	id, err := activity.ID()
	if err != nil {
		return err
	}
	for _, objID := range activity.IRIs("object") {
		owns, err := ctx.DB.Owns(ctx.Go, objID)
		if err != nil {
			return err
		}
		if !owns {
			continue
		}
		obj, err := ctx.DB.Get(ctx.Go, objID)
		if err != nil {
			return err
		}
		collIRI, ok := obj.StringProperty(property)
		if !ok || collIRI == "" {
			coll := streams.NewOrderedCollection(collectionIRIFor(objID, property), []*url.URL{id})
			if _, _, err := ctx.DB.Create(ctx.Go, coll); err != nil {
				return err
			}
			obj.SetProperty(property, coll.Raw()["id"])
			if _, err := ctx.DB.Update(ctx.Go, obj); err != nil {
				return err
			}
			continue
		}
		u, err := url.Parse(collIRI)
		if err != nil {
			return err
		}
		if err := ctx.DB.UpdateCollection(ctx.Go, u, CollectionUpdate{Add: []*url.URL{id}}); err != nil {
			return err
		}
	}
	return nil
}

// collectionIRIFor derives an id for a freshly created likes/shares
// collection hanging off objID.
func collectionIRIFor(objID *url.URL, suffix string) *url.URL {
	u := *objID
	u.Path = u.Path + "/" + suffix
	return &u
}
