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

// sideEffectFollowC2S has no default side effect beyond the activity
// handler callback; a Follow sent from our own outbox is simply delivered.
func sideEffectFollowC2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	return resolveC2SActivityHandler(ctx).Dispatch(ctx, activity)
}

// sideEffectFollowS2S handles an incoming federated Follow: when one of
// the Follow's objects is an actor this instance owns, apply the
// configured OnFollow policy: do nothing, or synthesize and deliver an
// Accept/Reject wrapping the Follow, updating the local actor's followers
// collection on auto-accept.
func sideEffectFollowS2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	policy := OnFollowDoNothing
	if f := resolveFederating(ctx); f != nil {
		policy = f.OnFollow(ctx)
	}
	if policy == OnFollowDoNothing {
		return resolveS2SActivityHandler(ctx).Dispatch(ctx, activity)
	}

	var ownedObject *url.URL
	for _, obj := range activity.IRIs("object") {
		owns, err := ctx.DB.Owns(ctx.Go, obj)
		if err != nil {
			return nil, err
		}
		if owns {
			ownedObject = obj
			break
		}
	}
	if ownedObject == nil {
		return resolveS2SActivityHandler(ctx).Dispatch(ctx, activity)
	}

	followID, err := activity.ID()
	if err != nil {
		return nil, err
	}
	followers := activity.IRIs("actor")

	respType := "Reject"
	if policy == OnFollowAutoAccept {
		respType = "Accept"
	}
	resp := streams.New(respType)
	resp.SetIRIs("actor", []*url.URL{ownedObject})
	resp.SetIRIs("object", []*url.URL{followID})
	resp.SetIRIs("to", followers)

	if policy == OnFollowAutoAccept {
		if err := addToFollowers(ctx, ownedObject, followers); err != nil {
			return nil, err
		}
	}

	if err := deliverFromActor(ctx, ownedObject, resp); err != nil {
		return nil, err
	}

	return resolveS2SActivityHandler(ctx).Dispatch(ctx, activity)
}

// addToFollowers resolves actorIRI's followers collection and adds every id
// in newFollowers to it.
func addToFollowers(ctx *Context, actorIRI *url.URL, newFollowers []*url.URL) error {
	actor, err := ctx.DB.Get(ctx.Go, actorIRI)
	if err != nil {
		return err
	}
	followersColl, err := actor.Followers()
	if err != nil {
		// No followers collection configured for this actor: nothing to
		// update.
		return nil
	}
	return ctx.DB.UpdateCollection(ctx.Go, followersColl, CollectionUpdate{Add: newFollowers})
}

// sideEffectAcceptC2S has no default side effect beyond the activity
// handler.
func sideEffectAcceptC2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	return resolveC2SActivityHandler(ctx).Dispatch(ctx, activity)
}

// sideEffectAcceptS2S handles an incoming federated Accept: when the
// Accept's object is one of our outstanding Follow activities, and
// every accepting actor was an object of that original Follow, add the
// accepting actors to the Follow's own actor's following collection.
func sideEffectAcceptS2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	acceptingActors := activity.IRIs("actor")
	for _, objID := range activity.IRIs("object") {
		follow, err := ctx.DB.Get(ctx.Go, objID)
		if err != nil {
			return nil, err
		}
		if !follow.Is("Follow") {
			continue
		}
		followTargets := follow.IRIs("object")
		if !allIn(acceptingActors, followTargets) {
			continue
		}
		for _, followerIRI := range follow.IRIs("actor") {
			owns, err := ctx.DB.Owns(ctx.Go, followerIRI)
			if err != nil {
				return nil, err
			}
			if !owns {
				continue
			}
			if err := addToFollowing(ctx, followerIRI, acceptingActors); err != nil {
				return nil, err
			}
		}
	}
	return resolveS2SActivityHandler(ctx).Dispatch(ctx, activity)
}

func addToFollowing(ctx *Context, actorIRI *url.URL, newFollowing []*url.URL) error {
	actor, err := ctx.DB.Get(ctx.Go, actorIRI)
	if err != nil {
		return err
	}
	followingColl, err := actor.Following()
	if err != nil {
		return nil
	}
	return ctx.DB.UpdateCollection(ctx.Go, followingColl, CollectionUpdate{Add: newFollowing})
}

func allIn(needles, haystack []*url.URL) bool {
	if len(needles) == 0 {
		return false
	}
	set := make(map[string]bool, len(haystack))
	for _, h := range haystack {
		set[h.String()] = true
	}
	for _, n := range needles {
		if !set[n.String()] {
			return false
		}
	}
	return true
}

// sideEffectRejectC2S has no default side effect beyond the activity
// handler.
func sideEffectRejectC2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	return resolveC2SActivityHandler(ctx).Dispatch(ctx, activity)
}

// sideEffectRejectS2S has no default side effect beyond the activity
// handler: rejecting a Follow simply declines to add anything.
func sideEffectRejectS2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	return resolveS2SActivityHandler(ctx).Dispatch(ctx, activity)
}
