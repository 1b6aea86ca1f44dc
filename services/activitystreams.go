// fedcore is a server framework for implementing an ActivityPub application.
// Copyright (C) 2019 Cory Slep
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

package services

import (
	"net/url"

	"github.com/hearthgate/fedcore/app"
	"github.com/hearthgate/fedcore/paths"
	"github.com/hearthgate/fedcore/streams"
)

// addNextPrev adds the 'next' and 'prev' properties onto a collection page,
// if required. A single function covers both ordered and unordered pages
// since streams.Value erases that distinction at the type level.
func addNextPrev(page *streams.Value, start, n int, isEnd bool) error {
	iri, err := page.ID()
	if err != nil {
		return err
	}
	// Prev
	if start > 0 {
		pStart := start - n
		if pStart < 0 {
			pStart = 0
		}
		page.SetProperty("prev", paths.AddPageParams(iri, pStart, n).String())
	}
	// Next
	if !isEnd {
		page.SetProperty("next", paths.AddPageParams(iri, start+n, n).String())
	}
	return nil
}

func toPersonActor(a app.Application,
	uuid paths.UUID,
	scheme, host, username, preferredUsername, summary string,
	pubKey string) (*streams.Value, *url.URL) {
	p := streams.New("Person")
	idIRI := paths.UUIDIRIFor(scheme, host, paths.UserPathKey, uuid)
	p.SetID(idIRI)

	inboxIRI := paths.UUIDIRIFor(scheme, host, paths.InboxPathKey, uuid)
	p.SetProperty("inbox", inboxIRI.String())

	outboxIRI := paths.UUIDIRIFor(scheme, host, paths.OutboxPathKey, uuid)
	p.SetProperty("outbox", outboxIRI.String())

	followersIRI := paths.UUIDIRIFor(scheme, host, paths.FollowersPathKey, uuid)
	p.SetProperty("followers", followersIRI.String())

	followingIRI := paths.UUIDIRIFor(scheme, host, paths.FollowingPathKey, uuid)
	p.SetProperty("following", followingIRI.String())

	likedIRI := paths.UUIDIRIFor(scheme, host, paths.LikedPathKey, uuid)
	p.SetProperty("liked", likedIRI.String())

	p.SetProperty("name", username)
	p.SetProperty("preferredUsername", preferredUsername)
	p.SetProperty("url", idIRI.String())
	p.SetProperty("summary", summary)

	pubKeyIRI := paths.UUIDIRIFor(scheme, host, paths.HttpSigPubKeyKey, uuid)
	p.SetProperty("publicKey", map[string]interface{}{
		"id":           pubKeyIRI.String(),
		"owner":        idIRI.String(),
		"publicKeyPem": pubKey,
	})
	return p, idIRI
}

// toApplicationActor builds the Application actor used for an instance's
// singleton actor (paths.InstanceActor), mirroring toPersonActor's shape but
// under the "Application" AS2 type, as required for server-to-server
// handshakes that must be addressed to an actor rather than a bare host.
func toApplicationActor(actor paths.Actor,
	scheme, host, name, preferredUsername, pubKey string) (*streams.Value, *url.URL) {
	uuid := paths.UUID(actor)
	p := streams.New("Application")
	idIRI := paths.UUIDIRIFor(scheme, host, paths.UserPathKey, uuid)
	p.SetID(idIRI)

	inboxIRI := paths.UUIDIRIFor(scheme, host, paths.InboxPathKey, uuid)
	p.SetProperty("inbox", inboxIRI.String())

	outboxIRI := paths.UUIDIRIFor(scheme, host, paths.OutboxPathKey, uuid)
	p.SetProperty("outbox", outboxIRI.String())

	followersIRI := paths.UUIDIRIFor(scheme, host, paths.FollowersPathKey, uuid)
	p.SetProperty("followers", followersIRI.String())

	followingIRI := paths.UUIDIRIFor(scheme, host, paths.FollowingPathKey, uuid)
	p.SetProperty("following", followingIRI.String())

	likedIRI := paths.UUIDIRIFor(scheme, host, paths.LikedPathKey, uuid)
	p.SetProperty("liked", likedIRI.String())

	p.SetProperty("name", name)
	p.SetProperty("preferredUsername", preferredUsername)
	p.SetProperty("url", idIRI.String())

	pubKeyIRI := paths.UUIDIRIFor(scheme, host, paths.HttpSigPubKeyKey, uuid)
	p.SetProperty("publicKey", map[string]interface{}{
		"id":           pubKeyIRI.String(),
		"owner":        idIRI.String(),
		"publicKeyPem": pubKey,
	})
	return p, idIRI
}

func emptyInbox(actorID *url.URL) (*streams.Value, error) {
	id, err := paths.IRIForActorID(paths.InboxPathKey, actorID)
	if err != nil {
		return nil, err
	}
	first, err := paths.IRIForActorID(paths.InboxFirstPathKey, actorID)
	if err != nil {
		return nil, err
	}
	last, err := paths.IRIForActorID(paths.InboxLastPathKey, actorID)
	if err != nil {
		return nil, err
	}
	return emptyOrderedCollection(id, first, last), nil
}

func emptyOutbox(actorID *url.URL) (*streams.Value, error) {
	id, err := paths.IRIForActorID(paths.OutboxPathKey, actorID)
	if err != nil {
		return nil, err
	}
	first, err := paths.IRIForActorID(paths.OutboxFirstPathKey, actorID)
	if err != nil {
		return nil, err
	}
	last, err := paths.IRIForActorID(paths.OutboxLastPathKey, actorID)
	if err != nil {
		return nil, err
	}
	return emptyOrderedCollection(id, first, last), nil
}

func emptyOrderedCollection(id, first, last *url.URL) *streams.Value {
	oc := streams.NewOrderedCollection(id, nil)
	oc.SetProperty("first", first.String())
	oc.SetProperty("last", last.String())
	return oc
}

func emptyFollowers(actorID *url.URL) (*streams.Value, error) {
	id, err := paths.IRIForActorID(paths.FollowersPathKey, actorID)
	if err != nil {
		return nil, err
	}
	first, err := paths.IRIForActorID(paths.FollowersFirstPathKey, actorID)
	if err != nil {
		return nil, err
	}
	last, err := paths.IRIForActorID(paths.FollowersLastPathKey, actorID)
	if err != nil {
		return nil, err
	}
	return emptyCollection(id, first, last), nil
}

func emptyFollowing(actorID *url.URL) (*streams.Value, error) {
	id, err := paths.IRIForActorID(paths.FollowingPathKey, actorID)
	if err != nil {
		return nil, err
	}
	first, err := paths.IRIForActorID(paths.FollowingFirstPathKey, actorID)
	if err != nil {
		return nil, err
	}
	last, err := paths.IRIForActorID(paths.FollowingLastPathKey, actorID)
	if err != nil {
		return nil, err
	}
	return emptyCollection(id, first, last), nil
}

func emptyLiked(actorID *url.URL) (*streams.Value, error) {
	id, err := paths.IRIForActorID(paths.LikedPathKey, actorID)
	if err != nil {
		return nil, err
	}
	first, err := paths.IRIForActorID(paths.LikedFirstPathKey, actorID)
	if err != nil {
		return nil, err
	}
	last, err := paths.IRIForActorID(paths.LikedLastPathKey, actorID)
	if err != nil {
		return nil, err
	}
	return emptyCollection(id, first, last), nil
}

func emptyCollection(id, first, last *url.URL) *streams.Value {
	oc := streams.NewCollection(id, nil)
	oc.SetProperty("first", first.String())
	oc.SetProperty("last", last.String())
	return oc
}
