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
	"testing"

	"github.com/hearthgate/fedcore/streams"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedActor stores a minimal actor document with inbox/outbox/followers and
// marks it locally owned when local is true.
func seedActor(db *fakeDB, actor string, local bool) {
	db.values[actor] = map[string]interface{}{
		"id":        actor,
		"type":      "Person",
		"inbox":     actor + "/inbox",
		"outbox":    actor + "/outbox",
		"followers": actor + "/followers",
		"following": actor + "/following",
		"liked":     actor + "/liked",
	}
	if local {
		db.own(actor)
	}
}

func TestFollowAutoAcceptAddsFollowerAndDeliversAccept(t *testing.T) {
	db := newFakeDB()
	alice := "https://example.com/users/alice"
	bob := "https://peer.example/users/bob"
	seedActor(db, alice, true)
	seedActor(db, bob, false)

	ctx := newTestContext(db, &noopFederating{onFollow: OnFollowAutoAccept}, nil)

	follow := streams.New("Follow")
	follow.SetID(mustURL("https://peer.example/activities/follow-1"))
	follow.SetIRIs("actor", []*url.URL{mustURL(bob)})
	follow.SetIRIs("object", []*url.URL{mustURL(alice)})

	inbox := mustURL(alice + "/inbox")
	_, err := PostInbox(ctx, inbox, follow)
	require.NoError(t, err)

	followers := db.collection[alice+"/followers"]
	require.Len(t, followers, 1)
	assert.Equal(t, bob, followers[0].String())

	_, accepted := db.transport.delivered[bob+"/inbox"]
	assert.True(t, accepted, "the synthesized Accept must be delivered to the follower's inbox")
}

func TestFollowAutoRejectDeliversRejectWithoutFollower(t *testing.T) {
	db := newFakeDB()
	alice := "https://example.com/users/alice"
	bob := "https://peer.example/users/bob"
	seedActor(db, alice, true)
	seedActor(db, bob, false)

	ctx := newTestContext(db, &noopFederating{onFollow: OnFollowAutoReject}, nil)

	follow := streams.New("Follow")
	follow.SetID(mustURL("https://peer.example/activities/follow-2"))
	follow.SetIRIs("actor", []*url.URL{mustURL(bob)})
	follow.SetIRIs("object", []*url.URL{mustURL(alice)})

	_, err := PostInbox(ctx, mustURL(alice+"/inbox"), follow)
	require.NoError(t, err)

	assert.Empty(t, db.collection[alice+"/followers"])
	_, rejected := db.transport.delivered[bob+"/inbox"]
	assert.True(t, rejected)
}

func TestDuplicateDeliveryDoesNotReinvokeHandler(t *testing.T) {
	db := newFakeDB()
	ctx := newTestContext(db, &noopFederating{}, nil)

	invocations := 0
	ctx.S2SHandler.Set("Create", func(ctx *Context, a *streams.Value) (*streams.Value, error) {
		invocations++
		return a, nil
	})

	activity := streams.New("Create")
	activity.SetID(mustURL("https://remote.example/activities/dup-1"))
	obj := streams.New("Note")
	obj.SetID(mustURL("https://remote.example/notes/dup-1"))
	activity.SetValues("object", []*streams.Value{obj})

	inbox := mustURL("https://example.com/users/alice/inbox")
	_, err := PostInbox(ctx, inbox, activity)
	require.NoError(t, err)
	_, err = PostInbox(ctx, inbox, activity)
	require.NoError(t, err)

	assert.Equal(t, 1, invocations, "per-type side effects must run once per novel activity")
}

// forwardingFixture prepares an inbound reply addressed to alice's followers
// collection, which alice owns, replying to a note we may or may not own.
func forwardingFixture(t *testing.T, db *fakeDB, inReplyTo string) (*Context, *url.URL, *streams.Value) {
	t.Helper()
	alice := "https://example.com/users/alice"
	charlie := "https://other.example/users/charlie"
	seedActor(db, alice, true)
	seedActor(db, charlie, false)

	followersIRI := alice + "/followers"
	db.own(followersIRI)
	db.values[followersIRI] = map[string]interface{}{
		"id":           followersIRI,
		"type":         "OrderedCollection",
		"orderedItems": []interface{}{charlie},
	}

	activity := streams.New("Create")
	activity.SetID(mustURL("https://peer.example/activities/reply-1"))
	activity.SetIRIs("actor", []*url.URL{mustURL("https://peer.example/users/bob")})
	activity.SetIRIs("to", []*url.URL{mustURL(followersIRI)})
	obj := streams.New("Note")
	obj.SetID(mustURL("https://peer.example/notes/reply-1"))
	obj.SetIRIs("inReplyTo", []*url.URL{mustURL(inReplyTo)})
	activity.SetValues("object", []*streams.Value{obj})

	ctx := newTestContext(db, &noopFederating{maxForward: 2, maxDeliver: 1}, nil)
	ctx.State.NewActivityID = "https://peer.example/activities/reply-1"
	return ctx, mustURL(alice + "/inbox"), activity
}

func TestInboxForwardingRelaysOwnedThreadToFollowers(t *testing.T) {
	db := newFakeDB()
	ownedNote := "https://example.com/notes/thread-root"
	db.own(ownedNote)
	db.values[ownedNote] = map[string]interface{}{"id": ownedNote, "type": "Note"}

	ctx, inbox, activity := forwardingFixture(t, db, ownedNote)
	require.NoError(t, InboxForwarding(ctx, inbox, activity))

	_, forwarded := db.transport.delivered["https://other.example/users/charlie/inbox"]
	assert.True(t, forwarded, "an activity in an owned thread must be forwarded to local followers")
}

func TestInboxForwardingStopsAtMaxRecursionDepth(t *testing.T) {
	db := newFakeDB()
	// A chain of unowned remote notes; the owned value sits at depth 3,
	// beyond the configured limit of 2.
	owned := "https://example.com/notes/deep-root"
	db.own(owned)
	db.values[owned] = map[string]interface{}{"id": owned, "type": "Note"}
	mid2 := "https://peer.example/notes/mid-2"
	db.values[mid2] = map[string]interface{}{"id": mid2, "type": "Note", "inReplyTo": owned}
	mid1 := "https://peer.example/notes/mid-1"
	db.values[mid1] = map[string]interface{}{"id": mid1, "type": "Note", "inReplyTo": mid2}

	ctx, inbox, activity := forwardingFixture(t, db, mid1)
	require.NoError(t, InboxForwarding(ctx, inbox, activity))

	assert.Empty(t, db.transport.delivered, "ownership beyond the recursion depth must not trigger forwarding")
}

func TestInboxForwardingIgnoresUnownedThreads(t *testing.T) {
	db := newFakeDB()
	remote := "https://peer.example/notes/unowned"
	db.values[remote] = map[string]interface{}{"id": remote, "type": "Note"}

	ctx, inbox, activity := forwardingFixture(t, db, remote)
	require.NoError(t, InboxForwarding(ctx, inbox, activity))

	assert.Empty(t, db.transport.delivered)
}

func TestDeliverFoldsSharedInboxes(t *testing.T) {
	db := newFakeDB()
	shared := "https://peer.example/inbox"
	for _, name := range []string{"bob", "carol"} {
		actor := "https://peer.example/users/" + name
		db.values[actor] = map[string]interface{}{
			"id":    actor,
			"type":  "Person",
			"inbox": actor + "/inbox",
			"endpoints": map[string]interface{}{
				"sharedInbox": shared,
			},
		}
	}

	ctx := newTestContext(db, &noopFederating{}, nil)
	ctx.State.BoxIRI = mustURL("https://example.com/users/alice/outbox")

	activity := streams.New("Create")
	activity.SetID(mustURL("https://example.com/activities/shared-1"))
	activity.SetIRIs("to", []*url.URL{
		mustURL("https://peer.example/users/bob"),
		mustURL("https://peer.example/users/carol"),
	})

	require.NoError(t, Deliver(ctx, activity, nil))

	_, toShared := db.transport.delivered[shared]
	assert.True(t, toShared, "two recipients behind one shared inbox must fold into it")
	_, toBob := db.transport.delivered["https://peer.example/users/bob/inbox"]
	assert.False(t, toBob)
	assert.Len(t, db.transport.delivered, 1)
}

func TestUndoRequiresMatchingActors(t *testing.T) {
	db := newFakeDB()
	like := "https://example.com/activities/like-1"
	db.values[like] = map[string]interface{}{
		"id":     like,
		"type":   "Like",
		"actor":  "https://example.com/users/alice",
		"object": "https://peer.example/notes/1",
	}

	ctx := newTestContext(db, &noopFederating{}, nil)

	undo := streams.New("Undo")
	undo.SetID(mustURL("https://peer.example/activities/undo-1"))
	undo.SetIRIs("actor", []*url.URL{mustURL("https://peer.example/users/mallory")})
	undo.SetIRIs("object", []*url.URL{mustURL(like)})

	_, err := sideEffectUndoS2S(ctx, undo)
	assert.Error(t, err, "an Undo by a different actor must be refused")

	undo.SetIRIs("actor", []*url.URL{mustURL("https://example.com/users/alice")})
	_, err = sideEffectUndoS2S(ctx, undo)
	assert.NoError(t, err)
}

func TestBlockC2SVetoesDelivery(t *testing.T) {
	db := newFakeDB()
	ctx := newTestContext(db, nil, noopSocial{})
	ctx.State.Deliverable = true

	block := streams.New("Block")
	block.SetID(mustURL("https://example.com/activities/block-1"))
	block.SetIRIs("actor", []*url.URL{mustURL("https://example.com/users/alice")})
	block.SetIRIs("object", []*url.URL{mustURL("https://peer.example/users/mallory")})

	_, err := sideEffectBlockC2S(ctx, block)
	require.NoError(t, err)
	assert.False(t, ctx.State.Deliverable, "a Block must never federate")
}

func TestLikeS2SFoldsIntoLikesCollection(t *testing.T) {
	db := newFakeDB()
	note := "https://example.com/notes/liked-note"
	db.own(note)
	db.values[note] = map[string]interface{}{"id": note, "type": "Note"}

	ctx := newTestContext(db, &noopFederating{}, nil)

	like := streams.New("Like")
	like.SetID(mustURL("https://peer.example/activities/like-9"))
	like.SetIRIs("actor", []*url.URL{mustURL("https://peer.example/users/bob")})
	like.SetIRIs("object", []*url.URL{mustURL(note)})

	_, err := sideEffectLikeS2S(ctx, like)
	require.NoError(t, err)

	stored, err := db.Get(ctx.Go, mustURL(note))
	require.NoError(t, err)
	likesIRI, ok := stored.StringProperty("likes")
	require.True(t, ok, "a likes collection must be created on first Like")

	items := db.collection[likesIRI]
	if len(items) == 0 {
		// The collection was created carrying the Like directly.
		coll, err := db.Get(ctx.Go, mustURL(likesIRI))
		require.NoError(t, err)
		require.Len(t, coll.Items(), 1)
		assert.Equal(t, "https://peer.example/activities/like-9", coll.Items()[0].String())
	} else {
		require.Len(t, items, 1)
		assert.Equal(t, "https://peer.example/activities/like-9", items[0].String())
	}
}

func TestAcceptS2SAddsToFollowing(t *testing.T) {
	db := newFakeDB()
	alice := "https://example.com/users/alice"
	bob := "https://peer.example/users/bob"
	seedActor(db, alice, true)
	seedActor(db, bob, false)

	followID := "https://example.com/activities/follow-out-1"
	db.values[followID] = map[string]interface{}{
		"id":     followID,
		"type":   "Follow",
		"actor":  alice,
		"object": bob,
	}

	ctx := newTestContext(db, &noopFederating{}, nil)

	accept := streams.New("Accept")
	accept.SetID(mustURL("https://peer.example/activities/accept-1"))
	accept.SetIRIs("actor", []*url.URL{mustURL(bob)})
	accept.SetIRIs("object", []*url.URL{mustURL(followID)})

	_, err := sideEffectAcceptS2S(ctx, accept)
	require.NoError(t, err)

	following := db.collection[alice+"/following"]
	require.Len(t, following, 1)
	assert.Equal(t, bob, following[0].String())
}

func TestDeliverResolvesHiddenRecipientsThenStripsThem(t *testing.T) {
	db := newFakeDB()
	bob := "https://peer.example/users/bob"
	seedActor(db, bob, false)

	ctx := newTestContext(db, &noopFederating{}, nil)
	ctx.State.BoxIRI = mustURL("https://example.com/users/alice/outbox")

	activity := streams.New("Create")
	activity.SetID(mustURL("https://example.com/activities/hidden-1"))
	activity.SetIRIs("bto", []*url.URL{mustURL(bob)})

	require.NoError(t, Deliver(ctx, activity, nil))

	body, delivered := db.transport.delivered[bob+"/inbox"]
	require.True(t, delivered, "a bto-only addressee must still be resolved and delivered to")
	assert.NotContains(t, string(body), "bto", "the wire copy must not disclose hidden recipients")
	// The caller's activity keeps its addressing; only the wire copy is
	// stripped.
	assert.True(t, activity.HasProperty("bto"))
}

func TestInboxForwardingIgnoresOriginalAddressees(t *testing.T) {
	db := newFakeDB()
	ownedNote := "https://example.com/notes/thread-root-2"
	db.own(ownedNote)
	db.values[ownedNote] = map[string]interface{}{"id": ownedNote, "type": "Note"}

	dave := "https://elsewhere.example/users/dave"
	seedActor(db, dave, false)

	ctx, inbox, activity := forwardingFixture(t, db, ownedNote)
	activity.SetIRIs("cc", []*url.URL{mustURL(dave)})

	require.NoError(t, InboxForwarding(ctx, inbox, activity))

	_, forwarded := db.transport.delivered["https://other.example/users/charlie/inbox"]
	assert.True(t, forwarded)
	_, reDelivered := db.transport.delivered[dave+"/inbox"]
	assert.False(t, reDelivered, "forwarding must reach only the owned collections' members, not the activity's original addressees")
}
