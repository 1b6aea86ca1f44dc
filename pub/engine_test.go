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
	"context"
	"net/url"
	"testing"

	"github.com/hearthgate/fedcore/streams"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(db *fakeDB, federating FederatingProtocol, social SocialProtocol) *Context {
	return &Context{
		Go:         context.Background(),
		Federating: federating,
		Social:     social,
		C2SHandler: NewActivityHandler(),
		S2SHandler: NewActivityHandler(),
		DB:         db,
		State:      &RequestState{AppAgent: "fedcore-test/1.0"},
	}
}

func TestPostInboxIsIdempotent(t *testing.T) {
	db := newFakeDB()
	ctx := newTestContext(db, &noopFederating{}, nil)

	inbox := mustURL("https://example.com/users/alice/inbox")
	activity := streams.New("Create")
	activity.SetID(mustURL("https://remote.example/activities/1"))
	activity.SetIRIs("actor", []*url.URL{mustURL("https://remote.example/users/bob")})
	obj := streams.New("Note")
	obj.SetID(mustURL("https://remote.example/notes/1"))
	activity.SetValues("object", []*streams.Value{obj})

	_, err := PostInbox(ctx, inbox, activity)
	require.NoError(t, err)

	contains, err := db.CollectionContains(ctx.Go, inbox, mustURL("https://remote.example/activities/1"))
	require.NoError(t, err)
	assert.True(t, contains)

	before := len(db.collection[inbox.String()])

	_, err = PostInbox(ctx, inbox, activity)
	require.NoError(t, err)
	assert.Equal(t, before, len(db.collection[inbox.String()]), "duplicate delivery must not be reprocessed")
}

func TestDedupeOrderedItems(t *testing.T) {
	id := mustURL("https://example.com/users/alice/followers")
	a := mustURL("https://a.example/actor")
	b := mustURL("https://b.example/actor")
	coll := streams.NewOrderedCollection(id, []*url.URL{a, b, a, b, a})

	deduped := streams.DedupeOrderedItems(coll)

	items := deduped.Items()
	require.Len(t, items, 2)
	assert.Equal(t, a.String(), items[0].String())
	assert.Equal(t, b.String(), items[1].String())
	// original is untouched
	assert.Len(t, coll.Items(), 5)
}

func TestNormalizeRecipientsUnionsActivityAndObject(t *testing.T) {
	activity := streams.New("Create")
	activity.SetIRIs("to", []*url.URL{mustURL("https://a.example/actor")})
	obj := streams.New("Note")
	obj.SetIRIs("to", []*url.URL{mustURL("https://b.example/actor")})
	obj.SetIRIs("cc", []*url.URL{mustURL("https://c.example/actor")})

	NormalizeRecipients(activity, []*streams.Value{obj})

	to := activity.IRIs("to")
	require.Len(t, to, 2)
	assert.ElementsMatch(t, []string{"https://a.example/actor", "https://b.example/actor"}, []string{to[0].String(), to[1].String()})

	objTo := obj.IRIs("to")
	assert.ElementsMatch(t, []string{"https://a.example/actor", "https://b.example/actor"}, []string{objTo[0].String(), objTo[1].String()})
}

func TestStripHiddenRecipientsRemovesBtoBcc(t *testing.T) {
	activity := streams.New("Create")
	activity.SetIRIs("bto", []*url.URL{mustURL("https://secret.example/actor")})
	activity.SetIRIs("to", []*url.URL{mustURL("https://public.example/actor")})
	obj := streams.New("Note")
	obj.SetIRIs("bcc", []*url.URL{mustURL("https://secret2.example/actor")})
	activity.SetValues("object", []*streams.Value{obj})

	StripHiddenRecipients(activity)

	assert.False(t, activity.HasProperty("bto"))
	assert.True(t, activity.HasProperty("to"))
	for _, o := range activity.Values("object") {
		assert.False(t, o.HasProperty("bcc"))
	}
}

func TestObjectsMatchActivityOriginDetectsMismatch(t *testing.T) {
	activity := streams.New("Delete")
	activity.SetID(mustURL("https://example.com/activities/1"))
	activity.SetIRIs("object", []*url.URL{mustURL("https://other.example/notes/1")})

	ok, err := ObjectsMatchActivityOrigin(activity)
	require.NoError(t, err)
	assert.False(t, ok)

	activity.SetIRIs("object", []*url.URL{mustURL("https://example.com/notes/1")})
	ok, err = ObjectsMatchActivityOrigin(activity)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNormalizeRecipientsDoesNotMergeSiblings(t *testing.T) {
	activity := streams.New("Create")
	obj1 := streams.New("Note")
	obj1.SetIRIs("to", []*url.URL{mustURL("https://a.example/actor")})
	obj2 := streams.New("Note")
	obj2.SetIRIs("to", []*url.URL{mustURL("https://b.example/actor")})

	NormalizeRecipients(activity, []*streams.Value{obj1, obj2})

	// The activity accumulates both, but each sibling keeps only its own
	// addressing plus the activity's original (empty) set.
	assert.Len(t, activity.IRIs("to"), 2)
	require.Len(t, obj1.IRIs("to"), 1)
	assert.Equal(t, "https://a.example/actor", obj1.IRIs("to")[0].String())
	require.Len(t, obj2.IRIs("to"), 1)
	assert.Equal(t, "https://b.example/actor", obj2.IRIs("to")[0].String())
}

func TestDeliverExcludesSendersOwnInbox(t *testing.T) {
	db := newFakeDB()
	sender := mustURL("https://example.com/users/alice")
	senderInbox := mustURL("https://example.com/users/alice/inbox")
	db.values[sender.String()] = map[string]interface{}{
		"id":    sender.String(),
		"type":  "Person",
		"inbox": senderInbox.String(),
	}
	recipient := mustURL("https://remote.example/users/bob")
	recipientInbox := mustURL("https://remote.example/users/bob/inbox")
	db.values[recipient.String()] = map[string]interface{}{
		"id":    recipient.String(),
		"type":  "Person",
		"inbox": recipientInbox.String(),
	}

	ctx := newTestContext(db, &noopFederating{maxDeliver: 0}, nil)
	ctx.State.BoxIRI = mustURL("https://example.com/users/alice/outbox")

	activity := streams.New("Create")
	activity.SetID(mustURL("https://example.com/activities/1"))
	activity.SetIRIs("to", []*url.URL{sender, recipient})

	err := Deliver(ctx, activity, sender)
	require.NoError(t, err)

	_, deliveredToSender := db.transport.delivered[senderInbox.String()]
	assert.False(t, deliveredToSender, "must not deliver back to the sender's own inbox")
	_, deliveredToRecipient := db.transport.delivered[recipientInbox.String()]
	assert.True(t, deliveredToRecipient, "must deliver to the other addressed recipient")
}

func TestPostOutboxWrapsBareObjectInCreate(t *testing.T) {
	db := newFakeDB()
	actor := mustURL("https://example.com/users/alice")
	outbox := mustURL("https://example.com/users/alice/outbox")
	ctx := newTestContext(db, &noopFederating{}, noopSocial{})

	note := streams.New("Note")
	note.SetProperty("content", "hello")

	_, result, err := PostOutbox(ctx, outbox, actor, note)
	require.NoError(t, err)
	assert.Equal(t, "Create", result.Type())
	assert.True(t, result.HasIRI("actor", actor))
}

func TestUpdateDeletesExplicitNullKeys(t *testing.T) {
	db := newFakeDB()
	id := mustURL("https://example.com/notes/1")
	db.own(id.String())
	db.values[id.String()] = map[string]interface{}{
		"id":      id.String(),
		"type":    "Note",
		"content": "old",
		"summary": "will be removed",
	}

	activity := streams.New("Update")
	activity.SetIRIs("actor", []*url.URL{mustURL("https://example.com/users/alice")})
	overlay := streams.New("Note")
	overlay.SetID(id)
	overlay.SetProperty("content", "new")
	overlayRaw := overlay.Raw()
	overlayRaw["summary"] = nil
	activity.SetValues("object", []*streams.Value{overlay})

	ctx := newTestContext(db, &noopFederating{}, noopSocial{})
	_, err := sideEffectUpdateC2S(ctx, activity)
	require.NoError(t, err)

	stored, err := db.Get(ctx.Go, id)
	require.NoError(t, err)
	content, _ := stored.StringProperty("content")
	assert.Equal(t, "new", content)
	assert.False(t, stored.HasProperty("summary"))
}

func TestFallbackBackfillsProtocolFunctions(t *testing.T) {
	db := newFakeDB()
	ctx := newTestContext(db, nil, nil)
	ctx.Fallback = &noopFederating{onFollow: OnFollowAutoAccept}

	f := resolveFederating(ctx)
	require.NotNil(t, f)
	assert.Equal(t, OnFollowAutoAccept, f.OnFollow(ctx))

	// A configured protocol module always wins over the fallback.
	ctx.Federating = &noopFederating{onFollow: OnFollowAutoReject}
	assert.Equal(t, OnFollowAutoReject, resolveFederating(ctx).OnFollow(ctx))
}

func TestFallbackActivityHandlerTable(t *testing.T) {
	db := newFakeDB()
	ctx := newTestContext(db, &noopFederating{}, nil)
	ctx.S2SHandler = nil

	called := false
	fb := NewActivityHandler()
	fb.Set("Listen", func(ctx *Context, a *streams.Value) (*streams.Value, error) {
		called = true
		return a, nil
	})
	ctx.Fallback = fb

	listen := streams.New("Listen")
	listen.SetID(mustURL("https://peer.example/activities/listen-1"))
	_, err := applyS2SSideEffects(ctx, listen)
	require.NoError(t, err)
	assert.True(t, called, "the fallback handler table must receive types the engine has no built-in effect for")
}
