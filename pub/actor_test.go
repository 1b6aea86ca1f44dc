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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hearthgate/fedcore/streams"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noopCommon serves whatever collection the fake database holds for the
// requested IRI.
type noopCommon struct {
	db *fakeDB
}

func (c noopCommon) AuthenticateGetInbox(ctx *Context, w http.ResponseWriter, r *http.Request) (*Context, bool, error) {
	return ctx, true, nil
}

func (c noopCommon) AuthenticateGetOutbox(ctx *Context, w http.ResponseWriter, r *http.Request) (*Context, bool, error) {
	return ctx, true, nil
}

func (c noopCommon) GetInbox(ctx *Context, r *http.Request) (*streams.Value, error) {
	return c.db.GetCollection(ctx.Go, requestIRI(r), CollectionPageOptions{})
}

func (c noopCommon) GetOutbox(ctx *Context, r *http.Request) (*streams.Value, error) {
	return c.db.GetCollection(ctx.Go, requestIRI(r), CollectionPageOptions{})
}

func newTestActor(db *fakeDB) *Actor {
	return NewActor(noopCommon{db}, db, noopSocial{}, &noopFederating{}, NewActivityHandler(), NewActivityHandler(), "fedcore-test/1.0")
}

func TestHandlePostOutboxWrapsNoteAndSetsLocation(t *testing.T) {
	db := newFakeDB()
	alice := "https://example.com/users/alice"
	seedActor(db, alice, true)

	actor := newTestActor(db)
	body := `{"type":"Note","content":"hi","attributedTo":"https://example.com/users/alice","to":["https://www.w3.org/ns/activitystreams#Public"]}`
	r := httptest.NewRequest(http.MethodPost, alice+"/outbox", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/activity+json")
	w := httptest.NewRecorder()

	handled, err := actor.HandlePostOutbox(r.Context(), w, r)
	require.NoError(t, err)
	require.True(t, handled)
	assert.Equal(t, http.StatusCreated, w.Code)

	loc := w.Header().Get("Location")
	require.NotEmpty(t, loc)
	stored, err := db.Get(r.Context(), mustURL(loc))
	require.NoError(t, err)
	assert.Equal(t, "Create", stored.Type())

	// The outbox now references the new Create.
	contains, err := db.CollectionContains(r.Context(), mustURL(alice+"/outbox"), mustURL(loc))
	require.NoError(t, err)
	assert.True(t, contains)
}

func TestHandlePostOutboxRejectsUnknownBody(t *testing.T) {
	db := newFakeDB()
	actor := newTestActor(db)
	r := httptest.NewRequest(http.MethodPost, "https://example.com/users/alice/outbox", strings.NewReader(`{"content":"no type"}`))
	r.Header.Set("Content-Type", "application/activity+json")
	w := httptest.NewRecorder()

	handled, _ := actor.HandlePostOutbox(r.Context(), w, r)
	require.True(t, handled)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlePostInboxWithoutFederationIs405(t *testing.T) {
	db := newFakeDB()
	actor := NewSocialActor(noopCommon{db}, db, noopSocial{}, NewActivityHandler(), "fedcore-test/1.0")
	r := httptest.NewRequest(http.MethodPost, "https://example.com/users/alice/inbox", strings.NewReader(`{}`))
	r.Header.Set("Content-Type", "application/activity+json")
	w := httptest.NewRecorder()

	handled, err := actor.HandlePostInbox(r.Context(), w, r)
	require.NoError(t, err)
	require.True(t, handled)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandlePostInboxAcceptsAndForwards(t *testing.T) {
	db := newFakeDB()
	alice := "https://example.com/users/alice"
	seedActor(db, alice, true)

	actor := newTestActor(db)
	body := `{"type":"Create","id":"https://peer.example/activities/10",` +
		`"actor":"https://peer.example/users/bob",` +
		`"object":{"type":"Note","id":"https://peer.example/notes/10","content":"hello"}}`
	r := httptest.NewRequest(http.MethodPost, alice+"/inbox", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/activity+json")
	w := httptest.NewRecorder()

	handled, err := actor.HandlePostInbox(r.Context(), w, r)
	require.NoError(t, err)
	require.True(t, handled)
	assert.Equal(t, http.StatusOK, w.Code)

	contains, err := db.CollectionContains(r.Context(), mustURL(alice+"/inbox"), mustURL("https://peer.example/activities/10"))
	require.NoError(t, err)
	assert.True(t, contains)
}

func TestHandlePostInboxRejectsMissingID(t *testing.T) {
	db := newFakeDB()
	actor := newTestActor(db)
	r := httptest.NewRequest(http.MethodPost, "https://example.com/users/alice/inbox", strings.NewReader(`{"type":"Create"}`))
	r.Header.Set("Content-Type", "application/activity+json")
	w := httptest.NewRecorder()

	handled, err := actor.HandlePostInbox(r.Context(), w, r)
	require.NoError(t, err)
	require.True(t, handled)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetInboxSetsRequiredHeadersAndDedupes(t *testing.T) {
	db := newFakeDB()
	inbox := "https://example.com/users/alice/inbox"
	a := mustURL("https://peer.example/activities/1")
	b := mustURL("https://peer.example/activities/2")
	db.collection[inbox] = []*url.URL{a, b, a}

	actor := newTestActor(db)
	r := httptest.NewRequest(http.MethodGet, inbox, nil)
	r.Header.Set("Accept", "application/activity+json")
	w := httptest.NewRecorder()

	handled, err := actor.HandleGetInbox(r.Context(), w, r)
	require.NoError(t, err)
	require.True(t, handled)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "application/activity+json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("Date"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Digest"), "SHA-256="))

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	items, _ := m["orderedItems"].([]interface{})
	assert.Len(t, items, 2, "served orderedItems must carry no duplicate ids")
}

func TestHandleGetInboxIgnoresNonActivityPubAccept(t *testing.T) {
	db := newFakeDB()
	actor := newTestActor(db)
	r := httptest.NewRequest(http.MethodGet, "https://example.com/users/alice/inbox", nil)
	r.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()

	handled, err := actor.HandleGetInbox(r.Context(), w, r)
	require.NoError(t, err)
	assert.False(t, handled, "a web request must fall through to the caller's routing")
}
