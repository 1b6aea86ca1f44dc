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
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/hearthgate/fedcore/streams"
)

// fakeDB is a minimal in-memory Database for exercising the engine without
// a real store.
type fakeDB struct {
	mu         sync.Mutex
	values     map[string]map[string]interface{}
	collection map[string][]*url.URL
	owned      map[string]bool
	nextID     int
	transport  *fakeTransport
}

func newFakeDB() *fakeDB {
	db := &fakeDB{
		values:     make(map[string]map[string]interface{}),
		collection: make(map[string][]*url.URL),
		owned:      make(map[string]bool),
	}
	db.transport = &fakeTransport{db: db}
	return db
}

func mustURL(s string) *url.URL {
	u, err := url.Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

func (f *fakeDB) own(iri string) { f.owned[iri] = true }

func (f *fakeDB) CollectionContains(ctx context.Context, coll, id *url.URL) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.collection[coll.String()] {
		if v.String() == id.String() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDB) GetCollection(ctx context.Context, id *url.URL, opts CollectionPageOptions) (*streams.Value, error) {
	f.mu.Lock()
	items := append([]*url.URL{}, f.collection[id.String()]...)
	f.mu.Unlock()
	return streams.NewOrderedCollection(id, items), nil
}

func (f *fakeDB) UpdateCollection(ctx context.Context, id *url.URL, update CollectionUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur := f.collection[id.String()]
	for _, add := range update.Add {
		found := false
		for _, v := range cur {
			if v.String() == add.String() {
				found = true
				break
			}
		}
		if !found {
			cur = append([]*url.URL{add}, cur...)
		}
	}
	for _, rm := range update.Remove {
		out := cur[:0]
		for _, v := range cur {
			if v.String() != rm.String() {
				out = append(out, v)
			}
		}
		cur = out
	}
	f.collection[id.String()] = cur
	return nil
}

func (f *fakeDB) Owns(ctx context.Context, id *url.URL) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.owned[id.String()], nil
}

func (f *fakeDB) ActorForCollection(ctx context.Context, id *url.URL) (*url.URL, error) {
	return nil, fmt.Errorf("no actor for collection")
}

// ActorForInbox searches the stored values for an actor whose inbox is the
// given IRI, mirroring how a real store maps box IRIs back to their owner.
func (f *fakeDB) ActorForInbox(ctx context.Context, inbox *url.URL) (*url.URL, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, v := range f.values {
		if in, ok := v["inbox"].(string); ok && in == inbox.String() {
			return url.Parse(id)
		}
	}
	return nil, nil
}

func (f *fakeDB) ActorForOutbox(ctx context.Context, outbox *url.URL) (*url.URL, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, v := range f.values {
		if out, ok := v["outbox"].(string); ok && out == outbox.String() {
			return url.Parse(id)
		}
	}
	return nil, fmt.Errorf("no actor for outbox %s", outbox)
}

func (f *fakeDB) OutboxForInbox(ctx context.Context, inbox *url.URL) (*url.URL, error) {
	actor, err := f.ActorForInbox(ctx, inbox)
	if err != nil || actor == nil {
		return nil, fmt.Errorf("no actor for inbox %s", inbox)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.values[actor.String()]
	if out, ok := v["outbox"].(string); ok {
		return url.Parse(out)
	}
	return nil, fmt.Errorf("actor %s has no outbox", actor)
}

func (f *fakeDB) InboxForActor(ctx context.Context, actorIRI *url.URL) (*url.URL, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[actorIRI.String()]
	if !ok {
		return nil, nil
	}
	inbox, ok := v["inbox"].(string)
	if !ok {
		return nil, nil
	}
	return url.Parse(inbox)
}

func (f *fakeDB) Exists(ctx context.Context, id *url.URL) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.values[id.String()]
	return ok, nil
}

func (f *fakeDB) Get(ctx context.Context, id *url.URL) (*streams.Value, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.values[id.String()]
	if !ok {
		return nil, fmt.Errorf("not found: %s", id)
	}
	return streams.Resolve(raw)
}

func (f *fakeDB) Create(ctx context.Context, v *streams.Value) (*streams.Value, []byte, error) {
	if !v.HasProperty("id") {
		f.mu.Lock()
		f.nextID++
		id := mustURL(fmt.Sprintf("https://example.com/id/%d", f.nextID))
		f.mu.Unlock()
		v.SetID(id)
	}
	id, err := v.ID()
	if err != nil {
		return nil, nil, err
	}
	f.mu.Lock()
	f.values[id.String()] = v.Raw()
	f.mu.Unlock()
	return v, nil, nil
}

func (f *fakeDB) Update(ctx context.Context, v *streams.Value) (*streams.Value, error) {
	id, err := v.ID()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.values[id.String()] = v.Raw()
	f.mu.Unlock()
	return v, nil
}

func (f *fakeDB) Delete(ctx context.Context, id *url.URL) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, id.String())
	return nil
}

func (f *fakeDB) NewID(ctx context.Context, v *streams.Value) (*url.URL, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return mustURL(fmt.Sprintf("https://example.com/id/%d", f.nextID)), nil
}

func (f *fakeDB) NewTransport(ctx context.Context, boxIRI *url.URL, appAgent string) (Transport, error) {
	return f.transport, nil
}

// fakeTransport records delivered bodies/recipients instead of performing
// any I/O.
type fakeTransport struct {
	mu        sync.Mutex
	delivered map[string][]byte
	db        *fakeDB
}

func (t *fakeTransport) Dereference(ctx context.Context, iri *url.URL) (*streams.Value, error) {
	return t.db.Get(ctx, iri)
}

func (t *fakeTransport) Deliver(ctx context.Context, body []byte, iri *url.URL) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.delivered == nil {
		t.delivered = make(map[string][]byte)
	}
	t.delivered[iri.String()] = body
	return nil
}

func (t *fakeTransport) BatchDeliver(ctx context.Context, body []byte, recipients []*url.URL) error {
	for _, r := range recipients {
		if err := t.Deliver(ctx, body, r); err != nil {
			return err
		}
	}
	return nil
}

// noopFederating satisfies FederatingProtocol with fixed policy choices,
// enough to drive InboxForwarding/Deliver in tests without a real HTTP
// transaction.
type noopFederating struct {
	maxForward int
	maxDeliver int
	onFollow   OnFollowBehavior
}

func (n *noopFederating) AuthenticatePostInbox(ctx *Context, w http.ResponseWriter, r *http.Request) (*Context, bool, error) {
	return ctx, true, nil
}

func (n *noopFederating) AuthorizePostInbox(ctx *Context, w http.ResponseWriter, activity *streams.Value) (*Context, bool, error) {
	return ctx, true, nil
}

func (n *noopFederating) PostInboxRequestBodyHook(ctx *Context, r *http.Request, activity *streams.Value) (*Context, error) {
	return ctx, nil
}

func (n *noopFederating) Blocked(ctx *Context, actorIRIs []*url.URL) (bool, error) {
	return false, nil
}

func (n *noopFederating) MaxInboxForwardingRecursionDepth(ctx *Context) int { return n.maxForward }

func (n *noopFederating) MaxDeliveryRecursionDepth(ctx *Context) int { return n.maxDeliver }

func (n *noopFederating) FilterForwarding(ctx *Context, potentialRecipients []*url.URL, activity *streams.Value) ([]*url.URL, error) {
	return potentialRecipients, nil
}

func (n *noopFederating) OnFollow(ctx *Context) OnFollowBehavior { return n.onFollow }

// noopSocial satisfies SocialProtocol for outbox-side tests.
type noopSocial struct{}

func (noopSocial) AuthenticatePostOutbox(ctx *Context, w http.ResponseWriter, r *http.Request) (*Context, bool, error) {
	return ctx, true, nil
}

func (noopSocial) PostOutboxRequestBodyHook(ctx *Context, r *http.Request, data *streams.Value) (*Context, error) {
	return ctx, nil
}

func (noopSocial) Blocked(ctx *Context, actorIRIs []*url.URL) (bool, error) {
	return false, nil
}
