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

	"github.com/hearthgate/fedcore/streams"
)

// CollectionUpdate describes an add/remove mutation to an ordered
// collection, applied atomically by the Database.
type CollectionUpdate struct {
	Add    []*url.URL
	Remove []*url.URL
}

// Database is the persistence capability. fedcore never
// mutates a collection in memory as a substitute for persisting through
// this interface.
type Database interface {
	// CollectionContains reports whether id is a member of the collection
	// at coll.
	CollectionContains(ctx context.Context, coll, id *url.URL) (bool, error)

	// GetCollection returns a page of the collection at id. opts.N of
	// zero means "implementation default page size".
	GetCollection(ctx context.Context, id *url.URL, opts CollectionPageOptions) (*streams.Value, error)

	// UpdateCollection applies an add/remove mutation to the collection
	// at id.
	UpdateCollection(ctx context.Context, id *url.URL, update CollectionUpdate) error

	// Owns reports whether id is hosted by this instance.
	Owns(ctx context.Context, id *url.URL) (bool, error)

	// ActorForCollection, ActorForInbox, ActorForOutbox map a collection/
	// inbox/outbox IRI back to the actor IRI that owns it.
	ActorForCollection(ctx context.Context, id *url.URL) (*url.URL, error)
	ActorForInbox(ctx context.Context, inbox *url.URL) (*url.URL, error)
	ActorForOutbox(ctx context.Context, outbox *url.URL) (*url.URL, error)

	// OutboxForInbox maps an inbox IRI to the same actor's outbox IRI.
	OutboxForInbox(ctx context.Context, inbox *url.URL) (*url.URL, error)

	// InboxForActor returns the inbox IRI of a local or remote actor, or
	// nil if unknown (a nil result, nil error tells the caller to fall
	// back to dereferencing the actor through the transport).
	InboxForActor(ctx context.Context, actorIRI *url.URL) (*url.URL, error)

	// Exists reports whether any value with this id has ever been stored.
	Exists(ctx context.Context, id *url.URL) (bool, error)

	// Get fetches the stored value for id.
	Get(ctx context.Context, id *url.URL) (*streams.Value, error)

	// Create persists a new value. It returns the stored value (so
	// Database-assigned fields round-trip) and, where available, the
	// exact raw JSON that was stored (used to populate Context.RawActivity
	// so Update can later distinguish "absent" from "null").
	Create(ctx context.Context, v *streams.Value) (*streams.Value, []byte, error)

	// Update persists changes to an existing value.
	Update(ctx context.Context, v *streams.Value) (*streams.Value, error)

	// Delete removes a value by id.
	Delete(ctx context.Context, id *url.URL) error

	// NewID mints a fresh id for a not-yet-persisted value of the given
	// type.
	NewID(ctx context.Context, v *streams.Value) (*url.URL, error)

	// NewTransport returns a Transport that will sign requests on behalf
	// of the actor who owns boxIRI (an inbox or outbox), identifying
	// itself with appAgent in the User-Agent header.
	NewTransport(ctx context.Context, boxIRI *url.URL, appAgent string) (Transport, error)
}

// CollectionPageOptions controls GetCollection pagination.
type CollectionPageOptions struct {
	// N is the maximum number of items to return; 0 means "use the
	// implementation's default page size".
	N int
	// Min, if non-empty, requests items after this cursor.
	Min string
	// PublicOnly restricts to items addressed to the public collection,
	// used when serving a GET to an unauthenticated caller.
	PublicOnly bool
}

// Transport is the per-actor signed HTTP client capability.
type Transport interface {
	// Dereference performs a signed GET and returns the parsed
	// ActivityStreams value.
	Dereference(ctx context.Context, iri *url.URL) (*streams.Value, error)

	// Deliver performs a signed POST of body to iri.
	Deliver(ctx context.Context, body []byte, iri *url.URL) error

	// BatchDeliver fans Deliver out across recipients, succeeding iff
	// every recipient succeeded.
	BatchDeliver(ctx context.Context, body []byte, recipients []*url.URL) error
}

