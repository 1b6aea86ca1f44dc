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

// Package ap wires fedcore's persistence and transport services into the
// capability interfaces the pub engine consumes (pub.Database, pub.Transport)
// and the delegate interfaces it dispatches to (pub.CommonBehavior,
// pub.SocialProtocol, pub.FederatingProtocol).
package ap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/hearthgate/fedcore/app"
	"github.com/hearthgate/fedcore/framework/config"
	"github.com/hearthgate/fedcore/framework/conn"
	"github.com/hearthgate/fedcore/paths"
	"github.com/hearthgate/fedcore/pub"
	"github.com/hearthgate/fedcore/services"
	"github.com/hearthgate/fedcore/streams"
	"github.com/hearthgate/fedcore/util"
)

var _ pub.Database = &Database{}

// Database is fedcore's pub.Database implementation: a thin dispatcher over
// the services layer, resolving which service handles a given IRI by its
// path shape.
type Database struct {
	app                   app.Application
	inboxes               *services.Inboxes
	outboxes              *services.Outboxes
	users                 *services.Users
	data                  *services.Data
	followers             *services.Followers
	following             *services.Following
	liked                 *services.Liked
	collections           *services.Collections
	pk                    *services.PrivateKeys
	tc                    *conn.Controller
	hostname              string
	defaultCollectionSize int
	maxCollectionPageSize int
}

// MaxCollectionPageSize returns the largest page size GetCollection will
// serve, so callers that must walk an entire collection (such as scanning
// an inbox for unanswered Follows) can request it directly.
func (d *Database) MaxCollectionPageSize() int {
	return d.maxCollectionPageSize
}

// NewDatabase wires the services layer into a pub.Database.
func NewDatabase(
	c *config.Config,
	a app.Application,
	inboxes *services.Inboxes,
	outboxes *services.Outboxes,
	users *services.Users,
	data *services.Data,
	followers *services.Followers,
	following *services.Following,
	liked *services.Liked,
	collections *services.Collections,
	pk *services.PrivateKeys,
	tc *conn.Controller) *Database {
	return &Database{
		app:                   a,
		inboxes:               inboxes,
		outboxes:              outboxes,
		users:                 users,
		data:                  data,
		followers:             followers,
		following:             following,
		liked:                 liked,
		collections:           collections,
		pk:                    pk,
		tc:                    tc,
		hostname:              c.ServerConfig.Host,
		defaultCollectionSize: c.DatabaseConfig.DefaultCollectionPageSize,
		maxCollectionPageSize: c.DatabaseConfig.MaxCollectionPageSize,
	}
}

func (d *Database) CollectionContains(ctx context.Context, coll, id *url.URL) (bool, error) {
	c := util.Context{Context: ctx}
	norm := paths.Normalize(coll)
	switch {
	case paths.IsFollowersPath(coll):
		return d.followers.Contains(c, norm, id)
	case paths.IsFollowingPath(coll):
		return d.following.Contains(c, norm, id)
	case paths.IsLikedPath(coll):
		return d.liked.Contains(c, norm, id)
	case paths.IsInboxPath(coll):
		return d.inboxes.Contains(c, norm, id)
	case paths.IsOutboxPath(coll):
		return d.outboxes.Contains(c, norm, id)
	default:
		return d.collections.Contains(c, norm, id)
	}
}

func (d *Database) GetCollection(ctx context.Context, id *url.URL, opts pub.CollectionPageOptions) (*streams.Value, error) {
	c := util.Context{Context: ctx}
	n := opts.N
	if n <= 0 {
		n = d.defaultCollectionSize
	}
	if n > d.maxCollectionPageSize {
		n = d.maxCollectionPageSize
	}
	offset := 0
	if opts.Min != "" {
		if parsed, err := strconv.Atoi(opts.Min); err == nil {
			offset = parsed
		}
	}
	norm := paths.Normalize(id)
	switch {
	case paths.IsFollowersPath(id):
		return d.followers.GetPage(c, norm, offset, n)
	case paths.IsFollowingPath(id):
		return d.following.GetPage(c, norm, offset, n)
	case paths.IsLikedPath(id):
		return d.liked.GetPage(c, norm, offset, n)
	case paths.IsInboxPath(id):
		if opts.PublicOnly {
			return d.inboxes.GetPublicPage(c, norm, offset, n)
		}
		return d.inboxes.GetPage(c, norm, offset, n)
	case paths.IsOutboxPath(id):
		if opts.PublicOnly {
			return d.outboxes.GetPublicPage(c, norm, offset, n)
		}
		return d.outboxes.GetPage(c, norm, offset, n)
	default:
		return d.collections.GetPage(c, norm, offset, n)
	}
}

func (d *Database) UpdateCollection(ctx context.Context, id *url.URL, update pub.CollectionUpdate) error {
	c := util.Context{Context: ctx}
	norm := paths.Normalize(id)
	var prepend, remove func(util.Context, *url.URL, *url.URL) error
	switch {
	case paths.IsFollowersPath(id):
		prepend, remove = d.followers.PrependItem, d.followers.DeleteItem
	case paths.IsFollowingPath(id):
		prepend, remove = d.following.PrependItem, d.following.DeleteItem
	case paths.IsLikedPath(id):
		prepend, remove = d.liked.PrependItem, d.liked.DeleteItem
	case paths.IsInboxPath(id):
		prepend, remove = d.inboxes.PrependItem, d.inboxes.DeleteItem
	case paths.IsOutboxPath(id):
		prepend, remove = d.outboxes.PrependItem, d.outboxes.DeleteItem
	default:
		prepend, remove = d.collections.PrependItem, d.collections.DeleteItem
	}
	for _, add := range update.Add {
		if err := prepend(c, norm, add); err != nil {
			return err
		}
	}
	for _, rem := range update.Remove {
		if err := remove(c, norm, rem); err != nil {
			return err
		}
	}
	return nil
}

func (d *Database) Owns(ctx context.Context, id *url.URL) (bool, error) {
	return d.data.Owns(id), nil
}

func (d *Database) ActorForCollection(ctx context.Context, id *url.URL) (*url.URL, error) {
	u, err := paths.UUIDFromUserPath(id.Path)
	if err != nil {
		return nil, err
	}
	return paths.UUIDIRIFor(id.Scheme, id.Host, paths.UserPathKey, u), nil
}

func (d *Database) ActorForInbox(ctx context.Context, inbox *url.URL) (*url.URL, error) {
	return d.users.ActorIDForInbox(util.Context{Context: ctx}, paths.Normalize(inbox))
}

func (d *Database) ActorForOutbox(ctx context.Context, outbox *url.URL) (*url.URL, error) {
	return d.users.ActorIDForOutbox(util.Context{Context: ctx}, paths.Normalize(outbox))
}

func (d *Database) OutboxForInbox(ctx context.Context, inbox *url.URL) (*url.URL, error) {
	return d.outboxes.OutboxForInbox(util.Context{Context: ctx}, paths.Normalize(inbox))
}

func (d *Database) InboxForActor(ctx context.Context, actorIRI *url.URL) (*url.URL, error) {
	owns, err := d.Owns(ctx, actorIRI)
	if err != nil || !owns {
		// A remote actor's inbox is discovered by dereferencing the
		// actor document through the transport instead.
		return nil, err
	}
	return paths.IRIForActorID(paths.InboxPathKey, actorIRI)
}

func (d *Database) Exists(ctx context.Context, id *url.URL) (bool, error) {
	return d.data.Exists(util.Context{Context: ctx}, id)
}

func (d *Database) Get(ctx context.Context, id *url.URL) (*streams.Value, error) {
	c := util.Context{Context: ctx}
	v, err := d.data.Get(c, id)
	if err == nil {
		return v, nil
	}
	// Free-standing collections (likes, shares) live in their own store.
	if has, hasErr := d.collections.Has(c, paths.Normalize(id)); hasErr == nil && has {
		return d.collections.GetAll(c, paths.Normalize(id))
	}
	return nil, err
}

// isFreestandingCollection reports whether v should be stored in the
// collections service: an owned Collection that is not one of the fixed
// per-actor collections managed by their dedicated services.
func (d *Database) isFreestandingCollection(v *streams.Value) bool {
	if !v.IsCollection() {
		return false
	}
	id, err := v.ID()
	if err != nil {
		return false
	}
	if !d.data.Owns(id) {
		return false
	}
	switch {
	case paths.IsInboxPath(id), paths.IsOutboxPath(id),
		paths.IsFollowersPath(id), paths.IsFollowingPath(id), paths.IsLikedPath(id):
		return false
	}
	return true
}

func (d *Database) Create(ctx context.Context, v *streams.Value) (*streams.Value, []byte, error) {
	c := util.Context{Context: ctx}
	if d.isFreestandingCollection(v) {
		if err := d.collections.Create(c, v); err != nil {
			return nil, nil, err
		}
	} else if err := d.data.Create(c, v); err != nil {
		return nil, nil, err
	}
	raw, err := json.Marshal(v.Raw())
	if err != nil {
		return nil, nil, err
	}
	return v, raw, nil
}

func (d *Database) Update(ctx context.Context, v *streams.Value) (*streams.Value, error) {
	c := util.Context{Context: ctx}
	// A free-standing collection is updated by diffing its new head against
	// the stored page and prepending the difference, not by replacing the
	// whole document.
	if d.isFreestandingCollection(v) {
		err := services.UpdateCollectionToPrependCalls(c, v,
			d.defaultCollectionSize,
			d.maxCollectionPageSize,
			d.collections.GetPage,
			d.collections.PrependItem)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	if err := d.data.Update(c, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (d *Database) Delete(ctx context.Context, id *url.URL) error {
	return d.data.Delete(util.Context{Context: ctx}, id)
}

// NewID mints a fresh IRI for a not-yet-persisted value, asking the
// application for the type-specific path component and falling back to a
// random UUID under a path segment named after the value's type, as
// returned by Type().
func (d *Database) NewID(ctx context.Context, v *streams.Value) (*url.URL, error) {
	path, err := d.app.NewIDPath(ctx, v)
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = fmt.Sprintf("/%s/%s", v.Type(), uuid.New().String())
	}
	return &url.URL{
		Scheme: "https",
		Host:   d.hostname,
		Path:   path,
	}, nil
}

// NewTransport returns a Transport signing on behalf of the local actor that
// owns boxIRI.
func (d *Database) NewTransport(ctx context.Context, boxIRI *url.URL, appAgent string) (pub.Transport, error) {
	c := util.Context{Context: ctx}
	var actorIRI *url.URL
	var err error
	if paths.IsInboxPath(boxIRI) {
		actorIRI, err = d.ActorForInbox(ctx, boxIRI)
	} else {
		actorIRI, err = d.ActorForOutbox(ctx, boxIRI)
	}
	if err != nil {
		return nil, err
	}
	userUUID, err := paths.UUIDFromUserPath(actorIRI.Path)
	if err != nil {
		return nil, err
	}
	privKey, pubKeyID, err := d.pk.GetUserHTTPSignatureKey(c, string(userUUID))
	if err != nil {
		return nil, err
	}
	return d.tc.Get(privKey, pubKeyID.String())
}
