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

package ap

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/hearthgate/fedcore/app"
	"github.com/hearthgate/fedcore/framework/oauth2"
	"github.com/hearthgate/fedcore/paths"
	"github.com/hearthgate/fedcore/pub"
	"github.com/hearthgate/fedcore/streams"
	"github.com/hearthgate/fedcore/util"
)

var _ pub.CommonBehavior = &commonBehavior{}

// commonBehavior is the delegate module shared by both protocol halves: it
// authenticates GET requests against OAuth2 and resolves the collection
// page to serve.
type commonBehavior struct {
	app                   app.Application
	db                    *Database
	o                     *oauth2.Server
	defaultCollectionSize int
	maxCollectionPageSize int
}

func newCommonBehavior(a app.Application, db *Database, o *oauth2.Server, defaultSize, maxSize int) *commonBehavior {
	return &commonBehavior{
		app:                   a,
		db:                    db,
		o:                     o,
		defaultCollectionSize: defaultSize,
		maxCollectionPageSize: maxSize,
	}
}

func (a *commonBehavior) AuthenticateGetInbox(ctx *pub.Context, w http.ResponseWriter, r *http.Request) (*pub.Context, bool, error) {
	return a.authenticateGet(ctx, w, r, a.app.ScopePermitsPrivateGetInbox)
}

func (a *commonBehavior) AuthenticateGetOutbox(ctx *pub.Context, w http.ResponseWriter, r *http.Request) (*pub.Context, bool, error) {
	return a.authenticateGet(ctx, w, r, a.app.ScopePermitsPrivateGetOutbox)
}

// authenticateGet implements the common shape of both Authenticate* methods:
// an absent or invalid token still permits public access, but private
// (non-Public-addressed) entries are only included once the token's scope
// says so.
func (a *commonBehavior) authenticateGet(ctx *pub.Context, w http.ResponseWriter, r *http.Request, scopePermits func(string) (bool, error)) (*pub.Context, bool, error) {
	t, oAuthAuthenticated, err := a.o.ValidateOAuth2AccessToken(w, r)
	if err != nil {
		return ctx, false, err
	}
	if !oAuthAuthenticated {
		// No OAuth2 credentials at all: permit public-only access.
		return ctx, true, nil
	}
	ok, err := scopePermits(t.GetScope())
	if err != nil {
		return ctx, false, err
	}
	uc := util.Context{Context: ctx.Go}
	uc.WithPrivateScope(ok)
	cp := *ctx
	cp.Go = uc.Context
	return &cp, true, nil
}

func (a *commonBehavior) GetInbox(ctx *pub.Context, r *http.Request) (*streams.Value, error) {
	iri, hasPrivateScope, err := a.requestedCollection(ctx)
	if err != nil {
		return nil, err
	}
	return a.db.GetCollection(ctx.Go, iri, a.pageOptions(r.URL, !hasPrivateScope))
}

func (a *commonBehavior) GetOutbox(ctx *pub.Context, r *http.Request) (*streams.Value, error) {
	iri, hasPrivateScope, err := a.requestedCollection(ctx)
	if err != nil {
		return nil, err
	}
	return a.db.GetCollection(ctx.Go, iri, a.pageOptions(r.URL, !hasPrivateScope))
}

func (a *commonBehavior) requestedCollection(ctx *pub.Context) (*url.URL, bool, error) {
	uc := util.Context{Context: ctx.Go}
	iri, err := uc.CompleteRequestURL()
	if err != nil {
		return nil, false, err
	}
	return iri, uc.HasPrivateScope(), nil
}

// pageOptions translates the request's page/offset/n query parameters
// (paths.AddPageParams's counterpart) into pub.CollectionPageOptions.
func (a *commonBehavior) pageOptions(u *url.URL, publicOnly bool) pub.CollectionPageOptions {
	n := paths.GetNumOrDefault(u, a.defaultCollectionSize, a.maxCollectionPageSize)
	opts := pub.CollectionPageOptions{N: n, PublicOnly: publicOnly}
	if paths.IsGetCollectionPage(u) {
		offset := paths.GetOffsetOrDefault(u, 0)
		opts.Min = strconv.Itoa(offset)
	}
	return opts
}
