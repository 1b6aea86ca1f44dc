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

	"github.com/hearthgate/fedcore/framework/conn"
	"github.com/hearthgate/fedcore/pub"
	"github.com/hearthgate/fedcore/services"
	"github.com/hearthgate/fedcore/streams"
	"github.com/hearthgate/fedcore/util"
)

var _ pub.CommonBehavior = &instanceActorCommonBehavior{}

// instanceActorCommonBehavior is the CommonBehavior for the server's own
// instance actor (paths.InstanceActor): unlike a per-user actor its inbox
// and outbox are always served in full, since it has no private-scope
// concept to gate.
type instanceActorCommonBehavior struct {
	db *Database
	tc *conn.Controller
	pk *services.PrivateKeys
}

func newInstanceActorCommonBehavior(
	db *Database,
	tc *conn.Controller,
	pk *services.PrivateKeys) *instanceActorCommonBehavior {
	return &instanceActorCommonBehavior{
		db: db,
		tc: tc,
		pk: pk,
	}
}

func (a *instanceActorCommonBehavior) AuthenticateGetInbox(ctx *pub.Context, w http.ResponseWriter, r *http.Request) (*pub.Context, bool, error) {
	return ctx, true, nil
}

func (a *instanceActorCommonBehavior) AuthenticateGetOutbox(ctx *pub.Context, w http.ResponseWriter, r *http.Request) (*pub.Context, bool, error) {
	return ctx, true, nil
}

func (a *instanceActorCommonBehavior) GetInbox(ctx *pub.Context, r *http.Request) (*streams.Value, error) {
	return a.getPublicCollection(ctx)
}

func (a *instanceActorCommonBehavior) GetOutbox(ctx *pub.Context, r *http.Request) (*streams.Value, error) {
	return a.getPublicCollection(ctx)
}

func (a *instanceActorCommonBehavior) getPublicCollection(ctx *pub.Context) (*streams.Value, error) {
	uc := util.Context{Context: ctx.Go}
	iri, err := uc.CompleteRequestURL()
	if err != nil {
		return nil, err
	}
	return a.db.GetCollection(ctx.Go, iri, pub.CollectionPageOptions{PublicOnly: true})
}
