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
	"github.com/hearthgate/fedcore/framework/config"
	"github.com/hearthgate/fedcore/framework/conn"
	"github.com/hearthgate/fedcore/paths"
	"github.com/hearthgate/fedcore/pub"
	"github.com/hearthgate/fedcore/services"
)

// NewActorMap builds the set of pub.Actors not tied to an individual user:
// today that is only the instance actor, the "instance itself as an
// actor" pattern used so other servers have something to address
// instance-wide federated traffic (NodeInfo discovery, relay subscription)
// to without it belonging to any one local user.
func NewActorMap(c *config.Config,
	db *Database,
	pk *services.PrivateKeys,
	f *services.Followers,
	tc *conn.Controller) map[paths.Actor]*pub.Actor {

	actorMap := make(map[paths.Actor]*pub.Actor, 1)
	actorMap[paths.InstanceActor] = newInstanceActor(c, db, pk, f, tc)
	return actorMap
}

func newInstanceActor(c *config.Config,
	db *Database,
	pk *services.PrivateKeys,
	f *services.Followers,
	tc *conn.Controller) *pub.Actor {

	common := newInstanceActorCommonBehavior(db, tc, pk)
	s2s := newInstanceActorFederatingBehavior(c, db, pk, f, tc)
	return pub.NewFederatingActor(common, db, s2s, pub.NewActivityHandler(), "fedcore-instance-actor")
}
