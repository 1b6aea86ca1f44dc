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
	"fmt"

	"github.com/hearthgate/fedcore/app"
	"github.com/hearthgate/fedcore/framework/config"
	"github.com/hearthgate/fedcore/framework/conn"
	"github.com/hearthgate/fedcore/framework/oauth2"
	"github.com/hearthgate/fedcore/framework/web"
	"github.com/hearthgate/fedcore/pub"
	"github.com/hearthgate/fedcore/services"
)

// NewActor builds the pub.Actor for a single user, wiring together the
// Common/Social/Federating delegates this package implements over
// Database and enabling whichever protocol half(s) the Application
// implements.
func NewActor(c *config.Config,
	a app.Application,
	db *Database,
	o *oauth2.Server,
	po *services.Policies,
	pk *services.PrivateKeys,
	f *services.Followers,
	u *services.Users,
	tc *conn.Controller) (actor *pub.Actor, err error) {

	common := newCommonBehavior(a, db, o, c.DatabaseConfig.DefaultCollectionPageSize, c.DatabaseConfig.MaxCollectionPageSize)
	agent := web.UserAgent(a.Software())

	ca, isC2S := a.(app.C2SApplication)
	sa, isS2S := a.(app.S2SApplication)
	if !isC2S && !isS2S {
		err = fmt.Errorf("the Application is neither a C2SApplication nor a S2SApplication")
		return
	}
	if isC2S && isS2S {
		c2s := NewSocialBehavior(ca, o, po)
		s2s := NewFederatingBehavior(c, db, po, pk, f, u, tc)
		c2sHandler := pub.NewActivityHandler()
		ca.ApplySocialHandlers(c2sHandler)
		s2sHandler := pub.NewActivityHandler()
		sa.ApplyFederatingHandlers(s2sHandler)
		actor = pub.NewActor(common, db, c2s, s2s, c2sHandler, s2sHandler, agent)
	} else if isC2S {
		c2s := NewSocialBehavior(ca, o, po)
		c2sHandler := pub.NewActivityHandler()
		ca.ApplySocialHandlers(c2sHandler)
		actor = pub.NewSocialActor(common, db, c2s, c2sHandler, agent)
	} else {
		s2s := NewFederatingBehavior(c, db, po, pk, f, u, tc)
		s2sHandler := pub.NewActivityHandler()
		sa.ApplyFederatingHandlers(s2sHandler)
		actor = pub.NewFederatingActor(common, db, s2s, s2sHandler, agent)
	}
	return
}
