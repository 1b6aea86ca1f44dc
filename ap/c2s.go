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

	"github.com/hearthgate/fedcore/app"
	"github.com/hearthgate/fedcore/framework/oauth2"
	"github.com/hearthgate/fedcore/pub"
	"github.com/hearthgate/fedcore/services"
	"github.com/hearthgate/fedcore/streams"
	"github.com/hearthgate/fedcore/util"
)

var _ pub.SocialProtocol = &SocialBehavior{}

// SocialBehavior is the C2S ("Social API") delegate module.
type SocialBehavior struct {
	app app.C2SApplication
	o   *oauth2.Server
	po  *services.Policies
}

func NewSocialBehavior(a app.C2SApplication, o *oauth2.Server, po *services.Policies) *SocialBehavior {
	return &SocialBehavior{
		app: a,
		o:   o,
		po:  po,
	}
}

func (s *SocialBehavior) AuthenticatePostOutbox(ctx *pub.Context, w http.ResponseWriter, r *http.Request) (*pub.Context, bool, error) {
	t, authenticated, err := s.o.ValidateOAuth2AccessToken(w, r)
	if err != nil || !authenticated {
		return ctx, authenticated, err
	}
	authenticated, err = s.app.ScopePermitsPostOutbox(t.GetScope())
	return ctx, authenticated, err
}

func (s *SocialBehavior) PostOutboxRequestBodyHook(ctx *pub.Context, r *http.Request, data *streams.Value) (*pub.Context, error) {
	state := ctx.State.Clone()
	state.RawActivity = data.Raw()
	return ctx.WithState(state), nil
}

// Blocked checks the submitting actor's outgoing activity against the
// policy engine for each recipient actor named in actorIRIs.
func (s *SocialBehavior) Blocked(ctx *pub.Context, actorIRIs []*url.URL) (bool, error) {
	activity := ctx.State.RawValue()
	if activity == nil {
		return false, nil
	}
	uc := util.Context{Context: ctx.Go}
	for _, actorIRI := range actorIRIs {
		blocked, err := s.po.IsBlocked(uc, actorIRI, activity)
		if err != nil {
			return false, err
		}
		if blocked {
			return true, nil
		}
	}
	return false, nil
}
