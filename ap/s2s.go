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

	"github.com/hearthgate/fedcore/framework/config"
	"github.com/hearthgate/fedcore/framework/conn"
	"github.com/hearthgate/fedcore/pub"
	"github.com/hearthgate/fedcore/services"
	"github.com/hearthgate/fedcore/streams"
	"github.com/hearthgate/fedcore/util"
)

var _ pub.FederatingProtocol = &FederatingBehavior{}

// FederatingBehavior is the S2S ("Federated Protocol") delegate module.
type FederatingBehavior struct {
	maxInboxForwardingDepth int
	maxDeliveryDepth        int
	db                      *Database
	po                      *services.Policies
	pk                      *services.PrivateKeys
	f                       *services.Followers
	u                       *services.Users
	tc                      *conn.Controller
}

func NewFederatingBehavior(c *config.Config,
	db *Database,
	po *services.Policies,
	pk *services.PrivateKeys,
	f *services.Followers,
	u *services.Users,
	tc *conn.Controller) *FederatingBehavior {
	return &FederatingBehavior{
		maxInboxForwardingDepth: c.ActivityPubConfig.MaxInboxForwardingRecursionDepth,
		maxDeliveryDepth:        c.ActivityPubConfig.MaxDeliveryRecursionDepth,
		db:                      db,
		po:                      po,
		pk:                      pk,
		f:                       f,
		u:                       u,
		tc:                      tc,
	}
}

func (f *FederatingBehavior) AuthenticatePostInbox(ctx *pub.Context, w http.ResponseWriter, r *http.Request) (*pub.Context, bool, error) {
	authenticated, err := verifyHttpSignatures(ctx.Go, r, f.pk, f.tc)
	return ctx, authenticated, err
}

func (f *FederatingBehavior) AuthorizePostInbox(ctx *pub.Context, w http.ResponseWriter, activity *streams.Value) (*pub.Context, bool, error) {
	// Signature verification in AuthenticatePostInbox already establishes
	// that the activity's claimed actor controls the signing key; no
	// further per-activity authorization is required here.
	return ctx, true, nil
}

func (f *FederatingBehavior) PostInboxRequestBodyHook(ctx *pub.Context, r *http.Request, activity *streams.Value) (*pub.Context, error) {
	state := ctx.State.Clone()
	state.RawActivity = activity.Raw()
	return ctx.WithState(state), nil
}

// Blocked checks the arriving activity's claimed actors against the policy
// engine's federated-block rules.
func (f *FederatingBehavior) Blocked(ctx *pub.Context, actorIRIs []*url.URL) (bool, error) {
	activity := ctx.State.RawValue()
	if activity == nil {
		return false, nil
	}
	uc := util.Context{Context: ctx.Go}
	for _, actorIRI := range actorIRIs {
		blocked, err := f.po.IsBlocked(uc, actorIRI, activity)
		if err != nil {
			return false, err
		}
		if blocked {
			return true, nil
		}
	}
	return false, nil
}

func (f *FederatingBehavior) MaxInboxForwardingRecursionDepth(ctx *pub.Context) int {
	return f.maxInboxForwardingDepth
}

func (f *FederatingBehavior) MaxDeliveryRecursionDepth(ctx *pub.Context) int {
	return f.maxDeliveryDepth
}

// FilterForwarding restricts inbox-forwarding recipients to the target
// actor's own followers.
func (f *FederatingBehavior) FilterForwarding(ctx *pub.Context, potentialRecipients []*url.URL, activity *streams.Value) ([]*url.URL, error) {
	uc := util.Context{Context: ctx.Go}
	actorIRI, err := uc.ActorIRI()
	if err != nil {
		return nil, err
	}
	fc, err := f.f.GetAllForActor(uc, actorIRI)
	if err != nil {
		return nil, err
	}
	allowed := make(map[string]bool, len(fc.Items()))
	for _, id := range fc.Items() {
		allowed[id.String()] = true
	}
	var filtered []*url.URL
	for _, elem := range potentialRecipients {
		if allowed[elem.String()] {
			filtered = append(filtered, elem)
		}
	}
	return filtered, nil
}

func (f *FederatingBehavior) OnFollow(ctx *pub.Context) pub.OnFollowBehavior {
	uc := util.Context{Context: ctx.Go}
	uuid, err := uc.UserPathUUID()
	if err != nil {
		return pub.OnFollowDoNothing
	}
	prefs, err := f.u.Preferences(uc, uuid, nil)
	if err != nil {
		return pub.OnFollowDoNothing
	}
	return prefs.OnFollow
}
