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
	"context"
	"net/http"
	"net/url"

	"github.com/go-fed/httpsig"
	"github.com/hearthgate/fedcore/framework/config"
	"github.com/hearthgate/fedcore/framework/conn"
	"github.com/hearthgate/fedcore/pub"
	"github.com/hearthgate/fedcore/services"
	"github.com/hearthgate/fedcore/streams"
	"github.com/hearthgate/fedcore/util"
)

var _ pub.FederatingProtocol = &instanceActorFederatingBehavior{}

// instanceActorFederatingBehavior is the FederatingProtocol for the
// instance actor: it has no owning user, no preferences, and forwards
// only to its own followers (typically other instances' instance actors).
type instanceActorFederatingBehavior struct {
	maxInboxForwardingDepth int
	maxDeliveryDepth        int
	db                      *Database
	pk                      *services.PrivateKeys
	f                       *services.Followers
	tc                      *conn.Controller
}

func newInstanceActorFederatingBehavior(c *config.Config,
	db *Database,
	pk *services.PrivateKeys,
	f *services.Followers,
	tc *conn.Controller) *instanceActorFederatingBehavior {
	return &instanceActorFederatingBehavior{
		maxInboxForwardingDepth: c.ActivityPubConfig.MaxInboxForwardingRecursionDepth,
		maxDeliveryDepth:        c.ActivityPubConfig.MaxDeliveryRecursionDepth,
		db:                      db,
		pk:                      pk,
		f:                       f,
		tc:                      tc,
	}
}

func (f *instanceActorFederatingBehavior) AuthenticatePostInbox(ctx *pub.Context, w http.ResponseWriter, r *http.Request) (*pub.Context, bool, error) {
	authenticated, err := verifyInstanceActorHttpSignatures(ctx.Go, r, f.pk, f.tc)
	return ctx, authenticated, err
}

func (f *instanceActorFederatingBehavior) AuthorizePostInbox(ctx *pub.Context, w http.ResponseWriter, activity *streams.Value) (*pub.Context, bool, error) {
	return ctx, true, nil
}

func (f *instanceActorFederatingBehavior) PostInboxRequestBodyHook(ctx *pub.Context, r *http.Request, activity *streams.Value) (*pub.Context, error) {
	state := ctx.State.Clone()
	state.RawActivity = activity.Raw()
	return ctx.WithState(state), nil
}

// Blocked never blocks federated traffic directed at the instance actor:
// it has no per-recipient policy of its own.
func (f *instanceActorFederatingBehavior) Blocked(ctx *pub.Context, actorIRIs []*url.URL) (bool, error) {
	return false, nil
}

func (f *instanceActorFederatingBehavior) MaxInboxForwardingRecursionDepth(ctx *pub.Context) int {
	return f.maxInboxForwardingDepth
}

func (f *instanceActorFederatingBehavior) MaxDeliveryRecursionDepth(ctx *pub.Context) int {
	return f.maxDeliveryDepth
}

// FilterForwarding restricts inbox-forwarding recipients to the instance
// actor's own followers, identical in shape to FederatingBehavior's
// per-user version.
func (f *instanceActorFederatingBehavior) FilterForwarding(ctx *pub.Context, potentialRecipients []*url.URL, activity *streams.Value) ([]*url.URL, error) {
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

// OnFollow always does nothing: the instance actor has no followers
// collection semantics beyond what an administrator manages out of band.
func (f *instanceActorFederatingBehavior) OnFollow(ctx *pub.Context) pub.OnFollowBehavior {
	return pub.OnFollowDoNothing
}

// verifyInstanceActorHttpSignatures is verifyHttpSignatures' counterpart
// for the instance actor: the signing key looked up to verify an inbound
// request is the instance actor's own key, not a per-user one.
func verifyInstanceActorHttpSignatures(c context.Context, r *http.Request, pk *services.PrivateKeys, tc *conn.Controller) (authenticated bool, err error) {
	v, err := httpsig.NewVerifier(r)
	if err != nil {
		return false, err
	}
	kIdIRI, err := url.Parse(v.KeyId())
	if err != nil {
		return false, err
	}

	uc := util.Context{Context: c}
	privKey, pubKeyID, err := pk.GetUserHTTPSignatureKeyForInstanceActor(uc)
	if err != nil {
		return false, err
	}

	tp, err := tc.Get(privKey, pubKeyID.String())
	if err != nil {
		return false, err
	}
	signer, err := tp.Dereference(c, kIdIRI)
	if err != nil {
		return false, err
	}
	pKey, err := getPublicKeyFromResponse(signer, kIdIRI)
	if err != nil {
		return false, err
	}

	algo := tc.GetFirstAlgorithm()
	return v.Verify(pKey, algo) == nil, nil
}
