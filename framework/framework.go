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

package framework

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	oa2 "github.com/go-fed/oauth2"
	"github.com/hearthgate/fedcore/ap"
	"github.com/hearthgate/fedcore/app"
	"github.com/hearthgate/fedcore/framework/oauth2"
	"github.com/hearthgate/fedcore/framework/web"
	"github.com/hearthgate/fedcore/paths"
	"github.com/hearthgate/fedcore/pub"
	"github.com/hearthgate/fedcore/services"
	"github.com/hearthgate/fedcore/streams"
	"github.com/hearthgate/fedcore/util"
)

var _ app.Framework = &Framework{}
var _ app.Session = &web.Session{}

// Framework is the concrete app.Framework handed to application code at
// request time: the request-scoped glue between the web layer and the
// services/ap/pub layers built up during server construction.
//
// An empty Framework is created first and filled in by BuildFramework once
// its dependencies exist, so the placeholder can be injected into handlers
// constructed before wiring completes.
type Framework struct {
	scheme            string
	host              string
	o                 *oauth2.Server
	sessions          *web.Sessions
	users             *services.Users
	db                *ap.Database
	actor             *pub.Actor
	federationEnabled bool
	hashParams        services.HashPasswordParameters
	rsaKeySize        int
}

// BuildFramework fills in fw's dependencies and returns it.
func BuildFramework(fw *Framework,
	scheme, host string,
	o *oauth2.Server,
	sessions *web.Sessions,
	users *services.Users,
	db *ap.Database,
	actor *pub.Actor,
	federationEnabled bool,
	hashParams services.HashPasswordParameters,
	rsaKeySize int) *Framework {
	fw.scheme = scheme
	fw.host = host
	fw.o = o
	fw.sessions = sessions
	fw.users = users
	fw.db = db
	fw.actor = actor
	fw.federationEnabled = federationEnabled
	fw.hashParams = hashParams
	fw.rsaKeySize = rsaKeySize
	return fw
}

func (f *Framework) Context(r *http.Request) context.Context {
	return r.Context()
}

func (f *Framework) UserIRI(userUUID paths.UUID) *url.URL {
	return paths.UUIDIRIFor(f.scheme, f.host, paths.UserPathKey, userUUID)
}

func (f *Framework) CreateUser(c context.Context, username, email, password string) (userID string, err error) {
	uc := util.Context{Context: c}
	params := services.CreateUserParameters{
		Scheme:     f.scheme,
		Host:       f.host,
		Username:   username,
		Email:      email,
		HashParams: f.hashParams,
		RSAKeySize: f.rsaKeySize,
	}
	return f.users.CreateUser(uc, params, password)
}

const (
	notUniqueEmailMsg    = "user does not have a unique email address"
	notUniquePrefUserMsg = "user does not have a unique preferredUsername"
)

func (f *Framework) IsNotUniqueUsername(err error) bool {
	return err != nil && strings.Contains(err.Error(), notUniquePrefUserMsg)
}

func (f *Framework) IsNotUniqueEmail(err error) bool {
	return err != nil && strings.Contains(err.Error(), notUniqueEmailMsg)
}

// Validate checks, in order, for a Bearer OAuth2 access token and then for
// a first-party session cookie, since either may authenticate a request.
func (f *Framework) Validate(w http.ResponseWriter, r *http.Request) (userID paths.UUID, authenticated bool, err error) {
	var token oa2.TokenInfo
	token, authenticated, err = f.o.ValidateOAuth2AccessToken(w, r)
	if err != nil {
		return
	}
	if authenticated {
		userID = paths.UUID(token.GetUserID())
		return
	}
	var s *web.Session
	s, err = f.sessions.Get(r)
	if err != nil {
		return
	}
	uid, sErr := s.UserID()
	if sErr != nil {
		// Not logged in: no error, just unauthenticated.
		return "", false, nil
	}
	return paths.UUID(uid), true, nil
}

func (f *Framework) Send(c context.Context, userID paths.UUID, toSend *streams.Value) error {
	if !f.federationEnabled {
		return fmt.Errorf("cannot Send: federation is not enabled")
	}
	outbox := paths.UUIDIRIFor(f.scheme, f.host, paths.OutboxPathKey, userID)
	_, err := f.actor.Send(c, outbox, toSend)
	return err
}

func (f *Framework) SendAcceptFollow(c context.Context, userID paths.UUID, followIRI *url.URL) error {
	return f.sendFollowResponse(c, userID, followIRI, "Accept")
}

func (f *Framework) SendRejectFollow(c context.Context, userID paths.UUID, followIRI *url.URL) error {
	return f.sendFollowResponse(c, userID, followIRI, "Reject")
}

func (f *Framework) sendFollowResponse(c context.Context, userID paths.UUID, followIRI *url.URL, respType string) error {
	if !f.federationEnabled {
		return fmt.Errorf("cannot %s: federation is not enabled", respType)
	}
	v, err := f.db.Get(c, followIRI)
	if err != nil {
		return err
	}
	follow, err := util.ToActivityStreamsFollow(v)
	if err != nil {
		return fmt.Errorf("%s: %w", followIRI, err)
	}
	actorIRI := f.UserIRI(userID)
	resp := streams.New(respType)
	resp.SetIRIs("actor", []*url.URL{actorIRI})
	resp.SetIRIs("object", []*url.URL{followIRI})
	resp.SetIRIs("to", follow.IRIs("actor"))
	return f.Send(c, userID, resp)
}

func (f *Framework) Session(r *http.Request) (app.Session, error) {
	return f.sessions.Get(r)
}

func (f *Framework) GetByIRI(c context.Context, id *url.URL) (*streams.Value, error) {
	return f.db.Get(c, id)
}

// OpenFollowRequests returns the Follow activities in userID's inbox that
// have not yet been Accepted or Rejected from their outbox, the set a
// moderation UI would list as awaiting a decision.
func (f *Framework) OpenFollowRequests(c context.Context, userID paths.UUID) (open []*streams.Value, err error) {
	inbox := paths.UUIDIRIFor(f.scheme, f.host, paths.InboxPathKey, userID)
	outbox := paths.UUIDIRIFor(f.scheme, f.host, paths.OutboxPathKey, userID)

	handled := make(map[string]bool)
	outPage, err := f.db.GetCollection(c, outbox, pub.CollectionPageOptions{N: f.db.MaxCollectionPageSize()})
	if err != nil {
		return nil, err
	}
	for _, id := range outPage.Items() {
		v, gErr := f.db.Get(c, id)
		if gErr != nil {
			continue
		}
		if v.Is("Accept") || v.Is("Reject") {
			for _, obj := range v.IRIs("object") {
				handled[obj.String()] = true
			}
		}
	}

	inPage, err := f.db.GetCollection(c, inbox, pub.CollectionPageOptions{N: f.db.MaxCollectionPageSize()})
	if err != nil {
		return nil, err
	}
	for _, id := range inPage.Items() {
		v, gErr := f.db.Get(c, id)
		if gErr != nil {
			continue
		}
		if !v.Is("Follow") {
			continue
		}
		fid, idErr := v.ID()
		if idErr != nil || handled[fid.String()] {
			continue
		}
		open = append(open, v)
	}
	return
}

func (f *Framework) GetPrivileges(c context.Context, userID paths.UUID, appPrivileges interface{}) (admin bool, err error) {
	uc := util.Context{Context: c}
	p, err := f.users.Privileges(uc, string(userID), appPrivileges)
	if err != nil {
		return
	}
	return p.Admin, nil
}

func (f *Framework) SetPrivileges(c context.Context, userID paths.UUID, admin bool, appPrivileges interface{}) error {
	uc := util.Context{Context: c}
	return f.users.UpdatePrivileges(uc, string(userID), &services.Privileges{
		Admin:         admin,
		AppPrivileges: appPrivileges,
	})
}
