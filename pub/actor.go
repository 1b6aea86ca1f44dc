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
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hearthgate/fedcore/streams"
)

// Actor is the request-level orchestrator: a fixed, gated pipeline of
// delegate calls and engine operations wired to a Context
// template that HandlePostInbox/HandlePostOutbox/HandleGetInbox/
// HandleGetOutbox specialize per request.
type Actor struct {
	template Context
	agent    string
}

// NewActor builds an Actor with both the Social and Federating halves
// enabled.
func NewActor(common CommonBehavior, db Database, social SocialProtocol, federating FederatingProtocol, c2sHandler, s2sHandler *ActivityHandler, agent string) *Actor {
	return &Actor{
		template: Context{
			Common:     common,
			Social:     social,
			Federating: federating,
			C2SHandler: c2sHandler,
			S2SHandler: s2sHandler,
			DB:         db,
		},
		agent: agent,
	}
}

// NewSocialActor builds an Actor with only the Social (C2S) half enabled.
func NewSocialActor(common CommonBehavior, db Database, social SocialProtocol, c2sHandler *ActivityHandler, agent string) *Actor {
	return NewActor(common, db, social, nil, c2sHandler, nil, agent)
}

// NewFederatingActor builds an Actor with only the Federating (S2S) half
// enabled.
func NewFederatingActor(common CommonBehavior, db Database, federating FederatingProtocol, s2sHandler *ActivityHandler, agent string) *Actor {
	return NewActor(common, db, nil, federating, nil, s2sHandler, agent)
}

func (a *Actor) newContext(goCtx context.Context, boxIRI *url.URL) *Context {
	cp := a.template
	cp.Go = goCtx
	cp.State = &RequestState{
		BoxIRI:   boxIRI,
		AppAgent: a.agent,
	}
	return &cp
}

func requestIRI(r *http.Request) *url.URL {
	u := *r.URL
	u.Scheme = "https"
	if u.Host == "" {
		u.Host = r.Host
	}
	return &u
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), StatusForError(err))
}

// isActivityPubMediaType reports whether header (a Content-Type or Accept
// value) names one of the ActivityPub media types.
func isActivityPubMediaType(header string) bool {
	for _, part := range strings.Split(header, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if strings.HasPrefix(part, "application/activity+json") {
			return true
		}
		if strings.HasPrefix(part, "application/ld+json") && strings.Contains(part, "www.w3.org/ns/activitystreams") {
			return true
		}
	}
	return false
}

// writeJSON serializes v and writes it as a 200 response with the headers
// a successful ActivityPub GET carries: Content-Type, Date (RFC 7231
// §7.1.1.2), and Digest (RFC 3230/5843, SHA-256).
func writeJSON(w http.ResponseWriter, v *streams.Value) {
	writeJSONStatus(w, v, http.StatusOK)
}

// writeJSONStatus is writeJSON with an explicit status line, for callers
// (e.g. outbox POST's 201) that must also set headers of their own before
// the status is written.
func writeJSONStatus(w http.ResponseWriter, v *streams.Value, status int) {
	m, err := streams.Serialize(v)
	if err != nil {
		writeError(w, err)
		return
	}
	body, err := json.Marshal(m)
	if err != nil {
		writeError(w, err)
		return
	}
	sum := sha256.Sum256(body)
	w.Header().Set("Content-Type", "application/activity+json")
	w.Header().Set("Date", time.Now().UTC().Format(http.TimeFormat))
	w.Header().Set("Digest", "SHA-256="+base64.StdEncoding.EncodeToString(sum[:]))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func parseActivityBody(r *http.Request) (*streams.Value, error) {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	v, err := streams.ResolveJSON(b)
	if err != nil {
		return nil, ErrUnmatchedType(err.Error())
	}
	return v, nil
}

// HandlePostInbox is the POST-to-inbox pipeline: authenticate, parse and
// hook the body, check Blocked, authorize, then run
// PostInbox. A return of handled=false means this request was not an
// ActivityPub POST at all and the caller should fall through to its own
// routing.
func (a *Actor) HandlePostInbox(goCtx context.Context, w http.ResponseWriter, r *http.Request) (handled bool, err error) {
	if r.Method != http.MethodPost {
		return false, nil
	}
	if !isActivityPubMediaType(r.Header.Get("Content-Type")) {
		return false, nil
	}
	inbox := requestIRI(r)
	ctx := a.newContext(goCtx, inbox)
	if ctx.Federating == nil {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return true, nil
	}

	ctx, authenticated, err := ctx.Federating.AuthenticatePostInbox(ctx, w, r)
	if err != nil {
		writeError(w, err)
		return true, err
	}
	if !authenticated {
		return true, nil
	}

	activity, err := parseActivityBody(r)
	if err != nil {
		writeError(w, err)
		return true, err
	}
	if !activity.IsActivity() {
		writeError(w, ErrUnmatchedType("body does not resolve to an Activity"))
		return true, nil
	}
	if _, err := activity.ID(); err != nil {
		writeError(w, ErrMissingID("activity must carry an id"))
		return true, nil
	}

	ctx, err = ctx.Federating.PostInboxRequestBodyHook(ctx, r, activity)
	if err != nil && !IsPass(err) {
		writeError(w, err)
		return true, err
	}

	blocked, err := ctx.Federating.Blocked(ctx, activity.IRIs("actor"))
	if err != nil {
		writeError(w, err)
		return true, err
	}
	if blocked {
		w.WriteHeader(http.StatusForbidden)
		return true, nil
	}

	ctx, authorized, err := ctx.Federating.AuthorizePostInbox(ctx, w, activity)
	if err != nil {
		writeError(w, err)
		return true, err
	}
	if !authorized {
		return true, nil
	}

	ctx, err = PostInbox(ctx, inbox, activity)
	if err != nil {
		writeError(w, err)
		return true, err
	}
	if err := InboxForwarding(ctx, inbox, activity); err != nil {
		writeError(w, err)
		return true, err
	}
	w.WriteHeader(http.StatusOK)
	return true, nil
}

// HandleGetInbox implements the GET-inbox half: authenticate, then ask the
// Common delegate for the collection page to serve.
func (a *Actor) HandleGetInbox(goCtx context.Context, w http.ResponseWriter, r *http.Request) (handled bool, err error) {
	if r.Method != http.MethodGet {
		return false, nil
	}
	if !isActivityPubMediaType(r.Header.Get("Accept")) {
		return false, nil
	}
	ctx := a.newContext(goCtx, requestIRI(r))

	ctx, authenticated, err := ctx.Common.AuthenticateGetInbox(ctx, w, r)
	if err != nil {
		writeError(w, err)
		return true, err
	}
	if !authenticated {
		return true, nil
	}

	page, err := ctx.Common.GetInbox(ctx, r)
	if err != nil {
		writeError(w, err)
		return true, err
	}
	writeJSON(w, streams.DedupeOrderedItems(page))
	return true, nil
}

// HandlePostOutbox is the POST-to-outbox pipeline: authenticate, parse
// and hook the body, check the addressed recipients against Blocked, then
// run PostOutbox.
func (a *Actor) HandlePostOutbox(goCtx context.Context, w http.ResponseWriter, r *http.Request) (handled bool, err error) {
	if r.Method != http.MethodPost {
		return false, nil
	}
	if !isActivityPubMediaType(r.Header.Get("Content-Type")) {
		return false, nil
	}
	outbox := requestIRI(r)
	ctx := a.newContext(goCtx, outbox)
	if ctx.Social == nil {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return true, nil
	}

	ctx, authenticated, err := ctx.Social.AuthenticatePostOutbox(ctx, w, r)
	if err != nil {
		writeError(w, err)
		return true, err
	}
	if !authenticated {
		return true, nil
	}

	data, err := parseActivityBody(r)
	if err != nil {
		writeError(w, err)
		return true, err
	}

	ctx, err = ctx.Social.PostOutboxRequestBodyHook(ctx, r, data)
	if err != nil && !IsPass(err) {
		writeError(w, err)
		return true, err
	}

	blocked, err := resolveSocial(ctx).Blocked(ctx, ExtractAllRecipients(data))
	if err != nil {
		writeError(w, err)
		return true, err
	}
	if blocked {
		w.WriteHeader(http.StatusForbidden)
		return true, nil
	}

	actorIRI, err := ctx.DB.ActorForOutbox(ctx.Go, outbox)
	if err != nil {
		writeError(w, err)
		return true, err
	}

	_, result, err := PostOutbox(ctx, outbox, actorIRI, data)
	if err != nil {
		writeError(w, err)
		return true, err
	}
	newID, err := result.ID()
	if err != nil {
		writeError(w, ErrMissingID("stored activity must carry an id"))
		return true, err
	}
	w.Header().Set("Location", newID.String())
	writeJSONStatus(w, result, http.StatusCreated)
	return true, nil
}

// Send runs PostOutbox on behalf of toSend's owning outbox without an
// HTTP round-trip, so application code can originate activity
// programmatically (e.g. accepting a Follow from a moderation UI) rather
// than only in response to a C2S POST.
func (a *Actor) Send(goCtx context.Context, outbox *url.URL, toSend *streams.Value) (*streams.Value, error) {
	if a.template.Social == nil && a.template.Federating == nil {
		return nil, ErrDelegateMissing("actor has neither Social nor Federating protocol enabled")
	}
	ctx := a.newContext(goCtx, outbox)
	actorIRI, err := ctx.DB.ActorForOutbox(ctx.Go, outbox)
	if err != nil {
		return nil, err
	}
	_, result, err := PostOutbox(ctx, outbox, actorIRI, toSend)
	return result, err
}

// HandleGetOutbox is HandleGetInbox's outbox counterpart.
func (a *Actor) HandleGetOutbox(goCtx context.Context, w http.ResponseWriter, r *http.Request) (handled bool, err error) {
	if r.Method != http.MethodGet {
		return false, nil
	}
	if !isActivityPubMediaType(r.Header.Get("Accept")) {
		return false, nil
	}
	ctx := a.newContext(goCtx, requestIRI(r))

	ctx, authenticated, err := ctx.Common.AuthenticateGetOutbox(ctx, w, r)
	if err != nil {
		writeError(w, err)
		return true, err
	}
	if !authenticated {
		return true, nil
	}

	page, err := ctx.Common.GetOutbox(ctx, r)
	if err != nil {
		writeError(w, err)
		return true, err
	}
	writeJSON(w, streams.DedupeOrderedItems(page))
	return true, nil
}
