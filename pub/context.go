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
	"net/url"

	"github.com/hearthgate/fedcore/streams"
)

// OnFollowBehavior is the policy an S2S delegate selects for handling
// incoming Follow activities.
type OnFollowBehavior int

const (
	OnFollowDoNothing OnFollowBehavior = iota
	OnFollowAutoAccept
	OnFollowAutoReject
)

// C2SData is the Social-API-only side channel. Splitting it from S2SData
// keeps each pipeline's fields typed instead of sharing one heterogeneous
// map with missing-key failure modes.
type C2SData struct {
	// OutboxIRI is the outbox handling the current C2S request.
	OutboxIRI *url.URL
}

// S2SData is the Federated-Protocol-only side channel.
type S2SData struct {
	// InboxIRI is the inbox handling the current S2S request.
	InboxIRI *url.URL
}

// RequestState holds the mutable, per-request fields of the actor
// context.
type RequestState struct {
	// BoxIRI is the inbox/outbox handling the current call.
	BoxIRI *url.URL

	// AppAgent is the User-Agent fragment identifying the host
	// application.
	AppAgent string

	// RawActivity is the original JSON map as received, needed because
	// Update must distinguish "key absent" from "key present with
	// null".
	RawActivity map[string]interface{}

	// Deliverable lets C2S side effects veto federation of the activity
	// just processed.
	Deliverable bool

	// OnFollow is the policy to apply to incoming Follow activities.
	OnFollow OnFollowBehavior

	// NewActivityID is the id of an activity just added to the outbox,
	// used to treat inbox-forwarding's "have we seen this?" check as
	// false for our own outbox echo.
	NewActivityID string

	// C2S and S2S are populated only while the context is threaded
	// through the corresponding half of the protocol.
	C2S *C2SData
	S2S *S2SData

	// Data is a free-form map for application use, for anything this
	// struct does not name explicitly.
	Data map[string]interface{}
}

// Context is a configuration-plus-state record held per request. The delegate/database fields are immutable after
// construction; State is mutable and is what components return modified
// copies of as a request flows through the engine.
type Context struct {
	// Go's cancellation/deadline signal for the current request,
	// propagated into every blocking call.
	Go context.Context

	// Common is the delegate implementing behavior shared by both
	// protocol halves. It is mandatory.
	Common CommonBehavior

	// Social and Federating are the C2S and S2S delegates; either may be
	// nil, but not both.
	Social     SocialProtocol
	Federating FederatingProtocol

	// C2SHandler and S2SHandler are the per-activity-type handler tables
	// consulted first at the top level.
	C2SHandler *ActivityHandler
	S2SHandler *ActivityHandler

	// Fallback is consulted when neither the top-level module nor the
	// selected protocol module implements a requested function: a
	// Fallback implementation backfills protocol functions, and an
	// *ActivityHandler backfills the per-type handler tables.
	Fallback interface{}

	// DB is the mandatory persistence capability.
	DB Database

	State *RequestState
}

// IsC2SEnabled reports whether the Social API half is configured.
func (c *Context) IsC2SEnabled() bool { return c.Social != nil }

// IsS2SEnabled reports whether the Federated Protocol half is configured.
func (c *Context) IsS2SEnabled() bool { return c.Federating != nil }

// WithState returns a shallow copy of c with a replaced State: components
// freely return derived copies with altered fields, and there is no
// implicit global.
func (c *Context) WithState(s *RequestState) *Context {
	cp := *c
	cp.State = s
	return &cp
}

// Clone returns a deep-enough copy of c's State for a component to mutate
// without affecting the caller's view, mirroring the same pattern.
func (s *RequestState) Clone() *RequestState {
	cp := *s
	if s.Data != nil {
		cp.Data = make(map[string]interface{}, len(s.Data))
		for k, v := range s.Data {
			cp.Data[k] = v
		}
	}
	return &cp
}

// RawValue wraps State.RawActivity as a *streams.Value for convenient
// property inspection via streams' HasProperty/IsExplicitNull helpers.
func (s *RequestState) RawValue() *streams.Value {
	if s == nil || s.RawActivity == nil {
		return nil
	}
	v, _ := streams.Resolve(s.RawActivity)
	return v
}
