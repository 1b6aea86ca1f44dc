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
	"net/http"
	"net/url"

	"github.com/hearthgate/fedcore/streams"
)

// CommonBehavior is the delegate module shared by both protocol halves.
type CommonBehavior interface {
	AuthenticateGetInbox(ctx *Context, w http.ResponseWriter, r *http.Request) (*Context, bool, error)
	GetInbox(ctx *Context, r *http.Request) (*streams.Value, error)
	AuthenticateGetOutbox(ctx *Context, w http.ResponseWriter, r *http.Request) (*Context, bool, error)
	GetOutbox(ctx *Context, r *http.Request) (*streams.Value, error)
}

// SocialProtocol is the C2S ("Social API") delegate module.
type SocialProtocol interface {
	AuthenticatePostOutbox(ctx *Context, w http.ResponseWriter, r *http.Request) (*Context, bool, error)
	PostOutboxRequestBodyHook(ctx *Context, r *http.Request, data *streams.Value) (*Context, error)
	Blocked(ctx *Context, actorIRIs []*url.URL) (bool, error)
}

// FederatingProtocol is the S2S ("Federated Protocol") delegate module.
type FederatingProtocol interface {
	AuthenticatePostInbox(ctx *Context, w http.ResponseWriter, r *http.Request) (*Context, bool, error)
	AuthorizePostInbox(ctx *Context, w http.ResponseWriter, activity *streams.Value) (*Context, bool, error)
	PostInboxRequestBodyHook(ctx *Context, r *http.Request, activity *streams.Value) (*Context, error)
	Blocked(ctx *Context, actorIRIs []*url.URL) (bool, error)
	MaxInboxForwardingRecursionDepth(ctx *Context) int
	MaxDeliveryRecursionDepth(ctx *Context) int
	FilterForwarding(ctx *Context, potentialRecipients []*url.URL, activity *streams.Value) ([]*url.URL, error)
	OnFollow(ctx *Context) OnFollowBehavior
}

// Fallback is the module tried last, at any resolution step, when neither
// the top-level module nor the selected protocol module implements a
// requested function.
//
// fedcore represents the protocol-module/fallback distinction with plain Go
// interfaces rather than runtime "does this export function X" checks: each
// of the handful of dispatchable delegate functions gets its own typed
// resolution helper below, so a missing implementation is still a compile
// error for the concrete delegate types, while the *selection* of common vs.
// c2s vs. s2s vs. fallback remains a runtime decision driven by the
// Context.
type Fallback interface {
	SocialProtocol
	FederatingProtocol
}

// passError is the unexported marker type behind the Pass sentinel.
type passError struct{}

func (passError) Error() string { return "pub: pass" }

// Pass is a typed sentinel error: a top-level module's handler returns
// Pass to opt out and let resolution continue to the configured protocol
// module.
var Pass error = passError{}

// IsPass reports whether err is the Pass sentinel.
func IsPass(err error) bool {
	_, ok := err.(passError)
	return ok
}

// ActivityHandlerFunc is a per-activity-type side-effect callback.
type ActivityHandlerFunc func(ctx *Context, activity *streams.Value) (*streams.Value, error)

// ActivityHandler is a table from lower-cased ActivityStreams type name to
// handler, with a default entry consulted when an activity's type has no
// handler of its own.
type ActivityHandler struct {
	byType  map[string]ActivityHandlerFunc
	Default ActivityHandlerFunc
}

// NewActivityHandler builds an empty handler table.
func NewActivityHandler() *ActivityHandler {
	return &ActivityHandler{byType: make(map[string]ActivityHandlerFunc)}
}

// Set registers fn for typeName, matched case-insensitively against the
// activity's type.
func (h *ActivityHandler) Set(typeName string, fn ActivityHandlerFunc) *ActivityHandler {
	h.byType[lowerASCII(typeName)] = fn
	return h
}

// Dispatch resolves and invokes the callback for activity's type: the
// registered handler for that type, or Default; if neither exists,
// the activity passes through unchanged.
func (h *ActivityHandler) Dispatch(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	if h == nil {
		return activity, nil
	}
	if fn, ok := h.byType[lowerASCII(activity.Type())]; ok {
		return fn(ctx, activity)
	}
	if h.Default != nil {
		return h.Default(ctx, activity)
	}
	return activity, nil
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// resolveSocial and resolveFederating apply the delegate resolution order
// for protocol functions: the configured protocol module first, then a
// Fallback that implements the protocol's interface. A nil return means
// neither was supplied.
func resolveSocial(ctx *Context) SocialProtocol {
	if ctx.Social != nil {
		return ctx.Social
	}
	if f, ok := ctx.Fallback.(SocialProtocol); ok {
		return f
	}
	return nil
}

func resolveFederating(ctx *Context) FederatingProtocol {
	if ctx.Federating != nil {
		return ctx.Federating
	}
	if f, ok := ctx.Fallback.(FederatingProtocol); ok {
		return f
	}
	return nil
}

// The protocol modules carry no handler tables of their own (built-in side
// effects live in this package's per-type files), so resolving "which
// handler table applies" means: the table the Context was constructed with
// for that protocol half, then a Fallback handler table if one was
// supplied, then none (Dispatch on a nil table passes the activity through
// unchanged). Kept as named functions so the resolution rule has one place
// to read.
func resolveC2SActivityHandler(ctx *Context) *ActivityHandler {
	if ctx.C2SHandler != nil {
		return ctx.C2SHandler
	}
	if h, ok := ctx.Fallback.(*ActivityHandler); ok {
		return h
	}
	return nil
}

func resolveS2SActivityHandler(ctx *Context) *ActivityHandler {
	if ctx.S2SHandler != nil {
		return ctx.S2SHandler
	}
	if h, ok := ctx.Fallback.(*ActivityHandler); ok {
		return h
	}
	return nil
}
