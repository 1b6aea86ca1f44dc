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

package pub

import (
	"errors"
	"fmt"
)

// ErrorKind is the engine's error taxonomy: a closed set of kinds the
// request-level orchestrators know how to map to an HTTP status, plus a
// catch-all for everything else that just propagates.
type ErrorKind int

const (
	// KindUnmatchedType: JSON did not resolve to a known ActivityStreams
	// type. Surfaces as 400.
	KindUnmatchedType ErrorKind = iota
	// KindMissingID: a value that must carry an id does not. 400 at the
	// request boundary, internal otherwise.
	KindMissingID
	// KindObjectRequired: an activity that must carry a non-empty object
	// does not. 400.
	KindObjectRequired
	// KindTargetRequired: same, for target. 400.
	KindTargetRequired
	// KindActorRequired: same, for actor. 400.
	KindActorRequired
	// KindWrongOrigin: an S2S Update/Delete references objects from a
	// different host than the activity.
	KindWrongOrigin
	// KindNotAuthenticated: the delegate returned false from an
	// authenticate_* call; it is expected to have already written the
	// HTTP response.
	KindNotAuthenticated
	// KindNotAuthorized: the delegate returned false from authorize_*.
	KindNotAuthorized
	// KindDelegateMissing: a required protocol delegate is absent.
	KindDelegateMissing
	// KindTransportFailure: any I/O failure via the transport.
	KindTransportFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnmatchedType:
		return "unmatched_type"
	case KindMissingID:
		return "missing_id"
	case KindObjectRequired:
		return "object_required"
	case KindTargetRequired:
		return "target_required"
	case KindActorRequired:
		return "actor_required"
	case KindWrongOrigin:
		return "wrong_origin"
	case KindNotAuthenticated:
		return "not_authenticated"
	case KindNotAuthorized:
		return "not_authorized"
	case KindDelegateMissing:
		return "delegate_missing"
	case KindTransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with a classified Kind, so request-level
// orchestrators can map it to a status code without string-matching error
// text.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match by kind, not just by identical *Error pointers:
// a caller constructs a bare &Error{Kind: K} (for example
// &pub.Error{Kind: pub.KindMissingID}) to match against.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewError constructs a classified error.
func NewError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// KindOf returns the Kind of err if it (or something it wraps) is a *Error,
// and ok=false otherwise.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Sentinel convenience constructors for the named kinds.
func ErrMissingID(msg string) error       { return NewError(KindMissingID, msg, nil) }
func ErrObjectRequired(msg string) error  { return NewError(KindObjectRequired, msg, nil) }
func ErrTargetRequired(msg string) error  { return NewError(KindTargetRequired, msg, nil) }
func ErrActorRequired(msg string) error   { return NewError(KindActorRequired, msg, nil) }
func ErrWrongOrigin(msg string) error     { return NewError(KindWrongOrigin, msg, nil) }
func ErrUnmatchedType(msg string) error   { return NewError(KindUnmatchedType, msg, nil) }
func ErrDelegateMissing(msg string) error { return NewError(KindDelegateMissing, msg, nil) }
func ErrTransportFailure(cause error) error {
	return NewError(KindTransportFailure, "transport operation failed", cause)
}

// StatusForError is the error-kind-to-status mapping for
// the request-level orchestrators. An error with no recognized Kind maps to
// 500, the catch-all "propagate as internal error" case.
func StatusForError(err error) int {
	kind, ok := KindOf(err)
	if !ok {
		return 500
	}
	switch kind {
	case KindUnmatchedType, KindMissingID, KindObjectRequired, KindTargetRequired, KindActorRequired:
		return 400
	case KindNotAuthenticated:
		return 401
	case KindNotAuthorized:
		return 403
	case KindWrongOrigin:
		return 409
	case KindDelegateMissing:
		return 501
	case KindTransportFailure:
		return 502
	default:
		return 500
	}
}
