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

import "github.com/hearthgate/fedcore/streams"

type sideEffectFunc func(ctx *Context, activity *streams.Value) (*streams.Value, error)

// c2sSideEffects and s2sSideEffects are the engine's own fixed per-type
// behavior, keyed by lower-cased ActivityStreams type name.
// Every entry ends by invoking the application's own activity handler
// table; a type with no entry here
// still reaches the handler table via passthroughSideEffect.
var c2sSideEffects = map[string]sideEffectFunc{
	"create":   sideEffectCreateC2S,
	"update":   sideEffectUpdateC2S,
	"delete":   sideEffectDeleteC2S,
	"follow":   sideEffectFollowC2S,
	"accept":   sideEffectAcceptC2S,
	"reject":   sideEffectRejectC2S,
	"add":      sideEffectAddC2S,
	"remove":   sideEffectRemoveC2S,
	"like":     sideEffectLikeC2S,
	"announce": sideEffectAnnounceC2S,
	"undo":     sideEffectUndoC2S,
	"block":    sideEffectBlockC2S,
}

var s2sSideEffects = map[string]sideEffectFunc{
	"create":   sideEffectCreateS2S,
	"update":   sideEffectUpdateS2S,
	"delete":   sideEffectDeleteS2S,
	"follow":   sideEffectFollowS2S,
	"accept":   sideEffectAcceptS2S,
	"reject":   sideEffectRejectS2S,
	"add":      sideEffectAddS2S,
	"remove":   sideEffectRemoveS2S,
	"like":     sideEffectLikeS2S,
	"announce": sideEffectAnnounceS2S,
	"undo":     sideEffectUndoS2S,
	"block":    sideEffectBlockS2S,
}

func passthroughSideEffect(ctx *Context, activity *streams.Value, handler *ActivityHandler) (*streams.Value, error) {
	return handler.Dispatch(ctx, activity)
}

// applyC2SSideEffects runs the built-in side effect for activity's type, if
// any, then (within that side effect) the application's C2S handler table.
func applyC2SSideEffects(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	if fn, ok := c2sSideEffects[lowerASCII(activity.Type())]; ok {
		return fn(ctx, activity)
	}
	return passthroughSideEffect(ctx, activity, resolveC2SActivityHandler(ctx))
}

// applyS2SSideEffects is applyC2SSideEffects' S2S counterpart.
func applyS2SSideEffects(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	if fn, ok := s2sSideEffects[lowerASCII(activity.Type())]; ok {
		return fn(ctx, activity)
	}
	return passthroughSideEffect(ctx, activity, resolveS2SActivityHandler(ctx))
}
