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

// sideEffectUpdateC2S applies a client-submitted partial Update: for each
// wrapped object, fetch the stored value, merge the new partial
// representation over it, delete any key the new representation set to a
// literal null, and persist the result.
func sideEffectUpdateC2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	merged, err := applyUpdates(ctx, activity)
	if err != nil {
		return nil, err
	}
	activity.SetValues("object", merged)
	return resolveC2SActivityHandler(ctx).Dispatch(ctx, activity)
}

// sideEffectUpdateS2S implements Update (S2S): identical merge, but first
// requires every referenced object to share the activity's origin.
func sideEffectUpdateS2S(ctx *Context, activity *streams.Value) (*streams.Value, error) {
	ok, err := ObjectsMatchActivityOrigin(activity)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrWrongOrigin("Update object does not share the activity's origin")
	}
	merged, err := applyUpdates(ctx, activity)
	if err != nil {
		return nil, err
	}
	activity.SetValues("object", merged)
	return resolveS2SActivityHandler(ctx).Dispatch(ctx, activity)
}

func applyUpdates(ctx *Context, activity *streams.Value) ([]*streams.Value, error) {
	overlays := activity.Values("object")
	if len(overlays) == 0 {
		return nil, ErrObjectRequired("Update requires at least one object")
	}
	out := make([]*streams.Value, 0, len(overlays))
	for _, overlay := range overlays {
		id, err := overlay.ID()
		if err != nil {
			return nil, err
		}
		old, err := ctx.DB.Get(ctx.Go, id)
		if err != nil {
			return nil, err
		}
		mergedRaw, err := mergeOverJSON(old.Raw(), overlay.Raw())
		if err != nil {
			return nil, err
		}
		mergedVal, err := streams.Resolve(mergedRaw)
		if err != nil {
			return nil, err
		}
		stored, err := ctx.DB.Update(ctx.Go, mergedVal)
		if err != nil {
			return nil, err
		}
		out = append(out, stored)
	}
	return out, nil
}
