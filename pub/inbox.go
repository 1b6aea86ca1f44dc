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
	"net/url"

	"github.com/hearthgate/fedcore/streams"
)

// PostInbox accepts an authenticated, authorized federated activity into
// inbox: extract the activity's id; if the inbox collection already contains
// it, this is a duplicate delivery and processing stops there without
// re-running side effects; otherwise persist the activity, prepend its
// reference to the inbox, and dispatch the built-in S2S side effect for its
// type followed by the application's handler table.
//
// The returned Context carries NewActivityID so the InboxForwarding pass
// that follows treats the activity we just stored as unseen rather than
// refusing to forward something we persisted moments ago.
func PostInbox(ctx *Context, inbox *url.URL, activity *streams.Value) (*Context, error) {
	id, err := activity.ID()
	if err != nil {
		return ctx, ErrMissingID("inbox activity must carry an id")
	}

	contains, err := ctx.DB.CollectionContains(ctx.Go, inbox, id)
	if err != nil {
		return ctx, err
	}
	if contains {
		return ctx, nil
	}

	stored, _, err := ctx.DB.Create(ctx.Go, activity)
	if err != nil {
		return ctx, err
	}

	if err := ctx.DB.UpdateCollection(ctx.Go, inbox, CollectionUpdate{Add: []*url.URL{id}}); err != nil {
		return ctx, err
	}

	state := ctx.State.Clone()
	state.BoxIRI = inbox
	state.NewActivityID = id.String()
	state.S2S = &S2SData{InboxIRI: inbox}
	if f := resolveFederating(ctx); f != nil {
		state.OnFollow = f.OnFollow(ctx)
	}
	ctx = ctx.WithState(state)

	if _, err := applyS2SSideEffects(ctx, stored); err != nil {
		return ctx, err
	}

	return ctx, nil
}
