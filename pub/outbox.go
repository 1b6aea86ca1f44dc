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

// PostOutbox accepts a client-submitted activity into outbox. The C2S
// side effects precede persistence, not the other way around: the side effect may rewrite the
// activity, and PostOutbox persists whatever the side effect returns. It
// wraps a bare submitted object in a Create, mints ids for the activity and
// any id-less embedded object, runs the C2S side effect for its type,
// persists the (possibly rewritten) result and prepends it to the outbox,
// and, unless the side effect marked the request undeliverable, federates
// a copy with hidden recipients stripped.
func PostOutbox(ctx *Context, outbox, actor *url.URL, data *streams.Value) (*Context, *streams.Value, error) {
	activity := data
	if !activity.Is("Activity") {
		activity = WrapInCreate(activity, actor)
	}
	if len(activity.IRIs("actor")) == 0 {
		activity.SetIRIs("actor", []*url.URL{actor})
	}

	if err := AddNewIDs(ctx, activity); err != nil {
		return ctx, nil, err
	}

	id, err := activity.ID()
	if err != nil {
		return ctx, nil, ErrMissingID("outbox activity must carry an id")
	}

	state := ctx.State.Clone()
	state.C2S = &C2SData{OutboxIRI: outbox}
	state.Deliverable = true
	state.NewActivityID = id.String()
	ctx = ctx.WithState(state)

	result := activity
	if ctx.IsC2SEnabled() {
		result, err = applyC2SSideEffects(ctx, activity)
		if err != nil {
			return ctx, nil, err
		}
	}

	stored, _, err := ctx.DB.Create(ctx.Go, result)
	if err != nil {
		return ctx, nil, err
	}

	sid, err := stored.ID()
	if err != nil {
		return ctx, nil, ErrMissingID("outbox activity must carry an id")
	}
	if err := ctx.DB.UpdateCollection(ctx.Go, outbox, CollectionUpdate{Add: []*url.URL{sid}}); err != nil {
		return ctx, stored, err
	}

	if ctx.State.Deliverable {
		// Deliver resolves bto/bcc addressees from the stored activity and
		// strips them from the wire copy itself; stripping first here would
		// lose those recipients.
		if err := Deliver(ctx, stored, actor); err != nil {
			return ctx, stored, err
		}
	}

	return ctx, stored, nil
}
