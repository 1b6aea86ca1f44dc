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
	"encoding/json"
	"net/url"

	"github.com/hearthgate/fedcore/streams"
)

// Deliver federates activity: union its addressed recipients across all
// five addressing properties, bto and bcc included, then hand off to
// deliverToRecipients. Hidden recipients must still be present on activity
// here — they are how bto/bcc addressees get resolved at all — and are
// stripped from the wire copy only after resolution.
func Deliver(ctx *Context, activity *streams.Value, sender *url.URL) error {
	recipients, _ := PartitionPublic(ExtractAllRecipients(activity))
	return deliverToRecipients(ctx, activity, recipients, sender)
}

// deliverToRecipients resolves recipients down to a set of inbox IRIs,
// folds recipients sharing one actor's shared inbox into a single
// delivery, excludes the sending actor's own inbox, strips bto/bcc from
// the outgoing copy, and hands the result to the transport's BatchDeliver.
func deliverToRecipients(ctx *Context, activity *streams.Value, recipients []*url.URL, sender *url.URL) error {
	inboxes, err := resolveDeliveryInboxes(ctx, recipients, sender)
	if err != nil {
		return err
	}
	if len(inboxes) == 0 {
		return nil
	}
	wire := activity.Clone()
	StripHiddenRecipients(wire)
	body, err := json.Marshal(wire.Raw())
	if err != nil {
		return err
	}
	t, err := ctx.DB.NewTransport(ctx.Go, ctx.State.BoxIRI, ctx.State.AppAgent)
	if err != nil {
		return err
	}
	if err := t.BatchDeliver(ctx.Go, body, inboxes); err != nil {
		return ErrTransportFailure(err)
	}
	return nil
}

// deliverFromActor builds a throwaway Deliver call for a synthesized
// response activity (an Accept/Reject) addressed with its own "to", using
// sender's outbox-equivalent box context.
func deliverFromActor(ctx *Context, sender *url.URL, activity *streams.Value) error {
	return Deliver(ctx, activity, sender)
}

// resolveDeliveryInboxes expands a recipient list to inbox IRIs,
// respecting the configured recursion depth for collection expansion.
func resolveDeliveryInboxes(ctx *Context, recipients []*url.URL, sender *url.URL) ([]*url.URL, error) {
	maxDepth := 0
	if f := resolveFederating(ctx); f != nil {
		maxDepth = f.MaxDeliveryRecursionDepth(ctx)
	}

	actors, err := expandToActors(ctx, recipients, maxDepth)
	if err != nil {
		return nil, err
	}

	var senderInbox *url.URL
	if sender != nil {
		senderInbox, _ = ctx.DB.InboxForActor(ctx.Go, sender)
	}

	// Each recipient resolves to a direct inbox and, optionally, the
	// shared inbox of the actor serving it. Only a shared inbox counted
	// against two or more recipients folds its direct inboxes away; a shared
	// inbox used by a single recipient is delivered to directly, same as
	// one with no shared inbox at all.
	type pair struct {
		direct *url.URL
		shared string
	}
	var pairs []pair
	sharedCount := make(map[string]int)

	for _, actorIRI := range actors {
		actorVal, err := actorValueFor(ctx, actorIRI)
		if err != nil {
			continue
		}
		inbox, err := actorVal.Inbox()
		if err != nil {
			continue
		}
		shared, _ := actorVal.SharedInbox()
		p := pair{direct: inbox}
		if shared != nil {
			p.shared = shared.String()
			sharedCount[p.shared]++
		}
		pairs = append(pairs, p)
	}

	seen := make(map[string]bool)
	var ordered []*url.URL
	addInbox := func(iri *url.URL) {
		if iri == nil {
			return
		}
		if senderInbox != nil && iri.String() == senderInbox.String() {
			return
		}
		if seen[iri.String()] {
			return
		}
		seen[iri.String()] = true
		ordered = append(ordered, iri)
	}

	for _, p := range pairs {
		if p.shared != "" && sharedCount[p.shared] >= 2 {
			u, err := url.Parse(p.shared)
			if err != nil {
				addInbox(p.direct)
				continue
			}
			addInbox(u)
			continue
		}
		addInbox(p.direct)
	}

	return ordered, nil
}

// actorValueFor resolves an actor IRI to its full value, using the database
// when this instance owns it and the transport otherwise.
func actorValueFor(ctx *Context, actorIRI *url.URL) (*streams.Value, error) {
	owns, err := ctx.DB.Owns(ctx.Go, actorIRI)
	if err != nil {
		return nil, err
	}
	if owns {
		return ctx.DB.Get(ctx.Go, actorIRI)
	}
	return dereferenceVia(ctx, actorIRI)
}

// expandToActors resolves a recipient list into concrete actor IRIs,
// expanding any recipient that turns out to be a collection (e.g. a
// followers collection) up to maxDepth levels.
func expandToActors(ctx *Context, recipients []*url.URL, maxDepth int) ([]*url.URL, error) {
	var out []*url.URL
	for _, r := range recipients {
		expanded, err := expandOne(ctx, r, maxDepth)
		if err != nil {
			continue
		}
		out = append(out, expanded...)
	}
	return DedupeIRIs(out), nil
}

func expandOne(ctx *Context, iri *url.URL, depth int) ([]*url.URL, error) {
	v, err := actorValueFor(ctx, iri)
	if err != nil {
		return nil, err
	}
	if v.IsActor() {
		return []*url.URL{iri}, nil
	}
	if !v.IsCollection() || depth <= 0 {
		return nil, nil
	}
	members := v.Items()
	var out []*url.URL
	for _, m := range members {
		expanded, err := expandOne(ctx, m, depth-1)
		if err != nil {
			continue
		}
		out = append(out, expanded...)
	}
	return out, nil
}
