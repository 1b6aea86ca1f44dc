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

// inboxForwardingReferenceProperties are followed when deciding whether an
// inbound activity references something this instance owns: an activity
// replying to, or otherwise pointing at, a thread we own must be relayed to
// that thread's local followers, since the original sender has no way to
// know who those are.
var inboxForwardingReferenceProperties = []string{"object", "target", "inReplyTo", "tag"}

// InboxForwarding applies the three-part ActivityPub forwarding rule:
// forward an inbound activity to our local followers/collections iff (a)
// the activity is novel, (b) one of our own collections is addressed by it
// directly, and (c) we own some value reachable from its
// object/target/inReplyTo/tag chain within the configured recursion depth.
func InboxForwarding(ctx *Context, inbox *url.URL, activity *streams.Value) error {
	if ctx.Federating == nil {
		return nil
	}

	id, err := activity.ID()
	if err != nil {
		return ErrMissingID("inbox-forwarding activity must carry an id")
	}

	// First, "seen?": the activity named by State.NewActivityID is never
	// seen, since PostInbox has already persisted it by the time this
	// runs; everything else is whatever the database already knows about.
	if id.String() != ctx.State.NewActivityID {
		seen, err := ctx.DB.Exists(ctx.Go, id)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}

	// Second: direct recipients (to/cc/audience, never bto/bcc) that
	// this instance owns.
	var myIRIs []*url.URL
	for _, r := range ExtractDirectRecipients(activity) {
		owns, err := ctx.DB.Owns(ctx.Go, r)
		if err != nil {
			return err
		}
		if owns {
			myIRIs = append(myIRIs, r)
		}
	}
	if len(myIRIs) == 0 {
		return nil
	}

	// Fetch each and keep only the ones that are actually
	// collections; nothing local to forward to if none of them are.
	var collections []*streams.Value
	byIRI := make(map[string]*streams.Value, len(myIRIs))
	var collectionIRIs []*url.URL
	for _, iri := range myIRIs {
		v, err := ctx.DB.Get(ctx.Go, iri)
		if err != nil {
			return err
		}
		if !v.IsCollection() {
			continue
		}
		collections = append(collections, v)
		byIRI[iri.String()] = v
		collectionIRIs = append(collectionIRIs, iri)
	}
	if len(collections) == 0 {
		return nil
	}

	// Third: does the activity transitively reference something we
	// own, bounded by depth?
	maxDepth := ctx.Federating.MaxInboxForwardingRecursionDepth(ctx)
	if !referencesOwnedValue(ctx, activity, maxDepth) {
		return nil
	}

	// Let the delegate trim the candidate collections, then
	// extract their membership as forwarding recipients.
	kept, err := ctx.Federating.FilterForwarding(ctx, collectionIRIs, activity)
	if err != nil {
		return err
	}
	var recipients []*url.URL
	for _, k := range kept {
		if c, ok := byIRI[k.String()]; ok {
			recipients = append(recipients, c.Items()...)
		}
	}
	recipients = DedupeIRIs(recipients)
	if len(recipients) == 0 {
		return nil
	}

	// Finally, resolve the collections' members to inboxes, excluding the
	// one that just received this activity, and batch-deliver. The
	// activity's own addressing must not be re-consulted here: its
	// original addressees already received it from the sender.
	senderActor, err := ctx.DB.ActorForInbox(ctx.Go, inbox)
	if err != nil {
		return err
	}
	return deliverToRecipients(ctx, activity, recipients, senderActor)
}

// referencesOwnedValue recursively examines v's object/target/inReplyTo/
// tag values for one with an owned id, bounded by depth. Dereference
// failures are swallowed, not fatal: a reference we can't resolve just
// isn't found to be owned.
func referencesOwnedValue(ctx *Context, v *streams.Value, depth int) bool {
	for _, key := range inboxForwardingReferenceProperties {
		for _, ref := range v.Values(key) {
			if isOwnedOrReferencesOwned(ctx, ref, depth) {
				return true
			}
		}
	}
	return false
}

func isOwnedOrReferencesOwned(ctx *Context, v *streams.Value, depth int) bool {
	if id, err := v.ID(); err == nil {
		if owns, err := ctx.DB.Owns(ctx.Go, id); err == nil && owns {
			return true
		}
	}
	if depth <= 0 {
		return false
	}
	resolved := v
	if !v.HasProperty("type") {
		id, err := v.ID()
		if err != nil {
			return false
		}
		deref, err := dereferenceVia(ctx, id)
		if err != nil {
			return false
		}
		resolved = deref
	}
	return referencesOwnedValue(ctx, resolved, depth-1)
}
