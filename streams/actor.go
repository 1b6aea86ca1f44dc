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

package streams

import (
	"fmt"
	"net/url"
)

// Inbox extracts the actor's inbox IRI from a resolved actor value.
func (v *Value) Inbox() (*url.URL, error) {
	return v.singleIRIProperty("inbox")
}

// Outbox extracts the actor's outbox IRI.
func (v *Value) Outbox() (*url.URL, error) {
	return v.singleIRIProperty("outbox")
}

// Followers extracts the actor's followers collection IRI, if any.
func (v *Value) Followers() (*url.URL, error) {
	return v.singleIRIProperty("followers")
}

// Following extracts the actor's following collection IRI, if any.
func (v *Value) Following() (*url.URL, error) {
	return v.singleIRIProperty("following")
}

// Liked extracts the actor's liked collection IRI, if any.
func (v *Value) Liked() (*url.URL, error) {
	return v.singleIRIProperty("liked")
}

// SharedInbox extracts the actor's endpoints.sharedInbox IRI, if present.
func (v *Value) SharedInbox() (*url.URL, bool) {
	ep, ok := v.raw["endpoints"].(map[string]interface{})
	if !ok {
		return nil, false
	}
	s, ok := ep["sharedInbox"].(string)
	if !ok || s == "" {
		return nil, false
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, false
	}
	return u, true
}

func (v *Value) singleIRIProperty(key string) (*url.URL, error) {
	raw, ok := v.raw[key]
	if !ok {
		return nil, fmt.Errorf("streams: no %s property", key)
	}
	id, err := elementID(raw)
	if err != nil {
		return nil, fmt.Errorf("streams: %s property: %w", key, err)
	}
	return id, nil
}

// IsActor reports whether the value looks like an actor (carries an inbox).
func (v *Value) IsActor() bool {
	_, err := v.Inbox()
	return err == nil
}
