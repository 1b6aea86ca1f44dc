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

// Package webfinger renders the JSON Resource Descriptor documents served at
// /.well-known/webfinger, which is how peers translate an "acct:user@host"
// handle into the user's actor IRI.
package webfinger

import (
	"fmt"
)

// Link is a single JRD link relation.
type Link struct {
	Rel      string `json:"rel,omitempty"`
	Type     string `json:"type,omitempty"`
	Href     string `json:"href,omitempty"`
	Template string `json:"template,omitempty"`
}

// Webfinger is the JRD document served for a single account resource.
type Webfinger struct {
	Subject string   `json:"subject,omitempty"`
	Aliases []string `json:"aliases,omitempty"`
	Links   []Link   `json:"links,omitempty"`
}

// ToWebfinger builds the JRD for username's actor, whose ActivityPub id lives
// at userPath on this host.
func ToWebfinger(scheme, host, username, userPath string) (Webfinger, error) {
	if len(username) == 0 {
		return Webfinger{}, fmt.Errorf("webfinger: empty username")
	}
	actorIRI := fmt.Sprintf("%s://%s%s", scheme, host, userPath)
	return Webfinger{
		Subject: fmt.Sprintf("acct:%s@%s", username, host),
		Aliases: []string{actorIRI},
		Links: []Link{
			{
				Rel:  "self",
				Type: "application/activity+json",
				Href: actorIRI,
			},
			{
				Rel:  "http://webfinger.net/rel/profile-page",
				Type: "text/html",
				Href: actorIRI,
			},
		},
	}, nil
}
