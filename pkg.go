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

// Package fedcore is an embeddable ActivityPub server engine: it accepts
// both Social API (client-to-server) and Federated Protocol
// (server-to-server) traffic, applies the per-activity-type side effects,
// performs inbox forwarding, and delivers activities to peers over HTTP
// Signatures.
//
// Clients implement the app.Application interface (plus app.C2SApplication,
// app.S2SApplication, or both) and call Run.
package fedcore

import (
	"github.com/hearthgate/fedcore/app"
)

const (
	fedcoreName         = "fedcore"
	fedcoreMajorVersion = 0
	fedcoreMinorVersion = 1
	fedcorePatchVersion = 0
)

func coreSoftware() app.Software {
	return app.Software{
		Name:         fedcoreName,
		Repository:   "https://github.com/hearthgate/fedcore",
		MajorVersion: fedcoreMajorVersion,
		MinorVersion: fedcoreMinorVersion,
		PatchVersion: fedcorePatchVersion,
	}
}
