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
	"context"
	"net/http"

	"github.com/hearthgate/fedcore/streams"
)

// HandlerFunc serves a stored ActivityStreams value over HTTP when the
// request asks for one, reporting whether it recognized the request as an
// ActivityPub request at all. A false return with a nil error means the
// caller should fall through to its own (usually web) handling.
type HandlerFunc func(c context.Context, w http.ResponseWriter, r *http.Request) (isASRequest bool, err error)

// NewActivityStreamsHandler builds a HandlerFunc serving GETs of any value
// the Database holds, addressed by the request URL. Deleted values that have
// been replaced by a Tombstone are served with 410 Gone, still carrying the
// Tombstone body so the former id remains dereferenceable.
func NewActivityStreamsHandler(db Database) HandlerFunc {
	return func(c context.Context, w http.ResponseWriter, r *http.Request) (bool, error) {
		if !IsActivityPubRequest(r) {
			return false, nil
		}
		iri := requestIRI(r)
		v, err := db.Get(c, iri)
		if err != nil {
			return true, err
		}
		if v.Is("Tombstone") {
			writeJSONStatus(w, v, http.StatusGone)
			return true, nil
		}
		ServeActivityStreamsValue(w, v)
		return true, nil
	}
}

// ServeActivityStreamsValue writes v as a 200 ActivityPub response with the
// required Content-Type, Date, and Digest headers, for handlers that have
// already fetched the value to serve.
func ServeActivityStreamsValue(w http.ResponseWriter, v *streams.Value) {
	writeJSON(w, v)
}

// IsActivityPubRequest reports whether r is a GET asking for ActivityStreams
// content, going by its Accept header.
func IsActivityPubRequest(r *http.Request) bool {
	return r.Method == http.MethodGet && isActivityPubMediaType(r.Header.Get("Accept"))
}
