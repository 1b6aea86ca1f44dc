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

import "github.com/microcosm-cc/bluemonday"

// sanitizer strips everything except a conservative set of formatting tags
// from user-supplied HTML before it is persisted or federated.
var sanitizer = bluemonday.UGCPolicy()

// SanitizeHTMLProperties runs "content", "summary", and "name" through a
// UGC-safe HTML policy in place. The Data service runs this on every value
// it writes, so stored and federated HTML can never carry script or style
// injection regardless of what a remote peer (or a local client) sent.
func SanitizeHTMLProperties(v *Value) {
	for _, key := range []string{"content", "summary", "name"} {
		if s, ok := v.StringProperty(key); ok {
			v.SetProperty(key, sanitizer.Sanitize(s))
		}
	}
}
