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

import "errors"

// ErrUnmatchedType is returned when a JSON map cannot be resolved to a known
// ActivityStreams type.
var ErrUnmatchedType = errors.New("JSON did not resolve to a known ActivityStreams type")

// ErrMissingID is returned when a value that must carry an id does not.
var ErrMissingID = errors.New("value has no id")
