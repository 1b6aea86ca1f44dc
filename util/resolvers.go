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

package util

import (
	"fmt"

	"github.com/hearthgate/fedcore/streams"
)

// ToActivityStreamsFollow asserts that t resolves to a Follow activity,
// the narrowing framework/framework.go's sendFollowResponse applies before
// answering a follow request with an Accept or Reject.
func ToActivityStreamsFollow(t *streams.Value) (f *streams.Value, err error) {
	if t == nil || !t.Is("Follow") {
		return nil, fmt.Errorf("value is not a Follow activity")
	}
	return t, nil
}
