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

package ap

import (
	"time"

	"github.com/hearthgate/fedcore/pub"
)

var _ pub.Clock = &clock{}

// clock stamps timestamps in the configured IANA timezone.
type clock struct {
	loc *time.Location
}

// NewClock builds a pub.Clock in the given IANA Time Zone location, e.g.
// "UTC" or "America/New_York". An empty location means UTC.
func NewClock(location string) (pub.Clock, error) {
	if location == "" {
		location = "UTC"
	}
	loc, err := time.LoadLocation(location)
	if err != nil {
		return nil, err
	}
	return &clock{loc: loc}, nil
}

func (c *clock) Now() time.Time {
	return time.Now().In(c.loc)
}
