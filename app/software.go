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

package app

import "fmt"

// Software describes the application embedding fedcore, so that peers
// inspecting delivered requests' User-Agent headers can make reasonable
// judgments about the state of the Fediverse ecosystem as a whole.
//
// Warning: nothing inherently prevents an application from lying about this.
// Don't be that jerk.
type Software struct {
	Name string
	// Repository optionally points to the source code, surfaced in
	// NodeInfo responses.
	Repository   string
	MajorVersion int
	MinorVersion int
	PatchVersion int
}

func (s Software) String() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.Version())
}

// Version renders the three-part semantic version.
func (s Software) Version() string {
	return fmt.Sprintf("%d.%d.%d", s.MajorVersion, s.MinorVersion, s.PatchVersion)
}
