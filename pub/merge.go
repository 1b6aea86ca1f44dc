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
	"encoding/json"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// mergeOverJSON performs the Update merge at the JSON-text level. Every key
// the overlay carries is written over old's; a key the overlay sets to a
// literal JSON null is deleted instead of written. Patching the JSON text
// directly with gjson/sjson preserves the null-vs-absent distinction that a
// decode into typed values would erase, the same reason the policy matcher
// (models/policies.go) compares JSON paths instead of decoded structs.
func mergeOverJSON(oldRaw, overlayRaw map[string]interface{}) (map[string]interface{}, error) {
	merged, err := json.Marshal(oldRaw)
	if err != nil {
		return nil, err
	}
	overlayJSON, err := json.Marshal(overlayRaw)
	if err != nil {
		return nil, err
	}

	var patchErr error
	gjson.ParseBytes(overlayJSON).ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if value.Type == gjson.Null {
			merged, patchErr = sjson.DeleteBytes(merged, k)
		} else {
			merged, patchErr = sjson.SetRawBytes(merged, k, []byte(value.Raw))
		}
		return patchErr == nil
	})
	if patchErr != nil {
		return nil, patchErr
	}

	var out map[string]interface{}
	if err := json.Unmarshal(merged, &out); err != nil {
		return nil, err
	}
	return out, nil
}
