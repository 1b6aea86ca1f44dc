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

package services

import (
	"database/sql"
	"net/url"

	"github.com/hearthgate/fedcore/models"
	"github.com/hearthgate/fedcore/streams"
	"github.com/hearthgate/fedcore/util"
)

// Collections manages the free-standing ordered collections that do not
// belong to the fixed per-actor set: the likes and shares collections
// attached to individual objects, plus any collection an application
// creates of its own accord.
type Collections struct {
	DB          *sql.DB
	Collections *models.Collections
}

// Create stores a new free-standing collection.
func (f *Collections) Create(c util.Context, col *streams.Value) error {
	return doInTx(c, f.DB, func(tx *sql.Tx) error {
		return f.Collections.Create(c, tx, models.ActivityStreamsValue{V: col})
	})
}

// Has reports whether a collection with this id is stored.
func (f *Collections) Has(c util.Context, collection *url.URL) (has bool, err error) {
	return has, doInTx(c, f.DB, func(tx *sql.Tx) error {
		has, err = f.Collections.Has(c, tx, collection)
		return err
	})
}

func (f *Collections) Contains(c util.Context, collection, id *url.URL) (has bool, err error) {
	return has, doInTx(c, f.DB, func(tx *sql.Tx) error {
		has, err = f.Collections.Contains(c, tx, collection, id)
		return err
	})
}

func (f *Collections) GetPage(c util.Context, collection *url.URL, min, n int) (page *streams.Value, err error) {
	err = doInTx(c, f.DB, func(tx *sql.Tx) error {
		var isEnd bool
		var mp models.ActivityStreamsValue
		mp, isEnd, err = f.Collections.GetPage(c, tx, collection, min, min+n)
		if err != nil {
			return err
		}
		page = mp.V
		return addNextPrev(page, min, n, isEnd)
	})
	return
}

func (f *Collections) GetLastPage(c util.Context, collection *url.URL, n int) (page *streams.Value, err error) {
	err = doInTx(c, f.DB, func(tx *sql.Tx) error {
		var startIdx int
		var mp models.ActivityStreamsValue
		mp, startIdx, err = f.Collections.GetLastPage(c, tx, collection, n)
		if err != nil {
			return err
		}
		page = mp.V
		return addNextPrev(page, startIdx, n, true)
	})
	return
}

// GetAll returns the entire collection, unpaged.
func (f *Collections) GetAll(c util.Context, collection *url.URL) (col *streams.Value, err error) {
	err = doInTx(c, f.DB, func(tx *sql.Tx) error {
		var mc models.ActivityStreamsValue
		mc, err = f.Collections.GetAll(c, tx, collection)
		if err != nil {
			return err
		}
		col = mc.V
		return nil
	})
	return
}

func (f *Collections) PrependItem(c util.Context, collection, item *url.URL) error {
	return doInTx(c, f.DB, func(tx *sql.Tx) error {
		return f.Collections.PrependItem(c, tx, collection, item)
	})
}

func (f *Collections) DeleteItem(c util.Context, collection, item *url.URL) error {
	return doInTx(c, f.DB, func(tx *sql.Tx) error {
		return f.Collections.DeleteItem(c, tx, collection, item)
	})
}

// Delete removes the collection entirely.
func (f *Collections) Delete(c util.Context, collection *url.URL) error {
	return doInTx(c, f.DB, func(tx *sql.Tx) error {
		return f.Collections.Delete(c, tx, collection)
	})
}
