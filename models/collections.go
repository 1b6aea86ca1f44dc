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

package models

import (
	"database/sql"
	"net/url"

	"github.com/hearthgate/fedcore/util"
)

var _ Model = &Collections{}

// Collections is a Model for free-standing ordered collections that do not
// belong to the fixed per-actor set: the likes and shares collections
// attached to individual objects, and any other collection an application
// chooses to create. Rows are keyed by the collection's own id rather than
// an owning actor.
type Collections struct {
	insert      *sql.Stmt
	has         *sql.Stmt
	contains    *sql.Stmt
	get         *sql.Stmt
	getLastPage *sql.Stmt
	getAll      *sql.Stmt
	prependItem *sql.Stmt
	deleteItem  *sql.Stmt
	delete      *sql.Stmt
}

func (i *Collections) Prepare(db *sql.DB, s SqlDialect) error {
	return prepareStmtPairs(db,
		stmtPairs{
			{&(i.insert), s.InsertCollection()},
			{&(i.has), s.HasCollection()},
			{&(i.contains), s.CollectionContains()},
			{&(i.get), s.GetCollection()},
			{&(i.getLastPage), s.GetCollectionLastPage()},
			{&(i.getAll), s.GetAllCollection()},
			{&(i.prependItem), s.PrependCollectionItem()},
			{&(i.deleteItem), s.DeleteCollectionItem()},
			{&(i.delete), s.DeleteCollection()},
		})
}

func (i *Collections) CreateTable(t *sql.Tx, s SqlDialect) error {
	_, err := t.Exec(s.CreateCollectionsTable())
	return err
}

func (i *Collections) Close() {
	i.insert.Close()
	i.has.Close()
	i.contains.Close()
	i.get.Close()
	i.getLastPage.Close()
	i.getAll.Close()
	i.prependItem.Close()
	i.deleteItem.Close()
	i.delete.Close()
}

// Create stores a new free-standing collection.
func (i *Collections) Create(c util.Context, tx *sql.Tx, collection ActivityStreamsValue) error {
	r, err := tx.Stmt(i.insert).ExecContext(c, collection)
	return mustChangeOneRow(r, err, "Collections.Create")
}

// Has returns true if a collection with this id is stored.
func (i *Collections) Has(c util.Context, tx *sql.Tx, collection *url.URL) (b bool, err error) {
	var rows *sql.Rows
	rows, err = tx.Stmt(i.has).QueryContext(c, collection.String())
	if err != nil {
		return
	}
	defer rows.Close()
	return b, enforceOneRow(rows, "Collections.Has", func(r SingleRow) error {
		return r.Scan(&b)
	})
}

// Contains returns true if the item is in the collection's ordered items.
func (i *Collections) Contains(c util.Context, tx *sql.Tx, collection, item *url.URL) (b bool, err error) {
	var rows *sql.Rows
	rows, err = tx.Stmt(i.contains).QueryContext(c, collection.String(), item.String())
	if err != nil {
		return
	}
	defer rows.Close()
	return b, enforceOneRow(rows, "Collections.Contains", func(r SingleRow) error {
		return r.Scan(&b)
	})
}

// GetPage returns an OrderedCollectionPage of the collection.
//
// The range of elements retrieved are [min, max).
func (i *Collections) GetPage(c util.Context, tx *sql.Tx, collection *url.URL, min, max int) (page ActivityStreamsValue, isEnd bool, err error) {
	var rows *sql.Rows
	rows, err = tx.Stmt(i.get).QueryContext(c, collection.String(), min, max-1)
	if err != nil {
		return
	}
	defer rows.Close()
	return page, isEnd, enforceOneRow(rows, "Collections.GetPage", func(r SingleRow) error {
		return r.Scan(&page, &isEnd)
	})
}

// GetLastPage returns the last OrderedCollectionPage of the collection.
func (i *Collections) GetLastPage(c util.Context, tx *sql.Tx, collection *url.URL, n int) (page ActivityStreamsValue, startIdx int, err error) {
	var rows *sql.Rows
	rows, err = tx.Stmt(i.getLastPage).QueryContext(c, collection.String(), n)
	if err != nil {
		return
	}
	defer rows.Close()
	return page, startIdx, enforceOneRow(rows, "Collections.GetLastPage", func(r SingleRow) error {
		return r.Scan(&page, &startIdx)
	})
}

// GetAll returns the entire collection.
func (i *Collections) GetAll(c util.Context, tx *sql.Tx, collection *url.URL) (col ActivityStreamsValue, err error) {
	var rows *sql.Rows
	rows, err = tx.Stmt(i.getAll).QueryContext(c, collection.String())
	if err != nil {
		return
	}
	defer rows.Close()
	return col, enforceOneRow(rows, "Collections.GetAll", func(r SingleRow) error {
		return r.Scan(&col)
	})
}

// PrependItem prepends the item to the collection's ordered items list.
func (i *Collections) PrependItem(c util.Context, tx *sql.Tx, collection, item *url.URL) error {
	r, err := tx.Stmt(i.prependItem).ExecContext(c, collection.String(), item.String())
	return mustChangeOneRow(r, err, "Collections.PrependItem")
}

// DeleteItem removes the item from the collection's ordered items list.
func (i *Collections) DeleteItem(c util.Context, tx *sql.Tx, collection, item *url.URL) error {
	r, err := tx.Stmt(i.deleteItem).ExecContext(c, collection.String(), item.String())
	return mustChangeOneRow(r, err, "Collections.DeleteItem")
}

// Delete removes the collection entirely.
func (i *Collections) Delete(c util.Context, tx *sql.Tx, collection *url.URL) error {
	r, err := tx.Stmt(i.delete).ExecContext(c, collection.String())
	return mustChangeOneRow(r, err, "Collections.Delete")
}
