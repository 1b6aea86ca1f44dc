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

package services

import (
	"net/url"

	"github.com/hearthgate/fedcore/paths"
	"github.com/hearthgate/fedcore/streams"
	"github.com/hearthgate/fedcore/util"
)

func getOffsetN(iri *url.URL, defaultSize, maxSize int) (offset, n int) {
	offset, n = 0, defaultSize
	if paths.IsGetCollectionPage(iri) {
		offset = paths.GetOffsetOrDefault(iri, 0)
		n = paths.GetNumOrDefault(iri, defaultSize, maxSize)
	}
	return
}

// AnyCPageFn fetches any arbitrary CollectionPage.
type AnyCPageFn func(c util.Context, iri *url.URL, min, n int) (*streams.Value, error)

// LastCPageFn fetches the last page of a Collection.
type LastCPageFn func(c util.Context, iri *url.URL, n int) (*streams.Value, error)

// DoCollectionPagination examines the query parameters of an IRI, and uses it
// to either fetch the bare collection without values, the very last
// collection page, or an arbitrary collection page using the provided
// fetching functions.
func DoCollectionPagination(c util.Context, iri *url.URL, defaultSize, maxSize int, any AnyCPageFn, last LastCPageFn) (p *streams.Value, err error) {
	if paths.IsGetCollectionPage(iri) && paths.IsGetCollectionEnd(iri) {
		// The last page was requested
		n := paths.GetNumOrDefault(iri, defaultSize, maxSize)
		p, err = last(c, paths.Normalize(iri), n)
		return
	}
	// The first page, or an arbitrary page, was requested
	offset, n := getOffsetN(iri, defaultSize, maxSize)
	p, err = any(c, paths.Normalize(iri), offset, n)
	return
}

// PrependFn are functions that prepend items to a collection.
type PrependFn func(c util.Context, collectionID, item *url.URL) error

// UpdateCollectionToPrependCalls takes new beginning elements of a collection
// in order to generate calls to PrependFn in order.
//
// This function only prepends to the very beginning of the collection, and
// expects the page to be the first one, though it is written as if for the
// general case.
func UpdateCollectionToPrependCalls(c util.Context, updated *streams.Value, defaultSize, maxSize int, firstPageFn AnyCPageFn, prependFn PrependFn) error {
	iri, err := updated.ID()
	if err != nil {
		return err
	}
	// Get the updated items -- early out if none.
	newItems := updated.Items()
	if len(newItems) == 0 {
		return nil
	}
	// Obtain the same number as the pre-updated ID
	offset, n := getOffsetN(iri, defaultSize, maxSize)
	original, err := firstPageFn(c, paths.Normalize(iri), offset, n)
	if err != nil {
		return err
	}
	// Call Prepend for items that come before the first element.
	var firstIRI *url.URL
	if items := original.Items(); len(items) > 0 {
		firstIRI = items[0]
	}
	found := firstIRI == nil // If firstIRI is nil, add everything
	for i := len(newItems) - 1; i >= 0; i-- {
		elemID := newItems[i]
		if found {
			// We already found the matching formerly-first
			// element, so prepend the rest.
			if err = prependFn(c, iri, elemID); err != nil {
				return err
			}
		} else if elemID.String() == firstIRI.String() {
			found = true
		}
	}
	return nil
}
