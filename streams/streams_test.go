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

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustURL(t *testing.T, s string) *url.URL {
	t.Helper()
	u, err := url.Parse(s)
	require.NoError(t, err)
	return u
}

func TestIsOrExtends(t *testing.T) {
	for _, tc := range []struct {
		typeName string
		target   string
		want     bool
	}{
		{"Create", "Activity", true},
		{"Activity", "Activity", true},
		{"Invite", "Activity", true},
		{"TentativeAccept", "Accept", true},
		{"OrderedCollectionPage", "Collection", true},
		{"Note", "Activity", false},
		{"Person", "Activity", false},
		{"", "Activity", false},
	} {
		assert.Equal(t, tc.want, IsOrExtends(tc.typeName, tc.target), "%s extends %s", tc.typeName, tc.target)
	}
}

func TestResolveRequiresType(t *testing.T) {
	_, err := Resolve(map[string]interface{}{"content": "untyped"})
	assert.ErrorIs(t, err, ErrUnmatchedType)

	v, err := Resolve(map[string]interface{}{"type": "Note"})
	require.NoError(t, err)
	assert.Equal(t, "Note", v.Type())
}

func TestIsActivityRequiresID(t *testing.T) {
	v := New("Create")
	assert.False(t, v.IsActivity())
	v.SetID(mustURL(t, "https://example.com/activities/1"))
	assert.True(t, v.IsActivity())
}

func TestExplicitNullSurvivesResolution(t *testing.T) {
	v, err := ResolveJSON([]byte(`{"type":"Note","summary":null}`))
	require.NoError(t, err)
	assert.True(t, v.HasProperty("summary"))
	assert.True(t, v.IsExplicitNull("summary"))
	assert.False(t, v.HasProperty("content"))
}

func TestIRIsReadsScalarsArraysAndEmbeds(t *testing.T) {
	v, err := ResolveJSON([]byte(`{
		"type": "Create",
		"to": "https://a.example/1",
		"cc": ["https://b.example/2", {"id": "https://c.example/3", "type": "Person"}]
	}`))
	require.NoError(t, err)
	assert.Len(t, v.IRIs("to"), 1)
	cc := v.IRIs("cc")
	require.Len(t, cc, 2)
	assert.Equal(t, "https://c.example/3", cc[1].String())
}

func TestNewTombstonePreservesIdentityAndTimestamps(t *testing.T) {
	orig := New("Note")
	orig.SetID(mustURL(t, "https://example.com/notes/1"))
	published := time.Date(2023, 4, 5, 6, 7, 8, 0, time.UTC)
	orig.SetTimeProperty("published", published)

	deleted := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tomb := NewTombstone(orig, deleted)

	id, err := tomb.ID()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/notes/1", id.String())
	former, _ := tomb.StringProperty("formerType")
	assert.Equal(t, "Note", former)
	p, ok := tomb.Published()
	require.True(t, ok)
	assert.True(t, p.Equal(published))
	d, _ := tomb.StringProperty("deleted")
	assert.Equal(t, deleted.Format(time.RFC3339), d)
}

func TestDedupeOrderedItemsIsIdempotent(t *testing.T) {
	id := mustURL(t, "https://example.com/c")
	a := mustURL(t, "https://a.example/1")
	b := mustURL(t, "https://b.example/2")
	c := NewOrderedCollection(id, []*url.URL{a, b, a, a, b})

	once := DedupeOrderedItems(c)
	twice := DedupeOrderedItems(once)
	require.Len(t, once.Items(), 2)
	assert.Equal(t, once.Items(), twice.Items())
}

func TestSharedInboxExtraction(t *testing.T) {
	v, err := ResolveJSON([]byte(`{
		"type": "Person",
		"inbox": "https://example.com/users/a/inbox",
		"endpoints": {"sharedInbox": "https://example.com/inbox"}
	}`))
	require.NoError(t, err)
	inbox, err := v.Inbox()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/users/a/inbox", inbox.String())
	shared, ok := v.SharedInbox()
	require.True(t, ok)
	assert.Equal(t, "https://example.com/inbox", shared.String())
	assert.True(t, v.IsActor())
}

func TestIsPublicIRISpellings(t *testing.T) {
	assert.True(t, IsPublicIRI("https://www.w3.org/ns/activitystreams#Public"))
	assert.True(t, IsPublicIRI("as:Public"))
	assert.True(t, IsPublicIRI("Public"))
	assert.False(t, IsPublicIRI("https://example.com/users/alice"))
}

func TestSanitizeHTMLPropertiesStripsScript(t *testing.T) {
	v := New("Note")
	v.SetProperty("content", `<p>hi</p><script>alert("x")</script>`)
	SanitizeHTMLProperties(v)
	content, _ := v.StringProperty("content")
	assert.NotContains(t, content, "<script>")
	assert.Contains(t, content, "hi")
}

func TestOrderedCollectionAlwaysCarriesItemsArray(t *testing.T) {
	empty := NewOrderedCollection(mustURL(t, "https://example.com/c"), nil)
	_, present := empty.Raw()["orderedItems"]
	assert.True(t, present, "an empty collection still materializes its items array")
	assert.Empty(t, empty.Items())
}
