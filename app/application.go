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

import (
	"context"
	"net/http"

	"github.com/hearthgate/fedcore/pub"
	"github.com/hearthgate/fedcore/streams"
)

// Application is an ActivityPub application built on top of fedcore's
// infrastructure. Your application must also implement C2SApplication,
// S2SApplication, or both interfaces in order to gain the benefits of
// federating using ActivityPub's Social or Federating Protocols.
type Application interface {
	// CALLS MADE AT SERVER STARTUP
	//
	// These calls are made at least once, during server initialization, but
	// are not called when the server is handling requests.

	// Start is called at the beginning of a server's lifecycle, after
	// configuration processing and after the database connection is opened
	// but before web traffic is being served.
	//
	// If an error is returned, then the startup process fails.
	Start() error
	// Stop is called at the end of a server's lifecycle, after the web
	// servers have stopped serving traffic but before the database is
	// closed.
	//
	// If an error is returned, shutdown continues but an error is reported.
	Stop() error

	// NewConfiguration returns a pointer to the application's own
	// configuration struct, populated with sane defaults. It is saved to
	// and loaded from the shared configuration file alongside fedcore's
	// sections, and the loaded value is later handed to SetConfiguration.
	//
	// The struct may carry gopkg.in/ini.v1 struct tags; the "comment" tag
	// in particular is what admins read in the generated file. Prefix key
	// names to avoid colliding with fedcore's:
	//
	//     type MyAppConfig struct {
	//         SomeKey string `ini:"my_app_some_key" comment:"Description of this key"`
	//     }
	//
	// Defaults matter: the "new" command takes an admin from nothing to a
	// serving instance without stopping to ask about application options.
	NewConfiguration() interface{}
	// SetConfiguration receives the value NewConfiguration returned after
	// it has been loaded from file, plus a read-only view of fedcore's own
	// core settings. Return an error to refuse an invalid configuration.
	// Called once, during initialization; the value is expected to be
	// stable for the lifetime of the process.
	SetConfiguration(interface{}, CoreConfig) error

	// The handler for the application's "404 Not Found" webpage.
	NotFoundHandler(Framework) http.Handler
	// The handler when a request makes an unsupported HTTP method against
	// a URI.
	MethodNotAllowedHandler(Framework) http.Handler
	// The handler for an internal server error.
	InternalServerErrorHandler(Framework) http.Handler
	// The handler for a bad request.
	BadRequestHandler(Framework) http.Handler

	// Web handlers for the application server

	// GetLoginWebHandlerFunc renders the login page, which POSTs back to
	// the login endpoint. A "login_error=true" query parameter means the
	// previous email or password was wrong and the page should say so.
	GetLoginWebHandlerFunc(Framework) http.HandlerFunc
	// GetAuthWebHandlerFunc renders the OAuth2 (RFC 6749) authorization
	// page: another application is asking to act as the user.
	GetAuthWebHandlerFunc(Framework) http.HandlerFunc

	// Web handlers for ActivityPub related data

	// GetOutboxWebHandlerFunc serves the web view of an actor's outbox.
	// The framework has already applied OAuth2 authorization and fetched
	// the public-only or private snapshot before calling the handler. A
	// nil handler serves only ActivityStreams content.
	GetOutboxWebHandlerFunc(Framework) func(w http.ResponseWriter, r *http.Request, outbox *streams.Value)
	// The next four return the web handler plus an AuthorizeFunc applied
	// to both ActivityPub and web requests for that route. A nil handler
	// serves only ActivityStreams content; a nil AuthorizeFunc means
	// public access.

	// Web handler for a GET of an actor's followers collection.
	GetFollowersWebHandlerFunc(Framework) (CollectionPageHandlerFunc, AuthorizeFunc)
	// Web handler for a GET of an actor's following collection.
	GetFollowingWebHandlerFunc(Framework) (CollectionPageHandlerFunc, AuthorizeFunc)
	// Web handler for a GET of an actor's liked collection.
	GetLikedWebHandlerFunc(Framework) (CollectionPageHandlerFunc, AuthorizeFunc)
	// Web handler for a GET of an actor itself, e.g. a profile page.
	GetUserWebHandlerFunc(Framework) (VocabHandlerFunc, AuthorizeFunc)

	// BuildRoutes registers the application's own HTTP and ActivityPub
	// routes. The Database gives handlers raw access to application data;
	// the Framework exposes fedcore's request-time helpers. Routes serve
	// content — per-activity processing belongs in ApplySocialHandlers and
	// ApplyFederatingHandlers instead.
	BuildRoutes(r Router, db Database, f Framework) error

	// CALLS MADE AT SERVING TIME
	//
	// These calls are made when the server is handling requests, but are
	// not called during server initialization.

	// NewIDPath creates a new id IRI path component for the content being
	// created.
	//
	// A peer making a GET request to this path on this server should then
	// serve the ActivityPub value provided in this call. For example:
	//   "/notes/abcd0123-4567-890a-bcd0-1234567890ab"
	//
	// Ensure the route returned by NewIDPath will be servable by a handler
	// created in the BuildRoutes call.
	NewIDPath(c context.Context, t *streams.Value) (path string, err error)

	// ScopePermitsPrivateGetInbox determines if an OAuth token scope
	// permits the bearer to view private (non-Public) messages in an
	// actor's inbox.
	ScopePermitsPrivateGetInbox(scope string) (permitted bool, err error)
	// ScopePermitsPrivateGetOutbox determines if an OAuth token scope
	// permits the bearer to view private (non-Public) messages in an
	// actor's outbox.
	ScopePermitsPrivateGetOutbox(scope string) (permitted bool, err error)

	// DefaultUserPreferences returns an application-specific preferences
	// struct to be serialized into JSON and used as initial user app
	// preferences.
	DefaultUserPreferences() interface{}
	// DefaultUserPrivileges returns an application-specific privileges
	// struct to be serialized into JSON and used as initial user app
	// privileges.
	DefaultUserPrivileges() interface{}
	// DefaultAdminPrivileges returns an application-specific privileges
	// struct to be serialized into JSON and used as initial user app
	// privileges for new admins.
	DefaultAdminPrivileges() interface{}

	// CALLS MADE BOTH AT STARTUP AND SERVING TIME
	//
	// These calls are made at least once during server initialization, and
	// are called when the server is handling requests.

	// Information about this application's software. This will be shown at
	// the command line and used for NodeInfo statistics, as well as for
	// user agent information.
	Software() Software
}

// C2SApplication is an Application with additional methods required to support
// the C2S, or Social, ActivityPub protocol.
type C2SApplication interface {
	// ScopePermitsPostOutbox determines if an OAuth token scope permits the
	// bearer to post to an actor's outbox.
	ScopePermitsPostOutbox(scope string) (permitted bool, err error)

	// ApplySocialHandlers registers application-specific per-type side
	// effects for social, or C2S, activities into h: every entry in h
	// runs after the engine's own built-in side effect for that type.
	//
	//     func (m *myImpl) ApplySocialHandlers(h *pub.ActivityHandler) {
	//       h.Set("Listen", func(ctx *pub.Context, a *streams.Value) (*streams.Value, error) {
	//         // Application behavior for the Listen activity.
	//         return a, nil
	//       })
	//     }
	ApplySocialHandlers(h *pub.ActivityHandler)
}

// S2SApplication is an Application with the additional methods required to
// support the S2S, or Federating, ActivityPub protocol.
type S2SApplication interface {
	// Web handler for a call to GET an actor's inbox. The framework applies
	// OAuth2 authorizations to fetch a public-only or private snapshot of
	// the inbox, and passes it into this handler function.
	//
	// The builtin ActivityPub handler will use the OAuth authorization.
	//
	// Returning a nil handler is allowed, and doing so results in only
	// ActivityStreams content being served.
	GetInboxWebHandlerFunc(Framework) func(w http.ResponseWriter, r *http.Request, inbox *streams.Value)

	// ApplyFederatingHandlers is ApplySocialHandlers' S2S counterpart:
	// application-specific per-type side effects for federated
	// activities, run after the engine's own built-in side effect for
	// that type.
	//
	// Note: the OnFollow policy will already have been applied by the
	// time a Follow handler set here runs.
	ApplyFederatingHandlers(h *pub.ActivityHandler)
}

// CoreConfig allows the application to reuse common fields set in fedcore's
// config.
type CoreConfig interface {
	// Hostname of the application set in the config
	Host() string
	// Clock timezone set in the config
	ClockTimezone() string
}
