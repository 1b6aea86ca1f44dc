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

package framework

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hearthgate/fedcore/app"
	"github.com/hearthgate/fedcore/framework/oauth2"
	"github.com/hearthgate/fedcore/paths"
	"github.com/hearthgate/fedcore/pub"
	"github.com/hearthgate/fedcore/streams"
	"github.com/hearthgate/fedcore/util"
)

var _ app.Router = &Router{}

// Router wraps a mux.Router with ActivityPub-aware route construction: each
// AP route first offers the request to the pub.Actor orchestrators and only
// falls through to web handlers when the request was not an ActivityPub one.
type Router struct {
	router            *mux.Router
	oauth             *oauth2.Server
	actor             *pub.Actor
	actorMap          map[paths.Actor]*pub.Actor
	db                pub.Database
	appDB             app.Database
	host              string
	scheme            string
	errorHandler      http.Handler
	badRequestHandler http.Handler
}

func NewRouter(router *mux.Router,
	oauth *oauth2.Server,
	actor *pub.Actor,
	actorMap map[paths.Actor]*pub.Actor,
	db pub.Database,
	appDB app.Database,
	host string,
	scheme string,
	errorHandler http.Handler,
	badRequestHandler http.Handler) *Router {
	return &Router{
		router:            router,
		oauth:             oauth,
		actor:             actor,
		actorMap:          actorMap,
		db:                db,
		appDB:             appDB,
		host:              host,
		scheme:            scheme,
		errorHandler:      errorHandler,
		badRequestHandler: badRequestHandler,
	}
}

func (r *Router) wrap(route *mux.Route) *Route {
	return &Route{
		route:             route,
		oauth:             r.oauth,
		actor:             r.actor,
		db:                r.db,
		appDB:             r.appDB,
		host:              r.host,
		scheme:            r.scheme,
		errorHandler:      r.errorHandler,
		badRequestHandler: r.badRequestHandler,
		notFoundHandler:   r.router.NotFoundHandler,
	}
}

// wrapForActor is wrap with the pub.Actor swapped for one of the well-known
// non-user actors (currently the instance actor).
func (r *Router) wrapForActor(route *mux.Route, k paths.Actor) *Route {
	w := r.wrap(route)
	if a, ok := r.actorMap[k]; ok {
		w.actor = a
	}
	return w
}

// userActorPostInbox registers the POST route for every user's inbox.
func (r *Router) userActorPostInbox() *Route {
	return r.wrap(r.router.NewRoute()).actorPostInbox(paths.Route(paths.InboxPathKey))
}

// userActorPostOutbox registers the POST route for every user's outbox.
func (r *Router) userActorPostOutbox() *Route {
	return r.wrap(r.router.NewRoute()).actorPostOutbox(paths.Route(paths.OutboxPathKey))
}

// userActorGetInbox registers the GET route for every user's inbox, with an
// optional web handler for non-ActivityPub requests.
func (r *Router) userActorGetInbox(web func(http.ResponseWriter, *http.Request, *streams.Value)) *Route {
	return r.wrap(r.router.NewRoute()).actorGetInbox(paths.Route(paths.InboxPathKey), web)
}

// userActorGetOutbox registers the GET route for every user's outbox.
func (r *Router) userActorGetOutbox(web func(http.ResponseWriter, *http.Request, *streams.Value)) *Route {
	return r.wrap(r.router.NewRoute()).actorGetOutbox(paths.Route(paths.OutboxPathKey), web)
}

// knownActor registers the GET route serving a non-user actor's document.
func (r *Router) knownActor(k paths.Actor) *Route {
	return r.wrapForActor(r.router.NewRoute(), k).
		ActivityPubOnlyHandleFunc(paths.ActorPathFor(paths.UserPathKey, k), nil).(*Route)
}

func (r *Router) knownActorPostInbox(k paths.Actor) *Route {
	return r.wrapForActor(r.router.NewRoute(), k).actorPostInbox(paths.ActorPathFor(paths.InboxPathKey, k))
}

func (r *Router) knownActorGetInbox(k paths.Actor, web func(http.ResponseWriter, *http.Request, *streams.Value)) *Route {
	return r.wrapForActor(r.router.NewRoute(), k).actorGetInbox(paths.ActorPathFor(paths.InboxPathKey, k), web)
}

func (r *Router) knownActorPostOutbox(k paths.Actor) *Route {
	return r.wrapForActor(r.router.NewRoute(), k).actorPostOutbox(paths.ActorPathFor(paths.OutboxPathKey, k))
}

func (r *Router) knownActorGetOutbox(k paths.Actor, web func(http.ResponseWriter, *http.Request, *streams.Value)) *Route {
	return r.wrapForActor(r.router.NewRoute(), k).actorGetOutbox(paths.ActorPathFor(paths.OutboxPathKey, k), web)
}

// apWebCollectionPageFetchingHandleFunc serves an ActivityPub collection at
// path, falling through to web with a freshly fetched page for browser
// requests.
func (r *Router) apWebCollectionPageFetchingHandleFunc(path string,
	authFn app.AuthorizeFunc,
	web app.CollectionPageHandlerFunc,
	fetch func(util.Context) (*streams.Value, error)) *Route {
	return r.wrap(r.router.NewRoute()).apWebFetchingHandleFunc(path, authFn, func(w http.ResponseWriter, req *http.Request, v *streams.Value) {
		if web != nil {
			web(w, req, v)
		}
	}, fetch)
}

// apWebVocabFetchingHandleFunc is apWebCollectionPageFetchingHandleFunc for a
// single value instead of a collection page.
func (r *Router) apWebVocabFetchingHandleFunc(path string,
	authFn app.AuthorizeFunc,
	web app.VocabHandlerFunc,
	fetch func(util.Context) (*streams.Value, error)) *Route {
	return r.wrap(r.router.NewRoute()).apWebFetchingHandleFunc(path, authFn, func(w http.ResponseWriter, req *http.Request, v *streams.Value) {
		if web != nil {
			web(w, req, v)
		}
	}, fetch)
}

func (r *Router) ActivityPubOnlyHandleFunc(path string, authFn app.AuthorizeFunc) app.Route {
	return r.wrap(r.router.NewRoute()).ActivityPubOnlyHandleFunc(path, authFn)
}

func (r *Router) ActivityPubAndWebHandleFunc(path string, authFn app.AuthorizeFunc, f func(http.ResponseWriter, *http.Request)) app.Route {
	return r.wrap(r.router.NewRoute()).ActivityPubAndWebHandleFunc(path, authFn, f)
}

func (r *Router) HandleAuthorizationRequest(path string) app.Route {
	return r.wrap(r.router.NewRoute()).HandleAuthorizationRequest(path)
}

func (r *Router) HandleAccessTokenRequest(path string) app.Route {
	return r.wrap(r.router.NewRoute()).HandleAccessTokenRequest(path)
}

func (r *Router) Get(name string) app.Route {
	return r.wrap(r.router.Get(name))
}

func (r *Router) WebOnlyHandle(path string, handler http.Handler) app.Route {
	return r.wrap(r.router.Handle(path, handler))
}

func (r *Router) WebOnlyHandleFunc(path string, f func(http.ResponseWriter, *http.Request)) app.Route {
	return r.wrap(r.router.HandleFunc(path, f))
}

func (r *Router) Handle(path string, handler http.Handler) app.Route {
	return r.wrap(r.router.Handle(path, handler))
}

func (r *Router) HandleFunc(path string, f func(http.ResponseWriter, *http.Request)) app.Route {
	return r.wrap(r.router.HandleFunc(path, f))
}

func (r *Router) Headers(pairs ...string) app.Route {
	return r.wrap(r.router.Headers(pairs...))
}

func (r *Router) Host(tpl string) app.Route {
	return r.wrap(r.router.Host(tpl))
}

func (r *Router) Methods(methods ...string) app.Route {
	return r.wrap(r.router.Methods(methods...))
}

func (r *Router) Name(name string) app.Route {
	return r.wrap(r.router.Name(name))
}

func (r *Router) NewRoute() app.Route {
	return r.wrap(r.router.NewRoute())
}

func (r *Router) Path(tpl string) app.Route {
	return r.wrap(r.router.Path(tpl))
}

func (r *Router) PathPrefix(tpl string) app.Route {
	return r.wrap(r.router.PathPrefix(tpl))
}

func (r *Router) Queries(pairs ...string) app.Route {
	return r.wrap(r.router.Queries(pairs...))
}

func (r *Router) Schemes(schemes ...string) app.Route {
	return r.wrap(r.router.Schemes(schemes...))
}

func (r *Router) Use(mwf ...mux.MiddlewareFunc) {
	r.router.Use(mwf...)
}

func (r *Router) Walk(walkFn mux.WalkFunc) error {
	return r.router.Walk(walkFn)
}

var _ app.Route = &Route{}

type Route struct {
	route             *mux.Route
	oauth             *oauth2.Server
	actor             *pub.Actor
	db                pub.Database
	appDB             app.Database
	host              string
	scheme            string
	errorHandler      http.Handler
	badRequestHandler http.Handler
	notFoundHandler   http.Handler
}

// userContext builds the util.Context every AP handler runs under, resolving
// the addressed user's UUID from the concrete request path.
func (r *Route) userContext(req *http.Request) (util.Context, error) {
	uuid, err := paths.UUIDFromUserPath(req.URL.Path)
	if err != nil {
		return util.Context{}, err
	}
	return util.WithUserAPHTTPContext(r.scheme, r.host, req, uuid, ""), nil
}

func (r *Route) actorPostInbox(path string) *Route {
	r.route = r.route.Path(path).Schemes(r.scheme).Methods("POST").HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			c, err := r.userContext(req)
			if err != nil {
				util.ErrorLogger.Errorf("Error building context for ActorPostInbox: %s", err)
				r.errorHandler.ServeHTTP(w, req)
				return
			}
			isApRequest, err := r.actor.HandlePostInbox(c.Context, w, req)
			if err != nil {
				util.ErrorLogger.Errorf("Error in ActorPostInbox: %s", err)
				return
			} else if !isApRequest {
				r.badRequestHandler.ServeHTTP(w, req)
				return
			}
		})
	return r
}

func (r *Route) actorPostOutbox(path string) *Route {
	r.route = r.route.Path(path).Schemes(r.scheme).Methods("POST").HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			c, err := r.userContext(req)
			if err != nil {
				util.ErrorLogger.Errorf("Error building context for ActorPostOutbox: %s", err)
				r.errorHandler.ServeHTTP(w, req)
				return
			}
			isApRequest, err := r.actor.HandlePostOutbox(c.Context, w, req)
			if err != nil {
				util.ErrorLogger.Errorf("Error in ActorPostOutbox: %s", err)
				return
			} else if !isApRequest {
				r.badRequestHandler.ServeHTTP(w, req)
				return
			}
		})
	return r
}

func (r *Route) actorGetInbox(path string, web func(w http.ResponseWriter, r *http.Request, inbox *streams.Value)) *Route {
	r.route = r.route.Path(path).Schemes(r.scheme).Methods("GET").HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			c, err := r.userContext(req)
			if err != nil {
				util.ErrorLogger.Errorf("Error building context for ActorGetInbox: %s", err)
				r.errorHandler.ServeHTTP(w, req)
				return
			}
			isApRequest, err := r.actor.HandleGetInbox(c.Context, w, req)
			if err != nil {
				util.ErrorLogger.Errorf("Error in ActorGetInbox: %s", err)
				return
			} else if !isApRequest {
				if web == nil {
					r.notFoundHandler.ServeHTTP(w, req)
					return
				}
				inboxIRI, err := c.CompleteRequestURL()
				if err != nil {
					r.errorHandler.ServeHTTP(w, req)
					return
				}
				inbox, err := r.db.GetCollection(c, inboxIRI, pub.CollectionPageOptions{PublicOnly: !c.HasPrivateScope()})
				if err != nil {
					util.ErrorLogger.Errorf("Error fetching inbox for web in ActorGetInbox: %s", err)
					r.errorHandler.ServeHTTP(w, req)
					return
				}
				web(w, req, inbox)
			}
		})
	return r
}

func (r *Route) actorGetOutbox(path string, web func(w http.ResponseWriter, r *http.Request, outbox *streams.Value)) *Route {
	r.route = r.route.Path(path).Schemes(r.scheme).Methods("GET").HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			c, err := r.userContext(req)
			if err != nil {
				util.ErrorLogger.Errorf("Error building context for ActorGetOutbox: %s", err)
				r.errorHandler.ServeHTTP(w, req)
				return
			}
			isApRequest, err := r.actor.HandleGetOutbox(c.Context, w, req)
			if err != nil {
				util.ErrorLogger.Errorf("Error in ActorGetOutbox: %s", err)
				return
			} else if !isApRequest {
				if web == nil {
					r.notFoundHandler.ServeHTTP(w, req)
					return
				}
				outboxIRI, err := c.CompleteRequestURL()
				if err != nil {
					r.errorHandler.ServeHTTP(w, req)
					return
				}
				outbox, err := r.db.GetCollection(c, outboxIRI, pub.CollectionPageOptions{PublicOnly: !c.HasPrivateScope()})
				if err != nil {
					util.ErrorLogger.Errorf("Error fetching outbox for web in ActorGetOutbox: %s", err)
					r.errorHandler.ServeHTTP(w, req)
					return
				}
				web(w, req, outbox)
			}
		})
	return r
}

// apWebFetchingHandleFunc is the shared shape of the AP-or-web collection and
// vocab routes: serve ActivityStreams content to AP requests, and hand a
// freshly fetched value to the web handler otherwise.
func (r *Route) apWebFetchingHandleFunc(path string,
	authFn app.AuthorizeFunc,
	web func(http.ResponseWriter, *http.Request, *streams.Value),
	fetch func(util.Context) (*streams.Value, error)) *Route {
	apHandler := pub.NewActivityStreamsHandler(r.db)
	r.route = r.route.Path(path).Schemes(r.scheme).HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			c := util.WithAPHTTPContext(r.scheme, r.host, req)
			permit := true
			if authFn != nil {
				var err error
				permit, err = authFn(c, w, req, r.appDB)
				if err != nil {
					util.ErrorLogger.Errorf("Error in authFn: %s", err)
					r.errorHandler.ServeHTTP(w, req)
					return
				}
			}
			if !permit {
				r.notFoundHandler.ServeHTTP(w, req)
				return
			}
			isASRequest, err := apHandler(c, w, req)
			if err != nil {
				util.ErrorLogger.Errorf("Error serving ActivityStreams for %s: %s", req.URL, err)
				r.errorHandler.ServeHTTP(w, req)
				return
			}
			if isASRequest {
				return
			}
			if web == nil {
				r.notFoundHandler.ServeHTTP(w, req)
				return
			}
			v, err := fetch(c)
			if err != nil {
				util.ErrorLogger.Errorf("Error fetching value for web handler %s: %s", req.URL, err)
				r.errorHandler.ServeHTTP(w, req)
				return
			}
			web(w, req, v)
		})
	return r
}

func (r *Route) ActivityPubOnlyHandleFunc(path string, authFn app.AuthorizeFunc) app.Route {
	apHandler := pub.NewActivityStreamsHandler(r.db)
	r.route = r.route.Path(path).Schemes(r.scheme).HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			c := util.WithAPHTTPContext(r.scheme, r.host, req)
			permit := true
			if authFn != nil {
				var err error
				permit, err = authFn(c, w, req, r.appDB)
				if err != nil {
					util.ErrorLogger.Errorf("Error in ActivityPubOnlyHandleFunc authFn: %s", err)
					r.errorHandler.ServeHTTP(w, req)
					return
				}
			}
			if !permit {
				r.notFoundHandler.ServeHTTP(w, req)
				return
			}
			isASRequest, err := apHandler(c, w, req)
			if err != nil {
				util.ErrorLogger.Errorf("Error in ActivityPubOnlyHandleFunc: %s", err)
				r.errorHandler.ServeHTTP(w, req)
				return
			}
			if !isASRequest && r.notFoundHandler != nil {
				r.notFoundHandler.ServeHTTP(w, req)
				return
			}
		})
	return r
}

func (r *Route) ActivityPubAndWebHandleFunc(path string, authFn app.AuthorizeFunc, f func(http.ResponseWriter, *http.Request)) app.Route {
	apHandler := pub.NewActivityStreamsHandler(r.db)
	r.route = r.route.Path(path).Schemes(r.scheme).HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			c := util.WithAPHTTPContext(r.scheme, r.host, req)
			permit := true
			if authFn != nil {
				var err error
				permit, err = authFn(c, w, req, r.appDB)
				if err != nil {
					util.ErrorLogger.Errorf("Error in ActivityPubAndWebHandleFunc authFn: %s", err)
					r.errorHandler.ServeHTTP(w, req)
					return
				}
			}
			if !permit {
				r.notFoundHandler.ServeHTTP(w, req)
				return
			}
			isASRequest, err := apHandler(c, w, req)
			if err != nil {
				util.ErrorLogger.Errorf("Error in ActivityPubAndWebHandleFunc: %s", err)
				r.errorHandler.ServeHTTP(w, req)
				return
			}
			if !isASRequest {
				f(w, req)
				return
			}
		})
	return r
}

func (r *Route) HandleAuthorizationRequest(path string) app.Route {
	r.route = r.route.Path(path).HandlerFunc(r.oauth.HandleAuthorizationRequest)
	return r
}

func (r *Route) HandleAccessTokenRequest(path string) app.Route {
	r.route = r.route.Path(path).HandlerFunc(r.oauth.HandleAccessTokenRequest)
	return r
}

func (r *Route) WebOnlyHandler(path string, handler http.Handler) app.Route {
	r.route = r.route.Path(path).Handler(handler)
	return r
}

func (r *Route) WebOnlyHandlerFunc(path string, f func(http.ResponseWriter, *http.Request)) app.Route {
	r.route = r.route.Path(path).HandlerFunc(f)
	return r
}

func (r *Route) Handler(handler http.Handler) app.Route {
	r.route = r.route.Handler(handler)
	return r
}

func (r *Route) HandlerFunc(f func(http.ResponseWriter, *http.Request)) app.Route {
	r.route = r.route.HandlerFunc(f)
	return r
}

func (r *Route) Headers(pairs ...string) app.Route {
	r.route = r.route.Headers(pairs...)
	return r
}

func (r *Route) Host(tpl string) app.Route {
	r.route = r.route.Host(tpl)
	return r
}

func (r *Route) Methods(methods ...string) app.Route {
	r.route = r.route.Methods(methods...)
	return r
}

func (r *Route) Name(name string) app.Route {
	r.route = r.route.Name(name)
	return r
}

func (r *Route) Path(tpl string) app.Route {
	r.route = r.route.Path(tpl)
	return r
}

func (r *Route) PathPrefix(tpl string) app.Route {
	r.route = r.route.PathPrefix(tpl)
	return r
}

func (r *Route) Queries(pairs ...string) app.Route {
	r.route = r.route.Queries(pairs...)
	return r
}

func (r *Route) Schemes(schemes ...string) app.Route {
	r.route = r.route.Schemes(schemes...)
	return r
}
