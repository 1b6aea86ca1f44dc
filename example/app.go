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

package main

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hearthgate/fedcore/app"
	"github.com/hearthgate/fedcore/pub"
	"github.com/hearthgate/fedcore/streams"
	"github.com/hearthgate/fedcore/util"
)

var _ app.Application = &App{}
var _ app.C2SApplication = &App{}
var _ app.S2SApplication = &App{}

// App is a bare-bones microblog: enough of an application to exercise every
// behavior the framework asks of one, without pretending to be a product.
type App struct {
	// startTime is set when Start is called.
	startTime time.Time
}

// AppConfig is the application-specific portion of the configuration file.
type AppConfig struct {
	SiteTitle string `ini:"example_site_title" comment:"Title to display on rendered web pages"`
}

func (a *App) Start() error {
	a.startTime = time.Now()
	return nil
}

func (a *App) Stop() error { return nil }

func (a *App) NewConfiguration() interface{} {
	return &AppConfig{
		SiteTitle: "fedcore example",
	}
}

func (a *App) SetConfiguration(i interface{}, core app.CoreConfig) error {
	_, ok := i.(*AppConfig)
	if !ok {
		return fmt.Errorf("configuration is not of type *AppConfig: %T", i)
	}
	return nil
}

var statusTmpl = template.Must(template.New("status").Parse(`<!doctype html>
<html><head><title>{{.Title}}</title></head>
<body><h1>{{.Title}}</h1><p>{{.Message}}</p></body></html>`))

func renderStatus(w http.ResponseWriter, code int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_ = statusTmpl.Execute(w, struct{ Title, Message string }{title, message})
}

func (a *App) NotFoundHandler(app.Framework) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		renderStatus(w, http.StatusNotFound, "Not Found", "There is nothing at "+r.URL.Path)
	})
}

func (a *App) MethodNotAllowedHandler(app.Framework) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		renderStatus(w, http.StatusMethodNotAllowed, "Method Not Allowed", r.Method+" is not supported here")
	})
}

func (a *App) InternalServerErrorHandler(app.Framework) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		renderStatus(w, http.StatusInternalServerError, "Internal Server Error", "Something went wrong on our end")
	})
}

func (a *App) BadRequestHandler(app.Framework) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		renderStatus(w, http.StatusBadRequest, "Bad Request", "The request could not be understood")
	})
}

var loginTmpl = template.Must(template.New("login").Parse(`<!doctype html>
<html><head><title>Login</title></head><body>
{{if .LoginError}}<p>Incorrect email or password.</p>{{end}}
<form method="POST" action="/login">
<label>Email <input type="email" name="email"></label>
<label>Password <input type="password" name="password"></label>
<input type="submit" value="Login">
</form></body></html>`))

func (a *App) GetLoginWebHandlerFunc(app.Framework) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = loginTmpl.Execute(w, struct{ LoginError bool }{
			LoginError: r.URL.Query().Get("login_error") == "true",
		})
	}
}

var authTmpl = template.Must(template.New("auth").Parse(`<!doctype html>
<html><head><title>Authorize</title></head><body>
<p>An application is requesting access to your account.</p>
<form method="POST" action="/oauth2/authorize">
<label>Email <input type="email" name="email"></label>
<label>Password <input type="password" name="password"></label>
<input type="submit" value="Authorize">
</form></body></html>`))

func (a *App) GetAuthWebHandlerFunc(app.Framework) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = authTmpl.Execute(w, nil)
	}
}

var collectionTmpl = template.Must(template.New("collection").Parse(`<!doctype html>
<html><head><title>{{.Title}}</title></head><body>
<h1>{{.Title}}</h1>
<ul>{{range .Items}}<li><a href="{{.}}">{{.}}</a></li>{{end}}</ul>
</body></html>`))

func renderCollection(w http.ResponseWriter, title string, v *streams.Value) {
	var items []string
	if v != nil {
		for _, id := range v.Items() {
			items = append(items, id.String())
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = collectionTmpl.Execute(w, struct {
		Title string
		Items []string
	}{title, items})
}

func (a *App) GetOutboxWebHandlerFunc(app.Framework) func(w http.ResponseWriter, r *http.Request, outbox *streams.Value) {
	return func(w http.ResponseWriter, r *http.Request, outbox *streams.Value) {
		renderCollection(w, "Outbox", outbox)
	}
}

func (a *App) GetInboxWebHandlerFunc(f app.Framework) func(w http.ResponseWriter, r *http.Request, inbox *streams.Value) {
	return func(w http.ResponseWriter, r *http.Request, inbox *streams.Value) {
		renderCollection(w, "Inbox", inbox)
	}
}

func (a *App) GetFollowersWebHandlerFunc(app.Framework) (app.CollectionPageHandlerFunc, app.AuthorizeFunc) {
	return func(w http.ResponseWriter, r *http.Request, followers *streams.Value) {
		renderCollection(w, "Followers", followers)
	}, nil
}

func (a *App) GetFollowingWebHandlerFunc(app.Framework) (app.CollectionPageHandlerFunc, app.AuthorizeFunc) {
	return func(w http.ResponseWriter, r *http.Request, following *streams.Value) {
		renderCollection(w, "Following", following)
	}, nil
}

func (a *App) GetLikedWebHandlerFunc(app.Framework) (app.CollectionPageHandlerFunc, app.AuthorizeFunc) {
	return func(w http.ResponseWriter, r *http.Request, liked *streams.Value) {
		renderCollection(w, "Liked", liked)
	}, nil
}

var userTmpl = template.Must(template.New("user").Parse(`<!doctype html>
<html><head><title>{{.Name}}</title></head><body>
<h1>{{.Name}}</h1><p>{{.Summary}}</p>
</body></html>`))

func (a *App) GetUserWebHandlerFunc(app.Framework) (app.VocabHandlerFunc, app.AuthorizeFunc) {
	return func(w http.ResponseWriter, r *http.Request, user *streams.Value) {
		name, _ := user.StringProperty("preferredUsername")
		summary, _ := user.StringProperty("summary")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = userTmpl.Execute(w, struct{ Name, Summary string }{name, summary})
	}, nil
}

// BuildRoutes adds the note permalink route, so ids minted by NewIDPath are
// dereferenceable, plus a trivial homepage.
func (a *App) BuildRoutes(r app.Router, db app.Database, f app.Framework) error {
	r.ActivityPubOnlyHandleFunc("/notes/{note}", nil)
	r.WebOnlyHandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		renderStatus(w, http.StatusOK, "Welcome", fmt.Sprintf("Serving since %s.", a.startTime.Format(time.RFC1123)))
	})
	return nil
}

func (a *App) NewIDPath(c context.Context, t *streams.Value) (path string, err error) {
	return fmt.Sprintf("/notes/%s", uuid.New().String()), nil
}

// The example grants every bearer token full access; a real application
// would inspect the scope string.
func (a *App) ScopePermitsPrivateGetInbox(scope string) (permitted bool, err error) {
	return true, nil
}

func (a *App) ScopePermitsPrivateGetOutbox(scope string) (permitted bool, err error) {
	return true, nil
}

func (a *App) ScopePermitsPostOutbox(scope string) (permitted bool, err error) {
	return true, nil
}

// UserPreferences are per-user application settings, stored as JSON.
type UserPreferences struct {
	ShowPublicOnly bool `json:"showPublicOnly"`
}

// UserPrivileges are per-user application capabilities, stored as JSON.
type UserPrivileges struct {
	CanCreateNotes bool `json:"canCreateNotes"`
}

func (a *App) DefaultUserPreferences() interface{} {
	return &UserPreferences{}
}

func (a *App) DefaultUserPrivileges() interface{} {
	return &UserPrivileges{CanCreateNotes: true}
}

func (a *App) DefaultAdminPrivileges() interface{} {
	return &UserPrivileges{CanCreateNotes: true}
}

func (a *App) ApplySocialHandlers(h *pub.ActivityHandler) {
	h.Set("Create", func(ctx *pub.Context, act *streams.Value) (*streams.Value, error) {
		util.InfoLogger.Infof("user published %d object(s)", len(act.Values("object")))
		return act, nil
	})
}

func (a *App) ApplyFederatingHandlers(h *pub.ActivityHandler) {
	h.Set("Create", func(ctx *pub.Context, act *streams.Value) (*streams.Value, error) {
		if id, err := act.ID(); err == nil {
			util.InfoLogger.Infof("received federated Create %s", id)
		}
		return act, nil
	})
	h.Default = func(ctx *pub.Context, act *streams.Value) (*streams.Value, error) {
		util.InfoLogger.Infof("received federated %s activity", act.Type())
		return act, nil
	}
}

func (a *App) Software() app.Software {
	return app.Software{
		Name:         "fedcore-example",
		MajorVersion: 0,
		MinorVersion: 1,
		PatchVersion: 0,
	}
}
