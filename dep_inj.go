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

package fedcore

import (
	"database/sql"
	"math/rand"
	"sync"
	"time"

	"github.com/hearthgate/fedcore/ap"
	"github.com/hearthgate/fedcore/app"
	"github.com/hearthgate/fedcore/framework"
	"github.com/hearthgate/fedcore/framework/config"
	"github.com/hearthgate/fedcore/framework/conn"
	"github.com/hearthgate/fedcore/framework/db"
	"github.com/hearthgate/fedcore/framework/oauth2"
	"github.com/hearthgate/fedcore/framework/web"
	"github.com/hearthgate/fedcore/models"
	"github.com/hearthgate/fedcore/pub"
	"github.com/hearthgate/fedcore/services"
	"github.com/gorilla/mux"
)

func newServer(configFileName string, appl app.Application, debug bool) (s *framework.Server, err error) {
	// Load the configuration
	c, err := framework.LoadConfigFile(configFileName, appl, debug)
	if err != nil {
		return
	}

	host := c.ServerConfig.Host
	scheme := schemeFromFlags()

	// Create a server clock in the configured timezone
	clock, err := ap.NewClock(c.ActivityPubConfig.ClockTimezone)
	if err != nil {
		return
	}

	// ** Create the Models & Services **

	// Create the SQL database
	sqldb, dialect, err := db.NewDB(c)
	if err != nil {
		return
	}

	// Create the models & services for higher-level transformations
	sv, ms := createModelsAndServices(c, sqldb, dialect, appl, host, scheme, clock)

	// Ensure the SQL statements are prepared
	err = prepare(ms, sqldb, dialect)
	if err != nil {
		return
	}

	// ** Create Misc Helpers **

	// Create placeholder framework.
	//
	// Creating a placeholder early allows us to inject it into the needed
	// dependencies, even if *Framework is not yet ready for use.
	fw := &framework.Framework{}
	internalErrorHandler := appl.InternalServerErrorHandler(fw)

	// Prepare web sessions behavior
	sess, err := web.NewSessions(c, scheme)
	if err != nil {
		return
	}

	// Prepare OAuth2 server
	oauth, err := oauth2.NewServer(c, scheme, internalErrorHandler, sv.oauth, sv.crypto, sess)
	if err != nil {
		return
	}

	// Create an HTTP client for this server.
	httpClient := framework.NewHTTPClient(c)

	// ** Initialize the ActivityPub behavior **

	// Create a controller for outbound messaging.
	tc, err := conn.NewController(c, appl, clock, httpClient, sv.deliveryAttempts, sv.privateKeys)
	if err != nil {
		return
	}

	// Create the pub.Database over the services layer.
	apdb := ap.NewDatabase(c,
		appl,
		sv.inboxes,
		sv.outboxes,
		sv.users,
		sv.data,
		sv.followers,
		sv.following,
		sv.liked,
		sv.collections,
		sv.privateKeys,
		tc)

	// Hook up ActivityPub Actor behavior for users.
	actor, err := ap.NewActor(c,
		appl,
		apdb,
		oauth,
		sv.policies,
		sv.privateKeys,
		sv.followers,
		sv.users,
		tc)
	if err != nil {
		return
	}
	// Hook up ActivityPub Actor behavior for non-user actors.
	actorMap := ap.NewActorMap(c,
		apdb,
		sv.privateKeys,
		sv.followers,
		tc)

	// ** Initialize the Web Server **

	// Build framework for auxiliary behaviors
	_, isS2S := appl.(app.S2SApplication)
	fw = framework.BuildFramework(fw,
		scheme,
		host,
		oauth,
		sess,
		sv.users,
		apdb,
		actor,
		isS2S,
		services.HashPasswordParameters{
			SaltSize:       c.ServerConfig.SaltSize,
			BCryptStrength: c.ServerConfig.BCryptStrength,
		},
		c.ServerConfig.RSAKeySize)

	// Obtain a normal router and fallback web handlers.
	mr := mux.NewRouter()
	mr.NotFoundHandler = appl.NotFoundHandler(fw)
	mr.MethodNotAllowedHandler = appl.MethodNotAllowedHandler(fw)
	badRequestHandler := appl.BadRequestHandler(fw)
	getAuthWebHandler := appl.GetAuthWebHandlerFunc(fw)
	getLoginWebHandler := appl.GetLoginWebHandlerFunc(fw)

	// Build a specialized AP-aware router for managing and routing HTTP requests.
	r := framework.NewRouter(
		mr,
		oauth,
		actor,
		actorMap,
		apdb,
		sv.any,
		host,
		scheme,
		internalErrorHandler,
		badRequestHandler)

	// Build application routes for default web support
	h, err := framework.BuildHandler(r,
		internalErrorHandler,
		badRequestHandler,
		getAuthWebHandler,
		getLoginWebHandler,
		scheme,
		c,
		appl,
		fw,
		actor,
		apdb,
		sv.any,
		sv.users,
		sv.crypto,
		sv.nodeinfo,
		sv.following,
		sv.followers,
		sv.liked,
		sqldb,
		oauth,
		sess,
		fw,
		appl.Software(), coreSoftware(),
		debug)
	if err != nil {
		return
	}

	// Build list of StartStoppers
	ss := []framework.StartStopper{tc, oauth}

	// Build web server to control server behavior
	if debug {
		s, err = framework.NewInsecureServer(c, h, appl, sqldb, dialect, ms, ss)
	} else {
		s, err = framework.NewServer(c, h, scheme, appl, sqldb, dialect, ms, ss)
	}
	return
}

func newModels(configFileName string, appl app.Application, debug bool, scheme string) (sqldb *sql.DB, dialect models.SqlDialect, m []models.Model, err error) {
	// Load the configuration
	var c *config.Config
	c, err = framework.LoadConfigFile(configFileName, appl, debug)
	if err != nil {
		return
	}
	host := c.ServerConfig.Host

	// Create a server clock in the configured timezone
	var clock pub.Clock
	clock, err = ap.NewClock(c.ActivityPubConfig.ClockTimezone)
	if err != nil {
		return
	}

	// Create the SQL database
	sqldb, dialect, err = db.NewDB(c)
	if err != nil {
		return
	}

	_, m = createModelsAndServices(c, sqldb, dialect, appl, host, scheme, clock)
	return
}

func newUserService(configFileName string, appl app.Application, debug bool, scheme string) (sqldb *sql.DB, users *services.Users, c *config.Config, err error) {
	// Load the configuration
	c, err = framework.LoadConfigFile(configFileName, appl, debug)
	if err != nil {
		return
	}
	host := c.ServerConfig.Host

	// Create a server clock in the configured timezone
	var clock pub.Clock
	clock, err = ap.NewClock(c.ActivityPubConfig.ClockTimezone)
	if err != nil {
		return
	}

	// Create the SQL database
	var dialect models.SqlDialect
	sqldb, dialect, err = db.NewDB(c)
	if err != nil {
		return
	}

	sv, ml := createModelsAndServices(c, sqldb, dialect, appl, host, scheme, clock)
	users = sv.users
	err = prepare(ml, sqldb, dialect)
	return
}

// allServices bundles the service layer so dependency injection sites do not
// carry a fifteen-value return.
type allServices struct {
	crypto           *services.Crypto
	data             *services.Data
	deliveryAttempts *services.DeliveryAttempts
	followers        *services.Followers
	following        *services.Following
	inboxes          *services.Inboxes
	liked            *services.Liked
	collections      *services.Collections
	oauth            *services.OAuth2
	outboxes         *services.Outboxes
	policies         *services.Policies
	privateKeys      *services.PrivateKeys
	users            *services.Users
	nodeinfo         *services.NodeInfo
	any              *services.Any
}

func createModelsAndServices(c *config.Config, sqldb *sql.DB, d models.SqlDialect, appl app.Application, host, scheme string, clock pub.Clock) (sv *allServices, m []models.Model) {
	us := &models.Users{}
	fd := &models.FedData{}
	ld := &models.LocalData{}
	in := &models.Inboxes{}
	ou := &models.Outboxes{}
	da := &models.DeliveryAttempts{}
	pk := &models.PrivateKeys{}
	ci := &models.ClientInfos{}
	ti := &models.TokenInfos{}
	cd := &models.Credentials{}
	fn := &models.Following{}
	fr := &models.Followers{}
	li := &models.Liked{}
	po := &models.Policies{}
	rs := &models.Resolutions{}
	co := &models.Collections{}
	m = []models.Model{
		us,
		fd,
		ld,
		in,
		ou,
		da,
		pk,
		ci,
		ti,
		cd,
		fn,
		fr,
		li,
		po,
		rs,
		co,
	}
	sv = &allServices{}
	sv.crypto = &services.Crypto{
		DB:    sqldb,
		Users: us,
	}
	sv.deliveryAttempts = &services.DeliveryAttempts{
		DB:               sqldb,
		DeliveryAttempts: da,
	}
	sv.followers = &services.Followers{
		DB:        sqldb,
		Followers: fr,
	}
	sv.following = &services.Following{
		DB:        sqldb,
		Following: fn,
	}
	sv.inboxes = &services.Inboxes{
		DB:      sqldb,
		Inboxes: in,
	}
	sv.liked = &services.Liked{
		DB:    sqldb,
		Liked: li,
	}
	sv.collections = &services.Collections{
		DB:          sqldb,
		Collections: co,
	}
	sv.data = &services.Data{
		DB:                    sqldb,
		Hostname:              host,
		FedData:               fd,
		LocalData:             ld,
		Users:                 us,
		Following:             sv.following,
		Followers:             sv.followers,
		Liked:                 sv.liked,
		DefaultCollectionSize: c.DatabaseConfig.DefaultCollectionPageSize,
		MaxCollectionPageSize: c.DatabaseConfig.MaxCollectionPageSize,
	}
	sv.oauth = &services.OAuth2{
		DB:     sqldb,
		Client: ci,
		Token:  ti,
		Creds:  cd,
	}
	sv.outboxes = &services.Outboxes{
		DB:       sqldb,
		Outboxes: ou,
	}
	sv.policies = &services.Policies{
		Clock:       clock,
		DB:          sqldb,
		Policies:    po,
		Resolutions: rs,
	}
	sv.privateKeys = &services.PrivateKeys{
		Scheme:   scheme,
		Hostname: host,
		DB:       sqldb,
		Keys:     pk,
	}
	sv.users = &services.Users{
		App:         appl,
		DB:          sqldb,
		Users:       us,
		PrivateKeys: pk,
		Inboxes:     in,
		Outboxes:    ou,
		Followers:   fr,
		Following:   fn,
		Liked:       li,
	}
	sv.nodeinfo = &services.NodeInfo{
		DB:               sqldb,
		Users:            us,
		Rand:             rand.New(rand.NewSource(time.Now().UnixNano())),
		Mu:               &sync.RWMutex{},
		CacheInvalidated: time.Second * time.Duration(c.NodeInfoConfig.AnonymizedStatsCacheInvalidatedSeconds),
	}
	sv.any = &services.Any{
		DB:      sqldb,
		Dialect: d,
	}
	return
}

func prepare(ml []models.Model, db *sql.DB, d models.SqlDialect) error {
	for _, m := range ml {
		if err := m.Prepare(db, d); err != nil {
			return err
		}
	}
	return nil
}
