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

package db

import (
	"strings"

	"github.com/hearthgate/fedcore/models"
)

var _ models.SqlDialect = &pgV0{}

type pgV0 struct {
	schema string
}

func NewPgV0(schema string) *pgV0 {
	p := &pgV0{
		schema: schema,
	}
	if p.schema == "" {
		p.schema = "public"
	}
	p.schema += "."
	return p
}

func (p *pgV0) Apply(sql string) string {
	return strings.ReplaceAll(sql, "{schema}.", p.schema)
}

/*
func (p *pgV0) FollowersByUserUUID() string {
	return `SELECT local_data.payload FROM ` + p.schema + `local_data
INNER JOIN` + p.schema + `users
ON users.actor->>'followers' = local_data.payload->>'id'
WHERE users.id = $1`
}

func (p *pgV0) RemoveTokenByAccess() string {
	return "DELETE FROM " + p.schema + "oauth_tokens WHERE access = $1"
}

func (p *pgV0) RemoveTokenByRefresh() string {
	return "DELETE FROM " + p.schema + "oauth_tokens WHERE refresh = $1"
}

func (p *pgV0) GetTokenByAccess() string {
	return `SELECT
(
  client_id,
  user_id,
  redirect_uri,
  scope,
  code,
  code_create_at,
  code_expires_in,
  access,
  access_create_at,
  access_expires_in,
  refresh,
  refresh_create_at,
  refresh_expires_in
)
FROM ` + p.schema + "oauth_tokens WHERE access = $1"
}

func (p *pgV0) GetTokenByRefresh() string {
	return `SELECT
(
  client_id,
  user_id,
  redirect_uri,
  scope,
  code,
  code_create_at,
  code_expires_in,
  access,
  access_create_at,
  access_expires_in,
  refresh,
  refresh_create_at,
  refresh_expires_in
)
FROM ` + p.schema + "oauth_tokens WHERE refresh = $1"
}

func (p *pgV0) SetInboxUpdate() string {
	return `WITH fed_query AS (
  SELECT fed_data.id FROM ` + p.schema + `fed_data WHERE fed_data.payload->>'id' = $3
)
UPDATE ` + p.schema + `users_outbox
SET (federated_id) = (fed_query.id)
FROM fed_query
WHERE id = $1 AND user_id = $2`
}

func (p *pgV0) SetInboxInsert() string {
	return `INSERT INTO ` + p.schema + `users_inbox (user_id, federated_id)
SELECT users.id, fed_data.id FROM ` + p.schema + `users, ` + p.schema + `fed_data
WHERE users.actor->>'inbox' = $1 AND fed_data.payload->>'id' = $2`
}

func (p *pgV0) SetInboxDelete() string {
	return "DELETE FROM " + p.schema + "users_inbox WHERE id = $1"
}

func (p *pgV0) Exists() string {
	return `SELECT EXISTS(
SELECT 1 FROM ` + p.schema + `fed_data
WHERE payload->>'id' = $1
)`
}

func (p *pgV0) Get() string {
	return `SELECT payload FROM ` + p.schema + `fed_data WHERE payload->>'id' = $1
UNION
SELECT payload FROM ` + p.schema + `local_data WHERE payload->>'id' = $1
UNION
SELECT actor FROM ` + p.schema + `users WHERE actor->>'id' = $1`
}

func (p *pgV0) SetOutboxUpdate() string {
	return `WITH local_query AS (
  SELECT local_data.id FROM ` + p.schema + `local_data WHERE local_data.payload->>'id' = $3
)
UPDATE ` + p.schema + `users_outbox
SET (local_id) = (local_query.id)
FROM local_query
WHERE id = $1 AND user_id = $2`
}

func (p *pgV0) SetOutboxInsert() string {
	return `INSERT INTO ` + p.schema + `users_outbox (user_id, local_id)
SELECT users.id, local_data.id FROM ` + p.schema + `users, ` + p.schema + `local_data
WHERE users.actor->>'inbox' = $1 AND local_data.payload->>'id' = $2`
}

func (p *pgV0) SetOutboxDelete() string {
	return "DELETE FROM " + p.schema + "users_outbox WHERE id = $1"
}

func (p *pgV0) Followers() string {
	return `SELECT local_data.payload FROM ` + p.schema + `local_data
INNER JOIN` + p.schema + `users
ON users.actor->>'followers' = local_data.payload->>'id'
WHERE users.actor->>'id' = $1`
}

func (p *pgV0) Following() string {
	return `SELECT local_data.payload FROM ` + p.schema + `local_data
INNER JOIN` + p.schema + `users
ON users.actor->>'following' = local_data.payload->>'id'
WHERE users.actor->>'id' = $1`
}

func (p *pgV0) Liked() string {
	return `SELECT local_data.payload FROM ` + p.schema + `local_data
INNER JOIN` + p.schema + `users
ON users.actor->>'liked' = local_data.payload->>'id'
WHERE users.actor->>'id' = $1`
}

func (p *pgV0) InsertUserPrivileges() string {
	return `INSERT INTO ` + p.schema + `user_privileges (user_id, admin) VALUES ($1, $2)`
}

func (p *pgV0) InsertUserPreferences() string {
	return `INSERT INTO ` + p.schema + `user_preferences (user_id, on_follow) VALUES ($1, $2)`
}
*/

/* SqlDialect */

func (p *pgV0) CreateUsersTable() string {
	return `
CREATE TABLE IF NOT EXISTS ` + p.schema + `users
(
  id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
  create_time timestamp with time zone NOT NULL DEFAULT current_timestamp,
  email text NOT NULL,
  hashpass bytea NOT NULL,
  salt bytea NOT NULL,
  actor jsonb NOT NULL,
  privileges jsonb NOT NULL,
  preferences jsonb NOT NULL
);`
}

func (p *pgV0) InsertUser() string {
	return `INSERT INTO ` + p.schema + `users (email, hashpass, salt, actor, privileges, preferences) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
}

func (p *pgV0) SensitiveUserByEmail() string {
	return "SELECT id, hashpass, salt FROM " + p.schema + "users WHERE email = $1"
}

func (p *pgV0) UserByID() string {
	return "SELECT id, email, actor, privileges, preferences FROM " + p.schema + "users WHERE id = $1"
}

func (p *pgV0) ActorIDForOutbox() string {
	return `SELECT actor->>'id' FROM ` + p.schema + `users
WHERE actor->'outbox' ? $1`
}

func (p *pgV0) ActorIDForInbox() string {
	return `SELECT actor->>'id' FROM ` + p.schema + `users
WHERE actor->'inbox' ? $1`
}

func (p *pgV0) CreateFedDataTable() string {
	return `
CREATE TABLE IF NOT EXISTS ` + p.schema + `fed_data
(
  id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
  create_time timestamp with time zone DEFAULT current_timestamp,
  payload jsonb NOT NULL
);`
}

func (p *pgV0) FedCreate() string {
	return `INSERT INTO ` + p.schema + `fed_data (payload) VALUES ($1)`
}

func (p *pgV0) FedUpdate() string {
	return `UPDATE ` + p.schema + `fed_data SET payload = $2 WHERE payload->>'id' = $1`
}

func (p *pgV0) FedDelete() string {
	return `DELETE FROM ` + p.schema + `fed_data WHERE payload->>'id' = $1`
}

func (p *pgV0) CreateLocalDataTable() string {
	return `
CREATE TABLE IF NOT EXISTS ` + p.schema + `local_data
(
  id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
  create_time timestamp with time zone NOT NULL DEFAULT current_timestamp,
  payload jsonb NOT NULL
);`
}

func (p *pgV0) LocalCreate() string {
	return `INSERT INTO ` + p.schema + `local_data (payload) VALUES ($1)`
}

func (p *pgV0) LocalUpdate() string {
	return `UPDATE ` + p.schema + `local_data SET payload = $2 WHERE payload->>'id' = $1`
}

func (p *pgV0) LocalDelete() string {
	return `DELETE FROM ` + p.schema + `local_data WHERE payload->>'id' = $1`
}

func (p *pgV0) CreateInboxesTable() string {
	return `
CREATE TABLE IF NOT EXISTS ` + p.schema + `inboxes
(
  id bigserial PRIMARY KEY,
  actor_id text NOT NULL,
  inbox jsonb NOT NULL
);`
}

func (p *pgV0) CreateOutboxesTable() string {
	return `
CREATE TABLE IF NOT EXISTS ` + p.schema + `outboxes
(
  id bigserial PRIMARY KEY,
  actor_id text NOT NULL,
  outbox jsonb NOT NULL
);`
}

func (p *pgV0) InsertInbox() string {
	return `INSERT INTO ` + p.schema + `inboxes (actor_id, inbox) VALUES ($1, $2)`
}

func (p *pgV0) InsertOutbox() string {
	return `INSERT INTO ` + p.schema + `outboxes (actor_id, outbox) VALUES ($1, $2)`
}

func (p *pgV0) InboxContainsForActor() string {
	return `SELECT EXISTS (
  SELECT 1
  FROM ` + p.schema + `inboxes
  WHERE actor_id = $1 AND inbox->'orderedItems' ? $2
  LIMIT 1
)`
}

func (p *pgV0) InboxContains() string {
	return `SELECT EXISTS (
  SELECT 1
  FROM ` + p.schema + `inboxes
  WHERE inbox->'id' ? $1 AND inbox->'orderedItems' ? $2
  LIMIT 1
)`
}

func (p *pgV0) OutboxContainsForActor() string {
	return `SELECT EXISTS (
  SELECT 1
  FROM ` + p.schema + `outboxes
  WHERE actor_id = $1 AND outbox->'orderedItems' ? $2
  LIMIT 1
)`
}

func (p *pgV0) OutboxContains() string {
	return `SELECT EXISTS (
  SELECT 1
  FROM ` + p.schema + `outboxes
  WHERE outbox->'id' ? $1 AND outbox->'orderedItems' ? $2
  LIMIT 1
)`
}

func (p *pgV0) GetInbox() string {
	return `WITH page AS (
  SELECT
    inbox,
    jsonb_path_query_array(
      inbox,
      '$.orderedItems[$min to $max]',
      jsonb_build_object(
        'min',
	$2::jsonb,
        'max',
	$3::jsonb)) AS page
    FROM ` + p.schema + `inboxes
    WHERE inbox->'id' ? $1
)
SELECT
  inbox ||
    jsonb_build_object(
      'orderedItems',
      page,
      'totalItems',
      jsonb_path_query(page, '$.size()'),
      'type',
      'OrderedCollectionPage')
  FROM page`
}

func (p *pgV0) GetOutbox() string {
	return `WITH page AS (
  SELECT
    outbox,
    jsonb_path_query_array(
      outbox,
      '$.orderedItems[$min to $max]',
      jsonb_build_object(
        'min',
	$2::jsonb,
        'max',
	$3::jsonb)) AS page
    FROM ` + p.schema + `outboxes
    WHERE outbox->'id' ? $1
)
SELECT
  outbox ||
    jsonb_build_object(
      'orderedItems',
      page,
      'totalItems',
      jsonb_path_query(page, '$.size()'),
      'type',
      'OrderedCollectionPage')
  FROM page`
}

func (p *pgV0) GetPublicInbox() string {
	return `WITH inbox AS (
  SELECT inbox
  FROM ` + p.schema + `inboxes
  WHERE inbox->'id' ? $1
),
page_elements AS (
  SELECT
    jsonb_array_elements(
      jsonb_path_query_array(
        inbox,
        '$.orderedItems[*]')) AS page
  FROM inbox
),
fed_public AS (
  SELECT pd.page AS page
  FROM page_elements AS pd
  LEFT JOIN ` + p.schema + `fed_data AS fd
  ON pd.page = fd.payload->'id'
  WHERE
    fd.payload->'to' ? 'https://www.w3.org/ns/activitystreams#Public'
    OR fd.payload->'cc' ? 'https://www.w3.org/ns/activitystreams#Public'
),
local_public AS (
  SELECT pd.page AS page
  FROM page_elements AS pd
  LEFT JOIN ` + p.schema + `local_data AS ld
  ON pd.page = ld.payload->'id'
  WHERE
    ld.payload->'to' ? 'https://www.w3.org/ns/activitystreams#Public'
    OR ld.payload->'cc' ? 'https://www.w3.org/ns/activitystreams#Public'
),
only_public AS (
  SELECT
    jsonb_path_query_array(
      jsonb_agg(i.page),
      '$[$min to $max]',
      jsonb_build_object(
        'min',
        $2::jsonb,
        'max',
        $3::jsonb)) AS page
  FROM (
    SELECT
      *
    FROM fed_public
    UNION ALL
    SELECT
      *
    FROM local_public) AS i
)
SELECT
  i.inbox ||
    jsonb_build_object(
      'orderedItems',
      op.page,
      'totalItems',
      jsonb_path_query(op.page, '$.size()'),
      'type',
      'OrderedCollectionPage')
  FROM inbox AS i, only_public AS op`
}

func (p *pgV0) GetPublicOutbox() string {
	return `WITH outbox AS (
  SELECT outbox
  FROM ` + p.schema + `outboxes
  WHERE outbox->'id' ? $1
),
page_elements AS (
  SELECT
    jsonb_array_elements(
      jsonb_path_query_array(
        outbox,
        '$.orderedItems[*]')) AS page
  FROM outbox
),
fed_public AS (
  SELECT pd.page AS page
  FROM page_elements AS pd
  LEFT JOIN ` + p.schema + `fed_data AS fd
  ON pd.page = fd.payload->'id'
  WHERE
    fd.payload->'to' ? 'https://www.w3.org/ns/activitystreams#Public'
    OR fd.payload->'cc' ? 'https://www.w3.org/ns/activitystreams#Public'
),
local_public AS (
  SELECT pd.page AS page
  FROM page_elements AS pd
  LEFT JOIN ` + p.schema + `local_data AS ld
  ON pd.page = ld.payload->'id'
  WHERE
    ld.payload->'to' ? 'https://www.w3.org/ns/activitystreams#Public'
    OR ld.payload->'cc' ? 'https://www.w3.org/ns/activitystreams#Public'
),
only_public AS (
  SELECT
    jsonb_path_query_array(
      jsonb_agg(i.page),
      '$[$min to $max]',
      jsonb_build_object(
        'min',
        $2::jsonb,
        'max',
        $3::jsonb)) AS page
  FROM (
    SELECT
      *
    FROM fed_public
    UNION ALL
    SELECT
      *
    FROM local_public) AS i
)
SELECT
  i.outbox ||
    jsonb_build_object(
      'orderedItems',
      op.page,
      'totalItems',
      jsonb_path_query(op.page, '$.size()'),
      'type',
      'OrderedCollectionPage')
  FROM outbox AS i, only_public AS op`
}

func (p *pgV0) GetInboxLastPage() string {
	return `WITH stats AS (
  SELECT
    inbox,
    GREATEST(0,
      jsonb_path_query(inbox, '$.orderedItems.size()')::numeric - $2) AS startIndex
  FROM ` + p.schema + `inboxes
  WHERE inbox->'id' ? $1
),
page AS (
  SELECT
    inbox,
    startIndex,
    jsonb_path_query_array(
      inbox,
      '$.orderedItems[$min to last]',
      jsonb_build_object(
        'min',
        startIndex)) AS page
  FROM stats
)
SELECT
  inbox ||
    jsonb_build_object(
    'orderedItems',
    page,
    'totalItems',
    jsonb_path_query(page, '$.size()'),
    'type',
    'OrderedCollectionPage') AS inbox,
  startIndex
FROM page`
}

func (p *pgV0) GetOutboxLastPage() string {
	return `WITH stats AS (
  SELECT
    outbox,
    GREATEST(0,
      jsonb_path_query(outbox, '$.orderedItems.size()')::numeric - $2) AS startIndex
  FROM ` + p.schema + `outboxes
  WHERE outbox->'id' ? $1
),
page AS (
  SELECT
    outbox,
    startIndex,
    jsonb_path_query_array(
      outbox,
      '$.orderedItems[$min to last]',
      jsonb_build_object(
        'min',
        startIndex)) AS page
  FROM stats
)
SELECT
  outbox ||
    jsonb_build_object(
    'orderedItems',
    page,
    'totalItems',
    jsonb_path_query(page, '$.size()'),
    'type',
    'OrderedCollectionPage') AS outbox,
  startIndex
FROM page`
}

func (p *pgV0) GetPublicInboxLastPage() string {
	return `WITH inbox AS (
  SELECT inbox
  FROM ` + p.schema + `inboxes
  WHERE inbox->'id' ? $1
),
page_elements AS (
  SELECT
    jsonb_array_elements(
      jsonb_path_query_array(
        inbox,
        '$.orderedItems[*]')) AS page
  FROM inbox
),
fed_public AS (
  SELECT pd.page AS page
  FROM page_elements AS pd
  LEFT JOIN ` + p.schema + `fed_data AS fd
  ON pd.page = fd.payload->'id'
  WHERE
    fd.payload->'to' ? 'https://www.w3.org/ns/activitystreams#Public'
    OR fd.payload->'cc' ? 'https://www.w3.org/ns/activitystreams#Public'
),
local_public AS (
  SELECT pd.page AS page
  FROM page_elements AS pd
  LEFT JOIN ` + p.schema + `local_data AS ld
  ON pd.page = ld.payload->'id'
  WHERE
    ld.payload->'to' ? 'https://www.w3.org/ns/activitystreams#Public'
    OR ld.payload->'cc' ? 'https://www.w3.org/ns/activitystreams#Public'
),
merged AS (
  SELECT
    jsonb_agg(i.page) AS page,
	COUNT(i.page) AS n
  FROM (
    SELECT
      *
    FROM fed_public
    UNION ALL
    SELECT
      *
    FROM local_public) AS i
),
only_public AS (
  SELECT
    jsonb_path_query_array(
      page,
      '$[$min to last]',
      jsonb_build_object(
        'min',
        GREATEST(0, n - $2))) AS page,
	GREATEST(0, n - $2) AS startIndex
  FROM merged
)
SELECT
  i.inbox ||
    jsonb_build_object(
      'orderedItems',
      op.page,
      'totalItems',
      jsonb_path_query(op.page, '$.size()'),
      'type',
      'OrderedCollectionPage') AS inbox,
  op.startIndex
FROM inbox AS i, only_public AS op`
}

func (p *pgV0) GetPublicOutboxLastPage() string {
	return `WITH outbox AS (
  SELECT outbox
  FROM ` + p.schema + `outboxes
  WHERE outbox->'id' ? $1
),
page_elements AS (
  SELECT
    jsonb_array_elements(
      jsonb_path_query_array(
        outbox,
        '$.orderedItems[*]')) AS page
  FROM outbox
),
fed_public AS (
  SELECT pd.page AS page
  FROM page_elements AS pd
  LEFT JOIN ` + p.schema + `fed_data AS fd
  ON pd.page = fd.payload->'id'
  WHERE
    fd.payload->'to' ? 'https://www.w3.org/ns/activitystreams#Public'
    OR fd.payload->'cc' ? 'https://www.w3.org/ns/activitystreams#Public'
),
local_public AS (
  SELECT pd.page AS page
  FROM page_elements AS pd
  LEFT JOIN ` + p.schema + `local_data AS ld
  ON pd.page = ld.payload->'id'
  WHERE
    ld.payload->'to' ? 'https://www.w3.org/ns/activitystreams#Public'
    OR ld.payload->'cc' ? 'https://www.w3.org/ns/activitystreams#Public'
),
merged AS (
  SELECT
    jsonb_agg(i.page) AS page,
	COUNT(i.page) AS n
  FROM (
    SELECT
      *
    FROM fed_public
    UNION ALL
    SELECT
      *
    FROM local_public) AS i
),
only_public AS (
  SELECT
    jsonb_path_query_array(
      page,
      '$[$min to last]',
      jsonb_build_object(
        'min',
        GREATEST(0, n - $2))) AS page,
	GREATEST(0, n - $2) AS startIndex
  FROM merged
)
SELECT
  i.outbox ||
    jsonb_build_object(
      'orderedItems',
      op.page,
      'totalItems',
      jsonb_path_query(op.page, '$.size()'),
      'type',
      'OrderedCollectionPage') AS outbox,
  op.startIndex
FROM outbox AS i, only_public AS op`
}

func (p *pgV0) PrependInboxItem() string {
	return `UPDATE ` + p.schema + `inboxes
SET inbox = inbox || jsonb_build_object(
  'orderedItems',
  jsonb_build_array($2::text) || (inbox->'orderedItems'),
  'totalItems',
  (COALESCE(inbox->>'totalItems','0')::int + 1)::text::jsonb)
WHERE inbox->'id' ? $1`
}

func (p *pgV0) PrependOutboxItem() string {
	return `UPDATE ` + p.schema + `outboxes
SET outbox = outbox || jsonb_build_object(
  'orderedItems',
  jsonb_build_array($2::text) || (outbox->'orderedItems'),
  'totalItems',
  (COALESCE(outbox->>'totalItems','0')::int + 1)::text::jsonb)
WHERE outbox->'id' ? $1`
}

func (p *pgV0) DeleteInboxItem() string {
	return `UPDATE ` + p.schema + `inboxes
SET inbox = jsonb_set(
  inbox,
  '{orderedItems}',
  (inbox->'orderedItems') - $2) ||
  jsonb_build_object(
  'totalItems',
  (COALESCE(inbox->>'totalItems','0')::int - 1)::text::jsonb)
WHERE inbox->'id' ? $1`
}

func (p *pgV0) DeleteOutboxItem() string {
	return `UPDATE ` + p.schema + `outboxes
SET outbox = jsonb_set(
  outbox,
  '{orderedItems}',
  (outbox->'orderedItems') - $2) ||
  jsonb_build_object(
  'totalItems',
  (COALESCE(outbox->>'totalItems','0')::int - 1)::text::jsonb)
WHERE outbox->'id' ? $1`
}

func (p *pgV0) OutboxForInbox() string {
	return `SELECT actor->>'outbox' FROM ` + p.schema + `users
WHERE actor->'inbox' ? $1`
}

func (p *pgV0) CreateDeliveryAttemptsTable() string {
	return `CREATE TABLE IF NOT EXISTS ` + p.schema + `delivery_attempts
(
  id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
  create_time timestamp with time zone DEFAULT current_timestamp,
  from_id uuid REFERENCES ` + p.schema + `users (id) ON DELETE CASCADE NOT NULL,
  deliver_to text NOT NULL,
  payload bytea NOT NULL,
  state text NOT NULL
);`
}

func (p *pgV0) InsertAttempt() string {
	return `INSERT INTO ` + p.schema + `delivery_attempts (from_id, deliver_to, payload, state) VALUES ($1, $2, $3, $4) RETURNING id`
}

func (p *pgV0) MarkSuccessfulAttempt() string {
	return `UPDATE ` + p.schema + `delivery_attempts SET state = $2 WHERE id = $1`
}

func (p *pgV0) MarkFailedAttempt() string {
	return `UPDATE ` + p.schema + `delivery_attempts SET state = $2 WHERE id = $1`
}

func (p *pgV0) CreatePrivateKeysTable() string {
	return `
CREATE TABLE IF NOT EXISTS ` + p.schema + `private_keys
(
  id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
  user_id uuid REFERENCES ` + p.schema + `users(id) ON DELETE CASCADE NOT NULL,
  purpose text NOT NULL,
  priv_key bytea NOT NULL
);`
}

func (p *pgV0) CreatePrivateKey() string {
	return `INSERT INTO ` + p.schema + `private_keys (user_id, purpose, priv_key) VALUES ($1, $2, $3)`
}

func (p *pgV0) GetPrivateKeyByUserID() string {
	return `SELECT priv_key FROM ` + p.schema + `private_keys WHERE user_id = $1 AND purpose = $2`
}

func (p *pgV0) CreateClientInfosTable() string {
	return `
CREATE TABLE IF NOT EXISTS ` + p.schema + `oauth_clients
(
  id text PRIMARY KEY DEFAULT gen_random_uuid(),
  secret text NOT NULL,
  domain text NOT NULL,
  user_id uuid REFERENCES ` + p.schema + `users(id) ON DELETE CASCADE NOT NULL
);`
}

func (p *pgV0) CreateClientInfo() string {
	return `INSERT INTO ` + p.schema + `oauth_clients (secret, domain, user_id) VALUES ($1, $2, $3) RETURNING id`
}

func (p *pgV0) GetClientInfoByID() string {
	return `SELECT id, secret, domain, user_id FROM ` + p.schema + `oauth_clients WHERE id = $1`
}

func (p *pgV0) CreateTokenInfosTable() string {
	return `
CREATE TABLE IF NOT EXISTS ` + p.schema + `oauth_tokens
(
  client_id text REFERENCES ` + p.schema + `oauth_clients(id) ON DELETE CASCADE NOT NULL,
  user_id uuid REFERENCES ` + p.schema + `users(id) ON DELETE CASCADE NOT NULL,
  redirect_uri text NOT NULL,
  scope text NOT NULL,
  code text,
  code_create_at timestamp with time zone,
  code_expires_in bigint,
  access text,
  access_create_at timestamp with time zone,
  access_expires_in bigint,
  refresh text,
  refresh_create_at timestamp with time zone,
  refresh_expires_in bigint
)`
}

func (p *pgV0) CreateTokenInfo() string {
	return "INSERT INTO " + p.schema + `oauth_tokens
(
  client_id,
  user_id,
  redirect_uri,
  scope,
  code,
  code_create_at,
  code_expires_in,
  access,
  access_create_at,
  access_expires_in,
  refresh,
  refresh_create_at,
  refresh_expires_in
) VALUES
(
  $1,
  $2,
  $3,
  $4,
  $5,
  $6,
  $7,
  $8,
  $9,
  $10,
  $11,
  $12,
  $13
) RETURNING id`
}

func (p *pgV0) RemoveTokenInfoByCode() string {
	return `DELETE FROM ` + p.schema + `oauth_tokens WHERE code = $1`
}

func (p *pgV0) RemoveTokenInfoByAccess() string {
	return `DELETE FROM ` + p.schema + `oauth_tokens WHERE access = $1`
}

func (p *pgV0) RemoveTokenInfoByRefresh() string {
	return `DELETE FROM ` + p.schema + `oauth_tokens WHERE refresh = $1`
}

func (p *pgV0) GetTokenInfoByCode() string {
	return `SELECT
  client_id,
  user_id,
  redirect_uri,
  scope,
  code,
  code_create_at,
  code_expires_in,
  access,
  access_create_at,
  access_expires_in,
  refresh,
  refresh_create_at,
  refresh_expires_in
FROM ` + p.schema + "oauth_tokens WHERE code = $1"
}

func (p *pgV0) GetTokenInfoByAccess() string {
	return `SELECT
  client_id,
  user_id,
  redirect_uri,
  scope,
  code,
  code_create_at,
  code_expires_in,
  access,
  access_create_at,
  access_expires_in,
  refresh,
  refresh_create_at,
  refresh_expires_in
FROM ` + p.schema + "oauth_tokens WHERE access = $1"
}

func (p *pgV0) GetTokenInfoByRefresh() string {
	return `SELECT
  client_id,
  user_id,
  redirect_uri,
  scope,
  code,
  code_create_at,
  code_expires_in,
  access,
  access_create_at,
  access_expires_in,
  refresh,
  refresh_create_at,
  refresh_expires_in
FROM ` + p.schema + "oauth_tokens WHERE refresh = $1"
}

func (p *pgV0) CreateCollectionsTable() string {
	return `
CREATE TABLE IF NOT EXISTS ` + p.schema + `collections
(
  id bigserial PRIMARY KEY,
  collection jsonb NOT NULL
);`
}

func (p *pgV0) InsertCollection() string {
	return `INSERT INTO ` + p.schema + `collections (collection) VALUES ($1)`
}

func (p *pgV0) HasCollection() string {
	return `SELECT EXISTS (
  SELECT 1
  FROM ` + p.schema + `collections
  WHERE collection->'id' ? $1
  LIMIT 1
)`
}

func (p *pgV0) CollectionContains() string {
	return `SELECT EXISTS (
  SELECT 1
  FROM ` + p.schema + `collections
  WHERE collection->'id' ? $1 AND collection->'orderedItems' ? $2
  LIMIT 1
)`
}

func (p *pgV0) GetCollection() string {
	return `WITH page AS (
  SELECT
    collection,
    jsonb_path_query_array(
      collection,
      '$.orderedItems[$min to $max]',
      jsonb_build_object(
        'min',
	$2::jsonb,
        'max',
	$3::jsonb)) AS page
    FROM ` + p.schema + `collections
    WHERE collection->'id' ? $1
)
SELECT
  collection ||
    jsonb_build_object(
      'orderedItems',
      page,
      'totalItems',
      jsonb_path_query(page, '$.size()'),
      'type',
      'OrderedCollectionPage')
  FROM page`
}

func (p *pgV0) GetCollectionLastPage() string {
	return `WITH stats AS (
  SELECT
    collection,
    GREATEST(0,
      jsonb_path_query(collection, '$.orderedItems.size()')::numeric - $2) AS startIndex
  FROM ` + p.schema + `collections
  WHERE collection->'id' ? $1
),
page AS (
  SELECT
    collection,
    startIndex,
    jsonb_path_query_array(
      collection,
      '$.orderedItems[$min to last]',
      jsonb_build_object(
        'min',
        startIndex)) AS page
  FROM stats
)
SELECT
  collection ||
    jsonb_build_object(
    'orderedItems',
    page,
    'totalItems',
    jsonb_path_query(page, '$.size()'),
    'type',
    'OrderedCollectionPage') AS collection,
  startIndex
FROM page`
}

func (p *pgV0) GetAllCollection() string {
	return `SELECT collection FROM ` + p.schema + `collections WHERE collection->'id' ? $1`
}

func (p *pgV0) PrependCollectionItem() string {
	return `UPDATE ` + p.schema + `collections
SET collection = collection || jsonb_build_object(
  'orderedItems',
  jsonb_build_array($2::text) || (collection->'orderedItems'),
  'totalItems',
  (COALESCE(collection->>'totalItems','0')::int + 1)::text::jsonb)
WHERE collection->'id' ? $1`
}

func (p *pgV0) DeleteCollectionItem() string {
	return `UPDATE ` + p.schema + `collections
SET collection = jsonb_set(
  collection,
  '{orderedItems}',
  (collection->'orderedItems') - $2) ||
  jsonb_build_object(
  'totalItems',
  (COALESCE(collection->>'totalItems','0')::int - 1)::text::jsonb)
WHERE collection->'id' ? $1`
}

func (p *pgV0) DeleteCollection() string {
	return `DELETE FROM ` + p.schema + `collections WHERE collection->'id' ? $1`
}

func (p *pgV0) CreateFollowersTable() string {
	return `
CREATE TABLE IF NOT EXISTS ` + p.schema + `followers
(
  id bigserial PRIMARY KEY,
  actor_id text NOT NULL,
  followers jsonb NOT NULL
);`
}

func (p *pgV0) CreateIndexIDFollowersTable() string {
	return `CREATE INDEX IF NOT EXISTS followers_id_index ON ` + p.schema + `followers USING GIN ((followers->'id'));`
}

func (p *pgV0) InsertFollowers() string {
	return `INSERT INTO ` + p.schema + `followers (actor_id, followers) VALUES ($1, $2)`
}

func (p *pgV0) FollowersContainsForActor() string {
	return `SELECT EXISTS (
  SELECT 1
  FROM ` + p.schema + `followers
  WHERE actor_id = $1 AND followers->'orderedItems' ? $2
  LIMIT 1
)`
}

func (p *pgV0) FollowersContains() string {
	return `SELECT EXISTS (
  SELECT 1
  FROM ` + p.schema + `followers
  WHERE followers->'id' ? $1 AND followers->'orderedItems' ? $2
  LIMIT 1
)`
}

func (p *pgV0) GetFollowers() string {
	return `WITH page AS (
  SELECT
    followers,
    jsonb_path_query_array(
      followers,
      '$.orderedItems[$min to $max]',
      jsonb_build_object(
        'min',
	$2::jsonb,
        'max',
	$3::jsonb)) AS page
    FROM ` + p.schema + `followers
    WHERE followers->'id' ? $1
)
SELECT
  followers ||
    jsonb_build_object(
      'orderedItems',
      page,
      'totalItems',
      jsonb_path_query(page, '$.size()'),
      'type',
      'OrderedCollectionPage')
  FROM page`
}

func (p *pgV0) GetFollowersLastPage() string {
	return `WITH stats AS (
  SELECT
    followers,
    GREATEST(0,
      jsonb_path_query(followers, '$.orderedItems.size()')::numeric - $2) AS startIndex
  FROM ` + p.schema + `followers
  WHERE followers->'id' ? $1
),
page AS (
  SELECT
    followers,
    startIndex,
    jsonb_path_query_array(
      followers,
      '$.orderedItems[$min to last]',
      jsonb_build_object(
        'min',
        startIndex)) AS page
  FROM stats
)
SELECT
  followers ||
    jsonb_build_object(
    'orderedItems',
    page,
    'totalItems',
    jsonb_path_query(page, '$.size()'),
    'type',
    'OrderedCollectionPage') AS followers,
  startIndex
FROM page`
}

func (p *pgV0) PrependFollowersItem() string {
	return `UPDATE ` + p.schema + `followers
SET followers = followers || jsonb_build_object(
  'orderedItems',
  jsonb_build_array($2::text) || (followers->'orderedItems'),
  'totalItems',
  (COALESCE(followers->>'totalItems','0')::int + 1)::text::jsonb)
WHERE followers->'id' ? $1`
}

func (p *pgV0) DeleteFollowersItem() string {
	return `UPDATE ` + p.schema + `followers
SET followers = jsonb_set(
  followers,
  '{orderedItems}',
  (followers->'orderedItems') - $2) ||
  jsonb_build_object(
  'totalItems',
  (COALESCE(followers->>'totalItems','0')::int - 1)::text::jsonb)
WHERE followers->'id' ? $1`
}

func (p *pgV0) GetAllFollowersForActor() string {
	return `SELECT followers FROM ` + p.schema + `followers WHERE actor_id = $1`
}

func (p *pgV0) CreateFollowingTable() string {
	return `
CREATE TABLE IF NOT EXISTS ` + p.schema + `following
(
  id bigserial PRIMARY KEY,
  actor_id text NOT NULL,
  following jsonb NOT NULL
);`
}

func (p *pgV0) CreateIndexIDFollowingTable() string {
	return `CREATE INDEX IF NOT EXISTS following_id_index ON ` + p.schema + `following USING GIN ((following->'id'));`
}

func (p *pgV0) InsertFollowing() string {
	return `INSERT INTO ` + p.schema + `following (actor_id, following) VALUES ($1, $2)`
}

func (p *pgV0) FollowingContainsForActor() string {
	return `SELECT EXISTS (
  SELECT 1
  FROM ` + p.schema + `following
  WHERE actor_id = $1 AND following->'orderedItems' ? $2
  LIMIT 1
)`
}

func (p *pgV0) FollowingContains() string {
	return `SELECT EXISTS (
  SELECT 1
  FROM ` + p.schema + `following
  WHERE following->'id' ? $1 AND following->'orderedItems' ? $2
  LIMIT 1
)`
}

func (p *pgV0) GetFollowing() string {
	return `WITH page AS (
  SELECT
    following,
    jsonb_path_query_array(
      following,
      '$.orderedItems[$min to $max]',
      jsonb_build_object(
        'min',
	$2::jsonb,
        'max',
	$3::jsonb)) AS page
    FROM ` + p.schema + `following
    WHERE following->'id' ? $1
)
SELECT
  following ||
    jsonb_build_object(
      'orderedItems',
      page,
      'totalItems',
      jsonb_path_query(page, '$.size()'),
      'type',
      'OrderedCollectionPage')
  FROM page`
}

func (p *pgV0) GetFollowingLastPage() string {
	return `WITH stats AS (
  SELECT
    following,
    GREATEST(0,
      jsonb_path_query(following, '$.orderedItems.size()')::numeric - $2) AS startIndex
  FROM ` + p.schema + `following
  WHERE following->'id' ? $1
),
page AS (
  SELECT
    following,
    startIndex,
    jsonb_path_query_array(
      following,
      '$.orderedItems[$min to last]',
      jsonb_build_object(
        'min',
        startIndex)) AS page
  FROM stats
)
SELECT
  following ||
    jsonb_build_object(
    'orderedItems',
    page,
    'totalItems',
    jsonb_path_query(page, '$.size()'),
    'type',
    'OrderedCollectionPage') AS following,
  startIndex
FROM page`
}

func (p *pgV0) PrependFollowingItem() string {
	return `UPDATE ` + p.schema + `following
SET following = following || jsonb_build_object(
  'orderedItems',
  jsonb_build_array($2::text) || (following->'orderedItems'),
  'totalItems',
  (COALESCE(following->>'totalItems','0')::int + 1)::text::jsonb)
WHERE following->'id' ? $1`
}

func (p *pgV0) DeleteFollowingItem() string {
	return `UPDATE ` + p.schema + `following
SET following = jsonb_set(
  following,
  '{orderedItems}',
  (following->'orderedItems') - $2) ||
  jsonb_build_object(
  'totalItems',
  (COALESCE(following->>'totalItems','0')::int - 1)::text::jsonb)
WHERE following->'id' ? $1`
}

func (p *pgV0) GetAllFollowingForActor() string {
	return `SELECT following FROM ` + p.schema + `following WHERE actor_id = $1`
}

func (p *pgV0) CreateLikedTable() string {
	return `
CREATE TABLE IF NOT EXISTS ` + p.schema + `liked
(
  id bigserial PRIMARY KEY,
  actor_id text NOT NULL,
  liked jsonb NOT NULL
);`
}

func (p *pgV0) InsertLiked() string {
	return `INSERT INTO ` + p.schema + `liked (actor_id, liked) VALUES ($1, $2)`
}

func (p *pgV0) LikedContainsForActor() string {
	return `SELECT EXISTS (
  SELECT 1
  FROM ` + p.schema + `liked
  WHERE actor_id = $1 AND liked->'orderedItems' ? $2
  LIMIT 1
)`
}

func (p *pgV0) LikedContains() string {
	return `SELECT EXISTS (
  SELECT 1
  FROM ` + p.schema + `liked
  WHERE liked->'id' ? $1 AND liked->'orderedItems' ? $2
  LIMIT 1
)`
}

func (p *pgV0) GetLiked() string {
	return `WITH page AS (
  SELECT
    liked,
    jsonb_path_query_array(
      liked,
      '$.orderedItems[$min to $max]',
      jsonb_build_object(
        'min',
	$2::jsonb,
        'max',
	$3::jsonb)) AS page
    FROM ` + p.schema + `liked
    WHERE liked->'id' ? $1
)
SELECT
  liked ||
    jsonb_build_object(
      'orderedItems',
      page,
      'totalItems',
      jsonb_path_query(page, '$.size()'),
      'type',
      'OrderedCollectionPage')
  FROM page`
}

func (p *pgV0) GetLikedLastPage() string {
	return `WITH stats AS (
  SELECT
    liked,
    GREATEST(0,
      jsonb_path_query(liked, '$.orderedItems.size()')::numeric - $2) AS startIndex
  FROM ` + p.schema + `liked
  WHERE liked->'id' ? $1
),
page AS (
  SELECT
    liked,
    startIndex,
    jsonb_path_query_array(
      liked,
      '$.orderedItems[$min to last]',
      jsonb_build_object(
        'min',
        startIndex)) AS page
  FROM stats
)
SELECT
  liked ||
    jsonb_build_object(
    'orderedItems',
    page,
    'totalItems',
    jsonb_path_query(page, '$.size()'),
    'type',
    'OrderedCollectionPage') AS liked,
  startIndex
FROM page`
}

func (p *pgV0) PrependLikedItem() string {
	return `UPDATE ` + p.schema + `liked
SET liked = liked || jsonb_build_object(
  'orderedItems',
  jsonb_build_array($2::text) || (liked->'orderedItems'),
  'totalItems',
  (COALESCE(liked->>'totalItems','0')::int + 1)::text::jsonb)
WHERE liked->'id' ? $1`
}

func (p *pgV0) DeleteLikedItem() string {
	return `UPDATE ` + p.schema + `liked
SET liked = jsonb_set(
  liked,
  '{orderedItems}',
  (liked->'orderedItems') - $2) ||
  jsonb_build_object(
  'totalItems',
  (COALESCE(liked->>'totalItems','0')::int - 1)::text::jsonb)
WHERE liked->'id' ? $1`
}

func (p *pgV0) GetAllLikedForActor() string {
	return `SELECT liked FROM ` + p.schema + `liked WHERE actor_id = $1`
}

func (p *pgV0) FedExists() string {
	return `SELECT EXISTS (
  SELECT 1 FROM ` + p.schema + `fed_data WHERE payload->'id' ? $1 LIMIT 1
)`
}

func (p *pgV0) FedGet() string {
	return `SELECT payload FROM ` + p.schema + `fed_data WHERE payload->'id' ? $1`
}

func (p *pgV0) LocalExists() string {
	return `SELECT EXISTS (
  SELECT 1 FROM ` + p.schema + `local_data WHERE payload->'id' ? $1 LIMIT 1
)`
}

func (p *pgV0) LocalGet() string {
	return `SELECT payload FROM ` + p.schema + `local_data WHERE payload->'id' ? $1`
}

func (p *pgV0) CreateIndexIDFedDataTable() string {
	return `CREATE INDEX IF NOT EXISTS fed_data_id_index ON ` + p.schema + `fed_data USING GIN ((payload->'id'));`
}

func (p *pgV0) CreateIndexIDInboxesTable() string {
	return `CREATE INDEX IF NOT EXISTS inboxes_id_index ON ` + p.schema + `inboxes USING GIN ((inbox->'id'));`
}

func (p *pgV0) UpdateUserActor() string {
	return `UPDATE ` + p.schema + `users SET actor = $2 WHERE id = $1`
}

func (p *pgV0) UserByPreferredUsername() string {
	return "SELECT id, email, actor, privileges, preferences FROM " + p.schema + "users WHERE actor->>'preferredUsername' = $1"
}

func (p *pgV0) InstanceUser() string {
	return "SELECT id, email, actor, privileges, preferences FROM " + p.schema + "users WHERE (privileges->>'InstanceActor')::boolean LIMIT 1"
}

func (p *pgV0) UpdateUserPreferences() string {
	return `UPDATE ` + p.schema + `users SET preferences = $2 WHERE id = $1`
}

func (p *pgV0) UpdateUserPrivileges() string {
	return `UPDATE ` + p.schema + `users SET privileges = $2 WHERE id = $1`
}

func (p *pgV0) GetInstanceActorPreferences() string {
	return "SELECT preferences FROM " + p.schema + "users WHERE (privileges->>'InstanceActor')::boolean LIMIT 1"
}

func (p *pgV0) SetInstanceActorPreferences() string {
	return `UPDATE ` + p.schema + `users SET preferences = $1 WHERE (privileges->>'InstanceActor')::boolean`
}

// GetUserActivityStats approximates activity windows with account creation
// times; the schema records no per-request last-seen timestamp.
func (p *pgV0) GetUserActivityStats() string {
	return `SELECT
  COUNT(*),
  COUNT(*) FILTER (WHERE create_time > current_timestamp - interval '6 months'),
  COUNT(*) FILTER (WHERE create_time > current_timestamp - interval '1 month'),
  COUNT(*) FILTER (WHERE create_time > current_timestamp - interval '1 week'),
  (SELECT COUNT(*) FROM ` + p.schema + `local_data WHERE payload->'inReplyTo' IS NULL AND payload->>'type' NOT IN ('Create', 'Update', 'Delete', 'Follow', 'Accept', 'Reject', 'Add', 'Remove', 'Like', 'Announce', 'Undo', 'Block')),
  (SELECT COUNT(*) FROM ` + p.schema + `local_data WHERE payload->'inReplyTo' IS NOT NULL)
FROM ` + p.schema + `users
WHERE (privileges->>'InstanceActor')::boolean IS NOT TRUE`
}

func (p *pgV0) GetPrivateKeyForInstanceActor() string {
	return `SELECT pk.priv_key FROM ` + p.schema + `private_keys AS pk
INNER JOIN ` + p.schema + `users AS u ON pk.user_id = u.id
WHERE (u.privileges->>'InstanceActor')::boolean AND pk.purpose = $1`
}

func (p *pgV0) MarkAbandonedAttempt() string {
	return `UPDATE ` + p.schema + `delivery_attempts SET state = $2 WHERE id = $1`
}

func (p *pgV0) FirstPageRetryableFailures() string {
	return `SELECT id, from_id, deliver_to, payload, n_attempts, last_attempt
FROM ` + p.schema + `delivery_attempts
WHERE state = $1 AND last_attempt < $2
ORDER BY id
LIMIT $3`
}

func (p *pgV0) NextPageRetryableFailures() string {
	return `SELECT id, from_id, deliver_to, payload, n_attempts, last_attempt
FROM ` + p.schema + `delivery_attempts
WHERE state = $1 AND last_attempt < $2 AND id > $4
ORDER BY id
LIMIT $3`
}

func (p *pgV0) CreatePoliciesTable() string {
	return `
CREATE TABLE IF NOT EXISTS ` + p.schema + `policies
(
  id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
  actor_id text NOT NULL,
  purpose text NOT NULL,
  policy jsonb NOT NULL
);`
}

func (p *pgV0) CreatePolicy() string {
	return `INSERT INTO ` + p.schema + `policies (actor_id, purpose, policy) VALUES ($1, $2, $3) RETURNING id`
}

func (p *pgV0) GetPoliciesForActor() string {
	return `SELECT id, purpose, policy FROM ` + p.schema + `policies WHERE actor_id = $1`
}

func (p *pgV0) GetPoliciesForActorAndPurpose() string {
	return `SELECT id, policy FROM ` + p.schema + `policies WHERE actor_id = $1 AND purpose = $2`
}

func (p *pgV0) CreateResolutionsTable() string {
	return `
CREATE TABLE IF NOT EXISTS ` + p.schema + `resolutions
(
  id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
  create_time timestamp with time zone NOT NULL DEFAULT current_timestamp,
  policy_id uuid REFERENCES ` + p.schema + `policies (id) ON DELETE CASCADE NOT NULL,
  data_iri text NOT NULL,
  resolution jsonb NOT NULL
);`
}

func (p *pgV0) CreateResolution() string {
	return `INSERT INTO ` + p.schema + `resolutions (policy_id, data_iri, resolution) VALUES ($1, $2, $3)`
}

func (p *pgV0) CreateFirstPartyCredentialsTable() string {
	return `
CREATE TABLE IF NOT EXISTS ` + p.schema + `first_party_credentials
(
  id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
  user_id uuid REFERENCES ` + p.schema + `users (id) ON DELETE CASCADE NOT NULL,
  token_id uuid REFERENCES ` + p.schema + `oauth_tokens (id) ON DELETE CASCADE NOT NULL,
  expires timestamp with time zone NOT NULL
);`
}

func (p *pgV0) CreateFirstPartyCredential() string {
	return `INSERT INTO ` + p.schema + `first_party_credentials (user_id, token_id, expires) VALUES ($1, $2, $3) RETURNING id`
}

func (p *pgV0) UpdateFirstPartyCredential() string {
	return `UPDATE ` + p.schema + `oauth_tokens
SET (client_id, user_id, redirect_uri, scope, code, code_create_at, code_expires_in, code_challenge, code_challenge_method, access, access_create_at, access_expires_in, refresh, refresh_create_at, refresh_expires_in) =
  ($2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
WHERE id = (SELECT token_id FROM ` + p.schema + `first_party_credentials WHERE id = $1)`
}

func (p *pgV0) UpdateFirstPartyCredentialExpires() string {
	return `UPDATE ` + p.schema + `first_party_credentials SET expires = $2 WHERE id = $1`
}

func (p *pgV0) RemoveFirstPartyCredential() string {
	return `DELETE FROM ` + p.schema + `first_party_credentials WHERE id = $1`
}

func (p *pgV0) RemoveExpiredFirstPartyCredentials() string {
	return `DELETE FROM ` + p.schema + `first_party_credentials WHERE expires < current_timestamp`
}

func (p *pgV0) GetTokenInfoForCredentialID() string {
	return `SELECT
  t.client_id,
  t.user_id,
  t.redirect_uri,
  t.scope,
  t.code,
  t.code_create_at,
  t.code_expires_in,
  t.access,
  t.access_create_at,
  t.access_expires_in,
  t.refresh,
  t.refresh_create_at,
  t.refresh_expires_in
FROM ` + p.schema + `oauth_tokens AS t
INNER JOIN ` + p.schema + `first_party_credentials AS c ON t.id = c.token_id
WHERE c.id = $1`
}
