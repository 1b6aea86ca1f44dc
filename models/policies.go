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

package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/hearthgate/fedcore/util"
	"github.com/tidwall/gjson"
)

const (
	FederatedBlockPurpose Purpose = "federated_block"
)

// Purpose names what a policy is consulted for. Only federated blocking
// exists today; the column is free-form so applications can store policies
// for purposes of their own.
type Purpose string

var _ driver.Valuer = Policy{}
var _ sql.Scanner = &Policy{}

// Policy is an administrator-authored rule set evaluated against the raw
// JSON of an activity. Policies are stored as jsonb and evaluated with
// gjson path queries, never by decoding into typed values, so a rule can
// target any property a peer sends, including ones fedcore knows nothing
// about.
type Policy struct {
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	Rules       []*Rule `json:"rules,omitempty"`
}

func (p Policy) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *Policy) Scan(src interface{}) error {
	return unmarshal(src, p)
}

func (p Policy) Validate() error {
	if len(p.Name) == 0 {
		return errors.New("missing name")
	}
	for _, m := range p.Rules {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Resolve evaluates every rule against the activity JSON, recording each
// step in r. The first rule to match decides r.Matched; later rules are
// skipped without being examined. Rule errors are accumulated rather than
// aborting, so one malformed rule cannot mask another's match.
func (p Policy) Resolve(json []byte, r *Resolution) error {
	r.Logf("applying policy %q", p.Name)
	var err error
	for idx, m := range p.Rules {
		r.Logf("resolving rule %d", idx)
		if err2 := m.Resolve(json, r); err2 != nil {
			if err == nil {
				err = err2
			} else {
				err = fmt.Errorf("%w\n%s", err, err2.Error())
			}
		}
	}
	return err
}

// Rule examines the value at one gjson path query and applies a condition
// tree to it.
type Rule struct {
	PathQuery string `json:"pathQuery,omitempty"`
	Cond      *Cond  `json:"cond,omitempty"`
}

func (k Rule) Validate() error {
	if len(k.PathQuery) == 0 {
		return errors.New("missing pathQuery")
	} else if k.Cond == nil {
		return errors.New("missing cond")
	}
	return k.Cond.Validate()
}

func (k Rule) Resolve(json []byte, r *Resolution) (err error) {
	if r.Matched {
		r.Logf("resolution already found match, skipping examining %q", k.PathQuery)
		return
	}
	r.Logf("examining value of %q", k.PathQuery)
	result := gjson.GetBytes(json, k.PathQuery)
	r.Matched, err = k.Cond.Match(result, json, r)
	return
}

// Cond is one node of a rule's condition tree. Exactly one field may be
// set: a combinator (Not, All, Any), the Absent test, or one of the leaf
// comparisons against the examined value.
type Cond struct {
	Not *Cond   `json:"not,omitempty"`
	All []*Cond `json:"all,omitempty"`
	Any []*Cond `json:"any,omitempty"`

	// Absent matches when the examined path does not exist at all.
	Absent bool `json:"absent,omitempty"`

	// EqualsPath compares the examined value against the value at another
	// gjson path of the same activity.
	EqualsPath     string `json:"equalsPath,omitempty"`
	EqualsString   string `json:"equalsString,omitempty"`
	ContainsString string `json:"containsString,omitempty"`
	LenEquals      *int   `json:"lenEquals,omitempty"`
	LenGreater     *int   `json:"lenGreater,omitempty"`
	LenLess        *int   `json:"lenLess,omitempty"`
}

func (u Cond) Validate() error {
	n := 0
	if u.Not != nil {
		n++
	}
	if len(u.All) > 0 {
		n++
	}
	if len(u.Any) > 0 {
		n++
	}
	if u.Absent {
		n++
	}
	if len(u.EqualsPath) > 0 {
		n++
	}
	if len(u.EqualsString) > 0 {
		n++
	}
	if len(u.ContainsString) > 0 {
		n++
	}
	if u.LenEquals != nil {
		n++
	}
	if u.LenGreater != nil {
		n++
	}
	if u.LenLess != nil {
		n++
	}
	if n > 1 {
		return errors.New("cond has >1 field set")
	} else if n == 0 {
		return errors.New("cond has no fields set")
	}
	if u.Not != nil {
		return u.Not.Validate()
	}
	for _, c := range u.All {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	for _, c := range u.Any {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (u Cond) Match(res gjson.Result, json []byte, r *Resolution) (bool, error) {
	switch {
	case u.Not != nil:
		in, err := u.Not.Match(res, json, r)
		if err != nil {
			return false, err
		}
		v := !in
		r.Logf("apply NOT(%v)=>%v", in, v)
		return v, nil
	case len(u.All) > 0:
		v := true
		for _, c := range u.All {
			in, err := c.Match(res, json, r)
			if err != nil {
				return false, err
			}
			v = v && in
		}
		r.Logf("apply ALL(%d children)=>%v", len(u.All), v)
		return v, nil
	case len(u.Any) > 0:
		v := false
		for _, c := range u.Any {
			in, err := c.Match(res, json, r)
			if err != nil {
				return false, err
			}
			v = v || in
		}
		r.Logf("apply ANY(%d children)=>%v", len(u.Any), v)
		return v, nil
	case u.Absent:
		v := !res.Exists()
		r.Logf("apply ABSENT=>%v", v)
		return v, nil
	case len(u.EqualsPath) > 0:
		other := gjson.GetBytes(json, u.EqualsPath)
		v := resultsEqual(res, other)
		r.Logf("apply EQUALS(PATH(%s))=>%v", u.EqualsPath, v)
		return v, nil
	case len(u.EqualsString) > 0:
		v := res.String() == u.EqualsString
		r.Logf("apply EQUALS(%s)=>%v", u.EqualsString, v)
		return v, nil
	case len(u.ContainsString) > 0:
		v := strings.Contains(res.String(), u.ContainsString)
		r.Logf("apply CONTAINS(%s)=>%v", u.ContainsString, v)
		return v, nil
	case u.LenEquals != nil:
		l := resultsLen(res)
		v := l == *u.LenEquals
		r.Logf("apply EQUALS(LEN(), %d)=>%v", *u.LenEquals, v)
		return v, nil
	case u.LenGreater != nil:
		l := resultsLen(res)
		v := l > *u.LenGreater
		r.Logf("apply GREATER(LEN(), %d)=>%v", *u.LenGreater, v)
		return v, nil
	case u.LenLess != nil:
		l := resultsLen(res)
		v := l < *u.LenLess
		r.Logf("apply LESS(LEN(), %d)=>%v", *u.LenLess, v)
		return v, nil
	}
	r.Log("error: Match called with invalid Cond")
	return false, errors.New("Match called with invalid Cond")
}

func resultsEqual(lhs, rhs gjson.Result) bool {
	return reflect.DeepEqual(lhs.Value(), rhs.Value())
}

// resultsLen treats a missing value as length 0, a scalar as length 1, and
// an array as its element count.
func resultsLen(r gjson.Result) int {
	l := 0
	if r.Exists() {
		l = 1
		if r.IsArray() {
			l = len(r.Array())
		}
	}
	return l
}

type CreatePolicy struct {
	ActorID *url.URL
	Purpose Purpose
	Policy  Policy
}

type PolicyAndPurpose struct {
	ID      string
	Purpose Purpose
	Policy  Policy
}

type PolicyAndID struct {
	ID     string
	Policy Policy
}

var _ Model = &Policies{}

// Policies is a Model that provides additional database methods for the
// Policy type.
type Policies struct {
	create                *sql.Stmt
	getForActor           *sql.Stmt
	getForActorAndPurpose *sql.Stmt
}

func (p *Policies) Prepare(db *sql.DB, s SqlDialect) error {
	return prepareStmtPairs(db,
		stmtPairs{
			{&(p.create), s.CreatePolicy()},
			{&(p.getForActor), s.GetPoliciesForActor()},
			{&(p.getForActorAndPurpose), s.GetPoliciesForActorAndPurpose()},
		})
}

func (p *Policies) CreateTable(t *sql.Tx, s SqlDialect) error {
	_, err := t.Exec(s.CreatePoliciesTable())
	return err
}

func (p *Policies) Close() {
	p.create.Close()
	p.getForActor.Close()
	p.getForActorAndPurpose.Close()
}

// Create a new Policy
func (p *Policies) Create(c util.Context, tx *sql.Tx, cp CreatePolicy) (policyID string, err error) {
	var rows *sql.Rows
	rows, err = tx.Stmt(p.create).QueryContext(c,
		cp.ActorID.String(),
		cp.Purpose,
		cp.Policy)
	if err != nil {
		return
	}
	defer rows.Close()
	return policyID, enforceOneRow(rows, "Policies.Create", func(r SingleRow) error {
		return r.Scan(&(policyID))
	})
}

// GetForActor obtains all policies for an Actor.
func (p *Policies) GetForActor(c util.Context, tx *sql.Tx, actorID *url.URL) (po []PolicyAndPurpose, err error) {
	var rows *sql.Rows
	rows, err = tx.Stmt(p.getForActor).QueryContext(c, actorID.String())
	if err != nil {
		return
	}
	defer rows.Close()
	return po, doForRows(rows, "Policies.GetForActor", func(r SingleRow) error {
		var pp PolicyAndPurpose
		if err := r.Scan(&(pp.ID), &(pp.Purpose), &(pp.Policy)); err != nil {
			return err
		}
		po = append(po, pp)
		return nil
	})
}

// GetForActorAndPurpose obtains all policies for an Actor and Purpose.
func (p *Policies) GetForActorAndPurpose(c util.Context, tx *sql.Tx, actorID *url.URL, u Purpose) (po []PolicyAndID, err error) {
	var rows *sql.Rows
	rows, err = tx.Stmt(p.getForActorAndPurpose).QueryContext(c, actorID.String(), u)
	if err != nil {
		return
	}
	defer rows.Close()
	return po, doForRows(rows, "Policies.GetForActorAndPurpose", func(r SingleRow) error {
		var pp PolicyAndID
		if err := r.Scan(&(pp.ID), &(pp.Policy)); err != nil {
			return err
		}
		po = append(po, pp)
		return nil
	})
}
