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

package conn

import (
	"context"
	"sync"
	"time"

	"github.com/hearthgate/fedcore/framework/config"
	"github.com/hearthgate/fedcore/services"
	"github.com/hearthgate/fedcore/util"
)

// retrier periodically walks the delivery_attempts table and re-attempts
// failed federated deliveries, with exponential backoff per attempt and
// abandonment after a configured number of tries. It runs on one background
// goroutine owned by the Controller.
type retrier struct {
	// Immutable
	da               *services.DeliveryAttempts
	pk               *services.PrivateKeys
	tc               *Controller
	pageSize         int
	abandonLimit     int
	retrySleepPeriod time.Duration
	wg               sync.WaitGroup
	// Mutable, guarded by rMu
	retryTimer  *time.Timer
	retryCtx    context.Context
	retryCancel context.CancelFunc
	rMu         sync.Mutex
}

func newRetrier(da *services.DeliveryAttempts, pk *services.PrivateKeys, tc *Controller, c *config.Config) *retrier {
	return &retrier{
		da:               da,
		pk:               pk,
		tc:               tc,
		pageSize:         c.ActivityPubConfig.RetryPageSize,
		abandonLimit:     c.ActivityPubConfig.RetryAbandonLimit,
		retrySleepPeriod: time.Duration(c.ActivityPubConfig.RetrySleepPeriod) * time.Second,
	}
}

// backoff doubles the base sleep period per prior attempt, capped at one
// attempt per day.
func (r *retrier) backoff(n int) time.Duration {
	z := r.retrySleepPeriod
	for i := 0; i < n; i++ {
		z += z
	}
	if z > time.Hour*24 {
		z = time.Hour * 24
	}
	return z
}

func (r *retrier) Start() {
	r.rMu.Lock()
	defer r.rMu.Unlock()
	if r.retryCtx != nil {
		return
	}
	r.retryCtx, r.retryCancel = context.WithCancel(context.Background())
	r.wg.Add(1)
	go r.run()
}

func (r *retrier) Stop() {
	r.rMu.Lock() // WARNING: NO DEFER UNLOCK
	if r.retryCancel == nil {
		r.rMu.Unlock()
		return
	}
	r.retryCancel()
	r.rMu.Unlock()
	r.wg.Wait()
}

func (r *retrier) run() {
	defer func() {
		r.rMu.Lock()
		defer r.rMu.Unlock()
		if !r.retryTimer.Stop() {
			<-r.retryTimer.C
		}
		r.retryTimer = nil
		r.retryCtx = nil
		r.retryCancel = nil
		r.wg.Done()
	}()
	r.retryTimer = time.NewTimer(r.retrySleepPeriod)
	for {
		select {
		case <-r.retryTimer.C:
			r.retry()
			// Reset is only safe on a stopped or expired timer with a
			// drained channel; having just received from C, both hold.
			r.retryTimer.Reset(r.retrySleepPeriod)
		case <-r.retryCtx.Done():
			return
		}
	}
}

// retry pages through the retryable failures and re-attempts each one whose
// backoff window has elapsed. Errors on individual attempts are logged and
// skipped; an error fetching a page ends this round.
func (r *retrier) retry() {
	now := time.Now()
	c := util.Context{Context: r.retryCtx}
	failures, err := r.da.FirstPageRetryableFailures(c, r.pageSize)
	if err != nil {
		util.ErrorLogger.Errorf("retrier failed to obtain first page: %s", err)
		return
	}
	for len(failures) > 0 {
		for _, failure := range failures {
			if now.Sub(failure.LastAttempt) < r.backoff(failure.NAttempts) {
				continue
			}
			r.retryOne(c, failure)
		}
		last := failures[len(failures)-1]
		failures, err = r.da.NextPageRetryableFailures(c, last.ID, last.FetchTime, r.pageSize)
		if err != nil {
			util.ErrorLogger.Errorf("retrier failed to obtain the next page of retriable failures: %s", err)
			return
		}
	}
}

func (r *retrier) retryOne(c util.Context, failure services.RetryableFailure) {
	privKey, pubKeyID, err := r.pk.GetUserHTTPSignatureKey(c, failure.UserID)
	if err != nil {
		util.ErrorLogger.Errorf("retrier failed to obtain user's HTTP Signature key: %s", err)
		return
	}
	tp, err := r.tc.Get(privKey, pubKeyID.String())
	if err != nil {
		util.ErrorLogger.Errorf("retrier failed to obtain a transport for delivery: %s", err)
		return
	}
	if err := tp.Deliver(r.retryCtx, failure.Payload, failure.DeliverTo); err != nil {
		util.ErrorLogger.Errorf("retrier failed in an attempt to retry delivery: %s", err)
		if failure.NAttempts >= r.abandonLimit {
			if err := r.da.MarkAbandonedAttempt(c, failure.ID); err != nil {
				util.ErrorLogger.Errorf("retrier failed to mark attempt as abandoned: %s", err)
			}
		} else if err := r.da.MarkRetryFailureAttempt(c, failure.ID); err != nil {
			util.ErrorLogger.Errorf("retrier failed to mark attempt as failed: %s", err)
		}
		return
	}
	if err := r.da.MarkSuccessfulAttempt(c, failure.ID); err != nil {
		util.ErrorLogger.Errorf("retrier failed to mark attempt as successful: %s", err)
	}
}
