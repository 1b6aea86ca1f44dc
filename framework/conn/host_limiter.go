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
	"golang.org/x/time/rate"
)

// hostLimiter hands out one rate.Limiter per remote host, so a burst of
// deliveries to a single busy peer cannot monopolize outbound traffic nor
// hammer that peer. Limiters for hosts not contacted recently are pruned on
// a background goroutine.
type hostLimiter struct {
	// Immutable
	limit       rate.Limit
	burst       int
	prunePeriod time.Duration
	pruneAge    time.Duration
	wg          sync.WaitGroup
	// Mutable, guarded by pMu
	pruneTicker *time.Ticker
	pruneCtx    context.Context
	pruneCancel context.CancelFunc
	pMu         sync.Mutex
	// Mutable, guarded by mu
	m  map[string]hostEntry
	mu sync.Mutex
}

type hostEntry struct {
	L        *rate.Limiter
	LastUsed time.Time
}

func newHostLimiter(c *config.Config) *hostLimiter {
	return &hostLimiter{
		limit:       rate.Limit(c.ActivityPubConfig.OutboundRateLimitQPS),
		burst:       c.ActivityPubConfig.OutboundRateLimitBurst,
		prunePeriod: time.Duration(c.ActivityPubConfig.OutboundRateLimitPrunePeriodSeconds) * time.Second,
		pruneAge:    time.Duration(c.ActivityPubConfig.OutboundRateLimitPruneAgeSeconds) * time.Second,
		m:           make(map[string]hostEntry),
	}
}

func (h *hostLimiter) Start() {
	h.mu.Lock()
	h.m = make(map[string]hostEntry)
	h.mu.Unlock()
	h.goPrune()
}

func (h *hostLimiter) Stop() {
	h.pMu.Lock()
	defer h.pMu.Unlock()
	if h.pruneCancel == nil {
		return
	}
	h.pruneCancel()
	h.wg.Wait()
}

// Get returns the limiter for host, creating one on first contact.
func (h *hostLimiter) Get(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.m[host]
	if !ok {
		e = hostEntry{L: rate.NewLimiter(h.limit, h.burst)}
	}
	e.LastUsed = time.Now()
	h.m[host] = e
	return e.L
}

func (h *hostLimiter) goPrune() {
	h.pMu.Lock()
	defer h.pMu.Unlock()
	if h.pruneTicker != nil {
		return
	}
	h.pruneTicker = time.NewTicker(h.prunePeriod)
	h.pruneCtx, h.pruneCancel = context.WithCancel(context.Background())
	h.wg.Add(1)
	go func() {
		defer func() {
			h.pMu.Lock()
			defer h.pMu.Unlock()
			h.pruneTicker.Stop()
			h.pruneTicker = nil
			h.pruneCtx = nil
			h.pruneCancel = nil
			h.wg.Done()
		}()
		for {
			select {
			case <-h.pruneTicker.C:
				h.prune()
			case <-h.pruneCtx.Done():
				return
			}
		}
	}()
}

func (h *hostLimiter) prune() {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := time.Now()
	for k, v := range h.m {
		if now.Sub(v.LastUsed) > h.pruneAge {
			delete(h.m, k)
		}
	}
}
