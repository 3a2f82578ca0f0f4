// Copyright (C) 2024  OSS-Fuzz-gen Authors.
//
// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.
//
// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License
// for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package ossfuzz

import (
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"
	"shanhu.io/misc/errcode"
)

// DelayFunc decides how long to wait before the next attempt.
type DelayFunc func(err error, attempt int) time.Duration

// defaultRetryDelay waits a random duration between 1 and 2 minutes. The
// operations worth retrying here are expensive remote calls, so the delay
// is coarse.
func defaultRetryDelay(err error, attempt int) time.Duration {
	return time.Duration(float64(time.Minute) * (1 + rand.Float64()))
}

// RetryPolicy retries a fallible operation according to a per-failure
// attempt budget.
//
// Budgets match failures by exact identity: an error that merely wraps a
// budgeted error never inherits its budget, and an unlisted failure gets a
// budget of one attempt, so unexpected failure kinds fail fast instead of
// retrying.
type RetryPolicy struct {
	Budgets map[error]int
	Delay   DelayFunc // nil means defaultRetryDelay

	sleep func(time.Duration) // test hook
}

// Run invokes f until it succeeds or its failure budget is exhausted, and
// returns the last failure annotated with the operation name. Retry state
// is local to a single call.
func (p *RetryPolicy) Run(op string, f func() error) error {
	delay := p.Delay
	if delay == nil {
		delay = defaultRetryDelay
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	attempt := 1
	for {
		err := f()
		if err == nil {
			return nil
		}

		budget := p.budget(err)
		log.WithField("op", op).Errorf(
			"attempt %d/%d failed: %s", attempt, budget, err,
		)
		if attempt >= budget {
			log.WithField("op", op).Errorf(
				"giving up after %d attempts", attempt,
			)
			return errcode.Annotatef(err, "%s (%d attempts)", op, attempt)
		}
		attempt++

		d := delay(err, attempt)
		log.WithField("op", op).Warnf(
			"waiting %s before attempt %d/%d", d, attempt, budget,
		)
		sleep(d)
	}
}

func (p *RetryPolicy) budget(err error) int {
	for kind, n := range p.Budgets {
		if err == kind {
			return n
		}
	}
	return 1
}
