// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// TextGenerator is the chat-completion half of a Provider. *Registry
// satisfies it.
type TextGenerator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// RetryPolicy bounds retries of transient provider failures (see
// IsTransient). Attempts counts the total number of calls; values below 2
// disable retrying.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// Do runs op until it succeeds, returns a non-transient error, the
// attempts are used up, or ctx is done.
func (p RetryPolicy) Do(ctx context.Context, op func(context.Context) error) error {
	attempts := max(p.Attempts, 1)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := p.delay(attempt - 1)
			slog.Warn("retrying provider call", "attempt", attempt, "of", attempts, "wait", delay, "error", err)

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return err
			}
		}

		err = op(ctx)
		if err == nil || !IsTransient(err) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

// delay is exponential backoff with full jitter, floored at a tenth of the
// base delay.
func (p RetryPolicy) delay(retry int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	ceiling := p.MaxDelay
	if ceiling <= 0 {
		ceiling = 30 * time.Second
	}

	exp := float64(base) * math.Pow(2, float64(retry-1))
	if exp > float64(ceiling) {
		exp = float64(ceiling)
	}
	d := time.Duration(rand.Float64() * exp)
	if floor := base / 10; d < floor {
		d = floor
	}
	return d
}

type retryText struct {
	inner  TextGenerator
	policy RetryPolicy
}

// RetryText wraps g so transient failures are retried under policy.
func RetryText(g TextGenerator, policy RetryPolicy) TextGenerator {
	if policy.Attempts < 2 {
		return g
	}
	return &retryText{inner: g, policy: policy}
}

func (r *retryText) Generate(ctx context.Context, req Request) (string, error) {
	var out string
	err := r.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = r.inner.Generate(ctx, req)
		return err
	})
	return out, err
}

type retryImage struct {
	inner  ImageGenerator
	policy RetryPolicy
}

// RetryImage wraps g so transient failures are retried under policy.
func RetryImage(g ImageGenerator, policy RetryPolicy) ImageGenerator {
	if policy.Attempts < 2 {
		return g
	}
	return &retryImage{inner: g, policy: policy}
}

func (r *retryImage) GenerateImage(ctx context.Context, req ImageRequest) (*Image, error) {
	var out *Image
	err := r.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = r.inner.GenerateImage(ctx, req)
		return err
	})
	return out, err
}
