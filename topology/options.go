// SPDX-License-Identifier: MIT

package topology

import (
	"fmt"
	"log/slog"
)

// DefaultConditionLimit bounds the condition number of a reduced susceptance
// matrix; anything above is reported as singular.
const DefaultConditionLimit = 1e12

// Option configures CalculateParameters.
type Option func(*options)

type options struct {
	autoSlack bool
	condLimit float64
	logger    *slog.Logger
}

func defaultOptions() options {
	return options{condLimit: DefaultConditionLimit, logger: slog.Default()}
}

// WithAutoSlack assigns the highest-degree node as slack of every component
// that has none instead of failing.
func WithAutoSlack() Option {
	return func(o *options) { o.autoSlack = true }
}

// WithConditionLimit overrides DefaultConditionLimit. Panics if limit <= 1.
func WithConditionLimit(limit float64) Option {
	if limit <= 1 {
		panic(fmt.Sprintf("topology: WithConditionLimit(%g): limit must be > 1", limit))
	}
	return func(o *options) { o.condLimit = limit }
}

// WithLogger sets the logger; nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
