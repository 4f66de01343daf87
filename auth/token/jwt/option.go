package jwt

import (
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Clock provides the current time.
type Clock = clockwork.Clock

// AssertionBuilderOption configures an AssertionBuilder.
type AssertionBuilderOption interface {
	applyAssertionBuilder(b *AssertionBuilder)
}

type optionFunc func(b *AssertionBuilder)

func (fn optionFunc) applyAssertionBuilder(b *AssertionBuilder) {
	fn(b)
}

// WithClock sets the clock used for the iat and exp claims.
func WithClock(clock Clock) AssertionBuilderOption {
	return optionFunc(func(b *AssertionBuilder) {
		b.clock = clock
	})
}

// WithLogger sets the logger of the builder.
func WithLogger(logger *zap.Logger) AssertionBuilderOption {
	return optionFunc(func(b *AssertionBuilder) {
		b.logger = logger
	})
}
