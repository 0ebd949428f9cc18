package scoring

import "github.com/okian/bracketev/pkg/logger"

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithWorkers bounds how many score vectors are computed concurrently.
func WithWorkers(n int) Option {
	return func(c *Calculator) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets a custom logger for the calculator.
func WithLogger(l logger.Logger) Option {
	return func(c *Calculator) {
		if l != nil {
			c.logger = l
		}
	}
}
