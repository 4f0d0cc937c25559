package engine

import (
	"fmt"
	"time"

	"github.com/concave-dev/orderpace/internal/config"
)

// Config holds the sizing and timing parameters of the engine.
type Config struct {
	// Concurrency is the number of records of one batch in flight at once.
	Concurrency int `json:"concurrency" mapstructure:"concurrency"`

	// BatchWorkers is the number of batches processed at once.
	BatchWorkers int `json:"batch_workers" mapstructure:"batch_workers"`

	// QueueSize is the number of accepted batches that may wait for a batch
	// worker. Submissions beyond it are refused with QueueFullError.
	QueueSize int `json:"queue_size" mapstructure:"queue_size"`

	// RequestTimeout bounds each call to the store.
	RequestTimeout time.Duration `json:"request_timeout" mapstructure:"request_timeout"`

	// UserAgent is sent with every store request.
	UserAgent string `json:"user_agent" mapstructure:"user_agent"`
}

// DefaultConfig returns the engine defaults: records of a batch are submitted
// one at a time and one batch runs at a time.
func DefaultConfig() Config {
	return Config{
		Concurrency:    config.DefaultConcurrency,
		BatchWorkers:   config.DefaultBatchWorkers,
		QueueSize:      config.DefaultQueueSize,
		RequestTimeout: config.DefaultRequestTimeout,
	}
}

// Validate checks that every sizing parameter is usable.
func (c Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.BatchWorkers < 1 {
		return fmt.Errorf("batch workers must be at least 1, got %d", c.BatchWorkers)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("queue size must be at least 1, got %d", c.QueueSize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %v", c.RequestTimeout)
	}
	return nil
}
