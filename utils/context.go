package utils

import (
	"context"
	"time"
)

const DefaultTimeout = time.Minute

// NewContext returns a context suitable for one-shot calls to external
// collaborators that are not tied to a polling interval
func NewContext() (ctx context.Context, cancel func()) {
	return context.WithTimeout(context.TODO(), DefaultTimeout)
}
