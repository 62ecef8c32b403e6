// Package notify delivers a finished report to remote destinations.
package notify

import (
	"context"

	"github.com/yingtu35/doombot/internal/report"
)

type Notifier interface {
	Name() string
	Notify(ctx context.Context, rep *report.Report) error
}
