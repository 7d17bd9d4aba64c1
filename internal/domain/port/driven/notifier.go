package driven

import (
	"context"

	"github.com/ocrfin/prnudge/internal/domain/model"
)

// Notifier delivers exactly one rendered notification per run. Send is called
// even when the report contains zero stale PRs.
type Notifier interface {
	Send(ctx context.Context, report model.Report) error
}
