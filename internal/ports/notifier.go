package ports

import (
	"context"

	"github.com/codeplaymaker/marketplaymaker-sub002/internal/domain"
)

// Notifier presents the risk snapshot to the user. The console
// implementation prints formatted tables.
type Notifier interface {
	Notify(ctx context.Context, snapshot domain.RiskSnapshot) error
}
