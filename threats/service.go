// Package threats implements the read-only query layer over the
// threat-intel dataset: indicator lookup and search, campaign
// timelines, and the dashboard summary aggregate.
package threats

import (
	"time"

	"go.uber.org/zap"

	"github.com/threatdesk/threatdesk"
	"github.com/threatdesk/threatdesk/sqlite"
)

var _ threatdesk.ThreatService = (*Service)(nil)

// Service runs the queries against the sqlite store. All operations
// are reads; concurrent requests need no coordination beyond the
// store's own reader locking.
type Service struct {
	store *sqlite.SqlStore
	log   *zap.Logger
	now   func() time.Time
}

// NewService constructs the query layer over the given store.
func NewService(log *zap.Logger, store *sqlite.SqlStore) *Service {
	return &Service{
		store: store,
		log:   log,
		now:   time.Now,
	}
}
