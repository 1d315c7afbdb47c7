package httpapi

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"

	"apptrack-engine/internal/config"
	"apptrack-engine/internal/events"
	"apptrack-engine/internal/gateway"
	"apptrack-engine/internal/scrape"
)

type Deps struct {
	DB      *sql.DB
	Gateway *gateway.Gateway
	Hub     *events.Hub

	// Atomic stores
	CfgVal     *atomic.Value // stores config.Config
	MetricsVal *atomic.Value // stores metrics.Summary
	EmailVal   *atomic.Value // stores httpapi.EmailPollStatus

	// EmailMu serializes EmailVal's running-state transitions across the
	// manual run endpoint and the ticker lane.
	EmailMu *sync.Mutex

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Posting autofill (inject for testability)
	FetchPosting func(ctx context.Context, url string) (scrape.Posting, error)

	// Email poll entrypoint (inject for testability)
	RunEmailPoll func(cfg config.Config) (added int, err error)
}
