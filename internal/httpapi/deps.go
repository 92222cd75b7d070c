package httpapi

import (
	"sync/atomic"

	"go.uber.org/zap"

	"leadhunt/internal/config"
	"leadhunt/internal/events"
	"leadhunt/internal/runner"
	"leadhunt/internal/store"
)

type Deps struct {
	Hub *events.Hub

	// Atomic stores
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	Runs    *runner.Manager
	History *store.DB

	Log *zap.Logger
}
