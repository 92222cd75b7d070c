package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"leadhunt/internal/config"
	"leadhunt/internal/events"
	"leadhunt/internal/runner"
	"leadhunt/internal/store"
)

// app holds what every subcommand shares.
type app struct {
	dataDir     string
	userCfgPath string
	cfgVal      atomic.Value // stores config.Config

	log     *zap.Logger
	hub     *events.Hub
	history *store.DB
	runner  *runner.Runner

	in *bufio.Reader
}

func bootstrap() (*app, error) {
	// .env is optional; real env vars win over it
	_ = godotenv.Load()

	// Data dir: use env if provided (the desktop shell passes one), else local folder.
	dataDir := os.Getenv("LEADHUNT_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}

	userCfgPath, err := config.EnsureUserConfig(dataDir)
	if err != nil {
		return nil, eris.Wrap(err, "config bootstrap failed")
	}

	a := &app{
		dataDir:     dataDir,
		userCfgPath: userCfgPath,
		hub:         events.NewHub(),
		in:          bufio.NewReader(os.Stdin),
	}

	cfg, err := a.loadCfg()
	if err != nil {
		return nil, err
	}
	cfg, vr := config.NormalizeAndValidate(cfg)
	if !vr.OK() {
		return nil, eris.Errorf("invalid config %s:\n- %s", userCfgPath, strings.Join(vr.Errors, "\n- "))
	}
	a.cfgVal.Store(cfg)

	a.log, err = newLogger(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	for _, w := range vr.Warnings {
		a.log.Debug("[config] " + w)
	}

	dbPath := config.Resolve(dataDir, cfg.History.DBPath)
	a.history, err = store.Open(dbPath)
	if err != nil {
		// history is a convenience; searching still works without it
		a.log.Warn("[store] history unavailable", zap.String("path", dbPath), zap.Error(err))
		a.history = nil
	}

	a.runner = runner.New(runner.Deps{
		Config:  a.cfg,
		DataDir: dataDir,
		History: a.history,
		Hub:     a.hub,
		Log:     a.log,
	})
	return a, nil
}

func (a *app) cfg() config.Config {
	return a.cfgVal.Load().(config.Config)
}

func (a *app) loadCfg() (config.Config, error) {
	return config.Load(a.userCfgPath)
}

func (a *app) close() {
	if a.history != nil {
		_ = a.history.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// prompt reads one trimmed line from stdin. A last line without a newline is
// still returned; io.EOF is reported only once input has run dry.
func (a *app) prompt(label string) (string, error) {
	fmt.Print(label)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Println()
		return "", eris.Wrap(err, "read input")
	}
	return strings.TrimSpace(line), nil
}

func (a *app) absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.DisableStacktrace = true
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
