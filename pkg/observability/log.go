package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug log lines.
// The CLI registers it when running with --verbose.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks creates log hooks writing to l (log.Default() when nil).
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{Logger: l}
}

// Register installs h as pipeline, store and HTTP hooks.
func (h *LogHooks) Register() {
	SetPipelineHooks(h)
	SetStoreHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnBuildStart(_ context.Context, kind string, rows int) {
	h.Logger.Debug("build start", "kind", kind, "rows", rows)
}

func (h *LogHooks) OnBuildComplete(_ context.Context, kind string, d time.Duration, err error) {
	h.Logger.Debug("build done", "kind", kind, "duration", d, "err", err)
}

func (h *LogHooks) OnRender(_ context.Context, kind string, d time.Duration, err error) {
	h.Logger.Debug("render", "kind", kind, "duration", d, "err", err)
}

func (h *LogHooks) OnExport(_ context.Context, format string, size int, d time.Duration, err error) {
	h.Logger.Debug("export", "format", format, "bytes", size, "duration", d, "err", err)
}

func (h *LogHooks) OnStoreHit(_ context.Context, keyType string) {
	h.Logger.Debug("store hit", "type", keyType)
}

func (h *LogHooks) OnStoreMiss(_ context.Context, keyType string) {
	h.Logger.Debug("store miss", "type", keyType)
}

func (h *LogHooks) OnStoreSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("store set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ StoreHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
