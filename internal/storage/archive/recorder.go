package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/newthinker/datahub/internal/core"
	"go.uber.org/zap"
)

const timestampLayout = "20060102T150405.000000000Z"

// Recorder writes unified results as JSON under
// <data_type>/<symbol>/<provider>/<timestamp>.json.
type Recorder struct {
	store  Storage
	logger *zap.Logger
	now    func() time.Time
}

// NewRecorder wraps store. A nil store yields a Recorder that drops everything.
func NewRecorder(store Storage, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{store: store, logger: logger.Named("archive"), now: time.Now}
}

// Enabled reports whether results are actually stored.
func (r *Recorder) Enabled() bool {
	return r != nil && r.store != nil
}

// Key returns the archive path for one result.
func Key(dt core.DataType, symbol, provider string, at time.Time) string {
	return path.Join(string(dt), safeSegment(symbol), safeSegment(provider), at.UTC().Format(timestampLayout)+".json")
}

func safeSegment(s string) string {
	s = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(strings.TrimSpace(s))
	if s == "" {
		return "_"
	}
	return s
}

// Record stores payload. Failures are logged and swallowed so archiving
// never affects the caller's result.
func (r *Recorder) Record(ctx context.Context, dt core.DataType, symbol, provider string, payload any) {
	if !r.Enabled() {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		r.logger.Warn("encoding archive record failed", zap.String("symbol", symbol), zap.Error(err))
		return
	}
	key := Key(dt, symbol, provider, r.now())
	if err := r.store.Write(ctx, key, data); err != nil {
		r.logger.Warn("archive write failed", zap.String("path", key), zap.Error(err))
		return
	}
	r.logger.Debug("archived result", zap.String("path", key))
}

// Latest returns the newest archived record for a symbol across providers.
func (r *Recorder) Latest(ctx context.Context, dt core.DataType, symbol string) ([]byte, string, error) {
	if !r.Enabled() {
		return nil, "", fmt.Errorf("archive disabled")
	}
	paths, err := r.store.List(ctx, path.Join(string(dt), safeSegment(symbol)))
	if err != nil {
		return nil, "", fmt.Errorf("listing archive: %w", err)
	}
	if len(paths) == 0 {
		return nil, "", core.NewError(core.ErrNoData, "no archived %s for %s", dt, symbol)
	}
	sort.Slice(paths, func(i, j int) bool {
		return path.Base(paths[i]) > path.Base(paths[j])
	})
	data, err := r.store.Read(ctx, paths[0])
	if err != nil {
		return nil, "", fmt.Errorf("reading archive: %w", err)
	}
	return data, paths[0], nil
}
