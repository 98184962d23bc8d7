package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/newthinker/datahub/internal/app"
	"github.com/newthinker/datahub/internal/config"
	"github.com/newthinker/datahub/internal/core"
	"github.com/newthinker/datahub/internal/logger"
	"github.com/newthinker/datahub/internal/unified"
	"go.uber.org/zap"
)

// loadConfig reads the config file (if any) plus the environment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// withApp handles common setup and teardown for one-shot commands.
func withApp(fn func(a *app.App, log *zap.Logger) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(debug || cfg.Log.Development, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer log.Sync()

	a, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	return fn(a, log)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// errUnavailable is returned after an error envelope has been printed so
// the process exits non-zero without a second message.
var errUnavailable = errors.New("data unavailable")

// renderResult prints v, or the envelope carried by err. News envelopes
// are printed as a singleton list.
func renderResult(w io.Writer, v any, err error, asList bool) error {
	if err == nil {
		return printJSON(w, v)
	}
	var env *unified.ErrorEnvelope
	if !errors.As(err, &env) {
		return err
	}
	if asList {
		if perr := printJSON(w, []*unified.ErrorEnvelope{env}); perr != nil {
			return perr
		}
	} else if perr := printJSON(w, env); perr != nil {
		return perr
	}
	return errUnavailable
}

// newsWindow resolves the --start/--end/--days flags. end defaults to now
// and start to end minus days.
func newsWindow(start, end string, days int, now time.Time) (time.Time, time.Time, error) {
	to := now
	if end != "" {
		t, err := time.ParseInLocation(core.DateLayout, end, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date format (expected YYYY-MM-DD): %w", err)
		}
		to = t
	}

	if days <= 0 {
		days = 7
	}
	from := to.AddDate(0, 0, -days)
	if start != "" {
		t, err := time.ParseInLocation(core.DateLayout, start, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date format (expected YYYY-MM-DD): %w", err)
		}
		from = t
	}

	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("start date must not be after end date")
	}
	return from, to, nil
}
