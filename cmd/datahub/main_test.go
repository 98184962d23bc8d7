package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/newthinker/datahub/internal/core"
	"github.com/newthinker/datahub/internal/unified"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsWindow(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.Local)

	tests := []struct {
		name      string
		start     string
		end       string
		days      int
		wantStart string
		wantEnd   string
		wantErr   bool
	}{
		{"defaults", "", "", 7, "2024-03-03", "2024-03-10", false},
		{"days only", "", "", 2, "2024-03-08", "2024-03-10", false},
		{"zero days uses a week", "", "", 0, "2024-03-03", "2024-03-10", false},
		{"explicit end", "", "2024-03-05", 3, "2024-03-02", "2024-03-05", false},
		{"explicit window", "2024-01-01", "2024-01-31", 7, "2024-01-01", "2024-01-31", false},
		{"bad start", "01/01/2024", "", 7, "", "", true},
		{"bad end", "", "tomorrow", 7, "", "", true},
		{"inverted", "2024-03-09", "2024-03-01", 7, "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, err := newsWindow(tt.start, tt.end, tt.days, now)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, from.Format(core.DateLayout))
			assert.Equal(t, tt.wantEnd, to.Format(core.DateLayout))
		})
	}
}

func TestRenderResult(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var buf bytes.Buffer
		err := renderResult(&buf, []core.Article{{Headline: "h"}}, nil, true)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), `"headline": "h"`)
	})

	t.Run("news envelope is a singleton list", func(t *testing.T) {
		var buf bytes.Buffer
		env := &unified.ErrorEnvelope{Code: "ALL_SOURCES_FAILED", Attempted: []string{"google_news"}}
		err := renderResult(&buf, nil, env, true)
		assert.ErrorIs(t, err, errUnavailable)

		var out []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
		require.Len(t, out, 1)
		assert.Equal(t, "ALL_SOURCES_FAILED", out[0]["error"])
	})

	t.Run("profile envelope is an object", func(t *testing.T) {
		var buf bytes.Buffer
		env := &unified.ErrorEnvelope{Code: "ALL_SOURCES_FAILED"}
		err := renderResult(&buf, nil, fmt.Errorf("lookup: %w", env), false)
		assert.ErrorIs(t, err, errUnavailable)

		var out map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
		assert.Equal(t, "ALL_SOURCES_FAILED", out["error"])
	})

	t.Run("plain error passes through", func(t *testing.T) {
		var buf bytes.Buffer
		boom := errors.New("boom")
		err := renderResult(&buf, nil, boom, true)
		assert.Equal(t, boom, err)
		assert.Empty(t, buf.String())
	})
}

func TestRootCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"news", "profile", "quote", "status", "health", "sources", "compat", "analyze", "serve", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, buf.String(), "DataHub dev")

	// ensure output is plain text, not JSON
	assert.False(t, json.Valid(buf.Bytes()))
}
