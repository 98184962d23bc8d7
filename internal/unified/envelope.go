package unified

import (
	"fmt"
	"strings"

	"github.com/newthinker/datahub/internal/core"
)

// ErrorEnvelope is returned when no candidate produced a result. It names
// every provider that was actually called, in order, and the last failure.
type ErrorEnvelope struct {
	Code       string        `json:"error"`
	Message    string        `json:"message"`
	Symbol     string        `json:"symbol"`
	DataType   core.DataType `json:"data_type"`
	Candidates []string      `json:"candidates"`
	Attempted  []string      `json:"attempted_sources"`
	LastError  string        `json:"last_error,omitempty"`
	LastCode   string        `json:"last_error_code,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`

	cause error
}

func newEnvelope(symbol string, dt core.DataType, candidates, attempted []string, last error) *ErrorEnvelope {
	e := &ErrorEnvelope{
		Code:       core.ErrAllSourcesFailed.Code,
		Symbol:     symbol,
		DataType:   dt,
		Candidates: candidates,
		Attempted:  attempted,
		cause:      last,
	}
	if e.Candidates == nil {
		e.Candidates = []string{}
	}
	if e.Attempted == nil {
		e.Attempted = []string{}
	}
	e.Message = fmt.Sprintf("all data sources failed to provide %s for %s", dt, symbol)
	if len(attempted) > 0 {
		e.Message += " (tried " + strings.Join(attempted, ", ") + ")"
	} else {
		e.Message += " (no source supports this symbol)"
	}
	if last != nil {
		e.LastError = last.Error()
		e.LastCode = core.Code(last)
		e.Suggestion = core.Suggestion(last)
	}
	if e.Suggestion == "" {
		e.Suggestion = "check the symbol and exchange suffix, or configure another data source"
	}
	return e
}

func (e *ErrorEnvelope) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the last provider error.
func (e *ErrorEnvelope) Unwrap() error { return e.cause }

// Is matches core errors with the envelope's code.
func (e *ErrorEnvelope) Is(target error) bool {
	t, ok := target.(*core.Error)
	return ok && t.Code == e.Code
}
