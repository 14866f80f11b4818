// Package servicecall executes backend-bound submit actions. Each
// invocation is a fresh state machine (idle -> loading -> success|error);
// both terminal states stick, and re-triggering always starts a new
// invocation rather than retrying in place.
package servicecall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/cardpilot/cardpilot/internal/actionctx"
	"github.com/cardpilot/cardpilot/internal/interfaces"
	"github.com/cardpilot/cardpilot/pkg/models"
)

// State of one invocation.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateError   State = "error"
)

// Kind classifies service call failures. Each kind renders a distinct,
// user-appropriate message.
type Kind string

const (
	// KindMissingParameter: a required request parameter had no context
	// value. The network is never contacted with known-incomplete data.
	KindMissingParameter Kind = "missing_parameter"
	// KindTransportFailure: the transport collaborator failed or timed out.
	KindTransportFailure Kind = "transport_failure"
	// KindApplicationError: the backend answered with a non-2xx status.
	KindApplicationError Kind = "application_error"
)

// Error is a classified service call failure.
type Error struct {
	Kind    Kind
	Param   string // set for missing_parameter
	Status  int    // set for application_error
	Message string // server-provided message, when present
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMissingParameter:
		return fmt.Sprintf("service call aborted: missing parameter %q", e.Param)
	case KindTransportFailure:
		return fmt.Sprintf("service call transport failure: %v", e.Err)
	case KindApplicationError:
		if e.Message != "" {
			return fmt.Sprintf("service call failed with status %d: %s", e.Status, e.Message)
		}
		return fmt.Sprintf("service call failed with status %d", e.Status)
	}
	return "service call failed"
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

// UserMessage is the text surfaced in the modal banner.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindMissingParameter:
		return "Some required information is missing. Please try again from the original card."
	case KindTransportFailure:
		return "Couldn't reach the server. Check your connection and try again."
	case KindApplicationError:
		if e.Message != "" {
			return e.Message
		}
		return "The request couldn't be completed. Please try again later."
	}
	return "Something went wrong."
}

// Invocation is the result of one execution. It never mutates after the
// executor returns it.
type Invocation struct {
	state  State
	err    *Error
	values map[string]string
}

// State returns the terminal state of the invocation.
func (inv *Invocation) State() State { return inv.state }

// Err returns the classified failure, or nil on success.
func (inv *Invocation) Err() *Error { return inv.err }

// Values returns a copy of the engine-local context extension written from
// the response mapping. It never merges into the originating Action Context.
func (inv *Invocation) Values() map[string]string {
	out := make(map[string]string, len(inv.values))
	for k, v := range inv.values {
		out[k] = v
	}
	return out
}

// Executor performs service calls through an injected transport.
type Executor struct {
	transport interfaces.Transport
	logger    *slog.Logger
}

// New creates an executor. logger may be nil to use slog.Default.
func New(transport interfaces.Transport, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{transport: transport, logger: logger}
}

// Execute resolves the request mapping from actx, performs the call and
// maps the response. The returned invocation is always terminal.
func (x *Executor) Execute(ctx context.Context, spec *models.ServiceCallSpec, actx *actionctx.Context) *Invocation {
	params := make(map[string]string, len(spec.RequestMapping))

	// Stable order so the reported missing parameter is deterministic.
	names := make([]string, 0, len(spec.RequestMapping))
	for name := range spec.RequestMapping {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		key := spec.RequestMapping[name]
		value, ok := resolveParam(actx, key)
		if !ok {
			err := &Error{Kind: KindMissingParameter, Param: name}
			x.logger.Warn("service call aborted before transport",
				slog.String("endpoint", spec.Endpoint),
				slog.String("missing_parameter", name),
			)
			return &Invocation{state: StateError, err: err}
		}
		params[name] = value
	}

	resp, err := x.transport.Do(ctx, &models.ServiceRequest{
		Endpoint: spec.Endpoint,
		Method:   spec.Method,
		Params:   params,
	})
	if err != nil {
		return &Invocation{state: StateError, err: &Error{Kind: KindTransportFailure, Err: err}}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Invocation{state: StateError, err: &Error{
			Kind:    KindApplicationError,
			Status:  resp.StatusCode,
			Message: serverMessage(resp.Body),
		}}
	}

	values, err := mapResponse(spec.ResponseMapping, resp.Body)
	if err != nil {
		// A success status with an undecodable body still succeeded; the
		// extension is simply empty.
		x.logger.Warn("service call response not mappable",
			slog.String("endpoint", spec.Endpoint),
			slog.String("error", err.Error()),
		)
		values = map[string]string{}
	}

	return &Invocation{state: StateSuccess, values: values}
}

// resolveParam reads a context value as a string, falling back to a
// formatted number.
func resolveParam(actx *actionctx.Context, key string) (string, bool) {
	if s, ok := actx.String(key); ok {
		return s, true
	}
	if n, ok := actx.Number(key); ok {
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return "", false
}

// serverMessage extracts a {"message": ...} or {"error": ...} field from an
// error body, when present.
func serverMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Error
}

// mapResponse walks each dotted response path and stringifies the value.
func mapResponse(mapping map[string]string, body []byte) (map[string]string, error) {
	values := make(map[string]string, len(mapping))
	if len(mapping) == 0 {
		return values, nil
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, errors.New("response body is not a JSON object")
	}

	for key, path := range mapping {
		if v, ok := lookupPath(decoded, path); ok {
			values[key] = stringify(v)
		}
	}
	return values, nil
}

// lookupPath resolves a dotted path like "shipment.eta" in a decoded JSON
// object.
func lookupPath(data map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	current := data
	for i, part := range parts {
		if i == len(parts)-1 {
			v, ok := current[part]
			return v, ok
		}
		next, ok := current[part].(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		data, _ := json.Marshal(val)
		return string(data)
	}
}
