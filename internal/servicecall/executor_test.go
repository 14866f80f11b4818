package servicecall

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardpilot/cardpilot/internal/actionctx"
	"github.com/cardpilot/cardpilot/internal/mocks"
	"github.com/cardpilot/cardpilot/pkg/models"
)

func refreshSpec() *models.ServiceCallSpec {
	return &models.ServiceCallSpec{
		Endpoint: "/shipments/refresh",
		Method:   "POST",
		RequestMapping: map[string]string{
			"tracking_number": "trackingNumber",
			"attempts":        "attempts",
		},
		ResponseMapping: map[string]string{
			"eta":    "shipment.eta",
			"status": "shipment.status",
		},
	}
}

func TestExecuteSuccessMapsResponse(t *testing.T) {
	transport := &mocks.MockTransport{
		DoFunc: func(_ context.Context, req *models.ServiceRequest) (*models.ServiceResponse, error) {
			return &models.ServiceResponse{
				StatusCode: 200,
				Body:       []byte(`{"shipment": {"eta": "2025-03-12", "status": "out for delivery"}}`),
			}, nil
		},
	}
	x := New(transport, nil)

	inv := x.Execute(context.Background(), refreshSpec(), actionctx.New(map[string]any{
		"trackingNumber": "1Z999AA10123456784",
		"attempts":       2,
	}, nil))

	require.Equal(t, StateSuccess, inv.State())
	require.Nil(t, inv.Err())
	assert.Equal(t, map[string]string{
		"eta":    "2025-03-12",
		"status": "out for delivery",
	}, inv.Values())

	require.Len(t, transport.Requests, 1)
	req := transport.Requests[0]
	assert.Equal(t, "/shipments/refresh", req.Endpoint)
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "1Z999AA10123456784", req.Params["tracking_number"])
	// Numeric context values are formatted, not dropped.
	assert.Equal(t, "2", req.Params["attempts"])
}

func TestExecuteMissingParameterAbortsBeforeTransport(t *testing.T) {
	transport := &mocks.MockTransport{}
	x := New(transport, nil)

	inv := x.Execute(context.Background(), refreshSpec(), actionctx.New(map[string]any{
		"trackingNumber": "1Z999AA10123456784",
	}, nil))

	require.Equal(t, StateError, inv.State())
	err := inv.Err()
	require.NotNil(t, err)
	assert.Equal(t, KindMissingParameter, err.Kind)
	assert.Equal(t, "attempts", err.Param)
	assert.Contains(t, err.UserMessage(), "required information is missing")
	assert.Equal(t, 0, transport.Invocations())
}

func TestExecuteTransportFailure(t *testing.T) {
	cause := errors.New("connection refused")
	transport := &mocks.MockTransport{
		DoFunc: func(context.Context, *models.ServiceRequest) (*models.ServiceResponse, error) {
			return nil, cause
		},
	}
	x := New(transport, nil)

	inv := x.Execute(context.Background(), refreshSpec(), actionctx.New(map[string]any{
		"trackingNumber": "1Z999AA10123456784",
		"attempts":       1,
	}, nil))

	require.Equal(t, StateError, inv.State())
	err := inv.Err()
	require.NotNil(t, err)
	assert.Equal(t, KindTransportFailure, err.Kind)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.UserMessage(), "Couldn't reach the server")
}

func TestExecuteApplicationError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantUser string
	}{
		{"server message", 422, `{"message": "Shipment already delivered"}`, "Shipment already delivered"},
		{"error envelope", 400, `{"error": "bad tracking number"}`, "bad tracking number"},
		{"opaque body", 500, `<html>oops</html>`, "The request couldn't be completed. Please try again later."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &mocks.MockTransport{
				DoFunc: func(context.Context, *models.ServiceRequest) (*models.ServiceResponse, error) {
					return &models.ServiceResponse{StatusCode: tt.status, Body: []byte(tt.body)}, nil
				},
			}
			x := New(transport, nil)

			inv := x.Execute(context.Background(), refreshSpec(), actionctx.New(map[string]any{
				"trackingNumber": "1Z999AA10123456784",
				"attempts":       1,
			}, nil))

			require.Equal(t, StateError, inv.State())
			err := inv.Err()
			require.NotNil(t, err)
			assert.Equal(t, KindApplicationError, err.Kind)
			assert.Equal(t, tt.status, err.Status)
			assert.Equal(t, tt.wantUser, err.UserMessage())
		})
	}
}

func TestExecuteSuccessWithUndecodableBody(t *testing.T) {
	transport := &mocks.MockTransport{
		DoFunc: func(context.Context, *models.ServiceRequest) (*models.ServiceResponse, error) {
			return &models.ServiceResponse{StatusCode: 204, Body: []byte("")}, nil
		},
	}
	x := New(transport, nil)

	inv := x.Execute(context.Background(), refreshSpec(), actionctx.New(map[string]any{
		"trackingNumber": "1Z999AA10123456784",
		"attempts":       1,
	}, nil))

	require.Equal(t, StateSuccess, inv.State())
	assert.Empty(t, inv.Values())
}

func TestExecuteIgnoresUnresolvableResponsePaths(t *testing.T) {
	transport := &mocks.MockTransport{
		DoFunc: func(context.Context, *models.ServiceRequest) (*models.ServiceResponse, error) {
			return &models.ServiceResponse{
				StatusCode: 200,
				Body:       []byte(`{"shipment": {"eta": "2025-03-12"}}`),
			}, nil
		},
	}
	x := New(transport, nil)

	inv := x.Execute(context.Background(), refreshSpec(), actionctx.New(map[string]any{
		"trackingNumber": "1Z999AA10123456784",
		"attempts":       1,
	}, nil))

	require.Equal(t, StateSuccess, inv.State())
	// shipment.status is missing from the body; only eta is mapped.
	assert.Equal(t, map[string]string{"eta": "2025-03-12"}, inv.Values())
}

func TestInvocationValuesIsACopy(t *testing.T) {
	inv := &Invocation{state: StateSuccess, values: map[string]string{"eta": "soon"}}
	got := inv.Values()
	got["eta"] = "mutated"
	assert.Equal(t, "soon", inv.Values()["eta"])
}
