// Package transport provides the reference HTTP implementation of the
// service call transport. Host applications substitute their own networking
// stack; the engine only ever sees the interface.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cardpilot/cardpilot/internal/interfaces"
	"github.com/cardpilot/cardpilot/pkg/models"
)

// HTTP resolves opaque endpoints against a base URL and sends parameters as
// a JSON object (or as query parameters for GET).
type HTTP struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTP creates the reference transport with a 30 second timeout; the
// executor surfaces a timeout as a transport failure.
func NewHTTP(baseURL string) *HTTP {
	return &HTTP{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Do performs the request.
func (t *HTTP) Do(ctx context.Context, req *models.ServiceRequest) (*models.ServiceResponse, error) {
	endpoint := t.baseURL + "/" + strings.TrimPrefix(req.Endpoint, "/")

	var httpReq *http.Request
	var err error
	if strings.EqualFold(req.Method, http.MethodGet) {
		query := url.Values{}
		for k, v := range req.Params {
			query.Set(k, v)
		}
		httpReq, err = http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	} else {
		body, merr := json.Marshal(req.Params)
		if merr != nil {
			return nil, fmt.Errorf("failed to encode request parameters: %w", merr)
		}
		httpReq, err = http.NewRequestWithContext(ctx, strings.ToUpper(req.Method), endpoint, bytes.NewReader(body))
		if httpReq != nil {
			httpReq.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &models.ServiceResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

var _ interfaces.Transport = (*HTTP)(nil)
