// Package mocks provides function-field test doubles for the engine's
// collaborator interfaces.
package mocks

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/cardpilot/cardpilot/internal/diag"
	"github.com/cardpilot/cardpilot/pkg/models"
)

// MockTransport records every request and answers with canned responses.
type MockTransport struct {
	mu       sync.Mutex
	DoFunc   func(ctx context.Context, req *models.ServiceRequest) (*models.ServiceResponse, error)
	Requests []*models.ServiceRequest
}

func (m *MockTransport) Do(ctx context.Context, req *models.ServiceRequest) (*models.ServiceResponse, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()
	if m.DoFunc != nil {
		return m.DoFunc(ctx, req)
	}
	return &models.ServiceResponse{StatusCode: 200, Body: []byte(`{}`)}, nil
}

// Invocations returns how many times the transport was contacted.
func (m *MockTransport) Invocations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// MockOpener records opened URLs.
type MockOpener struct {
	OpenURLFunc func(u *url.URL) error
	Opened      []string
}

func (m *MockOpener) OpenURL(u *url.URL) error {
	m.Opened = append(m.Opened, u.String())
	if m.OpenURLFunc != nil {
		return m.OpenURLFunc(u)
	}
	return nil
}

// MockClipboard records copied text.
type MockClipboard struct {
	CopyFunc func(text string) error
	Copied   []string
}

func (m *MockClipboard) Copy(text string) error {
	m.Copied = append(m.Copied, text)
	if m.CopyFunc != nil {
		return m.CopyFunc(text)
	}
	return nil
}

// MockSharer records shared text.
type MockSharer struct {
	ShareFunc func(text string) error
	Shared    []string
}

func (m *MockSharer) Share(text string) error {
	m.Shared = append(m.Shared, text)
	if m.ShareFunc != nil {
		return m.ShareFunc(text)
	}
	return nil
}

// MockConfigSource serves configurations from an in-memory map.
type MockConfigSource struct {
	Configs map[string]*models.ModalConfig
}

func (m *MockConfigSource) Load(id string) (*models.ModalConfig, bool) {
	cfg, ok := m.Configs[id]
	return cfg, ok
}

func (m *MockConfigSource) IDs() []string {
	ids := make([]string, 0, len(m.Configs))
	for id := range m.Configs {
		ids = append(ids, id)
	}
	return ids
}

// MockCatalogSource serves definitions from an in-memory map.
type MockCatalogSource struct {
	Definitions map[string]*models.ActionDefinition
}

func (m *MockCatalogSource) Lookup(actionID string) (*models.ActionDefinition, bool) {
	def, ok := m.Definitions[actionID]
	return def, ok
}

func (m *MockCatalogSource) AllIDs() []string {
	ids := make([]string, 0, len(m.Definitions))
	for id := range m.Definitions {
		ids = append(ids, id)
	}
	return ids
}

// MockDiagSink collects diagnostic events.
type MockDiagSink struct {
	mu     sync.Mutex
	Events []diag.Event
}

func (m *MockDiagSink) Record(ev diag.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, ev)
}

// ByKind returns the recorded events of one kind.
func (m *MockDiagSink) ByKind(kind string) []diag.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []diag.Event
	for _, ev := range m.Events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// FixedClock always returns the same instant.
type FixedClock struct {
	Time time.Time
}

func (c FixedClock) Now() time.Time { return c.Time }
