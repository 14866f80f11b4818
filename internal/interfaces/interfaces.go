package interfaces

import (
	"context"
	"net/url"
	"time"

	"github.com/cardpilot/cardpilot/pkg/models"
)

// ConfigSource resolves modal configurations by id.
type ConfigSource interface {
	// Load returns the configuration registered under id, if any.
	Load(id string) (*models.ModalConfig, bool)
	// IDs returns all registered configuration ids.
	IDs() []string
}

// CatalogSource resolves published action definitions.
type CatalogSource interface {
	// Lookup returns the definition for an action id, if cataloged.
	Lookup(actionID string) (*models.ActionDefinition, bool)
	// AllIDs returns every cataloged action id, sorted.
	AllIDs() []string
}

// Transport performs the network half of a service call. Timeouts are the
// transport's responsibility; the executor treats a timeout like any other
// transport failure.
type Transport interface {
	Do(ctx context.Context, req *models.ServiceRequest) (*models.ServiceResponse, error)
}

// URLOpener hands a resolved URL to the platform.
type URLOpener interface {
	OpenURL(u *url.URL) error
}

// Clipboard copies text on the host platform.
type Clipboard interface {
	Copy(text string) error
}

// Sharer invokes the platform share surface.
type Sharer interface {
	Share(text string) error
}

// Clock supplies the current time, substitutable in tests so relative date
// formatting stays deterministic.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

// Now returns the wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }
