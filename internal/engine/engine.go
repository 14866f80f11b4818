// Package engine interprets (modal configuration, action context) pairs
// into render plans and drives interaction. It contains no per-action code:
// every flow the clients show is this one interpreter walking a declarative
// document.
package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/cardpilot/cardpilot/internal/actionctx"
	"github.com/cardpilot/cardpilot/internal/diag"
	"github.com/cardpilot/cardpilot/internal/interfaces"
	"github.com/cardpilot/cardpilot/internal/servicecall"
	"github.com/cardpilot/cardpilot/pkg/models"
)

// fallbackMessage is shown when an action resolves to no configuration.
// The substitution is acceptable behavior; shipping it without the paired
// diagnostic is not.
const fallbackMessage = "This action isn't available in this version yet."

// ServiceCaller is the executor contract the engine depends on.
type ServiceCaller interface {
	Execute(ctx context.Context, spec *models.ServiceCallSpec, actx *actionctx.Context) *servicecall.Invocation
}

// Deps is the explicit, constructed dependency set of the engine. Every
// collaborator is an interface; nothing is reached through a global.
type Deps struct {
	Catalog   interfaces.CatalogSource
	Configs   interfaces.ConfigSource
	Executor  ServiceCaller
	Opener    interfaces.URLOpener
	Clipboard interfaces.Clipboard
	Sharer    interfaces.Sharer
	Clock     interfaces.Clock
	Logger    *slog.Logger
	Diag      diag.Sink
}

// Engine is the generic modal engine shared by all client surfaces.
type Engine struct {
	deps Deps
}

// New creates an engine. Clock and Logger fall back to the system clock and
// slog.Default; Diag falls back to a logger-only sink.
func New(deps Deps) *Engine {
	if deps.Clock == nil {
		deps.Clock = interfaces.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Diag == nil {
		deps.Diag = diag.NewLogger("", deps.Logger)
	}
	return &Engine{deps: deps}
}

// Present resolves actionID through the catalog and configuration bundle
// and returns a new modal instance. When no configuration is mapped, the
// instance carries a lightweight fallback notice and exactly one
// unmapped-action diagnostic is recorded; the user's flow is never blocked.
func (e *Engine) Present(actionID string, actx *actionctx.Context) *Instance {
	var cfg *models.ModalConfig
	if def, ok := e.deps.Catalog.Lookup(actionID); ok {
		cfg, _ = e.deps.Configs.Load(def.ModalConfigID)
	}
	if cfg == nil {
		e.deps.Diag.Record(diag.Event{
			Kind:     diag.KindUnmappedAction,
			ActionID: actionID,
			Detail:   "no modal configuration mapped",
		})
		return &Instance{
			id:       uuid.NewString(),
			actionID: actionID,
			engine:   e,
			plan: &models.RenderPlan{
				Fallback: &models.FallbackNotice{ActionID: actionID, Message: fallbackMessage},
			},
		}
	}

	return &Instance{
		id:       uuid.NewString(),
		actionID: actionID,
		engine:   e,
		actx:     actx,
		plan:     e.Resolve(cfg, actx),
	}
}

// Instance is one modal presentation. Each instance owns its state in
// isolation: re-triggering the same action creates a fresh instance, so no
// cross-instance locking is needed.
type Instance struct {
	id       string
	actionID string
	engine   *Engine
	actx     *actionctx.Context

	mu        sync.Mutex
	plan      *models.RenderPlan
	banner    *models.Banner
	indicator string
	dismissed bool
}

// ID returns the unique instance id.
func (in *Instance) ID() string { return in.id }

// ActionID returns the action that triggered this presentation.
func (in *Instance) ActionID() string { return in.actionID }

// Plan returns a copy of the resolved render plan. The copy never aliases
// instance state, so holding it across an asynchronous image load is safe.
func (in *Instance) Plan() *models.RenderPlan {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.plan.Clone()
}

// Banner returns the current service-call banner, or nil.
func (in *Instance) Banner() *models.Banner {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.banner == nil {
		return nil
	}
	b := *in.banner
	return &b
}

// Indicator returns the transient indicator text (e.g. after a copy).
func (in *Instance) Indicator() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.indicator
}

// Dismissed reports whether the instance has been detached.
func (in *Instance) Dismissed() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.dismissed
}

// Dismiss detaches the instance. In-flight service calls are not aborted at
// the transport level; their results are simply never reflected here.
func (in *Instance) Dismiss() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.dismissed = true
}

// MarkImage records an image field's load outcome. A failed load keeps the
// slot with a stable placeholder rather than removing the field.
func (in *Instance) MarkImage(fieldID string, state models.ImageState) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.dismissed {
		return
	}
	for si := range in.plan.Sections {
		fields := in.plan.Sections[si].Fields
		for fi := range fields {
			if fields[fi].ID == fieldID && fields[fi].Type == models.FieldImage {
				fields[fi].ImageState = state
				return
			}
		}
	}
}

// HandleButton dispatches a button press. Dispatch never crashes the host:
// unresolvable context degrades to a no-op with a diagnostic, and service
// call outcomes surface as a banner.
func (in *Instance) HandleButton(ctx context.Context, action models.ButtonAction) {
	e := in.engine
	switch action.Type {
	case models.ActionOpenURL:
		u, ok := in.actx.URL(action.ContextKey)
		if !ok {
			in.noop(action, "url absent")
			return
		}
		if err := e.deps.Opener.OpenURL(u); err != nil {
			e.deps.Logger.Warn("failed to open url",
				slog.String("action_id", in.actionID),
				slog.String("error", err.Error()),
			)
		}

	case models.ActionCopy:
		text, ok := in.actx.String(action.ContextKey)
		if !ok {
			in.noop(action, "value absent")
			return
		}
		if err := e.deps.Clipboard.Copy(text); err != nil {
			e.deps.Logger.Warn("clipboard copy failed",
				slog.String("action_id", in.actionID),
				slog.String("error", err.Error()),
			)
			return
		}
		in.mu.Lock()
		in.indicator = "Copied"
		in.mu.Unlock()

	case models.ActionShare:
		text, ok := in.actx.String(action.ContextKey)
		if !ok {
			if u, uok := in.actx.URL(action.ContextKey); uok {
				text, ok = u.String(), true
			}
		}
		if !ok {
			in.noop(action, "value absent")
			return
		}
		if err := e.deps.Sharer.Share(text); err != nil {
			e.deps.Logger.Warn("share failed",
				slog.String("action_id", in.actionID),
				slog.String("error", err.Error()),
			)
		}

	case models.ActionSubmit:
		if action.ServiceCall == nil {
			in.noop(action, "submit without service call")
			return
		}
		in.submit(ctx, action.ServiceCall)

	case models.ActionDismiss:
		in.Dismiss()
	}
}

// submit runs the service call and reflects its state in the banner. A
// dismissed instance drops the result instead of updating a detached view.
func (in *Instance) submit(ctx context.Context, spec *models.ServiceCallSpec) {
	in.mu.Lock()
	if in.dismissed {
		in.mu.Unlock()
		return
	}
	in.banner = &models.Banner{State: models.BannerLoading, Message: "Working…"}
	in.mu.Unlock()

	inv := in.engine.deps.Executor.Execute(ctx, spec, in.actx)

	in.mu.Lock()
	defer in.mu.Unlock()
	if in.dismissed {
		return
	}
	if err := inv.Err(); err != nil {
		in.engine.deps.Diag.Record(diag.Event{
			Kind:     diag.KindServiceCall,
			ActionID: in.actionID,
			Detail:   err.Error(),
		})
		in.banner = &models.Banner{State: models.BannerError, Message: err.UserMessage()}
		return
	}
	in.banner = &models.Banner{
		State:   models.BannerSuccess,
		Message: "Done",
		Details: inv.Values(),
	}
}

// noop records the diagnostic the original defect lacked: a silent success
// is never acceptable for an unresolvable button.
func (in *Instance) noop(action models.ButtonAction, reason string) {
	in.engine.deps.Diag.Record(diag.Event{
		Kind:     diag.KindContextAbsent,
		ActionID: in.actionID,
		FieldID:  action.ContextKey,
		Detail:   string(action.Type) + ": " + reason,
	})
}
