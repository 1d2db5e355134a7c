// Package interceptor implements install/run/uninstall of transient
// per-event handlers such as a misdirection redirect.
//
// Grounded on the teacher's effects.ReplacementManager
// (internal/game/effects/replacement_manager.go), adapted from "replace an
// event before it resolves, tracking applied-effect ids to avoid
// double-application" to "run every live handler against every event,
// merging augment/skip actions, with handlers uninstalling themselves
// instead of being consumed by a use-count".
package interceptor

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tstirrat/wow-threat-sub000/internal/fightstate"
	"github.com/tstirrat/wow-threat-sub000/internal/threat"
)

type handle struct {
	id          uuid.UUID
	installedAt int64
	handler     threat.Interceptor
}

// Result is the merged outcome of running every live handler against one
// event.
type Result struct {
	// Skipped reports whether any handler returned skip. The calculator
	// must record the event as augmented with zero threat, formula label
	// "0 (suppressed by effect)", and no changes.
	Skipped bool

	// RecipientOverride, when non-nil, is the actor id threat should be
	// attributed to instead of the event's true source. The last augment
	// action to set an override wins if more than one handler sets it.
	RecipientOverride *int64

	Effects []threat.Effect
}

// Tracker owns every installed interceptor for one fight run; not shared
// across concurrent runs.
type Tracker struct {
	mu      sync.Mutex
	next    int
	handles []*handle
	logger  *zap.Logger
}

// New constructs an empty Tracker.
func New(logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{logger: logger}
}

// Install registers a new handler, live starting with the next Run call.
func (t *Tracker) Install(timestamp int64, h threat.Interceptor) uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := uuid.New()
	t.handles = append(t.handles, &handle{id: id, installedAt: timestamp, handler: h})
	t.logger.Debug("installed interceptor", zap.String("id", id.String()), zap.Int64("installed_at", timestamp))
	return id
}

func (t *Tracker) uninstall(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, h := range t.handles {
		if h.id == id {
			t.handles = append(t.handles[:i], t.handles[i+1:]...)
			t.logger.Debug("uninstalled interceptor", zap.String("id", id.String()))
			return
		}
	}
}

// Run invokes every live handler against event, in install order, merging
// their actions. actors is the FightState's read-only actor query surface;
// setAura/removeAura let a handler edit aura state inline.
func (t *Tracker) Run(event threat.Event, fs *fightstate.FightState) Result {
	t.mu.Lock()
	snapshot := make([]*handle, len(t.handles))
	copy(snapshot, t.handles)
	t.mu.Unlock()

	var result Result
	for _, h := range snapshot {
		id := h.id
		ctx := threat.InterceptorContext{
			Timestamp:   event.Timestamp,
			InstalledAt: h.installedAt,
			Actors:      fs,
			Uninstall:   func() { t.uninstall(id) },
			SetAura:     fs.SetAura,
			RemoveAura:  fs.RemoveAura,
		}
		action := h.handler.Invoke(event, ctx)
		switch action.Kind {
		case threat.ActionSkip:
			result.Skipped = true
		case threat.ActionAugment:
			if action.ThreatRecipientOverride != nil {
				result.RecipientOverride = action.ThreatRecipientOverride
			}
			result.Effects = append(result.Effects, action.Effects...)
		case threat.ActionPassthrough:
		}
	}
	return result
}

// Len reports the number of currently-live handlers, for diagnostics/tests.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.handles)
}
