// Package fightstate implements the mutable per-fight state the engine
// replays events against: auras, threat tables, liveness, positions, and
// resolved actor identities.
package fightstate

import (
	"sync"

	"github.com/tstirrat/wow-threat-sub000/internal/threat"
	"github.com/tstirrat/wow-threat-sub000/internal/threatconfig"
	"go.uber.org/zap"
)

// ThreatKey identifies one (source, enemy) threat-table row. The source is
// keyed by actor id alone; the enemy additionally disambiguates by instance.
type ThreatKey struct {
	SourceID      int64
	EnemyID       int64
	EnemyInstance int
}

// Position is a last-known (x, y) coordinate pair.
type Position struct {
	X, Y float64
}

// FightState is the mutable state owned exclusively by one fight run: not
// safe for concurrent use, but safe to run many in parallel as long as each
// owns its own instance.
type FightState struct {
	mu sync.RWMutex

	cfg    *threatconfig.Config
	logger *zap.Logger

	friendly map[int64]struct{}

	auras   map[int64]map[int64]struct{} // actorID -> spellIDs
	threat  map[ThreatKey]float64
	alive   map[int64]bool // actorID -> alive; absent == alive (default)
	positions map[int64]Position
	identities map[int64]*threat.Actor
}

// New constructs an empty FightState for one fight run.
func New(cfg *threatconfig.Config, friendlyActorIDs map[int64]struct{}, logger *zap.Logger) *FightState {
	if logger == nil {
		logger = zap.NewNop()
	}
	friendly := make(map[int64]struct{}, len(friendlyActorIDs))
	for id := range friendlyActorIDs {
		friendly[id] = struct{}{}
	}
	return &FightState{
		cfg:        cfg,
		logger:     logger,
		friendly:   friendly,
		auras:      make(map[int64]map[int64]struct{}),
		threat:     make(map[ThreatKey]float64),
		alive:      make(map[int64]bool),
		positions:  make(map[int64]Position),
		identities: make(map[int64]*threat.Actor),
	}
}

// SeedIdentity registers actor metadata ahead of the main pass (typically
// from the engine's actorMap input).
func (fs *FightState) SeedIdentity(a *threat.Actor) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.identities[a.Ref.ID] = a
}

// IsFriendly reports whether actorID is in the fight's friendly set.
func (fs *FightState) IsFriendly(actorID int64) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	_, ok := fs.friendly[actorID]
	return ok
}

// --- Auras -----------------------------------------------------------------

// SeedAura adds a starting aura for actorID, used to install processor-
// inferred or explicit initial-aura seeds before the main pass.
func (fs *FightState) SeedAura(actorID, spellID int64) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.addAuraLocked(actorID, spellID)
}

// SetAura idempotently adds spellID to actorID's active aura set, applying
// any exclusive-aura-group eviction declared for the actor's class.
func (fs *FightState) SetAura(actorID, spellID int64) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if group := fs.exclusiveGroupLocked(actorID, spellID); group != nil {
		for _, other := range group {
			if other != spellID {
				fs.removeAuraLocked(actorID, other)
			}
		}
	}
	fs.addAuraLocked(actorID, spellID)
}

// RemoveAura idempotently removes spellID from actorID's active aura set.
func (fs *FightState) RemoveAura(actorID, spellID int64) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.removeAuraLocked(actorID, spellID)
}

// GetAurasForActor returns a snapshot copy of ref's active aura set, keyed
// by actor id (instance is not distinguished for auras).
func (fs *FightState) GetAurasForActor(ref threat.Ref) map[int64]struct{} {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.copyAurasLocked(ref.ID)
}

// AuraSet implements threatconfig.StateView.
func (fs *FightState) AuraSet(ref threat.Ref) map[int64]struct{} {
	return fs.GetAurasForActor(ref)
}

func (fs *FightState) addAuraLocked(actorID, spellID int64) {
	set, ok := fs.auras[actorID]
	if !ok {
		set = make(map[int64]struct{})
		fs.auras[actorID] = set
	}
	set[spellID] = struct{}{}
}

func (fs *FightState) removeAuraLocked(actorID, spellID int64) {
	set, ok := fs.auras[actorID]
	if !ok {
		return
	}
	delete(set, spellID)
}

func (fs *FightState) copyAurasLocked(actorID int64) map[int64]struct{} {
	out := make(map[int64]struct{})
	for id := range fs.auras[actorID] {
		out[id] = struct{}{}
	}
	return out
}

func (fs *FightState) exclusiveGroupLocked(actorID int64, spellID int64) []int64 {
	if fs.cfg == nil {
		return nil
	}
	actor := fs.identities[actorID]
	if actor == nil {
		return nil
	}
	prepared := threatconfig.PrepareThreatConfig(fs.cfg, actor.Class)
	for _, group := range prepared.ExclusiveAuras {
		for _, id := range group {
			if id == spellID {
				return group
			}
		}
	}
	return nil
}

// --- Threat ------------------------------------------------------------

// GetThreat returns the current non-negative threat total for (source, enemy).
func (fs *FightState) GetThreat(source, enemy threat.Ref) float64 {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.threat[ThreatKey{SourceID: source.ID, EnemyID: enemy.ID, EnemyInstance: enemy.Instance}]
}

// AddThreat adds delta to (source, enemy), clamping the result at zero,
// and returns the new, clamped total.
func (fs *FightState) AddThreat(source, enemy threat.Ref, delta float64) float64 {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	key := ThreatKey{SourceID: source.ID, EnemyID: enemy.ID, EnemyInstance: enemy.Instance}
	total := fs.threat[key] + delta
	if total < 0 {
		total = 0
	}
	fs.threat[key] = total
	return total
}

// SetThreat sets (source, enemy) to an absolute value, floored at zero.
func (fs *FightState) SetThreat(source, enemy threat.Ref, value float64) float64 {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if value < 0 {
		value = 0
	}
	key := ThreatKey{SourceID: source.ID, EnemyID: enemy.ID, EnemyInstance: enemy.Instance}
	fs.threat[key] = value
	return value
}

// ClearedThreat describes one previously-non-zero (enemy, amount) row zeroed
// by ClearAllThreatForActor.
type ClearedThreat struct {
	Enemy    threat.Ref
	Previous float64
}

// ClearAllThreatForActor sets actor's threat against every enemy it has a
// nonzero row for to zero, returning the rows that changed. Called when a
// friendly actor dies.
func (fs *FightState) ClearAllThreatForActor(actor threat.Ref) []ClearedThreat {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var cleared []ClearedThreat
	for key, amount := range fs.threat {
		if key.SourceID != actor.ID || amount == 0 {
			continue
		}
		cleared = append(cleared, ClearedThreat{
			Enemy:    threat.Ref{ID: key.EnemyID, Instance: key.EnemyInstance},
			Previous: amount,
		})
		fs.threat[key] = 0
	}
	return cleared
}

// ApplyChange applies one ThreatChange's operator verbatim against the
// threat table and returns the resulting clamped total.
func (fs *FightState) ApplyChange(change threat.ThreatChange) float64 {
	source := threat.Ref{ID: change.SourceID}
	enemy := threat.Ref{ID: change.TargetID, Instance: change.TargetInstance}
	if change.Operator == threat.OpSet {
		return fs.SetThreat(source, enemy, change.Amount)
	}
	return fs.AddThreat(source, enemy, change.Amount)
}

// GetAllActorThreat returns every source actor id's threat against enemy.
func (fs *FightState) GetAllActorThreat(enemy threat.Ref) map[int64]float64 {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	out := make(map[int64]float64)
	for key, amount := range fs.threat {
		if key.EnemyID == enemy.ID && key.EnemyInstance == enemy.Instance {
			out[key.SourceID] = amount
		}
	}
	return out
}

// GetAllEnemyThreatEntries returns every enemy ref actor has a threat row
// against, along with the amount.
func (fs *FightState) GetAllEnemyThreatEntries(actor threat.Ref) map[threat.Ref]float64 {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	out := make(map[threat.Ref]float64)
	for key, amount := range fs.threat {
		if key.SourceID == actor.ID {
			out[threat.Ref{ID: key.EnemyID, Instance: key.EnemyInstance}] = amount
		}
	}
	return out
}

// --- Liveness ------------------------------------------------------------

// IsAlive reports whether ref is currently alive (default true).
func (fs *FightState) IsAlive(ref threat.Ref) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	alive, ok := fs.alive[ref.ID]
	if !ok {
		return true
	}
	return alive
}

func (fs *FightState) setAliveLocked(actorID int64, alive bool) {
	fs.alive[actorID] = alive
}

// --- Positions -------------------------------------------------------------

// GetPosition returns ref's last known coordinates, if any.
func (fs *FightState) GetPosition(ref threat.Ref) (x, y float64, ok bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	pos, ok := fs.positions[ref.ID]
	return pos.X, pos.Y, ok
}

// Position implements threat.ActorQuerier.
func (fs *FightState) Position(ref threat.Ref) (x, y float64, ok bool) {
	return fs.GetPosition(ref)
}

func (fs *FightState) setPositionLocked(actorID int64, x, y float64) {
	fs.positions[actorID] = Position{X: x, Y: y}
}

// --- Identities --------------------------------------------------------

// GetActor returns ref's resolved actor metadata, if known.
func (fs *FightState) GetActor(ref threat.Ref) (*threat.Actor, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	a, ok := fs.identities[ref.ID]
	return a, ok
}

// Auras satisfies threat.ActorQuerier alongside IsAlive.
func (fs *FightState) Auras(ref threat.Ref) map[int64]struct{} { return fs.GetAurasForActor(ref) }
