package threatconfig

import "sync"

// Prepared is the merged, flattened view of a Config for one class: global
// abilities overlaid by the class's abilities (class entries win), plus the
// concatenation of global and class aura modifiers, exclusive-aura groups,
// and state-spell sets.
type Prepared struct {
	BaseThreatFactor float64
	Abilities        map[int64]Formula
	AuraModifiers    []AuraModifier
	ExclusiveAuras   []ExclusiveAuraGroup
	FixateBuffs      map[int64]bool
	AggroLossBuffs   map[int64]bool
	InvulnerabilityBuffs map[int64]bool
}

type preparedCache struct {
	mu    sync.RWMutex
	byCfg map[*Config]map[string]*Prepared
}

var globalCache = &preparedCache{byCfg: make(map[*Config]map[string]*Prepared)}

// PrepareThreatConfig returns the merged view of cfg for the given class,
// building and caching it on first use. The cache is keyed by the Config
// pointer's identity and is safe for concurrent readers: multiple fights in
// a report may prepare the same config from different goroutines.
func PrepareThreatConfig(cfg *Config, class string) *Prepared {
	if cfg == nil {
		return &Prepared{BaseThreatFactor: 1, Abilities: map[int64]Formula{}}
	}

	globalCache.mu.RLock()
	if byClass, ok := globalCache.byCfg[cfg]; ok {
		if p, ok := byClass[class]; ok {
			globalCache.mu.RUnlock()
			return p
		}
	}
	globalCache.mu.RUnlock()

	p := buildPrepared(cfg, class)

	globalCache.mu.Lock()
	byClass, ok := globalCache.byCfg[cfg]
	if !ok {
		byClass = make(map[string]*Prepared)
		globalCache.byCfg[cfg] = byClass
	}
	byClass[class] = p
	globalCache.mu.Unlock()

	return p
}

// RefreshThreatConfig drops any cached merged views for cfg. Languages with
// weak-reference maps could instead let entries fall out of the cache on
// their own; since Go lacks one, explicit refresh is the eviction path.
func RefreshThreatConfig(cfg *Config) {
	globalCache.mu.Lock()
	delete(globalCache.byCfg, cfg)
	globalCache.mu.Unlock()
}

func buildPrepared(cfg *Config, class string) *Prepared {
	p := &Prepared{
		BaseThreatFactor:     1,
		Abilities:            make(map[int64]Formula, len(cfg.Abilities)),
		FixateBuffs:          mergeBoolSets(cfg.FixateBuffs, nil),
		AggroLossBuffs:       mergeBoolSets(cfg.AggroLossBuffs, nil),
		InvulnerabilityBuffs: mergeBoolSets(cfg.InvulnerabilityBuffs, nil),
	}

	for id, f := range cfg.Abilities {
		p.Abilities[id] = f
	}
	p.AuraModifiers = append(p.AuraModifiers, cfg.AuraModifiers...)

	cc, ok := cfg.Classes[class]
	if !ok {
		return p
	}

	if cc.BaseThreatFactor != 0 {
		p.BaseThreatFactor = cc.BaseThreatFactor
	}
	for id, f := range cc.Abilities {
		p.Abilities[id] = f // class entries take precedence
	}
	p.AuraModifiers = append(p.AuraModifiers, cc.AuraModifiers...)
	p.ExclusiveAuras = append(p.ExclusiveAuras, cc.ExclusiveAuras...)
	p.FixateBuffs = mergeBoolSets(cfg.FixateBuffs, cc.FixateBuffs)
	p.AggroLossBuffs = mergeBoolSets(cfg.AggroLossBuffs, cc.AggroLossBuffs)
	p.InvulnerabilityBuffs = mergeBoolSets(cfg.InvulnerabilityBuffs, cc.InvulnerabilityBuffs)

	return p
}

func mergeBoolSets(base, overlay map[int64]bool) map[int64]bool {
	out := make(map[int64]bool, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
