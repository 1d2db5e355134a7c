package interceptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tstirrat/wow-threat-sub000/internal/fightstate"
	"github.com/tstirrat/wow-threat-sub000/internal/threat"
)

// oneShotRedirect emulates a misdirection cast: the next hunter damage
// event is attributed to the tank, then the handler uninstalls itself.
type oneShotRedirect struct {
	tankID int64
	fired  bool
}

func (h *oneShotRedirect) Invoke(event threat.Event, ctx threat.InterceptorContext) threat.InterceptorAction {
	if h.fired || event.Type != threat.EventDamage {
		return threat.InterceptorAction{Kind: threat.ActionPassthrough}
	}
	h.fired = true
	ctx.Uninstall()
	override := h.tankID
	return threat.InterceptorAction{Kind: threat.ActionAugment, ThreatRecipientOverride: &override}
}

type skipper struct{}

func (skipper) Invoke(threat.Event, threat.InterceptorContext) threat.InterceptorAction {
	return threat.InterceptorAction{Kind: threat.ActionSkip}
}

func TestTrackerRunsMergesAugmentAndUninstalls(t *testing.T) {
	fs := fightstate.New(nil, map[int64]struct{}{1: {}, 2: {}}, nil)
	tr := New(nil)
	tr.Install(1000, &oneShotRedirect{tankID: 2})
	require.Equal(t, 1, tr.Len())

	result := tr.Run(threat.Event{Type: threat.EventDamage, SourceID: 1, Timestamp: 1200}, fs)
	assert.False(t, result.Skipped)
	require.NotNil(t, result.RecipientOverride)
	assert.Equal(t, int64(2), *result.RecipientOverride)

	// The handler uninstalled itself; a second damage event is untouched.
	assert.Equal(t, 0, tr.Len())
	result = tr.Run(threat.Event{Type: threat.EventDamage, SourceID: 1, Timestamp: 1300}, fs)
	assert.False(t, result.Skipped)
	assert.Nil(t, result.RecipientOverride)
}

func TestTrackerSkipShortCircuits(t *testing.T) {
	fs := fightstate.New(nil, nil, nil)
	tr := New(nil)
	tr.Install(0, skipper{})

	result := tr.Run(threat.Event{Type: threat.EventDamage}, fs)
	assert.True(t, result.Skipped)
}
