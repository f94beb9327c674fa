package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaguesync/importer/internal/models"
)

// stubStore serves canned players for resolver tests.
type stubStore struct {
	active   map[string]bool
	byScope  []*models.Player
	byName   []*models.Player
	scopeErr error
}

func (s *stubStore) ExistsActive(_ context.Context, externalID string) (bool, error) {
	return s.active[externalID], nil
}

func (s *stubStore) FindByNameScope(_ context.Context, _, _ string, _, _, _ int) ([]*models.Player, error) {
	return s.byScope, s.scopeErr
}

func (s *stubStore) FindByNameAnyLeague(_ context.Context, _ string) ([]*models.Player, error) {
	return s.byName, nil
}

func TestResolutionReportRate(t *testing.T) {
	r := NewResolutionReport()
	assert.Equal(t, 1.0, r.Rate())

	r.record("p1", OutcomeDirect)
	r.record("p2", OutcomeExact)
	r.record("p3", OutcomeUnresolved)
	r.record("p4", OutcomeMultipleHigh)

	assert.Equal(t, 4, r.Total)
	assert.Equal(t, 3, r.Resolved)
	assert.Equal(t, 1, r.Unresolved)
	assert.InDelta(t, 0.75, r.Rate(), 0.0001)
	assert.Equal(t, []string{"p3"}, r.UnresolvedSample)
}

func TestResolutionReportSampleBounded(t *testing.T) {
	r := NewResolutionReport()
	for i := 0; i < unresolvedSampleLimit+10; i++ {
		r.record("px", OutcomeUnresolved)
	}
	assert.Len(t, r.UnresolvedSample, unresolvedSampleLimit)
	assert.Equal(t, unresolvedSampleLimit+10, r.Unresolved)
}

func TestResolveSlotRecordsOneOutcome(t *testing.T) {
	// A slot that walks the full chain down to the cross-league name
	// search must still count as a single attempt.
	res := &PlayerResolver{store: &stubStore{
		byName: []*models.Player{{TenniscoresPlayerID: "nndz-sub-01"}},
	}}
	report := NewResolutionReport()

	resolved, ok, err := res.ResolveSlot(context.Background(), "nndz-stale-01", "Pat Sub", 1, report)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "nndz-sub-01", resolved)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Outcomes[OutcomeCrossLeague])
	assert.Zero(t, report.Unresolved)
}

func TestResolveSlotUnresolvedRecordsOnce(t *testing.T) {
	res := &PlayerResolver{store: &stubStore{}}
	report := NewResolutionReport()

	_, ok, err := res.ResolveSlot(context.Background(), "nndz-gone-01", "Gone Player", 1, report)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Unresolved)
	assert.Equal(t, []string{"nndz-gone-01"}, report.UnresolvedSample)
}

func TestResolveSlotDirectHit(t *testing.T) {
	res := &PlayerResolver{store: &stubStore{active: map[string]bool{"nndz-ok-01": true}}}
	report := NewResolutionReport()

	resolved, ok, err := res.ResolveSlot(context.Background(), "nndz-ok-01", "Still Here", 1, report)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "nndz-ok-01", resolved)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Outcomes[OutcomeDirect])
}

func TestResolveDeterministicFirstOnMultiple(t *testing.T) {
	res := &PlayerResolver{store: &stubStore{
		byScope: []*models.Player{
			{TenniscoresPlayerID: "nndz-a"},
			{TenniscoresPlayerID: "nndz-b"},
		},
	}}
	report := NewResolutionReport()

	resolved, ok, err := res.Resolve(context.Background(), "nndz-stale", "Pat", "Sub", 1, 0, 0, report)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "nndz-a", resolved)
	assert.Equal(t, 1, report.Outcomes[OutcomeMultipleHigh])
}
