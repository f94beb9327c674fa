package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		report Report
		want   Verdict
	}{
		{
			name:   "clean run",
			report: Report{PreservationRate: 1, TotalOrphans: 0, InvalidTeams: 0},
			want:   Healthy,
		},
		{
			// 1 of 50 backed-up teams lost and 2 polls orphaned: degraded
			// at a 98% rate.
			name:   "orphans only",
			report: Report{PreservationRate: 0.98, TotalOrphans: 2, InvalidTeams: 0},
			want:   Degraded,
		},
		{
			name:   "invalid teams trump rate",
			report: Report{PreservationRate: 1, TotalOrphans: 0, InvalidTeams: 1},
			want:   Critical,
		},
		{
			name:   "low preservation rate",
			report: Report{PreservationRate: 0.85, TotalOrphans: 0, InvalidTeams: 0},
			want:   Critical,
		},
		{
			name:   "rate at threshold",
			report: Report{PreservationRate: 0.90, TotalOrphans: 0, InvalidTeams: 0},
			want:   Healthy,
		},
		{
			// Repair nulled two polls during restore. The database shows
			// zero orphans afterwards, but the run still lost content.
			name:   "discarded orphans degrade",
			report: Report{PreservationRate: 1, TotalOrphans: 0, DiscardedOrphans: 2},
			want:   Degraded,
		},
		{
			name:   "discarded orphans do not escalate past degraded",
			report: Report{PreservationRate: 0.95, TotalOrphans: 1, DiscardedOrphans: 3},
			want:   Degraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(&tt.report))
		})
	}
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "HEALTHY", Healthy.String())
	assert.Equal(t, "DEGRADED", Degraded.String())
	assert.Equal(t, "CRITICAL", Critical.String())
}
