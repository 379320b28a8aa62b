package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTallyStats_Empty(t *testing.T) {
	assert.Equal(t, Stats{}, TallyStats(nil))
}

func TestTallyStats_Mixed(t *testing.T) {
	rows := []StatusCount{
		{Status: StatusActive, Featured: false, Count: 2},
		{Status: StatusActive, Featured: true, Count: 1},
		{Status: StatusPending, Featured: false, Count: 1},
		{Status: StatusSuspended, Featured: false, Count: 1},
	}

	stats := TallyStats(rows)

	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, int64(3), stats.Active)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(1), stats.Suspended)
	assert.Equal(t, int64(1), stats.Featured)
	assert.Zero(t, stats.Draft)
	assert.Zero(t, stats.Rejected)
}
