package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyClearListSafe(t *testing.T) {
	assert.NoError(t, VerifyClearListSafe(ClearTables))

	err := VerifyClearListSafe([]string{"teams", "polls"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "polls")

	err = VerifyClearListSafe([]string{"captain_messages"})
	assert.Error(t, err)
}

func TestClearOrderChildrenFirst(t *testing.T) {
	// teams must be cleared before the tables it depends on.
	pos := make(map[string]int, len(ClearTables))
	for i, table := range ClearTables {
		pos[table] = i
	}

	assert.Less(t, pos["players"], pos["teams"])
	assert.Less(t, pos["teams"], pos["series"])
	assert.Less(t, pos["teams"], pos["clubs"])
	assert.Less(t, pos["series"], pos["leagues"])
	assert.Less(t, pos["match_results"], pos["players"])
	assert.Less(t, pos["schedule"], pos["teams"])
}

func TestValidStamp(t *testing.T) {
	assert.NoError(t, validStamp("20260115_031500"))
	assert.Error(t, validStamp("2026; DROP TABLE teams"))
	assert.Error(t, validStamp(""))
}
