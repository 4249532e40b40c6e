package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRepairStatus(t *testing.T) {
	for _, s := range RepairStatuses {
		assert.True(t, IsRepairStatus(s), s)
	}
	assert.False(t, IsRepairStatus("issued"))
	assert.False(t, IsRepairStatus(""))
}

func TestIsFinalStatus(t *testing.T) {
	assert.True(t, IsFinalStatus(StatusIssued))
	assert.False(t, IsFinalStatus(StatusReady))
}

func TestIsSystemCategory(t *testing.T) {
	assert.True(t, IsSystemCategory(CategoryAdjustment))
	assert.False(t, IsSystemCategory("Оренда"))
}
