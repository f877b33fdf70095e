package leveling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfqs/ticket-system/internal/domain"
)

func TestPointsForPriority(t *testing.T) {
	assert.Equal(t, 6, PointsForPriority(domain.TicketPriorityHigh))
	assert.Equal(t, 4, PointsForPriority(domain.TicketPriorityMedium))
	assert.Equal(t, 2, PointsForPriority(domain.TicketPriorityLow))
	assert.Equal(t, 2, PointsForPriority("Urgente"))
	assert.Equal(t, 2, PointsForPriority(""))
}

func TestNewTableValidation(t *testing.T) {
	_, err := NewTable([]int{10, 10})
	assert.Error(t, err)
	_, err = NewTable([]int{20, 10})
	assert.Error(t, err)
	_, err = NewTable([]int{0, 10})
	assert.Error(t, err)

	table, err := NewTable(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Level(10000))
	assert.Equal(t, 1, table.MaxLevel())
}

func TestLevel(t *testing.T) {
	table, err := NewTable([]int{10, 25, 50})
	require.NoError(t, err)

	cases := map[int]int{-5: 1, 0: 1, 9: 1, 10: 2, 24: 2, 25: 3, 49: 3, 50: 4, 5000: 4}
	for experience, level := range cases {
		assert.Equal(t, level, table.Level(experience), "experience %d", experience)
	}

	next, ok := table.NextLevelAt(12)
	assert.True(t, ok)
	assert.Equal(t, 25, next)
	_, ok = table.NextLevelAt(50)
	assert.False(t, ok)
}

func TestLevelIsMonotonic(t *testing.T) {
	table := DefaultTable()
	previous := table.Level(0)
	assert.Equal(t, 1, previous)
	for experience := 1; experience <= 1200; experience++ {
		level := table.Level(experience)
		assert.GreaterOrEqual(t, level, previous, "experience %d", experience)
		previous = level
	}
	assert.Equal(t, table.MaxLevel(), previous)

	for _, experience := range []int{math.MaxInt - 1, math.MaxInt} {
		level := table.Level(experience)
		assert.Equal(t, table.MaxLevel(), level, "experience %d", experience)
		assert.GreaterOrEqual(t, level, previous, "experience %d", experience)
		previous = level
	}
}

func TestRecompute(t *testing.T) {
	table := DefaultTable()
	tickets := []domain.TicketPriority{
		domain.TicketPriorityHigh,
		domain.TicketPriorityHigh,
		domain.TicketPriorityMedium,
		domain.TicketPriorityLow,
	}

	first := table.Recompute(tickets)
	assert.Equal(t, 18, first.TotalExperience)
	assert.Equal(t, 4, first.TicketsSolved)
	assert.Equal(t, table.Level(18), first.Level)

	second := table.Recompute(tickets)
	assert.Equal(t, first, second)

	unknown := table.Recompute([]domain.TicketPriority{"Urgente"})
	baja := table.Recompute([]domain.TicketPriority{domain.TicketPriorityLow})
	assert.Equal(t, baja, unknown)

	empty := table.Recompute(nil)
	assert.Equal(t, Result{Level: 1}, empty)
}

func TestResultDiffers(t *testing.T) {
	result := Result{TotalExperience: 18, TicketsSolved: 4, Level: 1}
	stored := result.Snapshot("eng@sfqs.local")
	assert.False(t, result.Differs(stored))

	stored.Level = 2
	assert.True(t, result.Differs(stored))
	stored = result.Snapshot("eng@sfqs.local")
	stored.TicketsSolved = 3
	assert.True(t, result.Differs(stored))
	stored = result.Snapshot("eng@sfqs.local")
	stored.Experience = 0
	assert.True(t, result.Differs(stored))
}
