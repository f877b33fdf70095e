// Package leveling converts resolved tickets into engineer experience and levels.
package leveling

import (
	"fmt"
	"sort"

	"github.com/sfqs/ticket-system/internal/domain"
)

// PointsForPriority is the experience awarded for one resolved ticket.
// Unrecognized priorities score like Baja.
func PointsForPriority(priority domain.TicketPriority) int {
	switch priority {
	case domain.TicketPriorityHigh:
		return 6
	case domain.TicketPriorityMedium:
		return 4
	case domain.TicketPriorityLow:
		return 2
	default:
		return 2
	}
}

// Table maps experience to a level. Level 1 covers experience below the first
// cutoff; every cutoff reached adds one level.
type Table struct {
	cutoffs []int
}

// NewTable validates that cutoffs are positive and strictly increasing.
func NewTable(cutoffs []int) (*Table, error) {
	for i, cutoff := range cutoffs {
		if cutoff <= 0 {
			return nil, fmt.Errorf("leveling: cutoff %d at index %d must be positive", cutoff, i)
		}
		if i > 0 && cutoff <= cutoffs[i-1] {
			return nil, fmt.Errorf("leveling: cutoff %d at index %d must exceed %d", cutoff, i, cutoffs[i-1])
		}
	}
	return &Table{cutoffs: append([]int(nil), cutoffs...)}, nil
}

// DefaultTable is the table used when no configuration is supplied.
func DefaultTable() *Table {
	table, err := NewTable([]int{20, 50, 100, 175, 275, 400, 550, 750, 1000})
	if err != nil {
		panic(err)
	}
	return table
}

// MaxLevel is the highest reachable level.
func (t *Table) MaxLevel() int {
	return len(t.cutoffs) + 1
}

// Level returns the level for total experience. Negative input is treated as zero.
func (t *Table) Level(experience int) int {
	if experience < 0 {
		experience = 0
	}
	// number of cutoffs <= experience
	reached := sort.Search(len(t.cutoffs), func(i int) bool { return t.cutoffs[i] > experience })
	return reached + 1
}

// NextLevelAt returns the experience needed for the next level, or false at max level.
func (t *Table) NextLevelAt(experience int) (int, bool) {
	level := t.Level(experience)
	if level > len(t.cutoffs) {
		return 0, false
	}
	return t.cutoffs[level-1], true
}

// Result is the derived experience of an engineer.
type Result struct {
	TotalExperience int
	TicketsSolved   int
	Level           int
}

// Recompute derives experience from the priorities of every resolved ticket.
func (t *Table) Recompute(priorities []domain.TicketPriority) Result {
	total := 0
	for _, priority := range priorities {
		total += PointsForPriority(priority)
	}
	return Result{
		TotalExperience: total,
		TicketsSolved:   len(priorities),
		Level:           t.Level(total),
	}
}

// Differs reports whether stored values disagree with the derived result.
func (r Result) Differs(stored domain.EngineerExperience) bool {
	return r.TotalExperience != stored.Experience ||
		r.Level != stored.Level ||
		r.TicketsSolved != stored.TicketsSolved
}

// Snapshot returns the result as a stored experience record for email.
func (r Result) Snapshot(email string) domain.EngineerExperience {
	return domain.EngineerExperience{
		Email:         email,
		Experience:    r.TotalExperience,
		Level:         r.Level,
		TicketsSolved: r.TicketsSolved,
	}
}
