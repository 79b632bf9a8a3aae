// Package observability builds constraint-satisfaction grids: for a set of
// constraints, an observer, and a time grid, it scores every
// (constraint, time) or (target, time) cell and assembles the results into
// an immutable grid with a deterministic layout. Cells are independent and
// are computed concurrently; the output layout depends only on input order,
// never on completion order.
package observability

import (
	"fmt"
	"time"
)

// Cell is one grid entry. Known is false when the ephemeris sample for the
// cell could not be computed; such cells carry a zero score.
type Cell struct {
	Score float64 `json:"score"`
	Known bool    `json:"known"`
}

// ConstraintGrid is the per-constraint view for a single target: rows are
// constraints in input order, columns are times in input order. Never
// mutated after construction.
type ConstraintGrid struct {
	target          string
	constraintNames []string
	times           []time.Time
	cells           [][]Cell
}

// TargetName returns the target's display name, the grid's row-axis label
// counterpart.
func (g *ConstraintGrid) TargetName() string { return g.target }

// ConstraintNames returns the row labels in row order.
func (g *ConstraintGrid) ConstraintNames() []string { return g.constraintNames }

// Times returns the column labels in column order.
func (g *ConstraintGrid) Times() []time.Time { return g.times }

// Rows returns the full cell matrix, rows in constraint order.
func (g *ConstraintGrid) Rows() [][]Cell { return g.cells }

// Cell returns the cell for constraint row i at time column j.
func (g *ConstraintGrid) Cell(i, j int) Cell { return g.cells[i][j] }

// TargetGrid is the AND-reduced view across constraints: rows are targets in
// input order, columns are times in input order. A cell scores 1 when every
// constraint scored above zero at that time, and is unknown when any
// underlying sample was unavailable.
type TargetGrid struct {
	targetNames []string
	times       []time.Time
	cells       [][]Cell
}

// TargetNames returns the row labels in row order.
func (g *TargetGrid) TargetNames() []string { return g.targetNames }

// Times returns the column labels in column order.
func (g *TargetGrid) Times() []time.Time { return g.times }

// Rows returns the full cell matrix, rows in target order.
func (g *TargetGrid) Rows() [][]Cell { return g.cells }

// Cell returns the cell for target row i at time column j.
func (g *TargetGrid) Cell(i, j int) Cell { return g.cells[i][j] }

// StrictEvaluationAbortedError reports that strict mode was enabled and a
// sample failed; the evaluation produced no partial grid.
type StrictEvaluationAbortedError struct {
	Err error
}

func (e *StrictEvaluationAbortedError) Error() string {
	return fmt.Sprintf("strict evaluation aborted: %v", e.Err)
}

func (e *StrictEvaluationAbortedError) Unwrap() error { return e.Err }

// reduceAND collapses one constraint-grid column into a combined cell.
func reduceAND(column []Cell) Cell {
	out := Cell{Score: 1, Known: true}
	for _, c := range column {
		if !c.Known {
			out.Known = false
			out.Score = 0
			return out
		}
		if c.Score <= 0 {
			out.Score = 0
		}
	}
	return out
}
