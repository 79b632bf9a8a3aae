package observability

import (
	"context"
	"runtime"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/clearskies/obsplan/pkg/catalog"
	"github.com/clearskies/obsplan/pkg/constraints"
)

// Evaluator applies constraint sets across targets and times. The zero value
// is usable: non-strict, one worker per CPU, no per-sample timeout.
type Evaluator struct {
	// Workers bounds the number of cells scored concurrently. Zero or
	// negative means runtime.NumCPU().
	Workers int

	// Strict aborts the whole evaluation on the first failed sample instead
	// of marking the cell unknown.
	Strict bool

	// SampleTimeout bounds each individual score call, guarding against a
	// slow network-backed ephemeris provider. Zero means no timeout.
	SampleTimeout time.Duration
}

// New returns an evaluator with default settings.
func New() *Evaluator { return &Evaluator{} }

func (e *Evaluator) workers() int {
	if e.Workers > 0 {
		return e.Workers
	}
	return runtime.NumCPU()
}

// cellJob identifies one grid cell to score.
type cellJob struct {
	row, col   int
	constraint constraints.Constraint
	target     catalog.Target
	t          time.Time
}

// runCells scores a batch of cells concurrently into the given matrix. Write
// positions come from the job indices so completion order never affects
// layout. In strict mode the first failure cancels outstanding work and is
// returned wrapped in *StrictEvaluationAbortedError.
func (e *Evaluator) runCells(ctx context.Context, obs *constraints.Observer, jobs []cellJob, cells [][]Cell) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, e.workers())
	var wg sync.WaitGroup
	var abortOnce sync.Once
	var abortErr error

	for _, job := range jobs {
		wg.Add(1)
		go func(j cellJob) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			score, err := e.scoreCell(ctx, obs, j)
			if err != nil {
				if e.Strict {
					abortOnce.Do(func() {
						abortErr = &StrictEvaluationAbortedError{Err: err}
						cancel()
					})
					return
				}
				cells[j.row][j.col] = Cell{Score: 0, Known: false}
				return
			}
			cells[j.row][j.col] = Cell{Score: score, Known: true}
		}(job)
	}

	wg.Wait()
	if abortErr != nil {
		return abortErr
	}
	return ctx.Err()
}

func (e *Evaluator) scoreCell(ctx context.Context, obs *constraints.Observer, j cellJob) (float64, error) {
	if e.SampleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.SampleTimeout)
		defer cancel()
	}
	return j.constraint.Score(ctx, obs, j.target, j.t)
}

// Grid evaluates every constraint at every time for one target. Rows follow
// the constraint input order, columns the time input order.
func (e *Evaluator) Grid(ctx context.Context, cs []constraints.Constraint, obs *constraints.Observer, target catalog.Target, times []time.Time) (*ConstraintGrid, error) {
	cells := make([][]Cell, len(cs))
	jobs := make([]cellJob, 0, len(cs)*len(times))
	for i, c := range cs {
		cells[i] = make([]Cell, len(times))
		for j, t := range times {
			jobs = append(jobs, cellJob{row: i, col: j, constraint: c, target: target, t: t})
		}
	}

	if err := e.runCells(ctx, obs, jobs, cells); err != nil {
		return nil, err
	}

	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name()
	}
	return &ConstraintGrid{
		target:          target.Name,
		constraintNames: names,
		times:           append([]time.Time(nil), times...),
		cells:           cells,
	}, nil
}

// TargetGrid evaluates the constraint set for every target and AND-reduces
// across constraints, producing one row per target.
func (e *Evaluator) TargetGrid(ctx context.Context, cs []constraints.Constraint, obs *constraints.Observer, targets []catalog.Target, times []time.Time) (*TargetGrid, error) {
	names := make([]string, len(targets))
	cells := make([][]Cell, len(targets))

	for i, target := range targets {
		names[i] = target.Name
		grid, err := e.Grid(ctx, cs, obs, target, times)
		if err != nil {
			return nil, err
		}

		row := make([]Cell, len(times))
		column := make([]Cell, len(cs))
		for j := range times {
			for k := range cs {
				column[k] = grid.Cell(k, j)
			}
			row[j] = reduceAND(column)
		}
		cells[i] = row
	}

	return &TargetGrid{
		targetNames: names,
		times:       append([]time.Time(nil), times...),
		cells:       cells,
	}, nil
}

// IsObservable reports whether at least one time in the grid satisfies all
// constraints.
func (e *Evaluator) IsObservable(ctx context.Context, cs []constraints.Constraint, obs *constraints.Observer, target catalog.Target, times []time.Time) (bool, error) {
	grid, err := e.TargetGrid(ctx, cs, obs, []catalog.Target{target}, times)
	if err != nil {
		return false, err
	}
	for j := range times {
		if c := grid.Cell(0, j); c.Known && c.Score > 0 {
			return true, nil
		}
	}
	return false, nil
}

// AlwaysObservable reports whether every time in the grid satisfies all
// constraints. Unknown cells count as unsatisfied.
func (e *Evaluator) AlwaysObservable(ctx context.Context, cs []constraints.Constraint, obs *constraints.Observer, target catalog.Target, times []time.Time) (bool, error) {
	grid, err := e.TargetGrid(ctx, cs, obs, []catalog.Target{target}, times)
	if err != nil {
		return false, err
	}
	for j := range times {
		if c := grid.Cell(0, j); !c.Known || c.Score <= 0 {
			return false, nil
		}
	}
	return true, nil
}

// IsEventObservable applies the constraint set independently to each event
// time, returning one verdict per event in input order. This is the
// per-event reduction: a verdict depends only on its own event time, not on
// the rest of the sequence.
func (e *Evaluator) IsEventObservable(ctx context.Context, cs []constraints.Constraint, obs *constraints.Observer, target catalog.Target, eventTimes []time.Time) ([]bool, error) {
	grid, err := e.TargetGrid(ctx, cs, obs, []catalog.Target{target}, eventTimes)
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(eventTimes))
	for j := range eventTimes {
		c := grid.Cell(0, j)
		out[j] = c.Known && c.Score > 0
	}
	return out, nil
}

// FractionOfTimeObservable returns the fraction of grid times at which the
// target satisfies all constraints.
func (e *Evaluator) FractionOfTimeObservable(ctx context.Context, cs []constraints.Constraint, obs *constraints.Observer, target catalog.Target, times []time.Time) (float64, error) {
	grid, err := e.TargetGrid(ctx, cs, obs, []catalog.Target{target}, times)
	if err != nil {
		return 0, err
	}
	indicator := make([]float64, len(times))
	for j := range times {
		if c := grid.Cell(0, j); c.Known && c.Score > 0 {
			indicator[j] = 1
		}
	}
	return stat.Mean(indicator, nil), nil
}
