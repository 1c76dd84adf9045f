package sim

import (
	"context"

	"github.com/san-kum/rickersim/internal/dynamo"
	"github.com/san-kum/rickersim/internal/models"
)

// Series iterates the Ricker update for one parameter set. Value 1 is N0 and
// value t is Update(value t-1). Steps = 1 never calls the update.
func Series(p dynamo.ParamSet) (dynamo.Trajectory, error) {
	if err := p.Validate(); err != nil {
		return dynamo.Trajectory{}, err
	}

	values := make([]float64, p.Steps)
	values[0] = p.N0
	for t := 1; t < p.Steps; t++ {
		values[t] = models.Update(values[t-1], p.R, p.K)
	}

	return dynamo.Trajectory{Params: p, Values: values}, nil
}

type Result struct {
	Trajectory dynamo.Trajectory
	Metrics    map[string]float64
	StepsTaken int
}

// Simulator runs the scalar recurrence and feeds every value to its metrics
// as it is produced. A Simulator is not safe for concurrent use because
// metrics hold state.
type Simulator struct {
	metrics []dynamo.Metric
}

func New(ms ...dynamo.Metric) *Simulator {
	return &Simulator{metrics: ms}
}

func (s *Simulator) Run(ctx context.Context, p dynamo.ParamSet) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	model := models.NewRicker(p.R, p.K)
	values := make([]float64, p.Steps)
	result := &Result{
		Metrics: make(map[string]float64),
	}

	n := p.N0
	for t := 0; t < p.Steps; t++ {
		select {
		case <-ctx.Done():
			result.Trajectory = dynamo.Trajectory{Params: p, Values: values[:t]}
			return result, ctx.Err()
		default:
		}

		if t > 0 {
			n = model.Next(n)
		}
		values[t] = n
		result.StepsTaken++

		for _, m := range s.metrics {
			m.Observe(t+1, n)
		}
	}

	result.Trajectory = dynamo.Trajectory{Params: p, Values: values}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}
