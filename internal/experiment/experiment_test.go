package experiment

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/rickersim/internal/config"
	"github.com/san-kum/rickersim/internal/dynamo"
	"github.com/san-kum/rickersim/internal/sim"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	names := reg.ListGenerators()
	if len(names) != 2 || names[0] != "scalar" || names[1] != "vectorized" {
		t.Errorf("generators = %v", names)
	}

	if _, err := reg.GetGenerator("gpu", sim.NewRunner()); err == nil {
		t.Error("expected error for unknown generator")
	}
	if _, err := reg.Metrics([]string{"energy"}, dynamo.ParamSet{}); err == nil {
		t.Error("expected error for unknown metric")
	}

	runner := sim.NewRunner()
	scalar, _ := reg.GetGenerator("scalar", runner)
	if _, ok := scalar.(MeteredGenerator); !ok {
		t.Error("scalar generator should observe metrics during the run")
	}
	vectorized, _ := reg.GetGenerator("vectorized", runner)
	if _, ok := vectorized.(MeteredGenerator); ok {
		t.Error("vectorized generator has no per-step hook")
	}
}

func TestExperimentRun_MetricsAgreeAcrossGenerators(t *testing.T) {
	ps := []dynamo.ParamSet{
		{R: 1.5, K: 100, N0: 20, Steps: 80},
		{R: 3.0, K: 100, N0: 50, Steps: 80},
		{R: 3.0, K: 100, N0: -1000, Steps: 50},
		{R: 0.5, K: 100, N0: 120, Steps: 1},
	}

	results := make(map[string]*Result)
	for _, name := range []string{"scalar", "vectorized"} {
		cfg := config.DefaultConfig()
		cfg.Generator = name
		cfg.Metrics = []string{"mean", "amplitude", "bounded"}

		exp, err := New(cfg, NewRegistry(), sim.NewRunner(sim.WithWorkers(2)), nil)
		if err != nil {
			t.Fatal(err)
		}
		res, err := exp.Run(context.Background(), ps)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		results[name] = res
	}

	for i := range ps {
		s, v := results["scalar"].Metrics[i], results["vectorized"].Metrics[i]
		if len(s) != 3 || len(v) != 3 {
			t.Fatalf("set %d: metrics %v / %v", i, s, v)
		}
		for name, want := range v {
			if math.Float64bits(s[name]) != math.Float64bits(want) {
				t.Errorf("set %d %s: scalar %v, vectorized %v", i, name, s[name], want)
			}
		}
	}

	diverged := results["scalar"].Metrics[2]
	if !math.IsInf(diverged["mean"], -1) || diverged["bounded"] != 0 {
		t.Errorf("divergent set metrics = %v", diverged)
	}
}

func TestGeneratorsAgree(t *testing.T) {
	reg := NewRegistry()
	runner := sim.NewRunner(sim.WithWorkers(2))
	ps := []dynamo.ParamSet{
		{R: 2.3, K: 100, N0: 1, Steps: 60},
		{R: 3.0, K: 100, N0: 50, Steps: 40},
		{R: 1.2, K: 10, N0: 9, Steps: 60},
	}

	var colls []*dynamo.Collection
	for _, name := range reg.ListGenerators() {
		gen, err := reg.GetGenerator(name, runner)
		if err != nil {
			t.Fatal(err)
		}
		coll, err := gen.Generate(context.Background(), ps)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		colls = append(colls, coll)
	}

	for i := range ps {
		a, b := colls[0].Entries[i].Values, colls[1].Entries[i].Values
		if len(a) != ps[i].Steps || len(b) != ps[i].Steps {
			t.Fatalf("set %d: lengths %d and %d, want %d", i, len(a), len(b), ps[i].Steps)
		}
		for j := range a {
			if a[j] != b[j] {
				t.Fatalf("set %d step %d: scalar %v, vectorized %v", i, j+1, a[j], b[j])
			}
		}
	}
}

func TestPeakBound(t *testing.T) {
	if got := PeakBound(dynamo.ParamSet{R: 0.5, K: 10}); got != 10 {
		t.Errorf("r<=1 bound = %v, want k", got)
	}

	p := dynamo.ParamSet{R: 3, K: 100}
	bound := PeakBound(p)
	// the maximum of n*exp(r(1-n/k)) is at n = k/r
	peak := (p.K / p.R) * math.Exp(p.R*(1-1/p.R))
	if math.Abs(bound-peak) > 1e-9 {
		t.Errorf("bound = %v, want %v", bound, peak)
	}

	if got := PeakBound(dynamo.ParamSet{R: 0.5, K: 100, N0: 120}); got != 120 {
		t.Errorf("start above k: bound = %v, want n0", got)
	}
	if got := PeakBound(dynamo.ParamSet{R: 3, K: 100, N0: 50}); got != bound {
		t.Errorf("start below peak: bound = %v, want %v", got, bound)
	}
}

func TestBoundedMetric_StartAboveCapacity(t *testing.T) {
	reg := NewRegistry()
	for _, p := range []dynamo.ParamSet{
		{R: 0.5, K: 100, N0: 120, Steps: 200},
		{R: 2.5, K: 100, N0: 400, Steps: 200},
	} {
		tr, err := sim.Series(p)
		if err != nil {
			t.Fatal(err)
		}
		ms, err := reg.Metrics([]string{"bounded"}, p)
		if err != nil {
			t.Fatal(err)
		}
		if got := Evaluate(tr, ms)["bounded"]; got != 1 {
			t.Errorf("%s: bounded = %v, want 1", p, got)
		}
	}
}

func TestExperimentRunSingle(t *testing.T) {
	cfg := config.GetPreset("stable")
	cfg.Metrics = []string{"mean", "amplitude", "bounded"}

	exp, err := New(cfg, NewRegistry(), sim.NewRunner(), nil)
	if err != nil {
		t.Fatal(err)
	}

	res, err := exp.RunSingle(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Collection.Len() != 1 {
		t.Fatalf("got %d trajectories, want 1", res.Collection.Len())
	}

	m := res.Metrics[0]
	if m["bounded"] != 1 {
		t.Errorf("stable run bounded = %v, want 1", m["bounded"])
	}
	if m["amplitude"] > 1e-6 {
		t.Errorf("stable run amplitude = %v, want ~0", m["amplitude"])
	}
	if math.Abs(res.Summaries[0].Final-cfg.K) > 1e-6 {
		t.Errorf("final = %v, want %v", res.Summaries[0].Final, cfg.K)
	}
}

func TestExperimentRunGrid(t *testing.T) {
	cfg := config.GetPreset("grid")
	exp, err := New(cfg, NewRegistry(), sim.NewRunner(), nil)
	if err != nil {
		t.Fatal(err)
	}

	res, err := exp.RunGrid(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := cfg.Grid().Size()
	if res.Collection.Len() != want {
		t.Fatalf("got %d trajectories, want %d", res.Collection.Len(), want)
	}
	if len(res.Metrics[0]) != 0 {
		t.Errorf("no metrics configured, got %v", res.Metrics[0])
	}
	for i, tr := range res.Collection.Entries {
		if tr.Len() != cfg.Steps {
			t.Errorf("set %d has %d values", i, tr.Len())
		}
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Generator = "gpu"
	if _, err := New(cfg, NewRegistry(), sim.NewRunner(), nil); err == nil {
		t.Error("expected error")
	}
}
