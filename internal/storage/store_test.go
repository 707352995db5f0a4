package storage

import (
	"encoding/json"
	"testing"

	"github.com/san-kum/fracsim/internal/fracdyn"
)

func sampleTrace() *fracdyn.Trace {
	return &fracdyn.Trace{
		Checkpoints: []fracdyn.Checkpoint{
			{Step: 0, Time: 0, MaxAmp: 0.1, L2Norm: 0.07},
			{Step: 10, Time: 0.001, MaxAmp: 0.09, L2Norm: 0.064},
			{Step: 20, Time: 0.002, MaxAmp: 0.085, L2Norm: 0.06},
		},
		Steps: 20,
		Dt:    0.0001,
		Dx:    1.0 / 64,
	}
}

func TestSaveAndLoad(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	stable := true
	meta := RunMetadata{
		Analysis:   "stability",
		Seed:       42,
		NX:         64,
		Steps:      1000,
		DomainSize: 1.0,
		Params:     fracdyn.DefaultParameters(),
		Stable:     &stable,
	}
	report := map[string]interface{}{"stable": true, "confidence": 1.0}

	runID, err := store.Save(meta, report, sampleTrace())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Fatal("empty run id")
	}

	got, err := store.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.ID != runID {
		t.Errorf("id %q, want %q", got.ID, runID)
	}
	if got.Analysis != "stability" || got.NX != 64 || got.Seed != 42 {
		t.Errorf("metadata lost: %+v", got)
	}
	if got.Stable == nil || !*got.Stable {
		t.Error("stable flag lost")
	}
	if got.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestLoadReport(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	report := map[string]interface{}{"overall_order": 2.05}
	runID, err := store.Save(RunMetadata{Analysis: "convergence"}, report, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := store.LoadReport(runID)
	if err != nil {
		t.Fatalf("load report failed: %v", err)
	}
	var back map[string]interface{}
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if back["overall_order"] != 2.05 {
		t.Errorf("report content lost: %v", back)
	}
}

func TestLoadCheckpoints(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	trace := sampleTrace()
	runID, err := store.Save(RunMetadata{Analysis: "stability"}, nil, trace)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	cps, err := store.LoadCheckpoints(runID)
	if err != nil {
		t.Fatalf("load checkpoints failed: %v", err)
	}
	if len(cps) != len(trace.Checkpoints) {
		t.Fatalf("got %d checkpoints, want %d", len(cps), len(trace.Checkpoints))
	}
	for i, cp := range cps {
		want := trace.Checkpoints[i]
		if cp.Step != want.Step {
			t.Errorf("row %d: step %d, want %d", i, cp.Step, want.Step)
		}
		if cp.MaxAmp != want.MaxAmp || cp.L2Norm != want.L2Norm {
			t.Errorf("row %d: scalars %g/%g, want %g/%g", i, cp.MaxAmp, cp.L2Norm, want.MaxAmp, want.L2Norm)
		}
	}
}

func TestSaveWithoutTrace(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	runID, err := store.Save(RunMetadata{Analysis: "convergence"}, map[string]int{"n": 1}, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := store.LoadCheckpoints(runID); err == nil {
		t.Error("expected error loading checkpoints that were never written")
	}
}

func TestList(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Save(RunMetadata{Analysis: "stability"}, nil, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save(RunMetadata{Analysis: "convergence"}, nil, nil); err != nil {
		t.Fatal(err)
	}

	runs, err := store.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("got %d runs, want 2", len(runs))
	}
}

func TestListEmptyDir(t *testing.T) {
	store := New(t.TempDir() + "/never-created")
	runs, err := store.List()
	if err != nil {
		t.Fatalf("list of missing dir must not fail: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestLoadUnknownRun(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Load("stability_0"); err == nil {
		t.Error("expected error for unknown run id")
	}
}
