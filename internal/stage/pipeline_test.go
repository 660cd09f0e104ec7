package stage

import (
	"context"
	"errors"
	"testing"

	"github.com/kitbuilder587/docsmith/internal/domain"
)

type stubStage struct {
	name   string
	key    string
	result *domain.StageResult
	err    error
	calls  int
	seen   Context
}

func (s *stubStage) Name() string      { return s.name }
func (s *stubStage) OutputKey() string { return s.key }

func (s *stubStage) Run(ctx context.Context, sc Context) (*domain.StageResult, error) {
	s.calls++
	s.seen = Context{}
	for k, v := range sc {
		s.seen[k] = v
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func TestPipeline_ExecuteThreadsFullContext(t *testing.T) {
	first := &stubStage{
		name:   "first",
		key:    KeyDraft,
		result: &domain.StageResult{Content: "draft text", QualityScore: 0.70},
	}
	second := &stubStage{
		name:   "second",
		key:    KeyCritique,
		result: &domain.StageResult{Content: "critique text", QualityScore: 0.75, Issues: []string{"x"}},
	}

	// политика none не должна резать контекст между этапами
	p := NewPipeline("test", []Stage{first, second}, MemoryNone, nil)

	run, err := p.Execute(context.Background(), Context{KeyRequest: testRequest()})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if _, ok := second.seen[KeyRequest]; !ok {
		t.Error("second stage did not see the request")
	}
	if second.seen[KeyDraft] != "draft text" {
		t.Errorf("second stage saw draft %v, want first stage content", second.seen[KeyDraft])
	}
	if second.seen[KeyScore] != 0.70 {
		t.Errorf("second stage saw score %v, want 0.70", second.seen[KeyScore])
	}

	if run.Context[KeyCritique] != "critique text" {
		t.Errorf("final context critique = %v", run.Context[KeyCritique])
	}
	if run.Context[KeyScore] != 0.75 {
		t.Errorf("final context score = %v, want last stage score", run.Context[KeyScore])
	}
}

func TestPipeline_MemoryAll(t *testing.T) {
	first := &stubStage{name: "first", key: KeyDraft, result: &domain.StageResult{Content: "a", QualityScore: 0.70}}
	second := &stubStage{name: "second", key: KeyCritique, result: &domain.StageResult{Content: "b", QualityScore: 0.75}}

	p := NewPipeline("test", []Stage{first, second}, MemoryAll, nil)

	run, err := p.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(run.Results) != 2 {
		t.Errorf("Results len = %d, want 2", len(run.Results))
	}
	if len(run.Log) != 2 {
		t.Errorf("Log len = %d, want 2", len(run.Log))
	}
	if run.Log[0].Stage != "first" || run.Log[1].Stage != "second" {
		t.Errorf("Log order = %v, %v", run.Log[0].Stage, run.Log[1].Stage)
	}
}

func TestPipeline_MemoryLast(t *testing.T) {
	first := &stubStage{name: "first", key: KeyDraft, result: &domain.StageResult{Content: "a", QualityScore: 0.70}}
	second := &stubStage{name: "second", key: KeyCritique, result: &domain.StageResult{Content: "b", QualityScore: 0.75}}

	p := NewPipeline("test", []Stage{first, second}, MemoryLast, nil)

	run, err := p.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(run.Results) != 1 {
		t.Fatalf("Results len = %d, want 1", len(run.Results))
	}
	if _, ok := run.Results["second"]; !ok {
		t.Error("Results should keep only the most recent stage")
	}
}

func TestPipeline_MemoryNone(t *testing.T) {
	first := &stubStage{name: "first", key: KeyDraft, result: &domain.StageResult{Content: "a", QualityScore: 0.70}}

	p := NewPipeline("test", []Stage{first}, MemoryNone, nil)

	run, err := p.Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if run.Results != nil {
		t.Errorf("Results = %v, want nil under none policy", run.Results)
	}
	if len(run.Completed) != 1 || run.Completed[0] != "first" {
		t.Errorf("Completed = %v, want [first]", run.Completed)
	}
}

func TestPipeline_FailFast(t *testing.T) {
	bad := errors.New("provider exploded")
	first := &stubStage{name: "first", key: KeyDraft, err: bad}
	second := &stubStage{name: "second", key: KeyCritique, result: &domain.StageResult{Content: "b"}}

	p := NewPipeline("test", []Stage{first, second}, MemoryAll, nil)

	run, err := p.Execute(context.Background(), Context{KeyRequest: testRequest()})
	if !errors.Is(err, bad) {
		t.Fatalf("Execute() error = %v, want %v", err, bad)
	}

	if second.calls != 0 {
		t.Error("second stage ran after failure, want fail-fast")
	}
	if run == nil {
		t.Fatal("Execute() should return the partial run alongside the error")
	}
	if len(run.Completed) != 0 {
		t.Errorf("Completed = %v, want empty", run.Completed)
	}
}

func TestPipeline_MergeDoesNotClobberIssues(t *testing.T) {
	critic := &stubStage{
		name:   "critic",
		key:    KeyCritique,
		result: &domain.StageResult{Content: "critique", QualityScore: 0.75, Issues: []string{"one"}},
	}
	refiner := &stubStage{
		name:   "refiner",
		key:    KeyDraft,
		result: &domain.StageResult{Content: "refined", QualityScore: 0.85},
	}

	p := NewPipeline("test", []Stage{critic, refiner}, MemoryNone, nil)

	run, err := p.Execute(context.Background(), Context{KeyDraft: "original"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	// у рефайнера нет своих issues: ключ в контексте остается от критика
	issues := Issues(run.Context)
	if len(issues) != 1 || issues[0] != "one" {
		t.Errorf("context issues = %v, want critic's issues preserved", issues)
	}
	if run.Context[KeyDraft] != "refined" {
		t.Errorf("context draft = %v, want refiner output", run.Context[KeyDraft])
	}
	if run.Context[KeyScore] != 0.85 {
		t.Errorf("context score = %v, want refiner score", run.Context[KeyScore])
	}
}
