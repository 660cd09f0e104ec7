package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/docsmith/internal/domain"
	"github.com/kitbuilder587/docsmith/internal/repository"
)

func seedDocument(t *testing.T, repo *repository.MockDocumentRepository, runID string, createdAt time.Time) *domain.Document {
	t.Helper()

	doc := &domain.Document{
		RunID:        runID,
		UserID:       1,
		Type:         domain.DocumentReport,
		Tone:         domain.ToneFormal,
		Provider:     "mock",
		Model:        "mock-1",
		Requirements: "Summarize quarterly results",
		Content:      "Quarterly results improved across all segments.",
		QualityScore: 0.85,
		Iterations:   2,
		ExitReason:   "Quality threshold met: 0.85",
		CreatedAt:    createdAt,
	}
	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return doc
}

func TestHistoryService_History(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMockDocumentRepository()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	seedDocument(t, repo, "run-1", base)
	seedDocument(t, repo, "run-2", base.Add(time.Hour))
	seedDocument(t, repo, "run-3", base.Add(2*time.Hour))

	svc := NewHistoryService(repo, repository.NewMockStatsRepository(), zap.NewNop())

	docs, err := svc.History(ctx, 1, 2)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("History() returned %d documents, want 2", len(docs))
	}
	if docs[0].RunID != "run-3" || docs[1].RunID != "run-2" {
		t.Errorf("History() order = %q, %q, want newest first", docs[0].RunID, docs[1].RunID)
	}
}

func TestHistoryService_History_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMockDocumentRepository()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 12; i++ {
		seedDocument(t, repo, "run-"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
	}

	svc := NewHistoryService(repo, repository.NewMockStatsRepository(), zap.NewNop())

	docs, err := svc.History(ctx, 1, 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(docs) != 10 {
		t.Errorf("History() returned %d documents, want default limit 10", len(docs))
	}
}

func TestHistoryService_History_Empty(t *testing.T) {
	svc := NewHistoryService(repository.NewMockDocumentRepository(), repository.NewMockStatsRepository(), zap.NewNop())

	_, err := svc.History(context.Background(), 1, 10)
	if !errors.Is(err, domain.ErrNoDocuments) {
		t.Errorf("History() error = %v, want %v", err, domain.ErrNoDocuments)
	}
}

func TestHistoryService_Stats(t *testing.T) {
	ctx := context.Background()
	statsRepo := repository.NewMockStatsRepository()

	statsRepo.RecordGeneration(ctx, 1, 3, 0.90)
	statsRepo.RecordGeneration(ctx, 1, 1, 0.90)
	statsRepo.RecordGeneration(ctx, 2, 5, 0.70)

	svc := NewHistoryService(repository.NewMockDocumentRepository(), statsRepo, zap.NewNop())

	stats, err := svc.Stats(ctx, 1, 0)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("Stats() returned %d rows, want 1", len(stats))
	}
	if stats[0].DocumentsCreated != 2 {
		t.Errorf("DocumentsCreated = %d, want 2", stats[0].DocumentsCreated)
	}
	if stats[0].TotalIterations != 4 {
		t.Errorf("TotalIterations = %d, want 4", stats[0].TotalIterations)
	}
	if stats[0].AvgQuality != 0.90 {
		t.Errorf("AvgQuality = %v, want 0.90", stats[0].AvgQuality)
	}
}

func TestHistoryService_ExportJSON(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMockDocumentRepository()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	doc := seedDocument(t, repo, "run-1", base)
	records := []domain.IterationRecord{
		{Iteration: 1, Score: 0.75, PreviousScore: 0.70, Critique: "Issues:\n- vague numbers"},
		{Iteration: 2, Score: 0.85, PreviousScore: 0.75},
	}
	if err := repo.SaveIterations(ctx, doc.ID, records); err != nil {
		t.Fatalf("SaveIterations() error = %v", err)
	}

	svc := NewHistoryService(repo, repository.NewMockStatsRepository(), zap.NewNop())

	data, err := svc.ExportJSON(ctx, 1, 0)
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}

	var export []exportDocument
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(export) != 1 {
		t.Fatalf("exported %d documents, want 1", len(export))
	}

	got := export[0]
	if got.RunID != "run-1" {
		t.Errorf("RunID = %q, want run-1", got.RunID)
	}
	if got.Type != "report" || got.Tone != "formal" {
		t.Errorf("Type/Tone = %q/%q, want report/formal", got.Type, got.Tone)
	}
	if got.QualityScore != 0.85 {
		t.Errorf("QualityScore = %v, want 0.85", got.QualityScore)
	}
	if len(got.History) != 2 {
		t.Fatalf("exported %d iterations, want 2", len(got.History))
	}
	if got.History[0].Iteration != 1 || got.History[1].Iteration != 2 {
		t.Errorf("iteration order = %d, %d", got.History[0].Iteration, got.History[1].Iteration)
	}
	if got.History[0].Critique == "" {
		t.Error("first iteration critique missing from export")
	}
}

func TestHistoryService_ExportJSON_Empty(t *testing.T) {
	svc := NewHistoryService(repository.NewMockDocumentRepository(), repository.NewMockStatsRepository(), zap.NewNop())

	_, err := svc.ExportJSON(context.Background(), 1, 0)
	if !errors.Is(err, domain.ErrNoDocuments) {
		t.Errorf("ExportJSON() error = %v, want %v", err, domain.ErrNoDocuments)
	}
}
