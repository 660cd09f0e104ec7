package repository

import (
	"context"
	"testing"
	"time"

	"github.com/kitbuilder587/docsmith/internal/domain"
)

func TestMockUserRepository_GetOrCreate(t *testing.T) {
	tests := []struct {
		name       string
		telegramID int64
		username   string
		setupRepo  func(*MockUserRepository)
	}{
		{
			name:       "create new user",
			telegramID: 123,
			username:   "testuser",
			setupRepo:  func(m *MockUserRepository) {},
		},
		{
			name:       "get existing user",
			telegramID: 123,
			username:   "testuser",
			setupRepo: func(m *MockUserRepository) {
				m.GetOrCreate(context.Background(), 123, "testuser")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockUserRepository()
			tt.setupRepo(repo)

			user, err := repo.GetOrCreate(context.Background(), tt.telegramID, tt.username)
			if err != nil {
				t.Errorf("GetOrCreate() error = %v", err)
				return
			}
			if user == nil {
				t.Fatal("GetOrCreate() returned nil user")
			}
			if user.TelegramID != tt.telegramID {
				t.Errorf("user.TelegramID = %v, want %v", user.TelegramID, tt.telegramID)
			}
			if user.DefaultType != domain.DocumentReport {
				t.Errorf("user.DefaultType = %v, want report", user.DefaultType)
			}
			if user.DefaultPreset != domain.PresetStandard {
				t.Errorf("user.DefaultPreset = %v, want standard", user.DefaultPreset)
			}
		})
	}
}

func TestMockUserRepository_GetByID(t *testing.T) {
	repo := NewMockUserRepository()
	user, _ := repo.GetOrCreate(context.Background(), 123, "testuser")

	found, err := repo.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Errorf("GetByID() error = %v", err)
	}
	if found.ID != user.ID {
		t.Errorf("GetByID() got ID = %v, want %v", found.ID, user.ID)
	}

	_, err = repo.GetByID(context.Background(), 9999)
	if err != domain.ErrUserNotFound {
		t.Errorf("GetByID() error = %v, want ErrUserNotFound", err)
	}
}

func TestMockUserRepository_UpdatePreferences(t *testing.T) {
	repo := NewMockUserRepository()
	user, _ := repo.GetOrCreate(context.Background(), 123, "testuser")

	user.DefaultType = domain.DocumentMemo
	user.DefaultTone = domain.ToneCasual
	user.DefaultProvider = "anthropic"
	user.DefaultPreset = domain.PresetThorough

	if err := repo.UpdatePreferences(context.Background(), user); err != nil {
		t.Fatalf("UpdatePreferences() error = %v", err)
	}

	stored, _ := repo.GetByID(context.Background(), 123)
	if stored.DefaultType != domain.DocumentMemo {
		t.Errorf("DefaultType = %v, want memo", stored.DefaultType)
	}
	if stored.DefaultTone != domain.ToneCasual {
		t.Errorf("DefaultTone = %v, want casual", stored.DefaultTone)
	}
	if stored.DefaultProvider != "anthropic" {
		t.Errorf("DefaultProvider = %v, want anthropic", stored.DefaultProvider)
	}
	if stored.DefaultPreset != domain.PresetThorough {
		t.Errorf("DefaultPreset = %v, want thorough", stored.DefaultPreset)
	}

	err := repo.UpdatePreferences(context.Background(), &domain.User{ID: 9999})
	if err != domain.ErrUserNotFound {
		t.Errorf("UpdatePreferences() error = %v, want ErrUserNotFound", err)
	}
}

func TestMockDocumentRepository_Create(t *testing.T) {
	tests := []struct {
		name      string
		doc       *domain.Document
		setupRepo func(*MockDocumentRepository)
		wantErr   error
	}{
		{
			name: "create new document",
			doc: &domain.Document{
				RunID:   "run-1",
				UserID:  1,
				Type:    domain.DocumentReport,
				Tone:    domain.ToneFormal,
				Content: "Quarterly report body.",
			},
			setupRepo: func(m *MockDocumentRepository) {},
			wantErr:   nil,
		},
		{
			name: "duplicate run id",
			doc: &domain.Document{
				RunID:  "run-1",
				UserID: 1,
				Type:   domain.DocumentReport,
				Tone:   domain.ToneFormal,
			},
			setupRepo: func(m *MockDocumentRepository) {
				m.Create(context.Background(), &domain.Document{
					RunID:  "run-1",
					UserID: 1,
					Type:   domain.DocumentReport,
					Tone:   domain.ToneFormal,
				})
			},
			wantErr: domain.ErrDuplicateDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockDocumentRepository()
			tt.setupRepo(repo)

			err := repo.Create(context.Background(), tt.doc)
			if err != tt.wantErr {
				t.Errorf("Create() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && tt.doc.ID == 0 {
				t.Error("Create() did not set document ID")
			}
		})
	}
}

func TestMockDocumentRepository_ListByUser(t *testing.T) {
	repo := NewMockDocumentRepository()
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	repo.Create(context.Background(), &domain.Document{
		RunID: "run-old", UserID: 1, Type: domain.DocumentReport, Tone: domain.ToneFormal,
		CreatedAt: base,
	})
	repo.Create(context.Background(), &domain.Document{
		RunID: "run-new", UserID: 1, Type: domain.DocumentEmail, Tone: domain.ToneFormal,
		CreatedAt: base.Add(time.Hour),
	})
	repo.Create(context.Background(), &domain.Document{
		RunID: "run-other", UserID: 2, Type: domain.DocumentMemo, Tone: domain.ToneCasual,
		CreatedAt: base,
	})

	docs, err := repo.ListByUser(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("ListByUser() got %d documents, want 2", len(docs))
	}
	if docs[0].RunID != "run-new" {
		t.Errorf("ListByUser() first RunID = %v, want run-new (newest first)", docs[0].RunID)
	}

	limited, _ := repo.ListByUser(context.Background(), 1, 1)
	if len(limited) != 1 {
		t.Errorf("ListByUser() with limit 1 got %d documents", len(limited))
	}
}

func TestMockDocumentRepository_CountByUser(t *testing.T) {
	repo := NewMockDocumentRepository()
	repo.Create(context.Background(), &domain.Document{RunID: "a", UserID: 1, Type: domain.DocumentReport, Tone: domain.ToneFormal})
	repo.Create(context.Background(), &domain.Document{RunID: "b", UserID: 1, Type: domain.DocumentEmail, Tone: domain.ToneFormal})

	count, err := repo.CountByUser(context.Background(), 1)
	if err != nil {
		t.Errorf("CountByUser() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountByUser() = %d, want 2", count)
	}
}

func TestMockDocumentRepository_Iterations(t *testing.T) {
	repo := NewMockDocumentRepository()
	doc := &domain.Document{RunID: "run-1", UserID: 1, Type: domain.DocumentReport, Tone: domain.ToneFormal}
	repo.Create(context.Background(), doc)

	records := []domain.IterationRecord{
		{Iteration: 2, Score: 0.88},
		{Iteration: 1, Score: 0.85, Critique: "weak opening"},
	}
	if err := repo.SaveIterations(context.Background(), doc.ID, records); err != nil {
		t.Fatalf("SaveIterations() error = %v", err)
	}

	// повторная запись той же итерации игнорируется
	if err := repo.SaveIterations(context.Background(), doc.ID, []domain.IterationRecord{{Iteration: 1, Score: 0.99}}); err != nil {
		t.Fatalf("SaveIterations() error = %v", err)
	}

	got, err := repo.GetIterations(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("GetIterations() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetIterations() got %d records, want 2", len(got))
	}
	if got[0].Iteration != 1 || got[1].Iteration != 2 {
		t.Errorf("GetIterations() order = [%d, %d], want [1, 2]", got[0].Iteration, got[1].Iteration)
	}
	if got[0].Score != 0.85 {
		t.Errorf("GetIterations() first score = %v, want 0.85", got[0].Score)
	}

	err = repo.SaveIterations(context.Background(), 9999, records)
	if err != domain.ErrDocumentNotFound {
		t.Errorf("SaveIterations() error = %v, want ErrDocumentNotFound", err)
	}
}

func TestMockStatsRepository_RecordGeneration(t *testing.T) {
	repo := NewMockStatsRepository()

	repo.RecordGeneration(context.Background(), 1, 3, 0.90)
	repo.RecordGeneration(context.Background(), 1, 5, 0.90)
	repo.RecordGeneration(context.Background(), 2, 1, 0.99)

	stats, err := repo.GetDailyStats(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("GetDailyStats() error = %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("GetDailyStats() got %d days, want 1", len(stats))
	}
	if stats[0].DocumentsCreated != 2 {
		t.Errorf("DocumentsCreated = %d, want 2", stats[0].DocumentsCreated)
	}
	if stats[0].TotalIterations != 8 {
		t.Errorf("TotalIterations = %d, want 8", stats[0].TotalIterations)
	}
	if stats[0].AvgQuality != 0.90 {
		t.Errorf("AvgQuality = %v, want 0.90", stats[0].AvgQuality)
	}
}

func TestMockStatsRepository_GetDailyStats_FiltersByUser(t *testing.T) {
	repo := NewMockStatsRepository()
	repo.RecordGeneration(context.Background(), 1, 2, 0.9)
	repo.RecordGeneration(context.Background(), 2, 2, 0.9)

	stats, err := repo.GetDailyStats(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("GetDailyStats() error = %v", err)
	}
	for _, s := range stats {
		if s.UserID != 1 {
			t.Errorf("GetDailyStats() returned stats for user %d", s.UserID)
		}
	}
}
