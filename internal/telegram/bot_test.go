package telegram

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/docsmith/internal/domain"
	"github.com/kitbuilder587/docsmith/internal/llm"
	"github.com/kitbuilder587/docsmith/internal/refine"
)

type MockUserService struct {
	GetOrCreateFunc       func(ctx context.Context, telegramID int64, username string) (*domain.User, error)
	UpdatePreferencesFunc func(ctx context.Context, user *domain.User) error

	UpdatedUser *domain.User
}

func (m *MockUserService) GetOrCreate(ctx context.Context, telegramID int64, username string) (*domain.User, error) {
	if m.GetOrCreateFunc != nil {
		return m.GetOrCreateFunc(ctx, telegramID, username)
	}
	return &domain.User{
		ID:            telegramID,
		TelegramID:    telegramID,
		Username:      username,
		DefaultType:   domain.DocumentReport,
		DefaultTone:   domain.ToneFormal,
		DefaultPreset: domain.PresetStandard,
		CreatedAt:     time.Now(),
	}, nil
}

func (m *MockUserService) UpdatePreferences(ctx context.Context, user *domain.User) error {
	m.UpdatedUser = user
	if m.UpdatePreferencesFunc != nil {
		return m.UpdatePreferencesFunc(ctx, user)
	}
	return nil
}

type MockAssistantService struct {
	GenerateFunc func(ctx context.Context, req *domain.DocumentRequest, onIteration func(refine.IterationUpdate)) (*domain.DocumentResult, error)
	CompareFunc  func(ctx context.Context, prompt string) ([]refine.CompareResult, error)

	GenerateCalls int
	LastRequest   *domain.DocumentRequest
	CompareCalls  int
	LastPrompt    string
}

func (m *MockAssistantService) Generate(ctx context.Context, req *domain.DocumentRequest, onIteration func(refine.IterationUpdate)) (*domain.DocumentResult, error) {
	m.GenerateCalls++
	m.LastRequest = req
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req, onIteration)
	}
	return &domain.DocumentResult{
		RunID:         "run-test",
		Success:       true,
		FinalDocument: "Готовый документ.",
		QualityScore:  0.91,
		Iterations:    2,
		ExitReason:    "Quality threshold met: 0.91",
		Provider:      "mock",
		Model:         "mock-1",
	}, nil
}

func (m *MockAssistantService) Compare(ctx context.Context, prompt string) ([]refine.CompareResult, error) {
	m.CompareCalls++
	m.LastPrompt = prompt
	if m.CompareFunc != nil {
		return m.CompareFunc(ctx, prompt)
	}
	return []refine.CompareResult{
		{Info: llm.Info{Provider: "mock", Model: "mock-1"}, Content: "Вариант один.", Duration: 120 * time.Millisecond},
	}, nil
}

type MockHistoryService struct {
	HistoryFunc    func(ctx context.Context, userID int64, limit int) ([]domain.Document, error)
	StatsFunc      func(ctx context.Context, userID int64, days int) ([]domain.DailyStats, error)
	ExportJSONFunc func(ctx context.Context, userID int64, limit int) ([]byte, error)

	LastLimit int
	LastDays  int
}

func (m *MockHistoryService) History(ctx context.Context, userID int64, limit int) ([]domain.Document, error) {
	m.LastLimit = limit
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, userID, limit)
	}
	return []domain.Document{
		{
			ID:           1,
			RunID:        "run-1",
			UserID:       userID,
			Type:         domain.DocumentReport,
			Tone:         domain.ToneFormal,
			Provider:     "mock",
			Requirements: "итоги квартала",
			Content:      "Отчет за квартал.",
			QualityScore: 0.90,
			Iterations:   2,
			CreatedAt:    time.Now(),
		},
	}, nil
}

func (m *MockHistoryService) Stats(ctx context.Context, userID int64, days int) ([]domain.DailyStats, error) {
	m.LastDays = days
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, userID, days)
	}
	return []domain.DailyStats{
		{UserID: userID, Day: time.Now(), DocumentsCreated: 1, TotalIterations: 2, AvgQuality: 0.90},
	}, nil
}

func (m *MockHistoryService) ExportJSON(ctx context.Context, userID int64, limit int) ([]byte, error) {
	if m.ExportJSONFunc != nil {
		return m.ExportJSONFunc(ctx, userID, limit)
	}
	return []byte("[]"), nil
}

func TestBot_SendWithoutAPI(t *testing.T) {
	b := &Bot{api: nil, logger: zap.NewNop()}

	if err := b.Send(1, "привет"); err != nil {
		t.Errorf("Send() error = %v, want nil", err)
	}

	b.SendTyping(1)

	if id := b.SendProgress(1, "<i>жду</i>"); id != 0 {
		t.Errorf("SendProgress() = %d, want 0", id)
	}

	b.EditMessage(1, 0, "текст")
	b.DeleteMessage(1, 0)

	if err := b.SendFile(1, "documents.json", []byte("[]")); err != nil {
		t.Errorf("SendFile() error = %v, want nil", err)
	}
}

func TestBot_RecordRateLimitHitWithoutMetrics(t *testing.T) {
	b := &Bot{api: nil, logger: zap.NewNop()}

	// без собранных метрик вызов не должен падать
	b.RecordRateLimitHit(42)
}
