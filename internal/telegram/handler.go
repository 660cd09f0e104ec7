package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kitbuilder587/docsmith/internal/domain"
	"github.com/kitbuilder587/docsmith/internal/llm"
	"github.com/kitbuilder587/docsmith/internal/refine"
)

const maxMessageLen = 4096 // лимит телеграма

type Handler struct {
	bot *Bot
}

func NewHandler(bot *Bot) *Handler {
	return &Handler{bot: bot}
}

// Команды генерации по типам документов
var commandDocTypes = map[string]domain.DocumentType{
	"report":   domain.DocumentReport,
	"email":    domain.DocumentEmail,
	"memo":     domain.DocumentMemo,
	"proposal": domain.DocumentProposal,
	"summary":  domain.DocumentSummary,
}

func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	h.bot.logger.Info("received message",
		zap.Int64("user_id", msg.From.ID),
		zap.String("username", msg.From.UserName),
		zap.Bool("is_command", msg.IsCommand()),
	)

	if !msg.IsCommand() {
		h.handleText(ctx, msg)
		return
	}

	cmd := msg.Command()
	if docType, ok := commandDocTypes[cmd]; ok {
		h.handleGenerate(ctx, msg, docType, msg.CommandArguments())
		return
	}

	switch cmd {
	case "start":
		h.handleStart(ctx, msg)
	case "help":
		h.handleHelp(ctx, msg)
	case "compare":
		h.handleCompare(ctx, msg)
	case "tone":
		h.handleTone(ctx, msg)
	case "provider":
		h.handleProvider(ctx, msg)
	case "history":
		h.handleHistory(ctx, msg)
	case "stats":
		h.handleStats(ctx, msg)
	case "export":
		h.handleExport(ctx, msg)
	default:
		h.bot.Send(msg.Chat.ID, "Неизвестная команда. Используйте /help для справки.")
	}
}

func (h *Handler) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	user := h.resolveUser(ctx, msg)
	if user == nil {
		return
	}

	welcome := fmt.Sprintf(`Привет! Я помогаю писать рабочие документы: отчеты, письма, записки, предложения и резюме. Каждый черновик прогоняется через цикл рецензия-доработка, пока качество не дойдет до порога.

Попробуйте: /report quick итоги квартала по отделу продаж

Ваши настройки: тип %s, тон %s, режим %s.
/help покажет все команды.`, user.DefaultType, user.DefaultTone, user.DefaultPreset)

	h.bot.Send(msg.Chat.ID, welcome)
}

func (h *Handler) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	helpText := `<b>Генерация документов:</b>
/report текст - Отчет
/email текст - Деловое письмо
/memo текст - Служебная записка
/proposal текст - Коммерческое предложение
/summary текст - Резюме

Перед текстом можно указать режим: /report thorough годовой отчет
Обычное сообщение без команды генерирует документ с вашими настройками.

<b>Режимы доработки:</b>
• quick - 2 итерации, порог 0.80
• standard - 5 итераций, порог 0.90
• thorough - 8 итераций, порог 0.95

<b>Настройки:</b>
/tone formal|casual|persuasive|informative - тон по умолчанию
/provider имя - LLM-провайдер по умолчанию

<b>Прочее:</b>
/compare текст - один промпт на всех провайдерах
/history N - последние документы
/stats дней - статистика генераций
/export - история файлом JSON`

	h.bot.Send(msg.Chat.ID, helpText)
}

func (h *Handler) handleText(ctx context.Context, msg *tgbotapi.Message) {
	text := normalizeSpaces(msg.Text)
	if text == "" {
		h.bot.Send(msg.Chat.ID, "Опишите, какой документ нужен, или /help для справки.")
		return
	}

	if !h.allowRequest(msg) {
		return
	}

	user := h.resolveUser(ctx, msg)
	if user == nil {
		return
	}

	h.generate(ctx, msg, user, user.DefaultType, text, h.userPreset(user))
}

func (h *Handler) handleGenerate(ctx context.Context, msg *tgbotapi.Message, docType domain.DocumentType, args string) {
	if normalizeSpaces(args) == "" {
		h.bot.Send(msg.Chat.ID, fmt.Sprintf("Опишите, что нужно: /%s [quick|thorough] текст требований", docType))
		return
	}

	if !h.allowRequest(msg) {
		return
	}

	user := h.resolveUser(ctx, msg)
	if user == nil {
		return
	}

	requirements, preset := ParseGenerateArgs(args, h.userPreset(user))
	if requirements == "" {
		h.bot.Send(msg.Chat.ID, fmt.Sprintf("Опишите, что нужно: /%s [quick|thorough] текст требований", docType))
		return
	}

	h.generate(ctx, msg, user, docType, requirements, preset)
}

func (h *Handler) generate(ctx context.Context, msg *tgbotapi.Message, user *domain.User, docType domain.DocumentType, requirements string, preset domain.Preset) {
	h.bot.SendTyping(msg.Chat.ID)

	req := &domain.DocumentRequest{
		UserID:       user.ID,
		Type:         docType,
		Requirements: requirements,
		Tone:         user.DefaultTone,
		Preset:       preset,
	}

	h.bot.logger.Info("generating document from chat",
		zap.Int64("user_id", user.ID),
		zap.String("type", docType.String()),
		zap.String("tone", user.DefaultTone.String()),
		zap.String("preset", preset.Type.String()),
	)

	progressID := h.bot.SendProgress(msg.Chat.ID, "<i>Готовлю черновик...</i>")
	onIteration := func(u refine.IterationUpdate) {
		h.bot.EditMessage(msg.Chat.ID, progressID, FormatProgress(u))
	}

	result, err := h.bot.assistant.Generate(ctx, req, onIteration)
	h.bot.DeleteMessage(msg.Chat.ID, progressID)
	if err != nil {
		h.bot.logger.Error("generation failed",
			zap.Error(err),
			zap.Int64("user_id", user.ID),
		)
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	for _, m := range SplitMessage(FormatResult(result), maxMessageLen) {
		if err := h.bot.Send(msg.Chat.ID, m); err != nil {
			h.bot.logger.Error("failed to send message", zap.Error(err))
		}
	}
}

func (h *Handler) handleCompare(ctx context.Context, msg *tgbotapi.Message) {
	prompt := normalizeSpaces(msg.CommandArguments())
	if prompt == "" {
		h.bot.Send(msg.Chat.ID, "Укажите текст: /compare слоган для сервиса документов")
		return
	}

	if !h.allowRequest(msg) {
		return
	}

	h.bot.SendTyping(msg.Chat.ID)

	results, err := h.bot.assistant.Compare(ctx, prompt)
	if err != nil {
		h.bot.logger.Error("provider comparison failed", zap.Error(err))
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	for _, m := range SplitMessage(FormatCompareResults(results), maxMessageLen) {
		if err := h.bot.Send(msg.Chat.ID, m); err != nil {
			h.bot.logger.Error("failed to send message", zap.Error(err))
		}
	}
}

func (h *Handler) handleTone(ctx context.Context, msg *tgbotapi.Message) {
	user := h.resolveUser(ctx, msg)
	if user == nil {
		return
	}

	arg := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))
	if arg == "" {
		h.bot.Send(msg.Chat.ID, fmt.Sprintf("Текущий тон: %s.\nВарианты: formal, casual, persuasive, informative.", user.DefaultTone))
		return
	}

	tone := domain.Tone(arg)
	if !tone.IsValid() {
		h.bot.Send(msg.Chat.ID, "Неизвестный тон. Варианты: formal, casual, persuasive, informative.")
		return
	}

	user.DefaultTone = tone
	if err := h.bot.userService.UpdatePreferences(ctx, user); err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.bot.Send(msg.Chat.ID, fmt.Sprintf("Тон по умолчанию: %s.", tone))
}

func (h *Handler) handleProvider(ctx context.Context, msg *tgbotapi.Message) {
	user := h.resolveUser(ctx, msg)
	if user == nil {
		return
	}

	arg := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))
	if arg == "" {
		names := strings.Join(h.bot.providers.Names(), ", ")
		current := user.DefaultProvider
		if current == "" {
			current = "не задан, используется провайдер из конфигурации"
		}
		h.bot.Send(msg.Chat.ID, fmt.Sprintf("Настроенные провайдеры: %s.\nВаш выбор: %s.", names, current))
		return
	}

	if _, err := h.bot.providers.Get(arg); err != nil {
		h.bot.Send(msg.Chat.ID, "Такой провайдер не настроен. /provider покажет список.")
		return
	}

	user.DefaultProvider = arg
	if err := h.bot.userService.UpdatePreferences(ctx, user); err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.bot.Send(msg.Chat.ID, fmt.Sprintf("Провайдер по умолчанию: %s.", arg))
}

func (h *Handler) handleHistory(ctx context.Context, msg *tgbotapi.Message) {
	user := h.resolveUser(ctx, msg)
	if user == nil {
		return
	}

	limit := 10
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > 50 {
			h.bot.Send(msg.Chat.ID, "Укажите число от 1 до 50: /history 5")
			return
		}
		limit = n
	}

	docs, err := h.bot.history.History(ctx, user.ID, limit)
	if err != nil {
		if !errors.Is(err, domain.ErrNoDocuments) {
			h.bot.logger.Error("failed to load history", zap.Error(err))
		}
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	for _, m := range SplitMessage(FormatHistory(docs), maxMessageLen) {
		if err := h.bot.Send(msg.Chat.ID, m); err != nil {
			h.bot.logger.Error("failed to send message", zap.Error(err))
		}
	}
}

func (h *Handler) handleStats(ctx context.Context, msg *tgbotapi.Message) {
	user := h.resolveUser(ctx, msg)
	if user == nil {
		return
	}

	days := 7
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > 90 {
			h.bot.Send(msg.Chat.ID, "Укажите число дней от 1 до 90: /stats 30")
			return
		}
		days = n
	}

	stats, err := h.bot.history.Stats(ctx, user.ID, days)
	if err != nil {
		h.bot.logger.Error("failed to load stats", zap.Error(err))
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.bot.Send(msg.Chat.ID, FormatStats(stats, days))
}

func (h *Handler) handleExport(ctx context.Context, msg *tgbotapi.Message) {
	user := h.resolveUser(ctx, msg)
	if user == nil {
		return
	}

	data, err := h.bot.history.ExportJSON(ctx, user.ID, 0)
	if err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	if err := h.bot.SendFile(msg.Chat.ID, "documents.json", data); err != nil {
		h.bot.logger.Error("failed to send export file", zap.Error(err))
		h.bot.Send(msg.Chat.ID, "Не удалось отправить файл. Попробуйте позже.")
	}
}

func (h *Handler) resolveUser(ctx context.Context, msg *tgbotapi.Message) *domain.User {
	user, err := h.bot.userService.GetOrCreate(ctx, msg.From.ID, msg.From.UserName)
	if err != nil {
		h.bot.logger.Error("failed to resolve user", zap.Error(err))
		h.bot.Send(msg.Chat.ID, "Произошла ошибка. Попробуйте позже.")
		return nil
	}
	return user
}

// userPreset достает сохраненный режим пользователя, при порче - стандартный
func (h *Handler) userPreset(user *domain.User) domain.Preset {
	if p, err := domain.PresetFor(user.DefaultPreset); err == nil {
		return p
	}
	return domain.StandardPreset()
}

func (h *Handler) allowRequest(msg *tgbotapi.Message) bool {
	if h.bot.rateLimiter.Allow(msg.From.ID) {
		return true
	}

	retryAt := h.bot.rateLimiter.RetryAt(msg.From.ID)
	wait := time.Until(retryAt).Round(time.Second)
	if wait < time.Second {
		wait = time.Second
	}

	h.bot.logger.Warn("rate limit exceeded",
		zap.Int64("user_id", msg.From.ID),
		zap.Time("retry_at", retryAt),
	)
	h.bot.RecordRateLimitHit(msg.From.ID)
	h.bot.Send(msg.Chat.ID, fmt.Sprintf("Слишком много запросов. Подождите %s.", wait))
	return false
}

func mapErrorToMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidDocumentType):
		return "Неизвестный тип документа. Доступны: report, email, memo, proposal, summary."
	case errors.Is(err, domain.ErrInvalidTone):
		return "Неизвестный тон. Доступны: formal, casual, persuasive, informative."
	case errors.Is(err, domain.ErrInvalidPresetType):
		return "Неизвестный режим. Доступны: quick, standard, thorough."
	case errors.Is(err, domain.ErrEmptyRequirements):
		return "Пустой запрос. Опишите, какой документ нужен."
	case errors.Is(err, domain.ErrRequirementsTooLong):
		return "Запрос слишком длинный. Максимум 4000 символов."
	case errors.Is(err, domain.ErrNoDocuments):
		return "История пуста. Сгенерируйте первый документ."
	case errors.Is(err, llm.ErrUnknownProvider):
		return "Такой провайдер не настроен. /provider покажет список."
	case errors.Is(err, llm.ErrNoProviders):
		return "Нет настроенных провайдеров. Проверьте конфигурацию."
	case errors.Is(err, llm.ErrRateLimit):
		return "Провайдер перегружен. Попробуйте позже."
	default:
		return "Произошла ошибка. Попробуйте позже."
	}
}
