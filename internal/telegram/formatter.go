package telegram

import (
	"fmt"
	"html"
	"strings"

	"github.com/kitbuilder587/docsmith/internal/domain"
	"github.com/kitbuilder587/docsmith/internal/refine"
)

func FormatResult(result *domain.DocumentResult) string {
	var sb strings.Builder

	if result.Success {
		fmt.Fprintf(&sb, "<b>Готово.</b> Качество: %.2f, итераций: %d.\n", result.QualityScore, result.Iterations)
	} else {
		sb.WriteString("<b>Цикл доработки прервался.</b> Показана лучшая из готовых версий.\n")
	}
	if result.Validation != nil {
		fmt.Fprintf(&sb, "<i>Внешняя проверка: %.2f</i>\n", result.Validation.Composite)
	}

	sb.WriteString("\n")
	sb.WriteString(html.EscapeString(result.FinalDocument))

	return sb.String()
}

func FormatProgress(u refine.IterationUpdate) string {
	if u.RolledBack {
		return fmt.Sprintf("<i>Итерация %d: откат, лучшая оценка %.2f</i>", u.Iteration, u.BestScore)
	}
	return fmt.Sprintf("<i>Итерация %d: оценка %.2f, лучшая %.2f</i>", u.Iteration, u.Score, u.BestScore)
}

func FormatHistory(docs []domain.Document) string {
	var sb strings.Builder
	sb.WriteString("<b>Ваши документы:</b>\n\n")

	for i, d := range docs {
		fmt.Fprintf(&sb, "%d. %s [%s], качество %.2f, итераций: %d\n   %s\n   %s\n\n",
			i+1,
			typeLabel(d.Type),
			d.Tone,
			d.QualityScore,
			d.Iterations,
			d.CreatedAt.Format("2006-01-02 15:04"),
			html.EscapeString(truncate(d.Requirements, 60)),
		)
	}

	fmt.Fprintf(&sb, "Всего: %d", len(docs))
	return sb.String()
}

func FormatStats(stats []domain.DailyStats, days int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>Статистика за %d дн.:</b>\n\n", days)

	totalDocs := 0
	totalIterations := 0
	for _, s := range stats {
		fmt.Fprintf(&sb, "%s: документов %d, итераций %d, среднее качество %.2f\n",
			s.Day.Format("2006-01-02"),
			s.DocumentsCreated,
			s.TotalIterations,
			s.AvgQuality,
		)
		totalDocs += s.DocumentsCreated
		totalIterations += s.TotalIterations
	}

	if totalDocs == 0 {
		sb.WriteString("Пока пусто. Сгенерируйте первый документ.")
		return sb.String()
	}

	fmt.Fprintf(&sb, "\nИтого: документов %d, итераций %d", totalDocs, totalIterations)
	return sb.String()
}

func FormatCompareResults(results []refine.CompareResult) string {
	var sb strings.Builder
	sb.WriteString("<b>Сравнение провайдеров:</b>\n")

	for _, r := range results {
		sb.WriteString("\n━━━━━━━━━━━━━━━━━━━━━\n")
		fmt.Fprintf(&sb, "<b>%s</b> (%s), %.1fs\n",
			html.EscapeString(r.Info.Provider),
			html.EscapeString(r.Info.Model),
			r.Duration.Seconds(),
		)
		if r.Err != nil {
			fmt.Fprintf(&sb, "<i>Ошибка: %s</i>\n", html.EscapeString(r.Err.Error()))
			continue
		}
		sb.WriteString(html.EscapeString(r.Content))
		sb.WriteString("\n")
	}

	return sb.String()
}

func SplitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var messages []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			messages = append(messages, text)
			break
		}

		splitPoint := findSafeSplitPoint(text, maxLen)
		if splitPoint <= 0 || splitPoint > len(text) {
			splitPoint = maxLen
		}

		messages = append(messages, text[:splitPoint])
		text = text[splitPoint:]
	}

	return messages
}

func findSafeSplitPoint(text string, maxLen int) int {
	// ищем пробел или перевод строки, не ломая HTML-теги
	for i := maxLen - 1; i > maxLen/2; i-- {
		if i >= len(text) {
			continue
		}
		if isInsideHTMLTag(text, i) {
			continue
		}

		if text[i] == '\n' || text[i] == ' ' {
			return i + 1
		}
	}

	// внутри тега - ищем конец
	if maxLen < len(text) && isInsideHTMLTag(text, maxLen) {
		for i := maxLen; i < len(text); i++ {
			if text[i] == '>' {
				for j := i + 1; j < len(text) && j < i+50; j++ {
					if text[j] == '\n' || text[j] == ' ' {
						return j + 1
					}
				}
				return i + 1
			}
		}
	}

	for i := maxLen - 1; i > 0; i-- {
		if text[i] == ' ' || text[i] == '\n' {
			return i + 1
		}
	}

	return maxLen
}

func isInsideHTMLTag(text string, pos int) bool {
	if pos >= len(text) || pos < 0 {
		return false
	}
	for i := pos; i >= 0; i-- {
		if text[i] == '>' {
			return false
		}
		if text[i] == '<' {
			return true
		}
	}
	return false
}

func typeLabel(t domain.DocumentType) string {
	switch t {
	case domain.DocumentReport:
		return "отчет"
	case domain.DocumentEmail:
		return "письмо"
	case domain.DocumentMemo:
		return "записка"
	case domain.DocumentProposal:
		return "предложение"
	case domain.DocumentSummary:
		return "резюме"
	default:
		return string(t)
	}
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
