package telegram

import (
	"strings"

	"github.com/kitbuilder587/docsmith/internal/domain"
)

// ParseGenerateArgs разбирает аргументы команды генерации. Первое слово
// может задать режим (quick, standard, thorough), остальное - требования.
// Без модификатора весь текст уходит в требования с режимом по умолчанию.
func ParseGenerateArgs(args string, fallback domain.Preset) (requirements string, preset domain.Preset) {
	args = normalizeSpaces(args)
	if args == "" {
		return "", fallback
	}

	fields := strings.Fields(args)
	if p, err := domain.PresetFor(domain.PresetType(strings.ToLower(fields[0]))); err == nil {
		return strings.Join(fields[1:], " "), p
	}

	return args, fallback
}

func normalizeSpaces(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
