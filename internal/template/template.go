package template

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kitbuilder587/docsmith/internal/domain"
)

var ErrBadTemplateFile = errors.New("bad template file")

// Template - каркас документа одного типа: структура для черновика
// и обязательные элементы для проверки соответствия
type Template struct {
	Outline  []string `yaml:"outline"`
	Style    string   `yaml:"style"`
	Required []string `yaml:"required"`
}

// Set - набор шаблонов по типам документов. Собирается на старте,
// дальше только читается.
type Set struct {
	templates map[domain.DocumentType]Template
}

// Встроенные шаблоны. Переопределяются yaml-файлом через Load,
// без пересборки бинаря.
var builtin = map[domain.DocumentType]Template{
	domain.DocumentReport: {
		Outline: []string{
			"Title",
			"Executive summary",
			"Background",
			"Findings",
			"Analysis",
			"Recommendations",
			"Conclusion",
		},
		Style: "Structured and evidence-driven. Use headings and keep each section focused.",
		Required: []string{
			"This report is for internal use only",
		},
	},
	domain.DocumentEmail: {
		Outline: []string{
			"Subject line",
			"Greeting",
			"Purpose",
			"Key points",
			"Call to action",
			"Sign-off",
		},
		Style: "Direct and courteous. One screen of text, no fluff.",
	},
	domain.DocumentMemo: {
		Outline: []string{
			"Header",
			"Purpose",
			"Context",
			"Details",
			"Action items",
		},
		Style: "Brief and factual. Lead with the decision or ask.",
	},
	domain.DocumentProposal: {
		Outline: []string{
			"Title",
			"Overview",
			"Objectives",
			"Proposed approach",
			"Timeline",
			"Budget",
			"Terms",
			"Next steps",
		},
		Style: "Persuasive but concrete. Every claim backed by a deliverable.",
		Required: []string{
			"This proposal is subject to final written agreement",
		},
	},
	domain.DocumentSummary: {
		Outline: []string{
			"Context",
			"Key points",
			"Takeaways",
		},
		Style: "Compressed. Bullet points where possible, no new information.",
	},
}

func Builtin() *Set {
	return &Set{templates: builtin}
}

// Load читает yaml-переопределения и накладывает их поверх встроенных.
// Пустой путь или отсутствующий файл - не ошибка, работаем на встроенных.
func Load(path string, logger *zap.Logger) (*Set, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		return Builtin(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("template file not found, using builtin templates",
				zap.String("path", path),
			)
			return Builtin(), nil
		}
		return nil, fmt.Errorf("read template file: %w", err)
	}

	var overrides map[string]Template
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadTemplateFile, err)
	}

	merged := make(map[domain.DocumentType]Template, len(builtin))
	for t, tpl := range builtin {
		merged[t] = tpl
	}
	for name, tpl := range overrides {
		docType := domain.DocumentType(name)
		if !docType.IsValid() {
			return nil, fmt.Errorf("%w: unknown document type %q", ErrBadTemplateFile, name)
		}
		base := merged[docType]
		if len(tpl.Outline) > 0 {
			base.Outline = tpl.Outline
		}
		if tpl.Style != "" {
			base.Style = tpl.Style
		}
		if len(tpl.Required) > 0 {
			base.Required = tpl.Required
		}
		merged[docType] = base
	}

	logger.Info("templates loaded",
		zap.String("path", path),
		zap.Int("overridden", len(overrides)),
	)

	return &Set{templates: merged}, nil
}

func (s *Set) For(t domain.DocumentType) Template {
	return s.templates[t]
}
