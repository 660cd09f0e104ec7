package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kitbuilder587/docsmith/internal/llm"
	"github.com/kitbuilder587/docsmith/internal/llm/anthropic"
	"github.com/kitbuilder587/docsmith/internal/llm/gemini"
	llmmock "github.com/kitbuilder587/docsmith/internal/llm/mock"
	"github.com/kitbuilder587/docsmith/internal/llm/openai"
)

var version = "0.1.0"

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 2000
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "docsmith",
	Short: "Генератор документов с циклом доработки",
	Long: `Консольный генератор деловых документов: черновик, рецензия и доработка
крутятся в цикле, пока качество не дотянет до порога выбранного режима.
Работает без Telegram и без базы данных.

Провайдеры подключаются через переменные окружения:
  OPENAI_API_KEY     (модель через OPENAI_MODEL)
  ANTHROPIC_API_KEY  (модель через ANTHROPIC_MODEL)
  GEMINI_API_KEY     (модель через GEMINI_MODEL)

Без единого ключа регистрируется mock-провайдер, чтобы команды
работали в дев-окружении.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "подробные логи в stderr")
}

// newLogger по умолчанию молчит: прогресс и так печатается в stderr,
// служебные логи нужны только при отладке.
func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// buildRegistry собирает вендоров с заданными ключами. Mock попадает в
// реестр, когда его запросили явно или когда ключей нет вовсе.
func buildRegistry(requested string, logger *zap.Logger) *llm.Registry {
	reg := llm.NewRegistry()

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		reg.Register(openai.Name, openai.New(openai.Config{
			APIKey: key,
			Model:  os.Getenv("OPENAI_MODEL"),
		}, logger))
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		reg.Register(anthropic.Name, anthropic.New(anthropic.Config{
			APIKey: key,
			Model:  os.Getenv("ANTHROPIC_MODEL"),
		}, logger))
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		reg.Register(gemini.Name, gemini.New(gemini.Config{
			APIKey: key,
			Model:  os.Getenv("GEMINI_MODEL"),
		}, logger))
	}

	if requested == llmmock.Name || reg.Len() == 0 {
		reg.Register(llmmock.Name, llmmock.New())
	}
	return reg
}
