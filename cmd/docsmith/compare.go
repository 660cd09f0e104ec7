package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kitbuilder587/docsmith/internal/llm"
	"github.com/kitbuilder587/docsmith/internal/refine"
)

var (
	compareTemperature float64
	compareMaxTokens   int
)

var compareCmd = &cobra.Command{
	Use:   "compare [промпт]",
	Short: "Прогнать промпт через всех провайдеров параллельно",
	Long: `Отправляет один промпт всем настроенным провайдерам и печатает ответы
рядом. Один прогон на провайдера, без цикла доработки: команда для
быстрого сравнения стиля моделей.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := strings.TrimSpace(strings.Join(args, " "))
		if prompt == "" {
			return fmt.Errorf("пустой промпт")
		}

		logger := newLogger()
		defer logger.Sync()

		reg := buildRegistry("", logger)
		providers := reg.All()

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Fprintf(os.Stderr, "%s %d провайдеров\n", cyan("Сравнение:"), len(providers))

		params := llm.Params{Temperature: compareTemperature, MaxTokens: compareMaxTokens}
		results := refine.Compare(cmd.Context(), providers, prompt, params, logger)

		failed := 0
		for _, res := range results {
			fmt.Printf("%s (%s), %s\n", cyan(res.Info.Provider), res.Info.Model,
				gray(res.Duration.Round(time.Millisecond)))
			if res.Err != nil {
				failed++
				fmt.Printf("  %s %v\n\n", red("✗"), res.Err)
				continue
			}
			fmt.Printf("%s\n\n", res.Content)
		}

		if failed == len(results) {
			return fmt.Errorf("все провайдеры вернули ошибку")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().Float64Var(&compareTemperature, "temperature", defaultTemperature, "температура сэмплирования")
	compareCmd.Flags().IntVar(&compareMaxTokens, "max-tokens", defaultMaxTokens, "лимит токенов на один вызов")
}
