package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kitbuilder587/docsmith/internal/domain"
	"github.com/kitbuilder587/docsmith/internal/llm"
	"github.com/kitbuilder587/docsmith/internal/refine"
	"github.com/kitbuilder587/docsmith/internal/stage"
	"github.com/kitbuilder587/docsmith/internal/template"
)

var (
	genType        string
	genTone        string
	genPreset      string
	genProvider    string
	genRecipient   string
	genSubject     string
	genContext     string
	genTemplates   string
	genOutFile     string
	genTemperature float64
	genMaxTokens   int
)

var generateCmd = &cobra.Command{
	Use:   "generate [требования]",
	Short: "Сгенерировать документ через цикл доработки",
	Long: `Генерирует документ по текстовым требованиям: черновик, рецензия,
доработка. Цикл останавливается по порогу качества, вердикту рецензента,
лимиту итераций или таймауту режима.

Примеры:
  docsmith generate -t email "анонс переезда офиса"
  docsmith generate -t report -p thorough --tone formal "итоги квартала"
  docsmith generate -t memo --out memo.txt "регламент дежурств"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		preset, err := domain.PresetFor(domain.PresetType(strings.ToLower(genPreset)))
		if err != nil {
			return fmt.Errorf("неизвестный режим %q, доступны quick, standard, thorough", genPreset)
		}

		req := &domain.DocumentRequest{
			Type:              domain.DocumentType(strings.ToLower(genType)),
			Requirements:      strings.Join(args, " "),
			Tone:              domain.Tone(strings.ToLower(genTone)),
			Recipient:         genRecipient,
			Subject:           genSubject,
			AdditionalContext: genContext,
			Preset:            preset,
			Provider:          genProvider,
		}
		req.Sanitize()
		if err := req.Validate(); err != nil {
			return err
		}

		logger := newLogger()
		defer logger.Sync()

		reg := buildRegistry(genProvider, logger)
		provider, err := reg.Get(genProvider)
		if err != nil {
			return fmt.Errorf("провайдер %q не настроен, список покажет \"docsmith models\"", genProvider)
		}

		tpls, err := template.Load(genTemplates, logger)
		if err != nil {
			return fmt.Errorf("шаблоны не загрузились: %w", err)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		info := provider.Describe()
		fmt.Fprintf(os.Stderr, "%s %s (%s), режим %s: до %d итераций, порог %.2f\n",
			cyan("Генерация:"), info.Provider, info.Model,
			preset.Type, preset.MaxIterations, preset.QualityThreshold)

		params := llm.Params{Temperature: genTemperature, MaxTokens: genMaxTokens}
		ctrl := refine.NewController(refine.Deps{
			Draft:   stage.NewDraftWriter(provider, params, tpls, logger),
			Critic:  stage.NewCritic(provider, params, nil, logger),
			Refiner: stage.NewRefiner(provider, params, logger),
			Logger:  logger,
		})

		onIteration := func(u refine.IterationUpdate) {
			if u.RolledBack {
				fmt.Fprintf(os.Stderr, "  %s итерация %d: откат, лучшая оценка %.2f\n",
					yellow("⚠"), u.Iteration, u.BestScore)
				return
			}
			fmt.Fprintf(os.Stderr, "  %s итерация %d: оценка %.2f\n",
				green("✓"), u.Iteration, u.Score)
		}

		result, err := ctrl.Run(cmd.Context(), req, onIteration)
		if err != nil {
			return err
		}

		if !result.Success {
			fmt.Fprintf(os.Stderr, "%s %s\n", red("✗"), result.Error)
			if result.FinalDocument == "" {
				return fmt.Errorf("документ не сгенерирован")
			}
			// лучший черновик до сбоя все равно отдаем
			fmt.Fprintf(os.Stderr, "%s\n", gray("Ниже лучший черновик до сбоя."))
		}

		if genOutFile != "" {
			if err := os.WriteFile(genOutFile, []byte(result.FinalDocument), 0644); err != nil {
				return fmt.Errorf("запись в файл: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Документ записан в %s\n", genOutFile)
		} else {
			fmt.Println()
			fmt.Println(result.FinalDocument)
			fmt.Println()
		}

		fmt.Fprintf(os.Stderr, "%s качество %.2f, итераций %d, %s %s\n",
			cyan("Готово:"), result.QualityScore, result.Iterations,
			result.TotalTime.Round(100*time.Millisecond), gray(result.ExitReason))
		if result.Validation != nil {
			fmt.Fprintf(os.Stderr, "%s %.2f\n", gray("Внешняя проверка:"), result.Validation.Composite)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&genType, "type", "t", "report", "тип документа: report, email, memo, proposal, summary")
	generateCmd.Flags().StringVar(&genTone, "tone", "formal", "тон: formal, casual, persuasive, informative")
	generateCmd.Flags().StringVarP(&genPreset, "preset", "p", "standard", "режим: quick, standard, thorough")
	generateCmd.Flags().StringVar(&genProvider, "provider", "", "провайдер из реестра, пусто = первый настроенный")
	generateCmd.Flags().StringVar(&genRecipient, "recipient", "", "получатель документа")
	generateCmd.Flags().StringVar(&genSubject, "subject", "", "тема документа")
	generateCmd.Flags().StringVar(&genContext, "context", "", "дополнительный контекст для черновика")
	generateCmd.Flags().StringVar(&genTemplates, "templates", "", "YAML с переопределением шаблонов промптов")
	generateCmd.Flags().StringVarP(&genOutFile, "out", "o", "", "записать документ в файл вместо stdout")
	generateCmd.Flags().Float64Var(&genTemperature, "temperature", defaultTemperature, "температура сэмплирования")
	generateCmd.Flags().IntVar(&genMaxTokens, "max-tokens", defaultMaxTokens, "лимит токенов на один вызов")
}
