package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Показать настроенных провайдеров и их модели",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		defer logger.Sync()

		reg := buildRegistry("", logger)

		def, err := reg.Default()
		if err != nil {
			return err
		}
		defName := def.Describe().Provider

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("%s\n", cyan("Провайдеры:"))
		for _, p := range reg.All() {
			info := p.Describe()
			marker := "  "
			if info.Provider == defName {
				marker = green("✓ ")
			}
			fmt.Printf("%s%-10s %s\n", marker, info.Provider, gray(info.Model))
		}

		fmt.Fprintf(os.Stderr, "\n%s\n", gray("Ключи задаются через OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY."))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
