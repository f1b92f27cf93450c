package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/pytutor/internal/config"
	"github.com/zjrosen/pytutor/internal/interpreter"
)

var localesSet string

var localesCmd = &cobra.Command{
	Use:   "locales",
	Short: "List languages or save the preferred one",
	Long: `List supported explanation languages. The current one is marked with *.

Examples:
  pytutor locales
  pytutor locales --set en`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		if localesSet != "" {
			path := configPath()
			if err := config.SaveLocale(path, localesSet); err != nil {
				return err
			}
			_, err := fmt.Fprintf(out, "Locale set to %s (%s) in %s\n",
				localesSet, interpreter.LanguageName(localesSet), path)
			return err
		}

		current := cfg.Locale
		if current == "" {
			current = interpreter.DefaultLocale
		}
		for _, code := range interpreter.SupportedLocales() {
			marker := " "
			if code == current {
				marker = "*"
			}
			if _, err := fmt.Fprintf(out, "%s %s  %s\n", marker, code, interpreter.LanguageName(code)); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	localesCmd.Flags().StringVar(&localesSet, "set", "", "save this locale to the config file")
	rootCmd.AddCommand(localesCmd)
}
