package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"subgen/internal/config"
	"subgen/internal/language"
	"subgen/internal/stage"
	"subgen/internal/subtitle"
	"subgen/internal/transcribe"
	"subgen/internal/translate"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change persisted defaults",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := config.NewStore()
		if err != nil {
			return err
		}
		settings, err := store.Load()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "languages       = %s\n", strings.Join(settings.Languages, ","))
		fmt.Fprintf(out, "model           = %s\n", settings.Model)
		fmt.Fprintf(out, "format          = %s\n", settings.Format)
		fmt.Fprintf(out, "provider        = %s\n", settings.Provider)
		fmt.Fprintf(out, "output_base_dir = %s\n", settings.OutputBaseDir)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one default",
	Long: `Change one persisted default. Keys: languages, model, format,
provider, output_base_dir.

Examples:
  subgen config set languages en,es
  subgen config set model medium`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := config.NewStore()
		if err != nil {
			return err
		}
		settings, err := store.Load()
		if err != nil {
			return err
		}
		if err := applySetting(&settings, args[0], args[1]); err != nil {
			return err
		}
		return store.Save(settings)
	},
}

func applySetting(settings *config.Settings, key, value string) error {
	switch key {
	case "languages":
		languages, err := language.Parse(value)
		if err != nil {
			return err
		}
		settings.Languages = languages
	case "model":
		model, err := transcribe.ParseModel(value)
		if err != nil {
			return stage.Errorf(stage.ErrInvalidRequest, "%v", err)
		}
		settings.Model = string(model)
	case "format":
		format, err := subtitle.ParseFormat(value)
		if err != nil {
			return stage.Errorf(stage.ErrInvalidRequest, "%v", err)
		}
		settings.Format = string(format)
	case "provider":
		provider, err := translate.ParseProvider(value)
		if err != nil {
			return stage.Errorf(stage.ErrInvalidRequest, "%v", err)
		}
		settings.Provider = string(provider)
	case "output_base_dir":
		settings.OutputBaseDir = value
	default:
		return stage.Errorf(stage.ErrInvalidRequest,
			"unknown setting %q: use languages, model, format, provider, or output_base_dir", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
