package cli

import (
	"github.com/spf13/cobra"
)

// buildRootCmd constructs the command tree bound to a.
func buildRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "fmbridge",
		Short:         "Drive a text generation engine through blocking and streaming calls",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&a.opts.ConfigPath, "config", "c", "", "Config file (.yaml, .json, .toml)")
	pf.StringVar(&a.opts.Engine, "engine", "", "Engine override: echo|scripted|llama|openai|anthropic")
	pf.StringVar(&a.opts.LogLevel, "log-level", "", "Log level: debug|info|warn|error")
	pf.BoolVar(&a.opts.NoColor, "no-color", false, "Disable colored output")

	root.AddCommand(checkCmd(a), respondCmd(a), streamCmd(a), serveCmd(a))
	return root
}
