package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var fundsCmd = &cobra.Command{
	Use:   "funds",
	Short: "Print the configured fund universe",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := yaml.Marshal(map[string]any{"funds": cfg.Funds})
		if err != nil {
			return eris.Wrap(err, "funds: marshal")
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(fundsCmd)
}
