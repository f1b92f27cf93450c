package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

var copyCmd = &cobra.Command{
	Use:   "copy FILE",
	Short: "Copy a Python file to the clipboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args[0])
		if err != nil {
			return err
		}
		if clipboard.Unsupported {
			return fmt.Errorf("clipboard is not available on this system")
		}
		if err := clipboard.WriteAll(source); err != nil {
			return fmt.Errorf("copying to clipboard: %w", err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Copied %s to the clipboard.\n", args[0])
		return err
	},
}

func init() {
	rootCmd.AddCommand(copyCmd)
}
