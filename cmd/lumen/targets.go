package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lumen/internal/target"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the architectures, operating systems and ABIs the backend can target",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		native, err := target.Native().String()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "native: %s\n\n", native)
		fmt.Fprintf(out, "architectures: %s\n", strings.Join(target.SupportedArchNames(), ", "))
		fmt.Fprintf(out, "operating systems: %s\n", strings.Join(target.OSNames(), ", "))
		fmt.Fprintf(out, "abis: %s\n", strings.Join(target.ABINames(), ", "))
		return nil
	},
}
