package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("output")
			if strings.ToLower(format) == "json" {
				info, err := json.MarshalIndent(map[string]any{
					"version": version,
					"commit":  commit,
					"date":    date,
				}, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(info))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "kut %s (commit %s, built %s)\n", version, commit, date)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "output format (json, text)")
	return cmd
}
