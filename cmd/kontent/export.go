package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/n1techn1t-bit/IQFM-kontent/internal/export"
)

func newExportCmd() *cobra.Command {
	var (
		configPath string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export both collections as JSON",
		Long:  "Writes every topic and post, with comments and lane order, as pretty-printed JSON. Defaults to stdout.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, configPath, outPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "kontent.yaml", "path to Kontent config file")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func runExport(cmd *cobra.Command, configPath, outPath string) error {
	_, s, err := openStore(configPath)
	if err != nil {
		return err
	}
	defer s.Close()

	if outPath == "" {
		snap, err := export.Build(s)
		if err != nil {
			return err
		}
		return export.Write(cmd.OutOrStdout(), snap)
	}

	if err := export.WriteFile(s, outPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", outPath)
	return nil
}
