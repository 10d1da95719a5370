// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/biosearch/internal/render"
)

var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "List the database layouts used to render results",
	Long: `Layouts lists every database name with a registered layout and its kind.
Databases not listed are rendered with the generic layout. Extra layouts
can be registered with render.layouts_file or --layouts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := render.NewRegistry()
		if cfg.Render.LayoutsFile != "" {
			if err := reg.LoadFile(cfg.Render.LayoutsFile); err != nil {
				return err
			}
		}
		return writeLayouts(cmd.OutOrStdout(), reg)
	},
}

func init() {
	rootCmd.AddCommand(layoutsCmd)
}

func writeLayouts(w io.Writer, reg *render.Registry) error {
	for _, name := range reg.Names() {
		l := reg.Lookup(name)
		if _, err := fmt.Fprintf(w, "%-12s %s\n", name, l.Kind); err != nil {
			return err
		}
	}
	return nil
}
