package main

import (
	"github.com/spf13/cobra"

	"darkroom/internal/preview"
)

func newPreviewCommand(opts *buildOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Serve the generated site locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			return preview.New(opts.output, addr).Serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	return cmd
}
