package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
)

// buildOptions carries the persistent path flags shared by every stage.
type buildOptions struct {
	source  string
	output  string
	tempDir string
}

func newRootCommand() *cobra.Command {
	opts := &buildOptions{}

	rootCmd := &cobra.Command{
		Use:           "darkroom",
		Short:         "Static site generator for photo portfolios",
		Long: `Static site generator for photo portfolios.

Your filesystem is the data source: directories become albums, images are
ordered by numeric prefix, and markdown files become pages.

The build runs in three stages, each writing a manifest the next consumes:

  scan      content/  -> manifest.json
  process   sources   -> responsive sizes and thumbnails (cached)
  generate  manifest  -> final HTML site`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.source, "source", "content", "Content directory")
	rootCmd.PersistentFlags().StringVar(&opts.output, "output", "dist", "Output directory for the generated site")
	rootCmd.PersistentFlags().StringVar(&opts.tempDir, "temp-dir", ".darkroom-temp", "Directory for intermediate files")

	rootCmd.AddCommand(newScanCommand(opts))
	rootCmd.AddCommand(newProcessCommand(opts))
	rootCmd.AddCommand(newGenerateCommand(opts))
	rootCmd.AddCommand(newBuildCommand(opts))
	rootCmd.AddCommand(newPreviewCommand(opts))
	rootCmd.AddCommand(newGenConfigCommand())

	return rootCmd
}

// processedDir is where the process stage writes its artifacts.
func (o *buildOptions) processedDir() string {
	return filepath.Join(o.tempDir, "processed")
}
