package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// stockConfig documents every option with its default value.
const stockConfig = `# darkroom site configuration.
# Every option is optional; missing values use the defaults shown here.

[thumbnails]
# Aspect ratio of album grid thumbnails as [width, height].
aspect_ratio = [4, 5]
# Pixel size of the thumbnail's short edge.
size = 400

[images]
# Responsive breakpoints, measured on the image's longer edge.
# Sizes larger than the source are skipped, never upscaled.
sizes = [800, 1400, 2080]
# JPEG quality, 0-100.
quality = 90

[processing]
# Maximum parallel encode workers. 0 means one per CPU core;
# values above the core count are clamped down.
max_processes = 0

[theme]
thumbnail_gap = "1rem"
grid_padding = "2rem"

[colors.light]
background = "#ffffff"
text = "#111111"
text_muted = "#666666"
border = "#e0e0e0"
link = "#333333"
link_hover = "#000000"

[colors.dark]
background = "#0a0a0a"
text = "#eeeeee"
text_muted = "#999999"
border = "#333333"
link = "#cccccc"
link_hover = "#ffffff"
`

func newGenConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "gen-config",
		Short: "Print a stock config.toml with all options documented",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print(stockConfig)
			return nil
		},
	}
}
