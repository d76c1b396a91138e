package generate

import (
	"fmt"

	"darkroom/internal/config"
)

// ColorCSS renders the configured color schemes as CSS custom properties.
// The light scheme is the default; the dark scheme applies under the
// prefers-color-scheme media query.
func ColorCSS(colors config.ColorsConfig) string {
	return fmt.Sprintf(`:root {
    --color-bg: %s;
    --color-text: %s;
    --color-text-muted: %s;
    --color-border: %s;
    --color-link: %s;
    --color-link-hover: %s;
}

@media (prefers-color-scheme: dark) {
    :root {
        --color-bg: %s;
        --color-text: %s;
        --color-text-muted: %s;
        --color-border: %s;
        --color-link: %s;
        --color-link-hover: %s;
    }
}`,
		colors.Light.Background,
		colors.Light.Text,
		colors.Light.TextMuted,
		colors.Light.Border,
		colors.Light.Link,
		colors.Light.LinkHover,
		colors.Dark.Background,
		colors.Dark.Text,
		colors.Dark.TextMuted,
		colors.Dark.Border,
		colors.Dark.Link,
		colors.Dark.LinkHover,
	)
}

// ThemeCSS renders the configured layout values as CSS custom properties.
func ThemeCSS(theme config.ThemeConfig) string {
	return fmt.Sprintf(`:root {
    --thumbnail-gap: %s;
    --grid-padding: %s;
}`, theme.ThumbnailGap, theme.GridPadding)
}
