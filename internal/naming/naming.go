// Package naming parses the NNN-name convention shared by albums, groups,
// images, and pages.
//
// Every content entry carries an optional numeric prefix followed by a
// name: "020-My-Best-Photos" sorts as 20 and displays as "My Best Photos".
// Dashes in the name portion become spaces in display titles. Entries
// without a numeric prefix are valid but excluded from navigation.
package naming

import (
	"strconv"
	"strings"
)

// Parsed is the result of parsing an entry name like "020-My-Best-Photos".
type Parsed struct {
	// Number is the numeric prefix, valid only when Numbered is true.
	Number int
	// Numbered reports whether a numeric prefix was present.
	Numbered bool
	// Name is the raw part after "NNN-", dashes preserved. Empty for
	// number-only entries; the full input for unnumbered entries.
	Name string
	// DisplayTitle is Name with dashes converted to spaces.
	DisplayTitle string
}

// Parse parses an entry name following the NNN-name convention.
//
// Handled patterns:
//
//	"020-My-Best-Photos" → number=20, name="My-Best-Photos", title="My Best Photos"
//	"001"                → number=1, name="", title=""
//	"001-"               → number=1, name="", title=""
//	"Museum"             → unnumbered, name="Museum", title="Museum"
//	"wip-drafts"         → unnumbered, name="wip-drafts", title="wip drafts"
func Parse(entry string) Parsed {
	if dash := strings.Index(entry, "-"); dash >= 0 {
		if num, err := strconv.Atoi(entry[:dash]); err == nil && num >= 0 {
			raw := entry[dash+1:]
			return Parsed{
				Number:       num,
				Numbered:     true,
				Name:         raw,
				DisplayTitle: strings.ReplaceAll(raw, "-", " "),
			}
		}
	}

	// A pure number with no dash still counts as a numbered entry
	if num, err := strconv.Atoi(entry); err == nil && num >= 0 {
		return Parsed{Number: num, Numbered: true}
	}

	return Parsed{
		Name:         entry,
		DisplayTitle: strings.ReplaceAll(entry, "-", " "),
	}
}

// Stem returns the file name without its extension, for parsing image and
// page names like "001-Museum.jpg".
func Stem(filename string) string {
	if dot := strings.LastIndex(filename, "."); dot > 0 {
		return filename[:dot]
	}
	return filename
}
