package cli

// Default values for CLI flags and formatted output.
const (
	// MaxDescriptionLength is the maximum length of a plugin description in listings.
	MaxDescriptionLength = 50
	// MaxSearchDescriptionLength is the maximum length of a plugin description in search results.
	MaxSearchDescriptionLength = 40
	// TabWidth is the padding between tabular output columns.
	TabWidth = 2
)
