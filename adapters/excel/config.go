package excel

// LoaderConfig holds settings for turning spreadsheet files into grids
type LoaderConfig struct {
	// RawValues reads XLSX cells unformatted, so numbers keep full precision
	// and dates arrive as serial numbers
	RawValues bool `json:"raw_values"`
	// FillMergedCells copies a merged range's value into every cell it covers.
	// Off by default: a title merged across columns would otherwise read as a
	// header row.
	FillMergedCells bool `json:"fill_merged_cells"`
}

// DefaultLoaderConfig returns sensible defaults for spreadsheet loading
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		RawValues:       true,
		FillMergedCells: false,
	}
}
