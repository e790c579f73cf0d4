package types

type ConversionResult struct {
	InputFile     string
	OutputFile    string
	BaseName      string
	ExportFile    string
	Header        []string
	RowsProcessed int
}

// FileData is a converted table kept in memory for export and preview.
type FileData struct {
	Headers []string
	Rows    [][]string
}
