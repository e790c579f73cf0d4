package converter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/nconklindev/g4rna-convert/internal/export"
	"github.com/nconklindev/g4rna-convert/internal/logger"
	"github.com/nconklindev/g4rna-convert/internal/types"

	"github.com/spf13/afero"
)

const (
	InputSeparator  = "\t"
	OutputSeparator = ","
	OutputExt       = ".csv"
	ExportExt       = ".xlsx"
)

// ErrOutputIsInput is returned when the CSV path would overwrite the input.
var ErrOutputIsInput = errors.New("output path is the input file")

// LineEnding is the platform line terminator written after every output row.
var LineEnding = func() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}()

// BaseName strips the trailing extension from an input path.
func BaseName(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// OutputPath returns the sibling CSV path for an input file.
func OutputPath(path string) string {
	return BaseName(path) + OutputExt
}

type Converter struct {
	fs   afero.Fs
	log  logger.Logger
	xlsx bool
}

type Option func(*Converter)

func WithLogger(l logger.Logger) Option {
	return func(c *Converter) { c.log = l }
}

// WithXLSX also writes the converted table as <base>.xlsx.
func WithXLSX(enabled bool) Option {
	return func(c *Converter) { c.xlsx = enabled }
}

func New(fs afero.Fs, opts ...Option) *Converter {
	c := &Converter{fs: fs, log: logger.Discard()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ConvertFile rewrites one tab-separated G4RNA file as <base>.csv.
// The progress channel, when non-nil, receives the fraction of input consumed.
func (c *Converter) ConvertFile(inputFile string, progressChan chan<- float64) (*types.ConversionResult, error) {
	inFile, err := c.fs.Open(inputFile)
	if err != nil {
		return nil, err
	}
	defer inFile.Close()

	var total int64
	if info, err := inFile.Stat(); err == nil {
		total = info.Size()
	}

	base := BaseName(inputFile)
	outputFile := base + OutputExt
	if filepath.Clean(outputFile) == filepath.Clean(inputFile) {
		return nil, fmt.Errorf("%w: %s", ErrOutputIsInput, inputFile)
	}

	outFile, err := c.fs.Create(outputFile)
	if err != nil {
		return nil, err
	}
	defer outFile.Close()

	c.log.Info("converting", "input", inputFile, "output", outputFile)

	var table *types.FileData
	if c.xlsx {
		table = &types.FileData{}
	}

	reportProgress := func(done int64) {
		if progressChan == nil || total <= 0 {
			return
		}
		select {
		case progressChan <- float64(done) / float64(total):
		default:
		}
	}

	reader := bufio.NewReader(inFile)
	writer := bufio.NewWriter(outFile)

	var (
		header     []string
		headerSeen bool
		rows       int
		lineNo     int
		consumed   int64
	)

	for {
		line, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, readErr
		}
		if line == "" && readErr != nil {
			break
		}
		lineNo++
		consumed += int64(len(line))

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			c.log.Debug("skipping blank line", "input", inputFile, "line", lineNo)
		} else {
			fields := strings.Split(line, InputSeparator)

			var out []string
			if !headerSeen {
				out, err = TransformHeader(fields)
			} else {
				out, err = TransformDataRow(fields)
			}
			if err != nil {
				var mre *MalformedRowError
				if errors.As(err, &mre) {
					mre.Path = inputFile
					mre.Line = lineNo
				}
				return nil, err
			}

			if _, err := writer.WriteString(strings.Join(out, OutputSeparator) + LineEnding); err != nil {
				return nil, err
			}

			if !headerSeen {
				header = out
				headerSeen = true
				if table != nil {
					table.Headers = out
				}
			} else {
				rows++
				if table != nil {
					table.Rows = append(table.Rows, out)
				}
			}
		}

		reportProgress(consumed)

		if readErr != nil {
			break
		}
	}

	if err := writer.Flush(); err != nil {
		return nil, err
	}
	if err := outFile.Close(); err != nil {
		return nil, err
	}

	result := &types.ConversionResult{
		InputFile:     inputFile,
		OutputFile:    outputFile,
		BaseName:      base,
		Header:        header,
		RowsProcessed: rows,
	}

	if table != nil {
		result.ExportFile = base + ExportExt
		if err := export.WriteXLSX(c.fs, result.ExportFile, table); err != nil {
			return nil, fmt.Errorf("export %s: %w", result.ExportFile, err)
		}
	}

	c.log.Info("converted", "input", inputFile, "rows", rows)

	return result, nil
}
