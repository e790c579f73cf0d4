// Package marker writes the empty sentinel files that tell a pipeline
// orchestrator a conversion run has finished.
package marker

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nconklindev/g4rna-convert/internal/types"

	"github.com/spf13/afero"
)

type Strategy string

const (
	PerFile Strategy = "per-file"
	Batch   Strategy = "batch"
)

const (
	DefaultSuffix    = "_done.txt"
	DefaultBatchName = "g4rna_convert_done.txt"
	// LegacySuffix is the per-file suffix older pipelines poll for.
	LegacySuffix = "_S2507I_g4rna_convert_end.txt"
)

func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(s); st {
	case PerFile, Batch:
		return st, nil
	}
	return "", fmt.Errorf("invalid marker strategy %q (want %s or %s)", s, PerFile, Batch)
}

// Touch creates path as an empty file, or bumps its timestamps if it exists.
// Existing content is left alone.
func Touch(fs afero.Fs, path string) error {
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	now := time.Now()
	return fs.Chtimes(path, now, now)
}

type Marker struct {
	fs        afero.Fs
	strategy  Strategy
	suffix    string
	batchName string
	out       io.Writer
}

type Option func(*Marker)

func WithSuffix(suffix string) Option {
	return func(m *Marker) {
		if suffix != "" {
			m.suffix = suffix
		}
	}
}

func WithBatchName(name string) Option {
	return func(m *Marker) {
		if name != "" {
			m.batchName = name
		}
	}
}

// WithOutput sets where marker announcements are printed (stdout by default).
func WithOutput(w io.Writer) Option {
	return func(m *Marker) { m.out = w }
}

func New(fs afero.Fs, strategy Strategy, opts ...Option) *Marker {
	m := &Marker{
		fs:        fs,
		strategy:  strategy,
		suffix:    DefaultSuffix,
		batchName: DefaultBatchName,
		out:       os.Stdout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Marker) Strategy() Strategy {
	return m.strategy
}

// FilePath is the per-file marker path for a converted file.
func (m *Marker) FilePath(res *types.ConversionResult) string {
	return res.BaseName + m.suffix
}

// BatchPath is the batch marker path, placed next to the first input.
func (m *Marker) BatchPath(firstInput string) string {
	return filepath.Join(filepath.Dir(firstInput), m.batchName)
}

// AfterFile touches the per-file marker and prints its path. It returns the
// marker path, or "" when the strategy is batch.
func (m *Marker) AfterFile(res *types.ConversionResult) (string, error) {
	if m.strategy != PerFile {
		return "", nil
	}
	path := m.FilePath(res)
	if err := Touch(m.fs, path); err != nil {
		return "", fmt.Errorf("touch marker %s: %w", path, err)
	}
	fmt.Fprintln(m.out, path)
	return path, nil
}

// AfterBatch touches the batch marker once every file has converted. It
// returns the marker path, or "" when nothing was written.
func (m *Marker) AfterBatch(results []*types.ConversionResult) (string, error) {
	if m.strategy != Batch || len(results) == 0 {
		return "", nil
	}
	path := m.BatchPath(results[0].InputFile)
	if err := Touch(m.fs, path); err != nil {
		return "", fmt.Errorf("touch marker %s: %w", path, err)
	}
	fmt.Fprintf(m.out, "conversion complete: %s\n", path)
	return path, nil
}
