// Package runner converts a list of G4RNA files in order and signals
// completion through the configured marker strategy.
package runner

import (
	"fmt"

	"github.com/nconklindev/g4rna-convert/internal/converter"
	"github.com/nconklindev/g4rna-convert/internal/logger"
	"github.com/nconklindev/g4rna-convert/internal/marker"
	"github.com/nconklindev/g4rna-convert/internal/types"
)

type Runner struct {
	conv   *converter.Converter
	marker *marker.Marker
	log    logger.Logger
}

func New(conv *converter.Converter, m *marker.Marker, log logger.Logger) *Runner {
	if log == nil {
		log = logger.Discard()
	}
	return &Runner{conv: conv, marker: m, log: log}
}

// Result is one converted file together with its per-file marker, if any.
type Result struct {
	*types.ConversionResult
	MarkerFile string
}

// ConvertOne converts a single file and touches its per-file marker.
func (r *Runner) ConvertOne(file string, progressChan chan<- float64) (*Result, error) {
	res, err := r.conv.ConvertFile(file, progressChan)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", file, err)
	}
	markerFile, err := r.marker.AfterFile(res)
	if err != nil {
		return nil, err
	}
	return &Result{ConversionResult: res, MarkerFile: markerFile}, nil
}

// Finish applies the batch marker to the files converted so far.
func (r *Runner) Finish(results []*types.ConversionResult) (string, error) {
	return r.marker.AfterBatch(results)
}

// Run converts files one at a time in the given order. The first failure
// stops the run: earlier outputs and markers stay, later files are not
// opened and no batch marker is written.
func (r *Runner) Run(files []string) ([]*types.ConversionResult, error) {
	results := make([]*types.ConversionResult, 0, len(files))
	for i, file := range files {
		r.log.Debug("processing file", "index", i+1, "total", len(files), "input", file)

		res, err := r.ConvertOne(file, nil)
		if err != nil {
			r.log.Error("conversion failed", "input", file, "err", err)
			return results, err
		}
		results = append(results, res.ConversionResult)
	}

	if _, err := r.Finish(results); err != nil {
		return results, err
	}
	return results, nil
}
