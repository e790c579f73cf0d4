// Package cli wires the g4rna-convert command line onto the converter.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nconklindev/g4rna-convert/internal/config"
	"github.com/nconklindev/g4rna-convert/internal/converter"
	"github.com/nconklindev/g4rna-convert/internal/logger"
	"github.com/nconklindev/g4rna-convert/internal/marker"
	"github.com/nconklindev/g4rna-convert/internal/runner"
	"github.com/nconklindev/g4rna-convert/internal/types"
	"github.com/nconklindev/g4rna-convert/internal/ui"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ErrUsage marks invocations that are missing required input.
var ErrUsage = errors.New("usage error")

type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCmd builds the root command. All file access goes through fs.
func NewRootCmd(fs afero.Fs, info BuildInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "g4rna-convert --files FILE [FILE...]",
		Short: "Convert G4RNA tab-separated output to CSV",
		Long: `g4rna-convert rewrites G4RNA tab-separated result files as comma-separated
files next to the input (<name>.csv).

The header keeps every column with columns 2 and 3 swapped. Data rows drop
their first column, then swap columns 2 and 3. When all files are converted
an empty marker file is touched: one <name>_done.txt per file with
--marker per-file (default), or a single g4rna_convert_done.txt beside the
first input with --marker batch.

Settings can also come from G4RNA_CONVERT_* environment variables or a
g4rna-convert.yaml file in the working directory.`,
		Example: `  g4rna-convert --files sample1.tsv sample2.tsv
  g4rna-convert -f run/a.tsv -f run/b.tsv --marker batch --xlsx`,
		Args:          cobra.ArbitraryArgs,
		Version:       info.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, fs, args)
		},
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		_ = c.Usage()
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})
	cmd.SetVersionTemplate(fmt.Sprintf("g4rna-convert %s\ncommit: %s\nbuilt: %s\n", info.Version, info.Commit, info.Date))

	flags := cmd.Flags()
	flags.StringArrayP(config.KeyFiles, "f", nil, "G4RNA output files to convert (paths after the flag are added too)")
	flags.String(config.KeyMarker, string(marker.PerFile), "completion marker strategy: per-file or batch")
	flags.String(config.KeyMarkerSuffix, marker.DefaultSuffix, "suffix of per-file markers, appended to the input name without extension")
	flags.String(config.KeyBatchMarkerName, marker.DefaultBatchName, "file name of the batch marker")
	flags.Bool(config.KeyXLSX, false, "also write <name>.xlsx")
	flags.String(config.KeyLogLevel, string(logger.WarnLevel), "log level: debug, info, warn or error")
	flags.BoolP(config.KeyInteractive, "i", false, "pick files interactively")
	flags.String("config", "", "config file (default ./g4rna-convert.yaml)")

	return cmd
}

func run(cmd *cobra.Command, fs afero.Fs, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(viper.New(), fs, cmd.Flags(), configFile)
	if err != nil {
		return err
	}

	log := logger.New(&logger.Config{
		Level:      cfg.LogLevel,
		Output:     cmd.ErrOrStderr(),
		TimeFormat: "15:04:05",
	})
	if cfg.ConfigFile != "" {
		log.Info("using config file", "path", cfg.ConfigFile)
	}

	files := append(cfg.Files, args...)

	var markerOut io.Writer = cmd.OutOrStdout()
	if cfg.Interactive {
		// The UI shows marker paths itself.
		markerOut = io.Discard
	}

	conv := converter.New(fs, converter.WithLogger(log), converter.WithXLSX(cfg.XLSX))
	m := marker.New(fs, cfg.Marker,
		marker.WithSuffix(cfg.MarkerSuffix),
		marker.WithBatchName(cfg.BatchMarkerName),
		marker.WithOutput(markerOut),
	)
	r := runner.New(conv, m, log)

	if cfg.Interactive {
		if len(files) > 0 {
			_ = cmd.Usage()
			return fmt.Errorf("%w: --interactive cannot be combined with input files", ErrUsage)
		}
		return runInteractive(cmd, r)
	}

	if len(files) == 0 {
		_ = cmd.Usage()
		return fmt.Errorf("%w: at least one input file is required (--files)", ErrUsage)
	}

	_, err = r.Run(files)
	return err
}

func runInteractive(cmd *cobra.Command, r *runner.Runner) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	results, err := ui.Run(r, dir)
	return finishSession(cmd.OutOrStdout(), r, results, err)
}

// finishSession writes the batch marker for an interactive session unless a
// conversion failed. Files converted before the failure keep their per-file
// markers.
func finishSession(w io.Writer, r *runner.Runner, results []*types.ConversionResult, sessionErr error) error {
	if sessionErr != nil {
		return sessionErr
	}

	path, err := r.Finish(results)
	if err != nil {
		return err
	}
	if path != "" {
		fmt.Fprintf(w, "conversion complete: %s\n", path)
	}
	return nil
}

// Execute runs the root command against the real filesystem.
func Execute(info BuildInfo) error {
	return NewRootCmd(afero.NewOsFs(), info).Execute()
}
