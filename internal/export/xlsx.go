package export

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/nconklindev/g4rna-convert/internal/types"

	"github.com/spf13/afero"
	"github.com/xuri/excelize/v2"
)

const SheetName = "G4RNA"

// WriteXLSX writes the table to a single-sheet workbook at path.
func WriteXLSX(fs afero.Fs, path string, data *types.FileData) (err error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return err
	}

	if err := writeRow(sw, 1, data.Headers, false); err != nil {
		return err
	}
	for i, row := range data.Rows {
		if err := writeRow(sw, i+2, row, true); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}

	out, err := fs.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeRow(sw *excelize.StreamWriter, rowIdx int, fields []string, numeric bool) error {
	cell, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(fields))
	for i, v := range fields {
		values[i] = cellValue(v, numeric)
	}
	return sw.SetRow(cell, values)
}

// maxExactDigits is the number of significant digits Excel keeps.
const maxExactDigits = 15

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// cellValue stores numeric-looking data cells (scores, positions) as numbers.
// Values Excel would not show back verbatim stay text: Inf/NaN, hex,
// zero-padded identifiers and anything beyond 15 significant digits.
func cellValue(s string, numeric bool) interface{} {
	if !numeric {
		return s
	}
	trimmed := strings.TrimSpace(s)
	if !decimalPattern.MatchString(trimmed) {
		return s
	}

	mantissa := strings.TrimLeft(trimmed, "+-")
	if i := strings.IndexAny(mantissa, "eE"); i >= 0 {
		mantissa = mantissa[:i]
	}
	if len(mantissa) > 1 && mantissa[0] == '0' && mantissa[1] != '.' {
		return s
	}
	digits := strings.TrimLeft(strings.Replace(mantissa, ".", "", 1), "0")
	if len(digits) > maxExactDigits {
		return s
	}

	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return s
	}
	return v
}
