package export

import (
	"testing"

	"github.com/nconklindev/g4rna-convert/internal/types"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX(t *testing.T) {
	fs := afero.NewMemMapFs()
	data := &types.FileData{
		Headers: []string{"seqId", "end", "start", "cGcC"},
		Rows: [][]string{
			{"GGGAGGG", "12", "1", "4.5"},
			{"GGUGGG", "40", "30", "n/a"},
		},
	}

	require.NoError(t, WriteXLSX(fs, "/out/a.xlsx", data))

	in, err := fs.Open("/out/a.xlsx")
	require.NoError(t, err)
	defer in.Close()

	f, err := excelize.OpenReader(in)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, SheetName, f.GetSheetName(0))

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, data.Headers, rows[0])
	assert.Equal(t, []string{"GGGAGGG", "12", "1", "4.5"}, rows[1])
	assert.Equal(t, []string{"GGUGGG", "40", "30", "n/a"}, rows[2])
}

func TestCellValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want interface{}
	}{
		{"decimal", "1.5", 1.5},
		{"negative", "-3.25", -3.25},
		{"zero", "0", 0.0},
		{"leading zero fraction", "0.75", 0.75},
		{"exponent", "1e3", 1000.0},
		{"sequence", "GGG", "GGG"},
		{"empty", "", ""},
		{"infinity", "Inf", "Inf"},
		{"nan", "NaN", "NaN"},
		{"hex", "0x1F", "0x1F"},
		{"zero padded id", "007", "007"},
		{"too many digits", "12345678901234567890", "12345678901234567890"},
		{"fifteen digits", "123456789012345", 123456789012345.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cellValue(tt.in, true))
		})
	}

	assert.Equal(t, "1.5", cellValue("1.5", false))
}

func TestWriteXLSX_KeepsTextThatWouldChange(t *testing.T) {
	fs := afero.NewMemMapFs()
	row := []string{"Inf", "007", "12345678901234567890"}
	data := &types.FileData{Headers: []string{"a", "b", "c"}, Rows: [][]string{row}}

	require.NoError(t, WriteXLSX(fs, "/a.xlsx", data))

	in, err := fs.Open("/a.xlsx")
	require.NoError(t, err)
	defer in.Close()

	f, err := excelize.OpenReader(in)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, row, rows[1])
}
