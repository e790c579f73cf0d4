package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/nconklindev/g4rna-convert/internal/converter"
	"github.com/nconklindev/g4rna-convert/internal/marker"
	"github.com/nconklindev/g4rna-convert/internal/runner"
	"github.com/nconklindev/g4rna-convert/internal/types"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel(t *testing.T) (Model, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	m := marker.New(fsys, marker.PerFile, marker.WithOutput(&bytes.Buffer{}))
	r := runner.New(converter.New(fsys), m, nil)
	return InitialModel(r, "/data"), fsys
}

func completeMsg() conversionCompleteMsg {
	return conversionCompleteMsg{result: &runner.Result{
		ConversionResult: &types.ConversionResult{
			InputFile:     "/data/a.tsv",
			OutputFile:    "/data/a.csv",
			BaseName:      "/data/a",
			Header:        []string{"id", "valB", "valA"},
			RowsProcessed: 2,
		},
		MarkerFile: "/data/a_done.txt",
	}}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestUpdate_ConversionComplete(t *testing.T) {
	m, _ := testModel(t)
	m.state = stateProcessing

	next, _ := m.Update(completeMsg())
	got := next.(Model)

	assert.Equal(t, stateComplete, got.state)
	require.Len(t, got.Results(), 1)
	assert.Equal(t, "/data/a.csv", got.Results()[0].OutputFile)

	view := got.View()
	assert.Contains(t, view, "Conversion Complete")
	assert.Contains(t, view, "/data/a_done.txt")
	assert.Contains(t, view, "id, valB, valA")
}

func TestUpdate_ConvertAnother(t *testing.T) {
	m, _ := testModel(t)
	m.state = stateProcessing
	next, _ := m.Update(completeMsg())

	next, cmd := next.(Model).Update(tea.KeyMsg{Type: tea.KeyEnter})
	got := next.(Model)

	assert.Equal(t, stateFilePicker, got.state)
	assert.NotNil(t, cmd)
	assert.Len(t, got.Results(), 1)
	assert.Contains(t, got.View(), "1 file(s) converted")
}

func TestUpdate_QuitFromComplete(t *testing.T) {
	m, _ := testModel(t)
	m.state = stateProcessing
	next, _ := m.Update(completeMsg())

	_, cmd := next.(Model).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.True(t, isQuit(cmd))
}

func TestUpdate_IgnoresQuitWhileProcessing(t *testing.T) {
	m, _ := testModel(t)
	m.state = stateProcessing

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Nil(t, cmd)
	assert.Equal(t, stateProcessing, next.(Model).state)
}

func TestUpdate_Error(t *testing.T) {
	m, _ := testModel(t)
	m.state = stateProcessing

	next, _ := m.Update(conversionCompleteMsg{err: errors.New("boom")})
	got := next.(Model)

	assert.Equal(t, stateError, got.state)
	assert.Empty(t, got.Results())
	assert.EqualError(t, got.Err(), "boom")
	assert.Contains(t, got.View(), "boom")
}

func TestUpdate_FailureAfterSuccessKeepsError(t *testing.T) {
	m, fsys := testModel(t)
	require.NoError(t, afero.WriteFile(fsys, "/data/b.tsv", []byte("id\tvalA\tvalB\textra\nr1\tx\ty\n"), 0o644))

	m.state = stateProcessing
	next, _ := m.Update(completeMsg())
	assert.NoError(t, next.(Model).Err())

	res, err := next.(Model).runner.ConvertOne("/data/b.tsv", nil)
	require.Error(t, err)
	next, _ = next.(Model).Update(conversionCompleteMsg{result: res, err: err})
	got := next.(Model)

	assert.Equal(t, stateError, got.state)
	assert.Len(t, got.Results(), 1)
	assert.ErrorIs(t, got.Err(), converter.ErrMalformedRow)

	_, cmd := got.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, isQuit(cmd))
}

func TestStartConversion(t *testing.T) {
	m, fsys := testModel(t)
	require.NoError(t, afero.WriteFile(fsys, "/data/a.tsv", []byte("id\tvalA\tvalB\textra\nr1\tx\ty\tz\n"), 0o644))

	started, _ := m.startConversion("/data/a.tsv")
	assert.Equal(t, stateProcessing, started.state)

	// Drain the worker the same way the program loop would.
	go func() {
		res, err := started.runner.ConvertOne("/data/a.tsv", started.progressChan)
		started.resultChan <- conversionCompleteMsg{result: res, err: err}
		close(started.progressChan)
		close(started.resultChan)
	}()

	var msg tea.Msg
	for {
		msg = waitForProgress(started.progressChan, started.resultChan)()
		if _, ok := msg.(progressMsg); !ok {
			break
		}
	}

	done, ok := msg.(conversionCompleteMsg)
	require.True(t, ok, "got %T", msg)
	require.NoError(t, done.err)
	assert.Equal(t, "/data/a_done.txt", done.result.MarkerFile)

	out, err := afero.ReadFile(fsys, "/data/a.csv")
	require.NoError(t, err)
	assert.Equal(t, "id,valB,valA,extra"+converter.LineEnding+"x,z,y"+converter.LineEnding, string(out))
}

func TestWaitForProgress_NilChannel(t *testing.T) {
	assert.Nil(t, waitForProgress(nil, nil)())
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "short", truncatePath("short", 30))
	assert.Equal(t, "...ghij", truncatePath("abcdefghij", 7))
}
