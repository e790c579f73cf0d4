package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nconklindev/g4rna-convert/internal/runner"
	"github.com/nconklindev/g4rna-convert/internal/types"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type state int

const (
	stateFilePicker state = iota
	stateProcessing
	stateComplete
	stateError
)

// AllowedTypes are the extensions offered by the file picker.
var AllowedTypes = []string{".tsv", ".txt"}

type Model struct {
	state        state
	runner       *runner.Runner
	filepicker   filepicker.Model
	selectedFile string
	result       *runner.Result
	results      []*types.ConversionResult
	err          error
	width        int
	height       int
	progress     progress.Model
	progressChan chan float64
	resultChan   chan conversionCompleteMsg
}

type conversionCompleteMsg struct {
	result *runner.Result
	err    error
}

type progressMsg float64

type waitForProgressMsg struct{}

func InitialModel(r *runner.Runner, dir string) Model {
	fp := filepicker.New()
	fp.AllowedTypes = AllowedTypes
	fp.CurrentDirectory = dir

	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(accent)
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(highlight)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(highlight)
	fp.Styles.File = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(muted)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(accent).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(muted)

	prog := progress.New(progress.WithGradient(string(accent), string(highlight)))

	return Model{
		state:      stateFilePicker,
		runner:     r,
		filepicker: fp,
		progress:   prog,
	}
}

// Results lists every file converted during the session, in order.
func (m Model) Results() []*types.ConversionResult {
	return m.results
}

// Err is the conversion failure that ended the session, if any.
func (m Model) Err() error {
	return m.err
}

func (m Model) Init() tea.Cmd {
	return m.filepicker.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Leave room for the title, byline and help text
		height := msg.Height - 12
		if height < 5 {
			height = 5
		}
		m.filepicker.SetHeight(height)

		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateFilePicker, stateProcessing:
			switch msg.String() {
			case "ctrl+c", "q":
				if m.state == stateProcessing {
					// Let the running conversion finish first.
					return m, nil
				}
				return m, tea.Quit
			}

		case stateComplete:
			switch msg.String() {
			case "ctrl+c", "q", "esc":
				return m, tea.Quit
			case "enter", "n":
				m.state = stateFilePicker
				m.result = nil
				// Re-read the directory so new outputs show up.
				return m, m.filepicker.Init()
			}
			return m, nil

		case stateError:
			switch msg.String() {
			case "ctrl+c", "q", "enter", "esc":
				return m, tea.Quit
			}
			return m, nil
		}

	case conversionCompleteMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.result = msg.result
		m.results = append(m.results, msg.result.ConversionResult)
		m.state = stateComplete
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		if m.state == stateProcessing {
			cmd := m.progress.SetPercent(float64(msg))
			return m, tea.Batch(cmd, waitForProgress(m.progressChan, m.resultChan))
		}
		return m, nil

	case waitForProgressMsg:
		return m, waitForProgress(m.progressChan, m.resultChan)
	}

	if m.state == stateFilePicker {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			return m.startConversion(path)
		}

		return m, cmd
	}

	return m, nil
}

func (m Model) startConversion(path string) (Model, tea.Cmd) {
	m.state = stateProcessing
	m.selectedFile = path
	m.progressChan = make(chan float64, 100)
	m.resultChan = make(chan conversionCompleteMsg, 1)

	progressChan := m.progressChan
	resultChan := m.resultChan
	r := m.runner

	cmd := tea.Batch(
		func() tea.Msg {
			go func() {
				res, err := r.ConvertOne(path, progressChan)
				resultChan <- conversionCompleteMsg{result: res, err: err}
				close(progressChan)
				close(resultChan)
			}()
			return waitForProgressMsg{}
		},
		m.progress.SetPercent(0),
	)

	return m, cmd
}

func waitForProgress(progressChan chan float64, resultChan chan conversionCompleteMsg) tea.Cmd {
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}

		p, ok := <-progressChan
		if !ok {
			res, ok := <-resultChan
			if ok {
				return res
			}
			return nil
		}

		return progressMsg(p)
	}
}

func (m Model) View() string {
	switch m.state {
	case stateFilePicker:
		return m.viewFilePicker()
	case stateProcessing:
		return m.viewProcessing()
	case stateComplete:
		return m.viewComplete()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("G4RNA → CSV"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Select a G4RNA .tsv file to convert"))
	if n := len(m.results); n > 0 {
		s.WriteString("\n")
		s.WriteString(SuccessStyle.Render(fmt.Sprintf("✓ %d file(s) converted this session", n)))
	}
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("enter: convert • q: quit"))

	return s.String()
}

func (m Model) viewProcessing() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Converting..."))
	s.WriteString("\n\n")
	s.WriteString(filepath.Base(m.selectedFile))
	s.WriteString("\n\n")
	s.WriteString(m.progress.View())

	return BoxStyle.Render(s.String())
}

func (m Model) viewComplete() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("✓ Conversion Complete!"))
	s.WriteString("\n\n")

	maxPathLen := m.width - 20
	if maxPathLen < 30 {
		maxPathLen = 30
	}

	s.WriteString(fmt.Sprintf("Input:  %s\n", truncatePath(m.result.InputFile, maxPathLen)))
	s.WriteString(SuccessStyle.Render(fmt.Sprintf("Output: %s", truncatePath(m.result.OutputFile, maxPathLen))))
	s.WriteString("\n")
	if m.result.ExportFile != "" {
		s.WriteString(fmt.Sprintf("Excel:  %s\n", truncatePath(m.result.ExportFile, maxPathLen)))
	}
	if m.result.MarkerFile != "" {
		s.WriteString(PathStyle.Render(fmt.Sprintf("Marker: %s", truncatePath(m.result.MarkerFile, maxPathLen))))
		s.WriteString("\n")
	}
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("Columns: %s\n", strings.Join(m.result.Header, ", ")))
	s.WriteString(fmt.Sprintf("Rows written: %d\n", m.result.RowsProcessed))
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("enter: convert another • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	s.WriteString(m.err.Error())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press enter to exit"))

	return BoxStyle.Render(s.String())
}

func truncatePath(p string, limit int) string {
	if len(p) <= limit {
		return p
	}
	return "..." + p[len(p)-limit+3:]
}

// Run starts the interactive session in dir and returns what was converted.
func Run(r *runner.Runner, dir string) ([]*types.ConversionResult, error) {
	p := tea.NewProgram(InitialModel(r, dir), tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m, ok := final.(Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", final)
	}
	return m.Results(), m.Err()
}
