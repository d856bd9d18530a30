package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/apresai/koreanpodcast/internal/pipeline"
	"github.com/apresai/koreanpodcast/internal/script"
)

// menuItem represents a single configurable option in the TUI.
type menuItem struct {
	label    string
	value    string
	options  []menuOption
	required bool
	editing  bool
	cursor   int
}

type menuOption struct {
	label string
	value string
}

type menuState int

const (
	stateMenu menuState = iota
	stateEditing
	stateInputPicker
)

type tuiModel struct {
	items       []menuItem
	cursor      int
	state       menuState
	width       int
	err         error
	confirmed   bool
	cancelled   bool
	inputCursor int
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).MarginBottom(1)

	menuLabelStyle = lipgloss.NewStyle().Width(18).Align(lipgloss.Right).MarginRight(2)

	menuValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))

	menuValueDimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")).Italic(true)

	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)

	requiredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)

	optionStyle = lipgloss.NewStyle().PaddingLeft(4)

	selectedOptionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true).PaddingLeft(2)

	buttonStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")).Padding(0, 3)

	buttonDimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")).Padding(0, 3)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).MarginTop(1)

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)

	headerBorder = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("#7D56F4")).MarginBottom(1).PaddingBottom(0)
)

const (
	idxInput   = 0
	idxTopic   = 1
	idxStyle   = 2
	idxBanter  = 3
	idxDur     = 4
	idxMode    = 5
	idxVoice1  = 6
	idxVoice2  = 7
	idxGenerate = 8
)

func styleMenuOptions() []menuOption {
	var opts []menuOption
	for _, name := range script.StylePresetNames() {
		opts = append(opts, menuOption{label: name, value: name})
	}
	return opts
}

func buildMenuItems() []menuItem {
	return []menuItem{
		{label: "Input", required: true},
		{label: "Topic"},
		{label: "Style", value: "FRIENDLY", options: styleMenuOptions()},
		{label: "Banter level", value: "2", options: []menuOption{
			{label: "1 - reserved", value: "1"},
			{label: "2 - balanced (default)", value: "2"},
			{label: "3 - lively", value: "3"},
		}},
		{label: "Duration", value: "600", options: []menuOption{
			{label: "5 minutes", value: "300"},
			{label: "10 minutes (default)", value: "600"},
			{label: "20 minutes", value: "1200"},
			{label: "40 minutes", value: "2400"},
		}},
		{label: "Mode", value: "template", options: []menuOption{
			{label: "Template (deterministic, no API key)", value: "template"},
			{label: "LLM (Claude-driven, needs ANTHROPIC_API_KEY)", value: "llm"},
		}},
		{label: "Voice 1", value: "google:ko-KR-Neural2-C"},
		{label: "Voice 2", value: "google:ko-KR-Neural2-A"},
		{label: "Generate"},
	}
}

func initialTUIModel() tuiModel {
	return tuiModel{items: buildMenuItems(), cursor: idxInput, state: stateMenu}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) isTextInput(idx int) bool {
	return idx == idxTopic || idx == idxVoice1 || idx == idxVoice2
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch m.state {
		case stateMenu:
			return m.updateMenu(msg)
		case stateEditing:
			return m.updateEditing(msg)
		case stateInputPicker:
			return m.updateInputPicker(msg)
		}
	}
	return m, nil
}

func (m tuiModel) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter", " ":
		if m.cursor == idxGenerate {
			if m.items[idxInput].value == "" {
				m.err = fmt.Errorf("input is required")
				return m, nil
			}
			m.confirmed = true
			return m, tea.Quit
		}
		if m.cursor == idxInput {
			m.state = stateInputPicker
			m.inputCursor = 0
			m.err = nil
			return m, nil
		}
		m.state = stateEditing
		m.items[m.cursor].editing = true
		m.err = nil
	}
	return m, nil
}

var inputPickerOptions = []menuOption{
	{label: "Enter URL", value: "url"},
	{label: "Enter file path", value: "file"},
	{label: "Paste from clipboard", value: "clipboard"},
}

func (m tuiModel) updateInputPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		opt := inputPickerOptions[m.inputCursor]
		switch opt.value {
		case "url", "file":
			m.state = stateEditing
			m.items[idxInput].editing = true
			m.items[idxInput].value = ""
			return m, nil
		case "clipboard":
			content, err := readClipboard()
			if err != nil || strings.TrimSpace(content) == "" {
				m.err = fmt.Errorf("clipboard read failed or empty")
				m.state = stateMenu
				return m, nil
			}
			path, err := saveToTempFile(content)
			if err != nil {
				m.err = fmt.Errorf("save clipboard content: %v", err)
				m.state = stateMenu
				return m, nil
			}
			m.items[idxInput].value = path
			m.items[idxInput].label = fmt.Sprintf("Input (clipboard: %d words)", len(strings.Fields(content)))
			m.state = stateMenu
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
			return m, nil
		}
	case "esc":
		m.state = stateMenu
		return m, nil
	case "up", "k":
		if m.inputCursor > 0 {
			m.inputCursor--
		}
	case "down", "j":
		if m.inputCursor < len(inputPickerOptions)-1 {
			m.inputCursor++
		}
	}
	return m, nil
}

func (m tuiModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	idx := m.cursor
	item := &m.items[idx]

	if m.isTextInput(idx) || idx == idxInput {
		switch msg.String() {
		case "enter":
			item.editing = false
			m.state = stateMenu
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
			return m, nil
		case "esc":
			item.editing = false
			m.state = stateMenu
			return m, nil
		case "backspace":
			if len(item.value) > 0 {
				item.value = item.value[:len(item.value)-1]
			}
			return m, nil
		case "ctrl+u":
			item.value = ""
			return m, nil
		default:
			if msg.Type == tea.KeyRunes {
				item.value += string(msg.Runes)
			}
			return m, nil
		}
	}

	switch msg.String() {
	case "enter", " ":
		if item.cursor >= 0 && item.cursor < len(item.options) {
			item.value = item.options[item.cursor].value
		}
		item.editing = false
		m.state = stateMenu
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		return m, nil
	case "esc":
		item.editing = false
		m.state = stateMenu
		return m, nil
	case "up", "k":
		if item.cursor > 0 {
			item.cursor--
		}
	case "down", "j":
		if item.cursor < len(item.options)-1 {
			item.cursor++
		}
	}
	return m, nil
}

func (m tuiModel) View() string {
	var b strings.Builder
	b.WriteString(headerBorder.Render(titleStyle.Render("Korean Podcast Studio")))
	b.WriteString("\n")

	for i, item := range m.items {
		isActive := m.cursor == i

		if i == idxGenerate {
			b.WriteString("\n")
			if isActive {
				b.WriteString("  " + buttonStyle.Render(" Generate "))
			} else {
				b.WriteString("  " + buttonDimStyle.Render(" Generate "))
			}
			b.WriteString("\n")
			continue
		}

		cursor := "  "
		if isActive {
			cursor = cursorStyle.Render("> ")
		}
		label := item.label
		if item.required {
			label += requiredStyle.Render("*")
		}
		renderedLabel := menuLabelStyle.Render(label)

		var renderedValue string
		switch {
		case item.editing && (m.isTextInput(i) || i == idxInput):
			renderedValue = menuValueStyle.Render(item.value + "_")
		case item.value == "":
			placeholder := "(not set)"
			if i == idxTopic {
				placeholder = "(optional)"
			}
			renderedValue = menuValueDimStyle.Render(placeholder)
		default:
			displayVal := item.value
			for _, opt := range item.options {
				if opt.value == item.value {
					displayVal = opt.label
					break
				}
			}
			renderedValue = menuValueStyle.Render(displayVal)
		}
		b.WriteString(cursor + renderedLabel + " " + renderedValue + "\n")

		if item.editing && len(item.options) > 0 {
			for j, opt := range item.options {
				if j == item.cursor {
					b.WriteString(selectedOptionStyle.Render("> "+opt.label) + "\n")
				} else {
					b.WriteString(optionStyle.Render("  "+opt.label) + "\n")
				}
			}
		}
	}

	if m.state == stateInputPicker {
		b.WriteString("\n")
		for j, opt := range inputPickerOptions {
			prefix := "  "
			if j == m.inputCursor {
				prefix = cursorStyle.Render("> ")
			}
			b.WriteString(fmt.Sprintf("  %s%s\n", prefix, opt.label))
		}
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render("  Error: "+m.err.Error()) + "\n")
	}

	switch m.state {
	case stateMenu:
		b.WriteString(helpStyle.Render("  j/k or arrows to navigate | enter to edit | q to quit"))
	case stateEditing:
		if m.isTextInput(m.cursor) || m.cursor == idxInput {
			b.WriteString(helpStyle.Render("  type value | enter to confirm | esc to cancel | ctrl+u to clear"))
		} else {
			b.WriteString(helpStyle.Render("  j/k or arrows to pick | enter to select | esc to cancel"))
		}
	case stateInputPicker:
		b.WriteString(helpStyle.Render("  j/k or arrows to pick | enter to select | esc to cancel"))
	}
	b.WriteString("\n")
	return b.String()
}

func runInteractiveSetup() error {
	m := initialTUIModel()
	p := tea.NewProgram(m, tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	final := result.(tuiModel)
	if final.cancelled || !final.confirmed {
		return fmt.Errorf("generation cancelled")
	}

	flagInput = final.items[idxInput].value
	flagTopic = final.items[idxTopic].value
	if final.items[idxStyle].value != "" {
		flagStyle = final.items[idxStyle].value
	}
	if v, err := strconv.Atoi(final.items[idxBanter].value); err == nil {
		flagBanterLevel = v
	}
	if v, err := strconv.Atoi(final.items[idxDur].value); err == nil {
		flagDurationSec = v
	}
	flagMode = final.items[idxMode].value
	flagVoice1 = final.items[idxVoice1].value
	flagVoice2 = final.items[idxVoice2].value
	return nil
}

// readClipboard reads the system clipboard (macOS).
func readClipboard() (string, error) {
	out, err := exec.Command("pbpaste").Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// saveToTempFile saves clipboard content to a temp file under tempfiles/.
func saveToTempFile(content string) (string, error) {
	dir := filepath.Join(pipeline.OutputBaseDir, "tempfiles")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create tempfiles dir: %w", err)
	}
	name := fmt.Sprintf("input-%s.txt", time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}
	return path, nil
}
