package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/rigidsim/internal/config"
)

// Menu picks a preset and hands over to its live view.
type Menu struct {
	presets []string
	cursor  int
	st      styles
	live    *Model
	err     error
}

func NewMenu() Menu {
	return Menu{presets: config.ListPresets(), st: newStyles(Themes[0])}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.live != nil {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			m.live.runner.Close()
			m.live = nil
			return m, tea.ClearScreen
		}
		next, cmd := m.live.Update(msg)
		lm := next.(Model)
		m.live = &lm
		return m, cmd
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		lm, err := NewModel(config.GetPreset(m.presets[m.cursor]))
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.live = &lm
		return m, tea.Batch(tea.ClearScreen, lm.Init())
	}
	return m, nil
}

func (m Menu) View() string {
	if m.live != nil {
		return m.live.View()
	}
	var b strings.Builder
	b.WriteString("\n    " + m.st.title.Render("r i g i d s i m") + "\n\n")
	for i, name := range m.presets {
		cfg := config.GetPreset(name)
		desc := fmt.Sprintf("%d bodies, %d steps", len(cfg.Bodies), cfg.Steps)
		if i == m.cursor {
			b.WriteString("    " + m.st.title.Render("▸ ") + m.st.value.Render(fmt.Sprintf("%-12s", name)) + m.st.label.Render(desc) + "\n")
		} else {
			b.WriteString("      " + m.st.label.Render(fmt.Sprintf("%-12s", name)) + m.st.muted.Render(desc) + "\n")
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + m.st.recording.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + m.st.muted.Render("    ↑↓ select   enter start   esc back   q quit") + "\n")
	return b.String()
}

// RunInteractive opens the preset menu.
func RunInteractive() error {
	_, err := tea.NewProgram(NewMenu(), tea.WithAltScreen()).Run()
	return err
}

// Run opens the live view for cfg.
func Run(cfg *config.Config) error {
	m, err := NewModel(cfg)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
