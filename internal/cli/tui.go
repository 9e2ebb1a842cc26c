package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/provmap/pkg/dataset"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ProvinceListModel - Interactive province selection
// =============================================================================

// provinceEntry is one selector line.
type provinceEntry struct {
	Name        string
	Cities      int
	Connections int
	Available   bool // present in the loaded dataset
}

// ProvinceListModel is the bubbletea model of the province selector. Every
// configured province can be chosen; one missing from the dataset is shown
// dimmed and fails with PROVINCE_NOT_FOUND when rendered. Quitting selects
// nothing.
type ProvinceListModel struct {
	Entries  []provinceEntry
	Cursor   int
	Selected string
	Height   int
	Offset   int
}

// NewProvinceListModel lists the selector provinces, annotated from ds.
func NewProvinceListModel(selector []string, ds *dataset.Dataset) ProvinceListModel {
	entries := make([]provinceEntry, 0, len(selector))
	for _, name := range selector {
		e := provinceEntry{Name: name}
		if p, ok := ds.Province(name); ok {
			e.Available = true
			e.Cities = p.Len()
			e.Connections = p.ConnectionCount()
		}
		entries = append(entries, e)
	}
	return ProvinceListModel{Entries: entries, Height: 15}
}

func (m ProvinceListModel) Init() tea.Cmd {
	return nil
}

func (m ProvinceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Entries) == 0 {
				return m, nil
			}
			m.Selected = m.Entries[m.Cursor].Name
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ProvinceListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Province"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	if len(m.Entries) == 0 {
		b.WriteString(listDimStyle.Render("  no provinces configured"))
		b.WriteString("\n")
		return b.String()
	}

	end := m.Offset + m.Height
	if end > len(m.Entries) {
		end = len(m.Entries)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.Entries[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		cities, conns := "-", "-"
		if e.Available {
			cities = strconv.Itoa(e.Cities)
			conns = strconv.Itoa(e.Connections)
		}
		rows = append(rows, []string{cursor, e.Name, cities, conns})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Province", "Cities", "Connections").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Entries) {
				return lipgloss.NewStyle()
			}
			e := m.Entries[idx]
			base := lipgloss.NewStyle()
			if !e.Available {
				base = base.Foreground(colorDim)
			} else if col == 1 {
				base = base.Foreground(colorGreen)
			}
			if idx == m.Cursor {
				base = base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Entries))))

	return b.String()
}

// pickProvince runs the selector and returns the chosen province, or "" if
// the user quit without choosing.
func pickProvince(selector []string, ds *dataset.Dataset) (string, error) {
	final, err := tea.NewProgram(NewProvinceListModel(selector, ds)).Run()
	if err != nil {
		return "", fmt.Errorf("province selector: %w", err)
	}
	return final.(ProvinceListModel).Selected, nil
}
