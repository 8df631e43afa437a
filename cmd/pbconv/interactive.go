package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/pbconv/dynamic"
	"github.com/wippyai/pbconv/wire"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// row is one line of the flattened record tree.
type row struct {
	path  string
	name  string
	kind  string
	value string
	full  string
	depth int
}

const previewLen = 48

func flatten(desc *wire.MessageDescriptor, rec *dynamic.Record, prefix string, depth int) []row {
	var rows []row
	for _, name := range rec.Keys() {
		v, _ := rec.Get(name)
		fd := desc.FieldByName(name)
		if fd == nil {
			continue
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}

		if fd.Repeated {
			items, _ := v.([]any)
			rows = append(rows, row{
				path:  path,
				name:  name,
				kind:  "repeated " + typeName(fd),
				value: fmt.Sprintf("%d items", len(items)),
				depth: depth,
			})
			for i, item := range items {
				rows = append(rows, valueRows(fd, item, fmt.Sprintf("%s[%d]", path, i), fmt.Sprintf("[%d]", i), depth+1)...)
			}
			continue
		}
		rows = append(rows, valueRows(fd, v, path, name, depth)...)
	}
	return rows
}

func valueRows(fd *wire.FieldDescriptor, v any, path, name string, depth int) []row {
	if nested, ok := v.(*dynamic.Record); ok && fd.Message != nil {
		head := row{
			path:  path,
			name:  name,
			kind:  typeName(fd),
			value: fmt.Sprintf("%d fields", nested.Len()),
			depth: depth,
		}
		return append([]row{head}, flatten(fd.Message, nested, path, depth+1)...)
	}

	full := formatValue(v)
	preview := full
	if len(preview) > previewLen {
		preview = preview[:previewLen] + "…"
	}
	return []row{{path: path, name: name, kind: typeName(fd), value: preview, full: full, depth: depth}}
}

func typeName(fd *wire.FieldDescriptor) string {
	switch {
	case fd.Message != nil:
		return fd.Message.Name
	case fd.Enum != nil:
		return fd.Enum.Name
	}
	return fd.Kind.String()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case []byte:
		return hex.EncodeToString(x)
	case string:
		return strconv.Quote(x)
	}
	return fmt.Sprintf("%v", v)
}

type viewerModel struct {
	desc     *wire.MessageDescriptor
	rows     []row
	visible  []int
	filter   textinput.Model
	size     int
	selected int
	offset   int
	height   int
	detail   bool
}

func newViewerModel(desc *wire.MessageDescriptor, rec *dynamic.Record, size int) *viewerModel {
	ti := textinput.New()
	ti.Placeholder = "filter fields"
	ti.Prompt = "/ "
	ti.Width = 40
	ti.Focus()

	m := &viewerModel{
		desc:   desc,
		rows:   flatten(desc, rec, "", 0),
		filter: ti,
		size:   size,
		height: 20,
	}
	m.applyFilter()
	return m
}

func (m *viewerModel) applyFilter() {
	q := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for i, r := range m.rows {
		if q == "" || strings.Contains(strings.ToLower(r.path), q) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
	m.scroll()
}

func (m *viewerModel) scroll() {
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+m.height {
		m.offset = m.selected - m.height + 1
	}
}

func (m *viewerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// title, filter, blank lines and help
		m.height = max(msg.Height-6, 1)
		m.scroll()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.detail {
				m.detail = false
				return m, nil
			}
			return m, tea.Quit

		case "up", "ctrl+k":
			if m.selected > 0 {
				m.selected--
				m.scroll()
			}
			return m, nil

		case "down", "ctrl+j":
			if m.selected < len(m.visible)-1 {
				m.selected++
				m.scroll()
			}
			return m, nil

		case "enter":
			if len(m.visible) > 0 {
				m.detail = !m.detail
			}
			return m, nil
		}
	}

	if m.detail {
		return m, nil
	}
	var cmd tea.Cmd
	prev := m.filter.Value()
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != prev {
		m.applyFilter()
	}
	return m, cmd
}

func (m *viewerModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("pbconv"))
	b.WriteString(" ")
	b.WriteString(typeStyle.Render(m.desc.Name))
	b.WriteString(helpStyle.Render(fmt.Sprintf("  %d bytes", m.size)))
	b.WriteString("\n\n")

	if m.detail {
		r := m.rows[m.visible[m.selected]]
		b.WriteString(fieldStyle.Render(r.path))
		b.WriteString(" ")
		b.WriteString(typeStyle.Render(r.kind))
		b.WriteString("\n\n")
		value := r.full
		if value == "" {
			value = r.value
		}
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter/esc back • ctrl+c quit"))
		return b.String()
	}

	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		b.WriteString(errorStyle.Render("no matching fields"))
		b.WriteString("\n")
	}
	end := min(m.offset+m.height, len(m.visible))
	for i := m.offset; i < end; i++ {
		line := m.formatRow(m.rows[m.visible[i]])
		if i == m.selected {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • type to filter • enter details • esc quit"))
	return b.String()
}

func (m *viewerModel) formatRow(r row) string {
	return strings.Repeat("  ", r.depth) +
		fieldStyle.Render(r.name) + ": " +
		typeStyle.Render(r.kind) + " " +
		valueStyle.Render(r.value)
}

func runInteractive(desc *wire.MessageDescriptor, rec *dynamic.Record, size int) error {
	p := tea.NewProgram(newViewerModel(desc, rec, size), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
