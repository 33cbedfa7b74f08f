package client

import (
	"fmt"
	"sync"

	"github.com/yourusername/ytfetch-go/internal/domain"
)

// MenuOption is one selectable entry of a FormatMenu
type MenuOption struct {
	Value string `json:"value"` // format id
	Label string `json:"label"`
}

// FormatMenu is the selection control populated by format lookups.
// Concurrent lookups are not coordinated; the last Replace wins.
type FormatMenu struct {
	mu       sync.Mutex
	options  []MenuOption
	selected string
}

// NewFormatMenu creates an empty menu
func NewFormatMenu() *FormatMenu {
	return &FormatMenu{}
}

// Replace drops every existing option and adds one per format, in order.
// The first option becomes the selection.
func (m *FormatMenu) Replace(formats []domain.Format) {
	options := make([]MenuOption, 0, len(formats))
	for _, f := range formats {
		options = append(options, MenuOption{Value: f.FormatID, Label: f.Label()})
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.options = options
	m.selected = ""
	if len(options) > 0 {
		m.selected = options[0].Value
	}
}

// Options returns a copy of the current options
func (m *FormatMenu) Options() []MenuOption {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]MenuOption, len(m.options))
	copy(out, m.options)
	return out
}

// Len returns the number of options
func (m *FormatMenu) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.options)
}

// Select makes value the current selection. It must be one of the options.
func (m *FormatMenu) Select(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, opt := range m.options {
		if opt.Value == value {
			m.selected = value
			return nil
		}
	}
	return fmt.Errorf("format %q is not in the list", value)
}

// SelectIndex selects the option at position i (zero based)
func (m *FormatMenu) SelectIndex(i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i < 0 || i >= len(m.options) {
		return fmt.Errorf("format index %d out of range (%d formats)", i, len(m.options))
	}
	m.selected = m.options[i].Value
	return nil
}

// Selected returns the selected format id, empty when the menu is empty
func (m *FormatMenu) Selected() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected
}
