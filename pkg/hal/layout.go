package hal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RowLines are the lines of the red, green and blue LEDs of a key row.
type RowLines struct {
	R Line `yaml:"r"`
	G Line `yaml:"g"`
	B Line `yaml:"b"`
}

// Channel returns the line of channel n in R, G, B order.
func (r RowLines) Channel(n int) Line {
	switch n {
	case 0:
		return r.R
	case 1:
		return r.G
	default:
		return r.B
	}
}

// Layout maps the LED matrix onto lines.
type Layout struct {
	Chip    string     `yaml:"chip"`
	Columns []Line     `yaml:"columns"`
	Rows    []RowLines `yaml:"rows"`
	Power   *Line      `yaml:"power,omitempty"`
}

// DefaultLayout numbers the lines of a rows x cols matrix: columns first,
// then the row sub-lines, then the power line.
func DefaultLayout(rows, cols int) *Layout {
	l := &Layout{Chip: "gpiochip0"}
	for c := 0; c < cols; c++ {
		l.Columns = append(l.Columns, Line(c))
	}
	for r := 0; r < rows; r++ {
		base := Line(cols + r*3)
		l.Rows = append(l.Rows, RowLines{R: base, G: base + 1, B: base + 2})
	}
	power := Line(cols + rows*3)
	l.Power = &power
	return l
}

// LoadLayout reads a YAML board file.
func LoadLayout(fn string) (*Layout, error) {
	data, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}
	return ParseLayout(data)
}

// ParseLayout decodes a YAML board description.
func ParseLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse layout: %v", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Validate checks all lines are assigned once.
func (l *Layout) Validate() error {
	if len(l.Columns) == 0 {
		return &LayoutError{Reason: "no columns"}
	}
	if len(l.Rows) == 0 {
		return &LayoutError{Reason: "no rows"}
	}
	seen := make(map[Line]bool)
	for _, line := range l.Lines() {
		if line < 0 {
			return &LayoutError{Reason: fmt.Sprintf("negative line %d", line)}
		}
		if seen[line] {
			return &LayoutError{Reason: fmt.Sprintf("line %d assigned twice", line)}
		}
		seen[line] = true
	}
	return nil
}

// Lines lists every line of the layout.
func (l *Layout) Lines() []Line {
	lines := append([]Line{}, l.Columns...)
	for _, r := range l.Rows {
		lines = append(lines, r.R, r.G, r.B)
	}
	if l.Power != nil {
		lines = append(lines, *l.Power)
	}
	return lines
}

// MaxLine returns the largest line number.
func (l *Layout) MaxLine() Line {
	var max Line
	for _, line := range l.Lines() {
		if line > max {
			max = line
		}
	}
	return max
}

// Encode renders the layout as YAML.
func (l *Layout) Encode() ([]byte, error) {
	return yaml.Marshal(l)
}
