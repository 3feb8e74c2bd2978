package calendar

import (
	"strings"
	"sync"
)

// DefaultColors is the category colour cycle.
var DefaultColors = []string{
	"#18aaff", "#ff6b6b", "#ffd93d", "#6bcb77",
	"#9b5de5", "#f15bb5", "#00bbf9", "#fee440",
}

// Palette hands out one colour per category name, in the order categories
// are first seen, cycling through its colour list. One Palette is created
// per session and shared by every renderer so colours stay stable.
type Palette struct {
	mu     sync.Mutex
	colors []string
	slots  map[string]string
}

// NewPalette uses DefaultColors when colors is empty.
func NewPalette(colors []string) *Palette {
	if len(colors) == 0 {
		colors = DefaultColors
	}
	cp := make([]string, len(colors))
	copy(cp, colors)
	return &Palette{colors: cp, slots: make(map[string]string)}
}

// Color returns the colour for category, assigning the next slot on first
// sight. Blank categories have no colour.
func (p *Palette) Color(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return ""
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.slots[category]; ok {
		return c
	}
	c := p.colors[len(p.slots)%len(p.colors)]
	p.slots[category] = c
	return c
}

// Len is the number of categories seen so far.
func (p *Palette) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.slots)
}
