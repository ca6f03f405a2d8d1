// Package palette holds the fixed named colors marks can refer to.
package palette

// DefaultKey is used whenever a color key is missing or unknown.
const DefaultKey = "blue"

// Entry is a named color.
type Entry struct {
	Key string
	Hex string
}

// Palette is an ordered set of named colors. Order matters for index based picks.
type Palette struct {
	entries []Entry
	byKey   map[string]string
}

// New builds a palette from entries. Later duplicates override earlier ones.
func New(entries ...Entry) *Palette {
	p := &Palette{byKey: make(map[string]string, len(entries))}
	for _, e := range entries {
		if _, seen := p.byKey[e.Key]; !seen {
			p.entries = append(p.entries, e)
		} else {
			for i := range p.entries {
				if p.entries[i].Key == e.Key {
					p.entries[i] = e
				}
			}
		}
		p.byKey[e.Key] = e.Hex
	}
	return p
}

// Default returns the stock palette.
func Default() *Palette {
	return New(
		Entry{"yellow", "#f57c00"},
		Entry{"green", "#4caf50"},
		Entry{"blue", "#2196f3"},
		Entry{"purple", "#9c27b0"},
		Entry{"pink", "#e91e63"},
		Entry{"orange", "#ff5722"},
		Entry{"red", "#f44336"},
		Entry{"gray", "#757575"},
		Entry{"cyan", "#00bcd4"},
	)
}

// Resolve returns the hex value for key and whether key is known.
func (p *Palette) Resolve(key string) (string, bool) {
	hex, ok := p.byKey[key]
	return hex, ok
}

// Color returns the hex value for key, falling back to the default color.
func (p *Palette) Color(key string) string {
	if hex, ok := p.byKey[key]; ok {
		return hex
	}
	if hex, ok := p.byKey[DefaultKey]; ok {
		return hex
	}
	if len(p.entries) > 0 {
		return p.entries[0].Hex
	}
	return ""
}

// At returns the color at position i modulo the palette size.
func (p *Palette) At(i uint64) string {
	if len(p.entries) == 0 {
		return ""
	}
	return p.entries[i%uint64(len(p.entries))].Hex
}

// Len returns the number of colors.
func (p *Palette) Len() int { return len(p.entries) }

// Keys returns color keys in palette order.
func (p *Palette) Keys() []string {
	keys := make([]string, 0, len(p.entries))
	for _, e := range p.entries {
		keys = append(keys, e.Key)
	}
	return keys
}
