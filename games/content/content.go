/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package content loads the catalog of historical periods that chronomatch
// games are played against. A catalog maps a period id to its title and the
// ordered list of date/event pairs; the position of a pair in that list is
// the answer key for every game built from it.
package content

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
)

var (
	ErrInvalidContent = errors.New("invalid content")
	ErrUnknownFormat  = errors.New("unknown content format")
)

//go:embed events.json
var defaultCatalog []byte

// Format selects the parser used for a catalog document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// EventPair is a historical date and the event that happened on it.
type EventPair struct {
	Date  string `json:"date" yaml:"date"`
	Event string `json:"event" yaml:"event"`
}

// Period is a titled, ordered list of event pairs.
type Period struct {
	ID       string      `json:"id" yaml:"-"`
	Title    string      `json:"title" yaml:"title"`
	Subtitle string      `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Events   []EventPair `json:"events" yaml:"events"`
}

type document struct {
	Order   []string          `json:"order,omitempty" yaml:"order,omitempty"`
	Periods map[string]Period `json:"periods" yaml:"periods"`
}

// Catalog is a read-only set of periods keyed by id.
type Catalog struct {
	periods map[string]Period
	order   []string
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog, FormatJSON)
}

// Load reads a catalog from path, picking the parser from the file extension.
// An empty path loads the embedded catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	format, err := formatFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	c, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return c, nil
}

func formatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Parse decodes and validates a catalog document.
func Parse(data []byte, format Format) (*Catalog, error) {
	var doc document

	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		return nil, ErrUnknownFormat
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}

	return newCatalog(doc)
}

func newCatalog(doc document) (*Catalog, error) {
	if len(doc.Periods) == 0 {
		return nil, fmt.Errorf("%w: no periods", ErrInvalidContent)
	}

	c := &Catalog{
		periods: make(map[string]Period, len(doc.Periods)),
	}

	for id, p := range doc.Periods {
		if err := validate(id, p); err != nil {
			return nil, err
		}
		p.ID = id
		c.periods[id] = p
	}

	for _, id := range doc.Order {
		if _, ok := c.periods[id]; !ok {
			return nil, fmt.Errorf("%w: order lists unknown period %q", ErrInvalidContent, id)
		}
		if slices.Contains(c.order, id) {
			continue
		}
		c.order = append(c.order, id)
	}

	// Periods missing from the explicit order follow it, sorted by id.
	var rest []string
	for id := range c.periods {
		if !slices.Contains(c.order, id) {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	c.order = append(c.order, rest...)

	return c, nil
}

func validate(id string, p Period) error {
	switch {
	case strings.TrimSpace(id) == "":
		return fmt.Errorf("%w: empty period id", ErrInvalidContent)
	case strings.TrimSpace(p.Title) == "":
		return fmt.Errorf("%w: period %q has no title", ErrInvalidContent, id)
	case len(p.Events) == 0:
		return fmt.Errorf("%w: period %q has no events", ErrInvalidContent, id)
	}

	for i, e := range p.Events {
		if strings.TrimSpace(e.Date) == "" || strings.TrimSpace(e.Event) == "" {
			return fmt.Errorf("%w: period %q event %d is missing a date or description", ErrInvalidContent, id, i)
		}
	}

	return nil
}

// Period returns a copy of the period with the given id.
func (c *Catalog) Period(id string) (Period, bool) {
	p, ok := c.periods[id]
	if !ok {
		return Period{}, false
	}
	p.Events = slices.Clone(p.Events)

	return p, true
}

// IDs returns period ids in display order.
func (c *Catalog) IDs() []string {
	return slices.Clone(c.order)
}

// Periods returns every period in display order.
func (c *Catalog) Periods() []Period {
	out := make([]Period, 0, len(c.order))
	for _, id := range c.order {
		p, _ := c.Period(id)
		out = append(out, p)
	}

	return out
}

func (c *Catalog) Len() int {
	return len(c.order)
}
