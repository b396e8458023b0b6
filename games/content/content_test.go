/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package content

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	want := []string{"period1", "period2", "period3", "period4"}
	if got := c.IDs(); !slices.Equal(got, want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}

	for _, p := range c.Periods() {
		if p.Title == "" {
			t.Errorf("period %q has no title", p.ID)
		}
		if len(p.Events) < 2 {
			t.Errorf("period %q has %d events", p.ID, len(p.Events))
		}
	}
}

func TestParse(t *testing.T) {
	const yamlDoc = `
order: [late]
periods:
  early:
    title: Early
    events:
      - {date: "1206", event: Genghis Khan}
  late:
    title: Late
    subtitle: after 1750
    events:
      - {date: "1789", event: Bastille}
      - {date: "1804", event: Haiti}
`

	const jsonDoc = `{"periods": {"b": {"title": "B", "events": [{"date": "1", "event": "one"}]},
		"a": {"title": "A", "events": [{"date": "2", "event": "two"}]}}}`

	tests := []struct {
		name   string
		data   string
		format Format
		ids    []string
		err    error
	}{
		{"yaml with order", yamlDoc, FormatYAML, []string{"late", "early"}, nil},
		{"json sorted by id", jsonDoc, FormatJSON, []string{"a", "b"}, nil},
		{"syntax error", `{"periods":`, FormatJSON, nil, ErrInvalidContent},
		{"no periods", `{"periods": {}}`, FormatJSON, nil, ErrInvalidContent},
		{"no title", `{"periods": {"x": {"events": [{"date": "1", "event": "e"}]}}}`, FormatJSON, nil, ErrInvalidContent},
		{"no events", `{"periods": {"x": {"title": "X", "events": []}}}`, FormatJSON, nil, ErrInvalidContent},
		{"blank date", `{"periods": {"x": {"title": "X", "events": [{"date": " ", "event": "e"}]}}}`, FormatJSON, nil, ErrInvalidContent},
		{"unknown order", `{"order": ["y"], "periods": {"x": {"title": "X", "events": [{"date": "1", "event": "e"}]}}}`, FormatJSON, nil, ErrInvalidContent},
		{"unknown format", `{}`, Format(9), nil, ErrUnknownFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.data), tt.format)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("Parse() error = %v, want %v", err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			if got := c.IDs(); !slices.Equal(got, tt.ids) {
				t.Errorf("IDs() = %v, want %v", got, tt.ids)
			}
		})
	}
}

func TestPeriodIsCopy(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatal(err)
	}

	p, ok := c.Period("period1")
	if !ok {
		t.Fatal("period1 missing")
	}
	if p.ID != "period1" {
		t.Errorf("ID = %q", p.ID)
	}

	p.Events[0].Date = "changed"

	again, _ := c.Period("period1")
	if again.Events[0].Date == "changed" {
		t.Error("Period returned shared event slice")
	}

	if _, ok := c.Period("missing"); ok {
		t.Error("Period(missing) reported ok")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "custom.yml")
	if err := os.WriteFile(yamlPath, []byte("periods:\n  only:\n    title: Only\n    events:\n      - {date: \"1\", event: one}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(yamlPath)
	if err != nil {
		t.Fatalf("Load(%s) error = %v", yamlPath, err)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	if c, err := Load(""); err != nil || c.Len() != 4 {
		t.Errorf("Load(\"\") = %v, %v", c, err)
	}

	if _, err := Load(filepath.Join(dir, "events.txt")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Load(.txt) error = %v, want %v", err, ErrUnknownFormat)
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want not exist", err)
	}
}
