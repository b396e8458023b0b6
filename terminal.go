/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Seednode/chronomatch/games/confetti"
	"github.com/Seednode/chronomatch/games/content"
	"github.com/Seednode/chronomatch/games/matching"
	"github.com/Seednode/chronomatch/i18n"
)

// Terminal cells are mapped onto a pixel-like grid so the celebration falls
// at the same pace it does in a browser.
const (
	cellWidth  = 8
	cellHeight = 16
)

var connectorColors = map[matching.ConnectorStyle]string{
	matching.StyleMatched:   "yellow",
	matching.StyleCorrect:   "green",
	matching.StyleIncorrect: "red",
}

// terminalUI renders a session with tview. Every method runs on the tview
// event loop: key handlers call the session directly and scheduled
// callbacks arrive through QueueUpdateDraw.
type terminalUI struct {
	cfg     *Config
	ctx     context.Context
	catalog *content.Catalog

	app     *tview.Application
	pages   *tview.Pages
	periods *tview.List
	dates   *tview.List
	events  *tview.List
	header  *tview.TextView
	notice  *tview.TextView
	status  *tview.TextView

	session *matching.Session

	period     content.Period
	dateItems  []matching.DisplayItem
	eventItems []matching.DisplayItem
	states     map[matching.ItemRef]matching.ItemState
	connectors map[matching.ConnectorKey]matching.Connector
	controls   matching.Controls
	messages   map[int]string
	completion string
	particles  []confetti.Particle
	screenSize [2]int
}

func newTerminalUI(cfg *Config, catalog *content.Catalog, app *tview.Application) *terminalUI {
	ui := &terminalUI{
		cfg:        cfg,
		ctx:        i18n.WithLocalizer(context.Background(), i18n.NewLocalizer(cfg.lang)),
		catalog:    catalog,
		app:        app,
		pages:      tview.NewPages(),
		periods:    tview.NewList(),
		dates:      tview.NewList(),
		events:     tview.NewList(),
		header:     tview.NewTextView(),
		notice:     tview.NewTextView(),
		status:     tview.NewTextView(),
		states:     make(map[matching.ItemRef]matching.ItemState),
		connectors: make(map[matching.ConnectorKey]matching.Connector),
		messages:   make(map[int]string),
	}

	ui.session = matching.New(catalog, ui, matching.SchedulerFunc(ui.after),
		matching.WithHideCorrect(cfg.hideCorrect),
	)

	ui.layout()

	return ui
}

func (ui *terminalUI) t(id string) string {
	return i18n.T(ui.ctx, id)
}

// after posts fn to the tview event loop once d has passed.
func (ui *terminalUI) after(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		ui.app.QueueUpdateDraw(fn)
	})
}

func (ui *terminalUI) layout() {
	ui.periods.ShowSecondaryText(true)
	ui.periods.SetBorder(true)
	ui.periods.SetTitle(" " + ui.t("SelectPeriod") + " ")
	for _, p := range ui.catalog.Periods() {
		id := p.ID
		ui.periods.AddItem(p.Title, p.Subtitle, 0, func() {
			_ = ui.session.SelectPeriod(id)
		})
	}
	ui.periods.AddItem(ui.t("Quit"), "", 'q', ui.app.Stop)

	for _, l := range []*tview.List{ui.dates, ui.events} {
		l.ShowSecondaryText(false)
		l.SetBorder(true)
		l.SetHighlightFullLine(true)
	}
	ui.dates.SetTitle(" " + ui.t("DatesHeading") + " ")
	ui.events.SetTitle(" " + ui.t("EventsHeading") + " ")

	ui.header.SetDynamicColors(true)
	ui.notice.SetDynamicColors(true)
	ui.status.SetDynamicColors(true)

	columns := tview.NewFlex().
		AddItem(ui.dates, 0, 1, true).
		AddItem(ui.events, 0, 2, false)

	board := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.header, 2, 0, false).
		AddItem(columns, 0, 1, true).
		AddItem(ui.notice, 2, 0, false).
		AddItem(ui.status, 2, 0, false)

	ui.pages.AddPage("periods", ui.periods, true, true)
	ui.pages.AddPage("board", board, true, false)

	ui.app.SetRoot(ui.pages, true)
	ui.app.SetInputCapture(ui.handleKey)
	ui.app.SetBeforeDrawFunc(ui.trackSize)
	ui.app.SetAfterDrawFunc(ui.drawConfetti)
}

func (ui *terminalUI) onBoard() bool {
	name, _ := ui.pages.GetFrontPage()
	return name == "board"
}

func (ui *terminalUI) focused() (matching.ItemRef, bool) {
	list, items := ui.dates, ui.dateItems
	if ui.app.GetFocus() == ui.events {
		list, items = ui.events, ui.eventItems
	}

	i := list.GetCurrentItem()
	if i < 0 || i >= len(items) {
		return matching.ItemRef{}, false
	}

	return items[i].Ref(), true
}

func (ui *terminalUI) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	if !ui.onBoard() {
		return ev
	}

	switch ev.Key() {
	case tcell.KeyTab, tcell.KeyBacktab:
		if ui.app.GetFocus() == ui.dates {
			ui.app.SetFocus(ui.events)
		} else {
			ui.app.SetFocus(ui.dates)
		}
		return nil
	case tcell.KeyEnter:
		ui.keyOnFocused("Enter")
		return nil
	case tcell.KeyEsc:
		ui.keyOnFocused("Escape")
		return nil
	case tcell.KeyRune:
	default:
		return ev
	}

	switch ev.Rune() {
	case ' ':
		ui.keyOnFocused(" ")
	case 's':
		_, _ = ui.session.Submit()
	case 'r':
		_ = ui.session.Retry()
	case 'c':
		ui.session.ClearAll()
	case 'h':
		ui.session.SetHideCorrect(!ui.session.HideCorrect())
	case 'n':
		_ = ui.session.Replay()
	case 'p':
		ui.session.ChangePeriod()
	case 'q':
		ui.app.Stop()
	default:
		return ev
	}

	return nil
}

func (ui *terminalUI) keyOnFocused(key string) {
	if ref, ok := ui.focused(); ok {
		_ = ui.session.Key(ref, key)
	}
}

// trackSize feeds screen size changes back into the session.
func (ui *terminalUI) trackSize(screen tcell.Screen) bool {
	w, h := screen.Size()
	if [2]int{w, h} != ui.screenSize {
		ui.screenSize = [2]int{w, h}

		go ui.app.QueueUpdate(func() {
			ui.session.Resize(matching.Viewport{Width: float64(w * cellWidth), Height: float64(h * cellHeight)})
		})
	}

	return false
}

func (ui *terminalUI) drawConfetti(screen tcell.Screen) {
	w, h := screen.Size()

	for _, p := range ui.particles {
		x, y := int(p.X)/cellWidth, int(p.Y)/cellHeight
		if p.Y < 0 || x < 0 || x >= w || y >= h {
			continue
		}

		r := '■'
		if p.Shape == confetti.Circle {
			r = '●'
		}

		screen.SetContent(x, y, r, nil, tcell.StyleDefault.Foreground(tcell.GetColor(p.Color)))
	}
}

// itemText renders one tile: selection marker, the row of its partner when
// matched, and the text colored by grade.
func (ui *terminalUI) itemText(item matching.DisplayItem) string {
	st := ui.states[item.Ref()]

	var b strings.Builder

	switch {
	case st.Has(matching.StateSelected):
		b.WriteString("[::b]> [::-]")
	case st.Has(matching.StateDragOver):
		b.WriteString("+ ")
	default:
		b.WriteString("  ")
	}

	if conn, partner, ok := ui.partner(item); ok && !conn.Hidden {
		arrow := "->"
		if item.Kind == matching.KindEvent {
			arrow = "<-"
		}
		fmt.Fprintf(&b, "[%s]%s %d[-] ", connectorColors[conn.Style], arrow, partner+1)
	}

	text := tview.Escape(item.Text)
	switch {
	case st.Has(matching.StateHiddenCorrect):
		b.WriteString("[gray]" + text + "[-]")
	case st.Has(matching.StateCorrect):
		b.WriteString("[green]" + text + "[-]")
	case st.Has(matching.StateIncorrect):
		b.WriteString("[red]" + text + "[-]")
	default:
		b.WriteString(text)
	}

	return b.String()
}

// partner finds the connector touching item and the display row of the item
// on its other end.
func (ui *terminalUI) partner(item matching.DisplayItem) (matching.Connector, int, bool) {
	for key, conn := range ui.connectors {
		switch {
		case item.Kind == matching.KindDate && key.Date == item.OriginalIndex:
			return conn, displayRow(ui.eventItems, key.Event), true
		case item.Kind == matching.KindEvent && key.Event == item.OriginalIndex:
			return conn, displayRow(ui.dateItems, key.Date), true
		}
	}

	return matching.Connector{}, 0, false
}

func displayRow(items []matching.DisplayItem, original int) int {
	for _, it := range items {
		if it.OriginalIndex == original {
			return it.DisplayIndex
		}
	}
	return -1
}

func (ui *terminalUI) redrawItems() {
	for i, it := range ui.dateItems {
		ui.dates.SetItemText(i, ui.itemText(it), "")
	}
	for i, it := range ui.eventItems {
		ui.events.SetItemText(i, ui.itemText(it), "")
	}
}

func (ui *terminalUI) redrawText() {
	ui.header.SetText(fmt.Sprintf("[::b]%s[::-]  %s\n%s",
		tview.Escape(ui.period.Title), tview.Escape(ui.period.Subtitle), ui.t("Instructions")))

	var notices []string
	if ui.completion != "" {
		notices = append(notices, "[green::b]"+ui.completion+"[-::-]")
	}
	for _, text := range ui.messages {
		notices = append(notices, "[green]"+tview.Escape(text)+"[-]")
	}
	ui.notice.SetText(strings.Join(notices, "\n"))

	c := ui.controls
	parts := []string{i18n.Tp(ui.ctx, "MatchedCount", c.Matched, map[string]any{"Total": c.Total})}
	if c.SubmitVisible {
		color := "white"
		if !c.SubmitEnabled {
			color = "gray"
		}
		parts = append(parts, fmt.Sprintf("[%s]\\[s] %s[-]", color, ui.t("Submit")))
	}
	if c.RetryVisible {
		parts = append(parts, "\\[r] "+ui.t("Retry"))
	}
	if c.ClearVisible {
		parts = append(parts, "\\[c] "+ui.t("ClearAll"))
	}
	if c.HideToggleVisible {
		mark := " "
		if c.HideCorrect {
			mark = "x"
		}
		parts = append(parts, fmt.Sprintf("\\[h] \\[%s] %s", mark, ui.t("HideCorrect")))
	}
	if c.Phase == matching.PhaseComplete {
		parts = append(parts, "\\[n] "+ui.t("Replay"), "\\[p] "+ui.t("ChangePeriod"))
	}
	parts = append(parts, "\\[q] "+ui.t("Quit"))

	ui.status.SetText(strings.Join(parts, "   ") + "\n[gray]" + tview.Escape(ui.t("TerminalHelp")) + "[-]")
}

func (ui *terminalUI) RenderPeriod(p content.Period, dates, events []matching.DisplayItem) {
	ui.period = p
	ui.dateItems = dates
	ui.eventItems = events
	ui.completion = ""
	clear(ui.states)

	ui.dates.Clear()
	for _, it := range dates {
		ui.dates.AddItem(ui.itemText(it), "", 0, nil)
	}
	ui.events.Clear()
	for _, it := range events {
		ui.events.AddItem(ui.itemText(it), "", 0, nil)
	}

	ui.pages.SwitchToPage("board")
	ui.app.SetFocus(ui.dates)
	ui.redrawText()
}

func (ui *terminalUI) ClearPeriod() {
	ui.period = content.Period{}
	ui.dateItems = nil
	ui.eventItems = nil
	ui.completion = ""
	clear(ui.states)

	ui.dates.Clear()
	ui.events.Clear()

	ui.pages.SwitchToPage("periods")
	ui.app.SetFocus(ui.periods)
}

func (ui *terminalUI) SetItemState(ref matching.ItemRef, state matching.ItemState) {
	if state == 0 {
		delete(ui.states, ref)
	} else {
		ui.states[ref] = state
	}

	ui.redrawItems()
}

func (ui *terminalUI) DrawConnector(c matching.Connector) {
	ui.connectors[c.Key] = c
	ui.redrawItems()
}

func (ui *terminalUI) RemoveConnector(key matching.ConnectorKey) {
	delete(ui.connectors, key)
	ui.redrawItems()
}

func (ui *terminalUI) ClearConnectors() {
	clear(ui.connectors)
	ui.redrawItems()
}

func (ui *terminalUI) SetControls(c matching.Controls) {
	ui.controls = c
	ui.redrawText()
}

func (ui *terminalUI) ShowMessage(m matching.Message) {
	ui.messages[m.ID] = i18n.Td(ui.ctx, m.Key, m.Data)
	ui.redrawText()
}

func (ui *terminalUI) DismissMessage(id int) {
	delete(ui.messages, id)
	ui.redrawText()
}

func (ui *terminalUI) ShowCompletion() {
	ui.completion = ui.t("CompletionTitle") + " " +
		tview.Escape(i18n.Td(ui.ctx, "CompletionBody", map[string]any{"Period": ui.period.Title}))
	ui.redrawText()
}

func (ui *terminalUI) DrawFrame(_ matching.Viewport, particles []confetti.Particle) {
	ui.particles = particles
}

func (ui *terminalUI) ClearCanvas() {
	ui.particles = nil
}

// startPeriod skips the picker. An unknown id reports the ones the catalog has.
func (ui *terminalUI) startPeriod(id string) error {
	err := ui.session.SelectPeriod(id)
	if errors.Is(err, matching.ErrUnknownPeriod) {
		return fmt.Errorf("period %q: %w (choose from %s)", id, err, strings.Join(ui.catalog.IDs(), ", "))
	}
	if err != nil {
		return fmt.Errorf("period %q: %w", id, err)
	}

	return nil
}

// PlayTerminal runs one game in the terminal until the player quits or ctx
// is cancelled.
func PlayTerminal(ctx context.Context, cfg *Config) error {
	catalog, err := content.Load(cfg.content)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}

	app := tview.NewApplication()
	ui := newTerminalUI(cfg, catalog, app)

	if cfg.period != "" {
		if err := ui.startPeriod(cfg.period); err != nil {
			return err
		}
	}

	go func() {
		<-ctx.Done()
		app.Stop()
	}()

	logf(cfg, "START: chronomatch v%s in the terminal", releaseVersion)

	return app.Run()
}
