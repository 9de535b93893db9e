// Package output prints command results: a success or failure header, the
// response time, then the entity as a field listing or raw JSON.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/n10s/simctl/internal/client"
	"github.com/n10s/simctl/internal/theme"
)

// Render styles for Markdown fields.
const (
	StyleAuto  = "auto"
	StyleDark  = "dark"
	StyleLight = "light"
	StyleNoTTY = "notty"
	StylePlain = "plain"
)

const wrapWidth = 80

type Options struct {
	// JSON prints response bodies verbatim instead of field listings.
	JSON        bool
	RenderStyle string
}

type Printer struct {
	out    io.Writer
	errOut io.Writer
	opts   Options

	md *glamour.TermRenderer
}

func New(out, errOut io.Writer, opts Options) *Printer {
	if opts.RenderStyle == "" {
		opts.RenderStyle = StyleAuto
	}
	return &Printer{out: out, errOut: errOut, opts: opts}
}

// ValidStyle reports whether s is a known render style.
func ValidStyle(s string) bool {
	switch s {
	case StyleAuto, StyleDark, StyleLight, StyleNoTTY, StylePlain:
		return true
	}
	return false
}

func (p *Printer) Line(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Success prints "<resource> <op> success" and the response time.
func (p *Printer) Success(resource, op string, res *client.Result) {
	fmt.Fprintln(p.out, theme.StyleSuccess.Render(resource+" "+op+" success"))
	if res != nil {
		fmt.Fprintf(p.out, "API response time: %dms\n", res.Elapsed.Milliseconds())
	}
}

// Failure prints "<resource> <op> failed" to the error stream, followed by
// the status and body when err carries a response.
func (p *Printer) Failure(resource, op string, err error) {
	fmt.Fprintln(p.errOut, theme.StyleFailure.Render(resource+" "+op+" failed"))
	var se *client.StatusError
	if !errors.As(err, &se) {
		return
	}
	fmt.Fprintf(p.errOut, "status: %d\n", se.Result.Status)
	fmt.Fprintf(p.errOut, "statusText: %s\n", se.Result.StatusText)
	fmt.Fprintf(p.errOut, "body: %s\n", indentJSON(se.Result.Body))
}

// JSON prints v as indented JSON.
func (p *Printer) JSON(v interface{}) {
	fmt.Fprintln(p.out, indentJSON(v))
}

func (p *Printer) Simulation(res *client.Result, sim *client.Simulation) {
	if p.rawBody(res) {
		return
	}
	p.simulation(*sim)
}

func (p *Printer) Simulations(res *client.Result, sims []client.Simulation) {
	if p.rawBody(res) {
		return
	}
	p.count(len(sims))
	for i, sim := range sims {
		p.separator(i)
		p.simulation(sim)
	}
}

func (p *Printer) simulation(sim client.Simulation) {
	p.fields(
		field{"sim_id", sim.SimID},
		field{"name", sim.Name},
		field{"creation_time", stamp(sim.CreationTime)},
	)
	if sim.Lore != "" {
		p.markdown("lore", sim.Lore)
	}
}

func (p *Printer) NPC(res *client.Result, npc *client.NPC) {
	if p.rawBody(res) {
		return
	}
	p.npc(*npc)
}

func (p *Printer) NPCs(res *client.Result, npcs []client.NPC) {
	if p.rawBody(res) {
		return
	}
	p.count(len(npcs))
	for i, npc := range npcs {
		p.separator(i)
		p.npc(npc)
	}
}

func (p *Printer) npc(npc client.NPC) {
	p.fields(
		field{"npc_id", npc.NPCID},
		field{"sim_id", npc.SimID},
		field{"owner_id", npc.OwnerID},
		field{"curr_interest_raw", npc.CurrInterestRaw},
		field{"creation_time", stamp(npc.CreationTime)},
		field{"update_time", stamp(npc.UpdateTime)},
	)
	if npc.Description != "" {
		p.markdown("description", npc.Description)
	}
}

func (p *Printer) Player(res *client.Result, player *client.Player) {
	if p.rawBody(res) {
		return
	}
	p.player(*player)
}

func (p *Printer) Players(res *client.Result, players []client.Player) {
	if p.rawBody(res) {
		return
	}
	p.count(len(players))
	for i, player := range players {
		p.separator(i)
		p.player(player)
	}
}

func (p *Printer) player(pl client.Player) {
	p.fields(
		field{"player_id", pl.PlayerID},
		field{"sim_id", pl.SimID},
		field{"owner_id", pl.OwnerID},
		field{"connected_from", pl.ConnectedFrom},
		field{"created_on", stamp(pl.CreatedOn)},
		field{"expires_on", stamp(pl.ExpiresOn)},
	)
}

func (p *Printer) StateEvent(res *client.Result, ev *client.StateEventResponse) {
	if p.rawBody(res) {
		return
	}
	p.fields(field{"event_id", ev.EventID})
}

func (p *Printer) AskEvent(res *client.Result, ev *client.AskEventResponse) {
	if p.rawBody(res) {
		return
	}
	p.fields(field{"ask_id", ev.AskID})
	if ev.Response != "" {
		p.markdown("response", ev.Response)
	}
}

// rawBody prints the parsed body as-is in JSON mode, or when the body did not
// decode into the entity. It reports whether it printed.
func (p *Printer) rawBody(res *client.Result) bool {
	if !p.opts.JSON && res.DecodeErr == nil {
		return false
	}
	p.JSON(res.Body)
	return true
}

// Deleted prints the body of a delete call, if the server sent one.
func (p *Printer) Deleted(res *client.Result) {
	if len(strings.TrimSpace(string(res.Raw))) == 0 {
		return
	}
	p.JSON(res.Body)
}

// Options prints the names a profile argument accepts.
func (p *Printer) Options(title string, names []string) {
	fmt.Fprintln(p.out, theme.StyleHeader.Render(title))
	for _, n := range names {
		fmt.Fprintf(p.out, "  - %s\n", n)
	}
}

type field struct {
	key   string
	value string
}

func (p *Printer) fields(fs ...field) {
	width := 0
	for _, f := range fs {
		if len(f.key) > width {
			width = len(f.key)
		}
	}
	keyStyle := theme.StyleKey.Width(width + 1)
	for _, f := range fs {
		if f.value == "" {
			continue
		}
		fmt.Fprintln(p.out, lipgloss.JoinHorizontal(lipgloss.Top, keyStyle.Render(f.key+":"), " ", f.value))
	}
}

func (p *Printer) count(n int) {
	fmt.Fprintf(p.out, "Count: %d\n", n)
}

func (p *Printer) separator(i int) {
	if i > 0 {
		fmt.Fprintln(p.out, theme.StyleDimmed.Render(strings.Repeat("─", 24)))
	}
}

func (p *Printer) markdown(key, md string) {
	fmt.Fprintln(p.out, theme.StyleKey.Render(key+":"))
	fmt.Fprintln(p.out, strings.TrimRight(p.RenderMarkdown(md), "\n"))
}

// RenderMarkdown renders md in the configured style. The plain style, or a
// renderer that fails to build, returns md unchanged.
func (p *Printer) RenderMarkdown(md string) string {
	if p.opts.RenderStyle == StylePlain {
		return md
	}
	if p.md == nil {
		r, err := newRenderer(p.opts.RenderStyle)
		if err != nil {
			log.Debug().Err(err).Str("style", p.opts.RenderStyle).Msg("markdown renderer unavailable")
			p.opts.RenderStyle = StylePlain
			return md
		}
		p.md = r
	}
	out, err := p.md.Render(md)
	if err != nil {
		log.Debug().Err(err).Msg("render markdown")
		return md
	}
	return out
}

func newRenderer(style string) (*glamour.TermRenderer, error) {
	styleOpt := glamour.WithStandardStyle(style)
	if style == StyleAuto {
		styleOpt = glamour.WithAutoStyle()
	}
	return glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(wrapWidth))
}

func stamp(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func indentJSON(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
