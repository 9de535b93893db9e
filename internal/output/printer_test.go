package output

import (
	"bytes"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/n10s/simctl/internal/client"
)

func newTestPrinter(opts Options) (*Printer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	if opts.RenderStyle == "" {
		opts.RenderStyle = StylePlain
	}
	return New(&out, &errOut, opts), &out, &errOut
}

func TestSuccessHeader(t *testing.T) {
	p, out, _ := newTestPrinter(Options{})
	p.Success("npc", "create", &client.Result{Status: 201, Elapsed: 42 * time.Millisecond})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{"npc create success", "API response time: 42ms"}, lines)
}

func TestFailureWithStatus(t *testing.T) {
	p, out, errOut := newTestPrinter(Options{})
	res := &client.Result{
		Status:     http.StatusNotFound,
		StatusText: "Not Found",
		Body:       map[string]interface{}{"err": "npc not found"},
	}
	p.Failure("npc", "get", &client.StatusError{Method: "GET", Path: "/npc/x", Result: res})

	assert.Empty(t, out.String())
	got := errOut.String()
	assert.Contains(t, got, "npc get failed")
	assert.Contains(t, got, "status: 404")
	assert.Contains(t, got, "statusText: Not Found")
	assert.Contains(t, got, `"err": "npc not found"`)
}

func TestFailureWithoutResponse(t *testing.T) {
	p, _, errOut := newTestPrinter(Options{})
	p.Failure("player", "list", assert.AnError)
	assert.Equal(t, "player list failed\n", errOut.String())
}

func TestSimulationsListing(t *testing.T) {
	p, out, _ := newTestPrinter(Options{})
	sims := []client.Simulation{
		{SimID: "sim-1", Name: "Harbor", CreationTime: 1_700_000_000_000},
		{SimID: "sim-2", Name: "Valley", Lore: "# Valley\nQuiet fields."},
	}
	p.Simulations(&client.Result{}, sims)

	got := out.String()
	assert.True(t, strings.HasPrefix(got, "Count: 2\n"))
	assert.Contains(t, got, "sim-1")
	assert.Contains(t, got, "2023-11-14T22:13:20Z")
	assert.Contains(t, got, "lore:\n# Valley\nQuiet fields.")
	assert.NotContains(t, got, "creation_time: \n")
}

func TestJSONMode(t *testing.T) {
	p, out, _ := newTestPrinter(Options{JSON: true})
	res := &client.Result{Body: []interface{}{map[string]interface{}{"npc_id": "npc-1"}}}
	p.NPCs(res, []client.NPC{{NPCID: "npc-1"}})

	assert.Equal(t, "[\n  {\n    \"npc_id\": \"npc-1\"\n  }\n]\n", out.String())
}

func TestDeletedPrintsOnlyNonEmptyBody(t *testing.T) {
	p, out, _ := newTestPrinter(Options{})
	p.Deleted(&client.Result{Status: 204, Body: map[string]interface{}{}})
	assert.Empty(t, out.String())

	p.Deleted(&client.Result{Status: 200, Raw: []byte(`{"deleted":true}`), Body: map[string]interface{}{"deleted": true}})
	assert.Contains(t, out.String(), `"deleted": true`)
}

func TestRenderMarkdownNoTTY(t *testing.T) {
	p, _, _ := newTestPrinter(Options{RenderStyle: StyleNoTTY})
	got := p.RenderMarkdown("# Harbor Kingdom\n\nSalt and **rope**.")
	assert.Contains(t, got, "Harbor Kingdom")
	assert.Contains(t, got, "rope")
}

func TestValidStyle(t *testing.T) {
	for _, s := range []string{"auto", "dark", "light", "notty", "plain"} {
		assert.True(t, ValidStyle(s), s)
	}
	assert.False(t, ValidStyle("neon"))
}

func TestOptionsListing(t *testing.T) {
	p, out, _ := newTestPrinter(Options{})
	p.Options("Available profiles:", []string{"Harbor Master", "Village Elder"})
	assert.Equal(t, "Available profiles:\n  - Harbor Master\n  - Village Elder\n", out.String())
}

func TestEntityFallsBackToBodyWhenUndecoded(t *testing.T) {
	p, out, _ := newTestPrinter(Options{})
	res := &client.Result{
		Status:    200,
		Body:      map[string]interface{}{"sim_id": "sim-1", "creation_time": 1712345678.123},
		DecodeErr: assert.AnError,
	}
	p.Simulation(res, &client.Simulation{SimID: "sim-1"})
	assert.Contains(t, out.String(), `"creation_time": 1712345678.123`)

	out.Reset()
	p.Simulation(&client.Result{Status: 200, Body: "created", DecodeErr: assert.AnError}, &client.Simulation{})
	assert.Equal(t, "created\n", out.String())
}
