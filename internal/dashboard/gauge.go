package dashboard

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/n10s/simctl/internal/theme"
)

const gaugeFPS = 30

// Gauge animates the send rate toward its latest value on a spring.
type Gauge struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
	target float64
	// scale is the rate drawn as a full bar.
	scale float64
}

func NewGauge(interval time.Duration) Gauge {
	expected := 0.0
	if interval > 0 {
		expected = float64(time.Second) / float64(interval)
	}
	return Gauge{
		spring: harmonica.NewSpring(harmonica.FPS(gaugeFPS), 6.0, 0.7),
		scale:  math.Max(1, 2*expected),
	}
}

func (g *Gauge) SetTarget(rate float64) {
	g.target = rate
	if rate > g.scale {
		g.scale = rate
	}
}

// Step advances the animation one frame.
func (g *Gauge) Step() {
	g.pos, g.vel = g.spring.Update(g.pos, g.vel, g.target)
}

// Settled reports whether the gauge has reached its target.
func (g Gauge) Settled() bool {
	return math.Abs(g.pos-g.target) < 0.001 && math.Abs(g.vel) < 0.001
}

func (g Gauge) Value() float64 { return g.pos }

func (g Gauge) View(width int) string {
	barW := width - 16
	if barW < 10 {
		barW = 10
	}
	frac := g.pos / g.scale
	frac = math.Max(0, math.Min(1, frac))
	filled := int(math.Round(frac * float64(barW)))

	bar := lipgloss.NewStyle().Foreground(theme.RateColor(g.target)).Render(strings.Repeat("█", filled)) +
		theme.StyleDimmed.Render(strings.Repeat("░", barW-filled))
	return fmt.Sprintf("%s %6.2f/s", bar, math.Max(0, g.pos))
}
