package cli

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/n10s/simctl/internal/client"
	"github.com/n10s/simctl/internal/config"
	"github.com/n10s/simctl/internal/stream"
)

const resourceEvent = "stream event"

func (a *app) eventCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Post state and ask events, or stream random game events",
		RunE:  groupCmd,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "state <player_id> <sim_id> <event_text> [event_id]",
			Short: "Post one state event",
			Args:  positional(req("player_id", "sim_id", "event_text"), opt("event_id"), false),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.httpClient(config.EnvDistrKey)
				if err != nil {
					return err
				}
				ev, res, err := c.SendState(cmd.Context(), args[0], args[1], args[2], arg(args, 3))
				if err != nil {
					return a.fail(resourceEvent, "state", err)
				}
				a.printer.Success(resourceEvent, "state", res)
				a.printer.StateEvent(res, ev)
				return nil
			},
		},
		&cobra.Command{
			Use:   "ask <player_id> <sim_id> <ask_text> <npc_id> [ask_id]",
			Short: "Ask an NPC a question",
			Args:  positional(req("player_id", "sim_id", "ask_text", "npc_id"), opt("ask_id"), false),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.httpClient(config.EnvDistrKey)
				if err != nil {
					return err
				}
				ev, res, err := c.Ask(cmd.Context(), args[0], args[1], args[3], args[2], arg(args, 4))
				if err != nil {
					return a.fail(resourceEvent, "ask", err)
				}
				a.printer.Success(resourceEvent, "ask", res)
				a.printer.AskEvent(res, ev)
				return nil
			},
		},
		a.streamCmd(),
	)
	return cmd
}

func (a *app) streamCmd() *cobra.Command {
	var (
		seed      int64
		dashboard bool
	)
	cmd := &cobra.Command{
		Use:   "stream <player_id> <sim_id> [interval_ms]",
		Short: "Stream random game events over WebSocket until interrupted",
		Long: "Open the event stream for a player and send a random state event every\n" +
			"interval_ms milliseconds (default 3000) until Ctrl+C. Intervals below\n" +
			"2000ms log a warning.",
		Args: positional(req("player_id", "sim_id"), opt("interval_ms"), false),
		RunE: func(cmd *cobra.Command, args []string) error {
			interval := a.cfg.Stream.Interval
			if raw := arg(args, 2); raw != "" {
				ms, err := positiveInt("interval_ms", raw)
				if err != nil {
					return err
				}
				interval = time.Duration(ms) * time.Millisecond
			}

			token, err := a.cfg.Require(config.EnvDistrKey)
			if err != nil {
				return err
			}
			events, err := a.presets.GameEvents()
			if err != nil {
				return eris.Wrap(err, "load game events")
			}

			cfg := stream.Config{
				URL:          client.StreamURL(a.cfg.BaseURL, args[1], args[0]),
				Token:        token,
				Interval:     interval,
				CloseTimeout: a.cfg.Stream.CloseTimeout,
				Events:       events,
				Rand:         newRand(cmd, seed),
				Out:          a.stdout,
				ErrOut:       a.stderr,
				Logger:       &log.Logger,
			}

			if dashboard {
				stats, err := a.runDashboard(cmd.Context(), cfg)
				fmt.Fprintf(a.stdout, "%s\n", stats)
				return err
			}

			session, err := stream.New(cfg)
			if err != nil {
				return err
			}
			_, err = session.Run(cmd.Context())
			return err
		},
	}
	cmd.Flags().BoolVar(&dashboard, "dashboard", false, "show a live dashboard instead of console output")
	cmd.Flags().Int64Var(&seed, "seed", 0, "seed the event picker (default: time based)")
	return cmd
}
