package cli

import (
	"github.com/spf13/cobra"

	"github.com/n10s/simctl/internal/config"
)

const resourcePlayer = "player"

var playerEnv = []string{config.EnvAPIKey, config.EnvDistrKey, config.EnvProduct}

func (a *app) playerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Create, list, get and delete players",
		RunE:  groupCmd,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <sim_id> [expire_min]",
			Short: "Create a player; expire_min is a positive integer",
			Args:  positional(req("sim_id"), opt("expire_min"), false),
			RunE: func(cmd *cobra.Command, args []string) error {
				expireMin := 0
				if raw := arg(args, 1); raw != "" {
					n, err := positiveInt("expire_min", raw)
					if err != nil {
						return err
					}
					expireMin = n
				}
				c, err := a.httpClient(playerEnv...)
				if err != nil {
					return err
				}
				p, res, err := c.CreatePlayer(cmd.Context(), args[0], expireMin)
				if err != nil {
					return a.fail(resourcePlayer, "create", err)
				}
				a.printer.Success(resourcePlayer, "create", res)
				a.printer.Player(res, p)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list <sim_id>",
			Short: "List the players of a simulation",
			Args:  positional(req("sim_id"), nil, false),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.httpClient(playerEnv...)
				if err != nil {
					return err
				}
				players, res, err := c.ListPlayers(cmd.Context(), args[0])
				if err != nil {
					return a.fail(resourcePlayer, "list", err)
				}
				a.printer.Success(resourcePlayer, "list", res)
				a.printer.Players(res, players)
				return nil
			},
		},
		&cobra.Command{
			Use:   "get <player_id> <sim_id>",
			Short: "Get one player",
			Args:  positional(req("player_id", "sim_id"), nil, false),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.httpClient(playerEnv...)
				if err != nil {
					return err
				}
				p, res, err := c.GetPlayer(cmd.Context(), args[0], args[1])
				if err != nil {
					return a.fail(resourcePlayer, "get", err)
				}
				a.printer.Success(resourcePlayer, "get", res)
				a.printer.Player(res, p)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <player_id> <sim_id>",
			Short: "Delete a player",
			Args:  positional(req("player_id", "sim_id"), nil, false),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.httpClient(playerEnv...)
				if err != nil {
					return err
				}
				res, err := c.DeletePlayer(cmd.Context(), args[0], args[1])
				if err != nil {
					return a.fail(resourcePlayer, "delete", err)
				}
				a.printer.Success(resourcePlayer, "delete", res)
				a.printer.Deleted(res)
				return nil
			},
		},
	)
	return cmd
}
