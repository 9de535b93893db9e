package cli

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/n10s/simctl/internal/config"
	"github.com/n10s/simctl/internal/presets"
)

const resourceSimulation = "simulation"

func (a *app) simulationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulation",
		Short: "Create, list, get, set lore on and delete simulations",
		RunE:  groupCmd,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create a simulation",
			Args:  positional(req("name"), nil, false),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.httpClient(config.EnvAPIKey, config.EnvProduct)
				if err != nil {
					return err
				}
				sim, res, err := c.CreateSimulation(cmd.Context(), args[0])
				if err != nil {
					return a.fail(resourceSimulation, "create", err)
				}
				a.printer.Success(resourceSimulation, "create", res)
				a.printer.Simulation(res, sim)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List simulations",
			Args:  positional(nil, nil, false),
			RunE: func(cmd *cobra.Command, _ []string) error {
				c, err := a.httpClient(config.EnvAPIKey, config.EnvProduct)
				if err != nil {
					return err
				}
				sims, res, err := c.ListSimulations(cmd.Context())
				if err != nil {
					return a.fail(resourceSimulation, "list", err)
				}
				a.printer.Success(resourceSimulation, "list", res)
				a.printer.Simulations(res, sims)
				return nil
			},
		},
		&cobra.Command{
			Use:   "get <sim_id>",
			Short: "Get one simulation",
			Args:  positional(req("sim_id"), nil, false),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.httpClient(config.EnvAPIKey, config.EnvProduct)
				if err != nil {
					return err
				}
				sim, res, err := c.GetSimulation(cmd.Context(), args[0])
				if err != nil {
					return a.fail(resourceSimulation, "get", err)
				}
				a.printer.Success(resourceSimulation, "get", res)
				a.printer.Simulation(res, sim)
				return nil
			},
		},
		&cobra.Command{
			Use:   "lore <sim_id> [profile...]",
			Short: "Set a simulation's lore from a preset profile",
			Long: "Set a simulation's lore from a preset profile. Without a profile name the\n" +
				"available profiles are listed.",
			Args: positional(req("sim_id"), opt("profile"), true),
			RunE: func(cmd *cobra.Command, args []string) error {
				lores, err := a.presets.Lores()
				if err != nil {
					return err
				}
				names := make([]string, len(lores))
				for i, l := range lores {
					names[i] = l.Name
				}

				name := tail(args, 1)
				if name == "" {
					a.printer.Options("Available lore profiles:", names)
					a.printer.Line("\nPass one lore profile name as 2nd lore arg.")
					return nil
				}
				lore, ok := presets.FindLore(lores, name)
				if !ok {
					a.printer.Options("Available lore profiles:", names)
					return eris.Errorf("unknown lore profile: %s", name)
				}

				c, err := a.httpClient(config.EnvAPIKey, config.EnvProduct)
				if err != nil {
					return err
				}
				sim, res, err := c.SetLore(cmd.Context(), args[0], lore.Lore)
				if err != nil {
					return a.fail(resourceSimulation, "lore", err)
				}
				a.printer.Success(resourceSimulation, "lore", res)
				a.printer.Simulation(res, sim)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <sim_id>",
			Short: "Delete a simulation",
			Args:  positional(req("sim_id"), nil, false),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.httpClient(config.EnvAPIKey, config.EnvProduct)
				if err != nil {
					return err
				}
				res, err := c.DeleteSimulation(cmd.Context(), args[0])
				if err != nil {
					return a.fail(resourceSimulation, "delete", err)
				}
				a.printer.Success(resourceSimulation, "delete", res)
				a.printer.Deleted(res)
				return nil
			},
		},
	)
	return cmd
}
