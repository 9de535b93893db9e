package cli

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/n10s/simctl/internal/client"
	"github.com/n10s/simctl/internal/config"
	"github.com/n10s/simctl/internal/presets"
)

const (
	resourceNPC = "npc"

	randomNPCDescription = "NPC created by integration test."
)

func (a *app) npcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "npc",
		Short: "Create, update, list, get and delete NPCs",
		RunE:  groupCmd,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <sim_id> [profile...]",
			Short: "Create an NPC from a preset profile",
			Args:  positional(req("sim_id"), opt("profile"), true),
			RunE: func(cmd *cobra.Command, args []string) error {
				profile, ok, err := a.pickProfile("create", tail(args, 1))
				if err != nil || !ok {
					return err
				}
				c, err := a.httpClient(config.EnvAPIKey)
				if err != nil {
					return err
				}
				npc, res, err := c.CreateNPC(cmd.Context(), client.CreateNPCRequest{
					SimID:       args[0],
					NPCName:     profile.Name,
					Description: strings.TrimSpace(profile.Description),
					Interests:   profile.Interests,
				})
				if err != nil {
					return a.fail(resourceNPC, "create", err)
				}
				a.printer.Success(resourceNPC, "create", res)
				a.printer.NPC(res, npc)
				return nil
			},
		},
		&cobra.Command{
			Use:   "update <npc_id> [profile...]",
			Short: "Replace an NPC's description and interests with a preset profile",
			Args:  positional(req("npc_id"), opt("profile"), true),
			RunE: func(cmd *cobra.Command, args []string) error {
				profile, ok, err := a.pickProfile("update", tail(args, 1))
				if err != nil || !ok {
					return err
				}
				c, err := a.httpClient(config.EnvAPIKey)
				if err != nil {
					return err
				}
				npc, res, err := c.UpdateNPC(cmd.Context(), args[0], client.UpdateNPCRequest{
					Description: strings.TrimSpace(profile.Description),
					Interests:   profile.Interests,
				})
				if err != nil {
					return a.fail(resourceNPC, "update", err)
				}
				a.printer.Success(resourceNPC, "update", res)
				a.printer.NPC(res, npc)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list <sim_id>",
			Short: "List the NPCs of a simulation",
			Args:  positional(req("sim_id"), nil, false),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.httpClient(config.EnvAPIKey)
				if err != nil {
					return err
				}
				npcs, res, err := c.ListNPCs(cmd.Context(), args[0])
				if err != nil {
					return a.fail(resourceNPC, "list", err)
				}
				a.printer.Success(resourceNPC, "list", res)
				a.printer.NPCs(res, npcs)
				return nil
			},
		},
		&cobra.Command{
			Use:   "get <npc_id>",
			Short: "Get one NPC",
			Args:  positional(req("npc_id"), nil, false),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.httpClient(config.EnvAPIKey)
				if err != nil {
					return err
				}
				npc, res, err := c.GetNPC(cmd.Context(), args[0])
				if err != nil {
					return a.fail(resourceNPC, "get", err)
				}
				a.printer.Success(resourceNPC, "get", res)
				a.printer.NPC(res, npc)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <npc_id>",
			Short: "Delete an NPC",
			Args:  positional(req("npc_id"), nil, false),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := a.httpClient(config.EnvAPIKey)
				if err != nil {
					return err
				}
				res, err := c.DeleteNPC(cmd.Context(), args[0])
				if err != nil {
					return a.fail(resourceNPC, "delete", err)
				}
				a.printer.Success(resourceNPC, "delete", res)
				a.printer.Deleted(res)
				return nil
			},
		},
		a.randomNPCCmd(),
	)
	return cmd
}

func (a *app) randomNPCCmd() *cobra.Command {
	var seed int64
	cmd := &cobra.Command{
		Use:   "random <sim_id>",
		Short: "Create an NPC with random interests from the interest corpus",
		Args:  positional(req("sim_id"), nil, false),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.httpClient(config.EnvAPIKey, config.EnvProduct)
			if err != nil {
				return err
			}
			rng := newRand(cmd, seed)
			interests := presets.PickInterests(rng, presets.RandomInterestCount(rng))
			npc, res, err := c.CreateNPC(cmd.Context(), client.CreateNPCRequest{
				SimID:       args[0],
				NPCName:     fmt.Sprintf("NPC %d", time.Now().UnixMilli()),
				Description: randomNPCDescription,
				Interests:   interests,
			})
			if err != nil {
				return a.fail(resourceNPC, "random", err)
			}
			a.printer.Success(resourceNPC, "random", res)
			a.printer.NPC(res, npc)
			return nil
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "seed the random source (default: time based)")
	return cmd
}

// pickProfile resolves a profile name. With no name it lists the profiles
// and reports ok=false without an error.
func (a *app) pickProfile(op, name string) (presets.NPCProfile, bool, error) {
	profiles, err := a.presets.NPCProfiles()
	if err != nil {
		return presets.NPCProfile{}, false, err
	}
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
	}
	if name == "" {
		a.printer.Options("Available NPC profiles:", names)
		a.printer.Line("\nPass one profile name as 2nd %s arg.", op)
		return presets.NPCProfile{}, false, nil
	}
	profile, ok := presets.FindNPCProfile(profiles, name)
	if !ok {
		a.printer.Options("Available NPC profiles:", names)
		return presets.NPCProfile{}, false, eris.Errorf("unknown profile: %s", name)
	}
	return profile, true, nil
}

// newRand seeds from --seed when it was given, otherwise from the clock.
func newRand(cmd *cobra.Command, seed int64) *rand.Rand {
	if !cmd.Flags().Changed("seed") {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
