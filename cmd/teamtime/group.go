package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var groupCmd = &cobra.Command{
	Use:     "group",
	Short:   "Manage event groups",
	GroupID: "calendar",
}

var groupCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, _ := cmd.Flags().GetString("color")

		g, err := engine.CreateGroup(context.Background(), args[0], color)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(g)
		} else {
			fmt.Printf("Created group %s (%s)\n", g.Name, g.ID)
		}
		return nil
	},
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		groups := engine.Groups.GetAllGroups()
		if jsonOutput {
			printJSON(groups)
		} else {
			printGroupTable(groups)
		}
		return nil
	},
}

var groupUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Rename or recolor a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, ok := engine.Groups.GetGroup(args[0])
		if !ok {
			return fmt.Errorf("group %s not found", args[0])
		}
		if cmd.Flags().Changed("name") {
			g.Name, _ = cmd.Flags().GetString("name")
		}
		if cmd.Flags().Changed("color") {
			g.Color, _ = cmd.Flags().GetString("color")
		}

		updated, err := engine.UpdateGroup(context.Background(), g)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(updated)
		} else {
			fmt.Printf("Updated group %s (%s)\n", updated.Name, updated.ID)
		}
		return nil
	},
}

var groupDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete groups; their events are kept without a group",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range args {
			if err := engine.DeleteGroup(context.Background(), id); err != nil {
				return fmt.Errorf("failed to delete %s: %w", id, err)
			}
			fmt.Printf("Deleted %s\n", id)
		}
		return nil
	},
}

func init() {
	groupCreateCmd.Flags().String("color", "#4285f4", "group color (#RRGGBB)")

	groupUpdateCmd.Flags().String("name", "", "new name")
	groupUpdateCmd.Flags().String("color", "", "new color (#RRGGBB)")

	groupCmd.AddCommand(groupCreateCmd)
	groupCmd.AddCommand(groupListCmd)
	groupCmd.AddCommand(groupUpdateCmd)
	groupCmd.AddCommand(groupDeleteCmd)
}
