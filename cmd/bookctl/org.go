package main

import (
	"fmt"
	"strconv"

	"github.com/Shivanand-hulikatti/resource-reservations/internal/model"
	"github.com/spf13/cobra"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func newOrgCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "org",
		Aliases: []string{"organization", "organizations"},
		Short:   "Manage organizations",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List organizations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				orgs, err := a.client.ListOrganizations(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list organizations: %w", err)
				}
				if len(orgs) == 0 {
					cmd.Println("No organizations found")
					return nil
				}
				rows := make([][]string, 0, len(orgs))
				for _, o := range orgs {
					rows = append(rows, []string{fmt.Sprint(o.ID), o.Name})
				}
				printTable(cmd.OutOrStdout(), []string{"ID", "NAME"}, rows)
				return nil
			},
		},
		&cobra.Command{
			Use:     "create NAME",
			Short:   "Create an organization",
			Example: `bookctl org create "Trattoria Roma"`,
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				org, err := a.client.CreateOrganization(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("failed to create organization: %w", err)
				}
				cmd.Printf("Created organization %d (%s)\n", org.ID, org.Name)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete an organization with all its resources and reservations",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if !a.confirm(fmt.Sprintf("Delete organization %d with all its resources and reservations?", id)) {
					cmd.Println("Aborted")
					return nil
				}
				if err := a.client.DeleteOrganization(cmd.Context(), id); err != nil {
					return fmt.Errorf("failed to delete organization: %w", err)
				}
				cmd.Printf("Deleted organization %d\n", id)
				return nil
			},
		},
	)
	return cmd
}

func newResourceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resource",
		Aliases: []string{"resources"},
		Short:   "Manage bookable resources",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	var orgID int64
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List resources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.view.LoadResources(cmd.Context(), orgID); err != nil {
				return err
			}
			resources := a.view.State().Resources
			if len(resources) == 0 {
				cmd.Println("No resources found")
				return nil
			}
			rows := make([][]string, 0, len(resources))
			for _, r := range resources {
				capacity := "-"
				if r.Capacity != nil {
					capacity = strconv.Itoa(*r.Capacity)
				}
				rows = append(rows, []string{fmt.Sprint(r.ID), fmt.Sprint(r.OrganizationID), r.Name, orDash(r.Type), capacity})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "ORGANIZATION", "NAME", "TYPE", "CAPACITY"}, rows)
			return nil
		},
	}
	listCmd.Flags().Int64Var(&orgID, "org", 0, "only resources of this organization")

	var (
		req          model.CreateResourceRequest
		resourceType string
		capacity     int
	)
	createCmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a resource",
		Example: `bookctl resource create --org 1 --name "Table 4" --type table --capacity 4`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("type") {
				req.Type = &resourceType
			}
			if cmd.Flags().Changed("capacity") {
				req.Capacity = &capacity
			}
			res, err := a.client.CreateResource(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("failed to create resource: %w", err)
			}
			cmd.Printf("Created resource %d (%s)\n", res.ID, res.Name)
			return nil
		},
	}
	createCmd.Flags().Int64Var(&req.OrganizationID, "org", 0, "owning organization id")
	createCmd.Flags().StringVar(&req.Name, "name", "", "resource name")
	createCmd.Flags().StringVar(&resourceType, "type", "", "type label, e.g. table or room")
	createCmd.Flags().IntVar(&capacity, "capacity", 0, "capacity (positive)")
	_ = createCmd.MarkFlagRequired("org")
	_ = createCmd.MarkFlagRequired("name")

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a resource and its reservations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !a.confirm(fmt.Sprintf("Delete resource %d and its reservations?", id)) {
				cmd.Println("Aborted")
				return nil
			}
			if err := a.client.DeleteResource(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to delete resource: %w", err)
			}
			cmd.Printf("Deleted resource %d\n", id)
			return nil
		},
	}

	cmd.AddCommand(listCmd, createCmd, deleteCmd)
	return cmd
}
