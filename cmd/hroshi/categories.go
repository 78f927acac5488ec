package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkovalch/hroshi/internal/category"
	"github.com/mkovalch/hroshi/internal/cli"
	"github.com/mkovalch/hroshi/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage transaction categories",
	}

	cmd.AddCommand(categoriesListCmd())
	cmd.AddCommand(categoriesAddCmd())
	cmd.AddCommand(categoriesDeleteCmd())

	return cmd
}

func categoriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			manager := category.NewManager(store)
			if err := manager.EnsureDefaultCategories(ctx); err != nil {
				return err
			}

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return err
			}

			fmt.Println(cli.TitleStyle.Render("Categories"))
			for _, typ := range []model.CategoryType{
				model.CategoryTypeIncome,
				model.CategoryTypeExpense,
				model.CategoryTypeCredit,
			} {
				for _, cat := range categories {
					if cat.Type != typ {
						continue
					}
					fmt.Printf("%s  %-10s  %s\n",
						cli.SubtleStyle.Render(fmt.Sprintf("#%d", cat.ID)),
						cat.Type,
						cat.Name)
				}
			}
			return nil
		},
	}
}

func categoriesAddCmd() *cobra.Command {
	var typeFlag string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			manager := category.NewManager(store)
			result, err := manager.AddCategory(ctx, args[0], model.CategoryType(typeFlag))
			if err != nil {
				return err
			}

			switch result.Outcome {
			case category.OutcomeAdded:
				fmt.Printf("Added category %s (#%d)\n", args[0], result.CategoryID)
			case category.OutcomeDuplicate:
				fmt.Println(cli.WarnStyle.Render(fmt.Sprintf("Category already exists (#%d)", result.CategoryID)))
			case category.OutcomeInvalidName:
				return fmt.Errorf("invalid category name or type (types: INCOME, EXPENSE, CREDIT)")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "EXPENSE", "category type (INCOME, EXPENSE, CREDIT)")

	return cmd
}

func categoriesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category (refused while transactions reference it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			manager := category.NewManager(store)
			result, err := manager.DeleteCategory(ctx, id)
			if err != nil {
				return err
			}

			switch result.Outcome {
			case category.OutcomeDeleted:
				fmt.Printf("Deleted category #%d\n", id)
			case category.OutcomeNotFound:
				return fmt.Errorf("category #%d not found", id)
			case category.OutcomeInUse:
				return fmt.Errorf("category #%d still has transactions; delete or reassign them first", id)
			}
			return nil
		},
	}
}
