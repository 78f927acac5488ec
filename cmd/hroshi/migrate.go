package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkovalch/hroshi/internal/category"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and seed default categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := category.NewManager(store).EnsureDefaultCategories(ctx); err != nil {
				return err
			}

			fmt.Println("Database is up to date.")
			return nil
		},
	}
}
