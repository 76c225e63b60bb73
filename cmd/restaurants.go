package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRestaurantsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restaurants",
		Short: "Print the restaurant catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(opts)
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cat.Listing())
			return nil
		},
	}
}
