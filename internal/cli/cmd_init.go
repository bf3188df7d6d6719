// Package cli implements the trackline command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trackline/trackline/internal/config"
)

// newInitCmd creates the init command
func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize trackline in current directory",
		Long: `Initialize trackline in the current directory.

Creates the ` + config.TracklineDir + ` directory with a default config file.
The database file is created on first serve.

Examples:
  trackline init              # Create default config
  trackline init --force      # Overwrite existing configuration`,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")

			if !force && config.IsInitialized() {
				return fmt.Errorf("trackline already initialized. Use --force to reinitialize")
			}
			if err := config.Init(force); err != nil {
				return err
			}

			fmt.Printf("Initialized trackline in %s/\n", config.TracklineDir)
			fmt.Println("Run 'trackline serve' to start the API server")
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Overwrite existing configuration")

	return cmd
}
