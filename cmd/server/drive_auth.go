package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codebuildervaibhav/meeting-summarizer/internal/config"
	"github.com/codebuildervaibhav/meeting-summarizer/internal/storage"
)

func newDriveAuthCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "drive-auth",
		Short: "Authorize Google Drive access and store the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			gd := cfg.GoogleDrive
			if err := storage.Authorize(cmd.Context(), gd.CredentialsFile, gd.TokenFile, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", gd.TokenFile)
			return nil
		},
	}
}
