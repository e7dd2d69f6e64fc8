package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/itiky/employee-sync/storage"
)

const (
	FlagFilePath    = "file-path"
	FlagStorageSize = "storage-size"
)

// GetGenerateCmd returns generate fixture data command.
func GetGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate server fixture data",
		Run: func(cmd *cobra.Command, args []string) {
			// Parse inputs
			filePath, err := cmd.Flags().GetString(FlagFilePath)
			if err != nil {
				log.Fatalf("%s flag: %v", FlagFilePath, err)
			}
			storageSize, err := cmd.Flags().GetInt(FlagStorageSize)
			if err != nil {
				log.Fatalf("%s flag: %v", FlagStorageSize, err)
			}

			// Work
			if err := storage.GenAndSaveInitialStorage(filePath, storageSize); err != nil {
				log.Fatalf("gen failed: %v", err)
			}
		},
	}
	cmd.Flags().String(FlagFilePath, "./employees.yaml", "(optional) output file path")
	cmd.Flags().Int(FlagStorageSize, 24, "(optional) number of employees")

	return cmd
}

func init() {
	rootCmd.AddCommand(GetGenerateCmd())
}
