package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a single identity from an embedding file",
	Long: `Register one identity in the attendance database.
The embedding file must contain a JSON array of numbers with the
configured embedding dimension, as produced by the face embedding
service.`,
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().String("name", "", "Display name of the person (required)")
	registerCmd.Flags().String("embedding-file", "", "Path to a JSON file with the embedding vector (required)")
	registerCmd.MarkFlagRequired("name")
	registerCmd.MarkFlagRequired("embedding-file")
}

func runRegister(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	name := mustGetString(cmd, "name")
	path := mustGetString(cmd, "embedding-file")

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading embedding file: %w", err)
	}

	var embedding []float32
	if err := json.Unmarshal(data, &embedding); err != nil {
		return fmt.Errorf("parsing embedding file: %w", err)
	}
	if len(embedding) != cfg.Recognition.Dimension {
		return fmt.Errorf("embedding has %d dimensions, expected %d",
			len(embedding), cfg.Recognition.Dimension)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	id := database.StoredIdentity{
		UID:       uuid.NewString(),
		Name:      name,
		Embedding: embedding,
		Dim:       len(embedding),
		CreatedAt: time.Now(),
	}
	if err := store.SaveIdentity(context.Background(), id); err != nil {
		return fmt.Errorf("saving identity: %w", err)
	}

	fmt.Printf("Registered %s (%s)\n", name, id.UID)
	return nil
}
