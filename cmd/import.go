package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
)

var importCmd = &cobra.Command{
	Use:   "import <roster.yaml>",
	Short: "Bulk-import identities from a YAML roster",
	Long: `Import multiple identities from a YAML roster file:

identities:
  - name: Alice Smith
    embedding: [0.12, -0.03, ...]
  - name: Bob Jones
    embedding: [0.08, 0.21, ...]

Entries with a wrong embedding dimension are skipped and reported at
the end. With --dry-run the roster is validated without writing.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Bool("dry-run", false, "Validate the roster without writing to the database")
}

// rosterFile is the YAML shape of an identity roster.
type rosterFile struct {
	Identities []rosterEntry `yaml:"identities"`
}

type rosterEntry struct {
	Name      string    `yaml:"name"`
	Embedding []float32 `yaml:"embedding"`
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	dryRun := mustGetBool(cmd, "dry-run")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading roster file: %w", err)
	}

	var roster rosterFile
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return fmt.Errorf("parsing roster file: %w", err)
	}
	if len(roster.Identities) == 0 {
		return fmt.Errorf("roster contains no identities")
	}

	var store database.Store
	if !dryRun {
		store, err = openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	bar := progressbar.NewOptions(len(roster.Identities),
		progressbar.OptionSetDescription("Importing identities"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("identities"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	imported := 0
	var skipped []string
	for _, entry := range roster.Identities {
		bar.Add(1)

		if entry.Name == "" {
			skipped = append(skipped, "entry with empty name")
			continue
		}
		if len(entry.Embedding) != cfg.Recognition.Dimension {
			skipped = append(skipped, fmt.Sprintf("%s: embedding has %d dimensions, expected %d",
				entry.Name, len(entry.Embedding), cfg.Recognition.Dimension))
			continue
		}

		if !dryRun {
			id := database.StoredIdentity{
				UID:       uuid.NewString(),
				Name:      entry.Name,
				Embedding: entry.Embedding,
				Dim:       len(entry.Embedding),
				CreatedAt: time.Now(),
			}
			if err := store.SaveIdentity(context.Background(), id); err != nil {
				return fmt.Errorf("saving identity %s: %w", entry.Name, err)
			}
		}
		imported++
	}
	fmt.Println()

	if dryRun {
		fmt.Printf("Dry run: %d identities valid, %d skipped\n", imported, len(skipped))
	} else {
		fmt.Printf("Imported %d identities, %d skipped\n", imported, len(skipped))
	}
	for _, s := range skipped {
		fmt.Printf("  skipped %s\n", s)
	}
	return nil
}
