package commands

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/growthlab/atlas/errors"
	"github.com/growthlab/atlas/registry"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the atlas database",
	Long: `db — Manage atlas database operations

Examples:
  atlas db migrate                # Apply pending schema migrations
  atlas db stats                  # Show row counts per registered table`,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE:  runDbMigrate,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show row counts for classification and slice tables",
	RunE:  runDbStats,
}

func init() {
	DbCmd.AddCommand(dbMigrateCmd)
	DbCmd.AddCommand(dbStatsCmd)
}

func runDbMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	// openDatabase runs migrations as part of opening
	database, err := openDatabase(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}
	return database.Close()
}

func runDbStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	reg, err := registry.Load(cfg.Registry.Path)
	if err != nil {
		return errors.Wrapf(err, "failed to load registry from %s", cfg.Registry.Path)
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer database.Close()

	fmt.Printf("Database Statistics\n")
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
	fmt.Printf("Database Path: %s\n\n", cfg.Database.Path)

	fmt.Printf("Classification tables:\n")
	for facetType, def := range reg.Classifications {
		count, err := tableCount(database, def.Table)
		if err != nil {
			return err
		}
		fmt.Printf("  %-12s %-28s %d rows\n", facetType, def.Table, count)
	}
	fmt.Println()

	fmt.Printf("Slice tables:\n")
	for datasetName, dataset := range reg.Datasets {
		for sliceName := range dataset.Slices {
			count, err := tableCount(database, sliceName)
			if err != nil {
				return err
			}
			fmt.Printf("  %-12s %-28s %d rows\n", datasetName, sliceName, count)
		}
	}

	return nil
}

// tableCount counts rows in a registry-declared table. Table names come
// from the validated registry, not from user input.
func tableCount(database *sql.DB, table string) (int, error) {
	var count int
	err := database.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to count rows in %s", table)
	}
	return count, nil
}
