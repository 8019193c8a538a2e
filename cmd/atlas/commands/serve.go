package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/growthlab/atlas/classification"
	"github.com/growthlab/atlas/errors"
	"github.com/growthlab/atlas/logger"
	"github.com/growthlab/atlas/lookup"
	"github.com/growthlab/atlas/registry"
	"github.com/growthlab/atlas/server"
)

// ServeCmd starts the atlas data server
var ServeCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the atlas data server",
	Long: `Launch the atlas HTTP server. Every endpoint declared in the registry
is mounted as a GET route; incoming requests are resolved against the
registry and served from the matching slice table.`,
	RunE: runServe,
}

var (
	servePort         int
	serveRegistryPath string
	serveDBPath       string
)

func init() {
	ServeCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides config)")
	ServeCmd.Flags().StringVar(&serveRegistryPath, "registry", "", "Registry file path (overrides config)")
	ServeCmd.Flags().StringVar(&serveDBPath, "db-path", "", "Database path (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveRegistryPath != "" {
		cfg.Registry.Path = serveRegistryPath
	}
	if serveDBPath != "" {
		cfg.Database.Path = serveDBPath
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

	// One cached SQL-backed classification per declared facet type.
	classifications := make(map[string]classification.Classification, len(reg.Classifications))
	for facetType, def := range reg.Classifications {
		classifications[facetType] = classification.NewCached(
			classification.NewSQL(database, def.Table, def.Levels))
	}

	srv := server.New(logger.Logger, cfg.Server, reg, classifications, lookup.NewSQL(database))

	pterm.Info.Printf("Registry: %s (%d endpoints, %d datasets)\n",
		cfg.Registry.Path, len(reg.Endpoints), len(reg.Datasets))
	pterm.Info.Printf("Database: %s\n", cfg.Database.Path)
	pterm.Success.Printf("Atlas listening on http://localhost:%d\n", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		return errors.Wrap(err, "server failed")
	}
	pterm.Success.Println("Server stopped cleanly")
	return nil
}
