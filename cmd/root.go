package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ValentinKolb/tgis/cmd/extract"
	"github.com/ValentinKolb/tgis/cmd/strds"
	"github.com/ValentinKolb/tgis/cmd/util"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "tgis",
		Short: "temporal GIS tools for space time raster datasets",
		Long: fmt.Sprintf(`tgis (v%s)

Tools to manage space time raster datasets of a GRASS location and to extract
time filtered subsets of them, optionally processed with r.mapcalc.

Run the tools inside a GRASS session, or set --mapset and --db-dsn.`, Version),
		PersistentPreRunE: util.Setup,
		SilenceUsage:      true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of tgis",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tgis v%s\n", Version)
		},
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(extract.ExtractCmd)
	RootCmd.AddCommand(strds.StrdsCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	util.SetupGlobalFlags(RootCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
// An interrupt cancels the running command, including a running r.mapcalc.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
