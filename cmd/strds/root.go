package strds

import (
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"

	"github.com/ValentinKolb/tgis/cmd/util"
	"github.com/ValentinKolb/tgis/lib/common"
	"github.com/ValentinKolb/tgis/lib/tgis"
)

var (
	plog = logger.GetLogger("strds")

	// StrdsCommands represents the strds command group
	StrdsCommands = &cobra.Command{
		Use:   "strds",
		Short: "Manage space time raster datasets",
	}
)

func init() {
	// Add subcommands
	StrdsCommands.AddCommand(createCmd)
	StrdsCommands.AddCommand(removeCmd)
	StrdsCommands.AddCommand(listCmd)
	StrdsCommands.AddCommand(infoCmd)
	StrdsCommands.AddCommand(mapsCmd)
	StrdsCommands.AddCommand(registerCmd)

	// create flags
	key := "type"
	createCmd.Flags().String(key, string(tgis.TemporalAbsolute), util.WrapString("The temporal type of the dataset (absolute, relative)"))
	key = "semantic"
	createCmd.Flags().String(key, "mean", util.WrapString("The semantic type of the dataset (mean, min, max, sum)"))
	key = "title"
	createCmd.Flags().String(key, "", util.WrapString("Title of the dataset"))
	key = "description"
	createCmd.Flags().String(key, "", util.WrapString("Description of the dataset"))

	// maps flags
	key = "where"
	mapsCmd.Flags().StringP(key, "w", "", util.WrapString("WHERE conditions of the map selection, without the WHERE keyword"))

	// register flags
	key = "start"
	registerCmd.Flags().String(key, "", util.WrapString("Start of the map's valid time. A date for absolute datasets (YYYY-MM-DD[ HH:MM:SS]), a number for relative ones. Required for maps not yet in the temporal database"))
	key = "end"
	registerCmd.Flags().String(key, "", util.WrapString("End of the map's valid time (optional)"))
	key = "timezone"
	registerCmd.Flags().Int(key, 0, util.WrapString("Timezone offset of absolute times in hours (optional)"))
}

// openStore reads the configuration and connects to the temporal database
func openStore() (*common.Config, tgis.IStore, error) {
	conf, err := util.GetConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := util.OpenStore(conf)
	if err != nil {
		return nil, nil, err
	}
	return conf, store, nil
}
