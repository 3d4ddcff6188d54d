package extract

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ValentinKolb/tgis/cmd/util"
	"github.com/ValentinKolb/tgis/lib/extract"
)

// ExtractCmd represents the extract command
var ExtractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extracts a subset of a space time raster dataset",
	Long: `Extracts a subset of a space time raster dataset into a new space time raster dataset.

The maps of the input dataset are selected with a where statement. Without
expression the selected maps are registered into the output dataset. With
expression every selected map is processed with r.mapcalc into a new map named
{base}_{n}, which inherits the timestamp of its source map.

Examples:
  tgis extract -i precip -o precip_2010 -w "start_time >= '2010-01-01'"
  tgis extract -i precip -o precip_wet -e "if(precip > 10, precip, null())" -b wet`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	key := "input"
	ExtractCmd.Flags().StringP(key, "i", "", util.WrapString("Name of the input space time raster dataset"))

	key = "output"
	ExtractCmd.Flags().StringP(key, "o", "", util.WrapString("Name of the output space time raster dataset"))

	key = "where"
	ExtractCmd.Flags().StringP(key, "w", "", util.WrapString("WHERE conditions of the map selection, without the WHERE keyword. Example: start_time > '2001-01-01 12:30:00'"))

	key = "expression"
	ExtractCmd.Flags().StringP(key, "e", "", util.WrapString("The r.mapcalc expression assigned to the selected maps. The input dataset name is replaced by the current map"))

	key = "base"
	ExtractCmd.Flags().StringP(key, "b", "", util.WrapString("Base name of the new created raster maps, required with --expression"))

	key = "register-null"
	ExtractCmd.Flags().BoolP(key, "n", false, util.WrapString("Register null maps"))

	_ = ExtractCmd.MarkFlagRequired("input")
	_ = ExtractCmd.MarkFlagRequired("output")
}

func runExtract(cmd *cobra.Command, _ []string) error {
	conf, err := util.GetConfig()
	if err != nil {
		return err
	}
	progress, err := util.GetProgress(conf, os.Stderr)
	if err != nil {
		return err
	}

	store, err := util.OpenStore(conf)
	if err != nil {
		return err
	}
	defer store.Close()

	metrics := extract.NewMetrics()
	extractor := extract.NewExtractor(store, util.GetExecutor(conf), progress, metrics)

	res, runErr := extractor.Run(cmd.Context(), extract.Options{
		Input:        viper.GetString("input"),
		Output:       viper.GetString("output"),
		Where:        viper.GetString("where"),
		Expression:   viper.GetString("expression"),
		Base:         viper.GetString("base"),
		Mapset:       conf.Mapset,
		Creator:      util.Creator(),
		RegisterNull: viper.GetBool("register-null"),
		Overwrite:    conf.Overwrite,
	})

	if err := util.WriteMetrics(conf, metrics); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}

	if res.Aborted {
		fmt.Fprintf(os.Stderr, "extraction stopped after an error, %d of %d maps registered in <%s>\n", res.Registered, res.Selected, res.Output.ID)
	}
	fmt.Printf("%d maps registered in <%s> (%d selected, %d skipped)\n", res.Registered, res.Output.ID, res.Selected, res.Skipped)
	return nil
}
