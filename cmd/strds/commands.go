package strds

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ValentinKolb/tgis/cmd/util"
	"github.com/ValentinKolb/tgis/lib/tgis"
)

var (
	createCmd = &cobra.Command{
		Use:   "create [name]",
		Short: "Creates an empty space time raster dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			temporalType, err := tgis.ParseTemporalType(viper.GetString("type"))
			if err != nil {
				return err
			}

			conf, store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ds := tgis.Dataset{
				ID:           tgis.QualifyID(args[0], conf.Mapset),
				Creator:      util.Creator(),
				CreationTime: time.Now(),
			}
			ds.SetInitialValues(temporalType, viper.GetString("semantic"), viper.GetString("title"), viper.GetString("description"))

			if err := store.InsertDataset(ds); err != nil {
				return err
			}
			fmt.Printf("created space time raster dataset <%s>\n", ds.ID)
			return nil
		},
	}
	removeCmd = &cobra.Command{
		Use:   "remove [name]",
		Short: "Removes a space time raster dataset, its maps are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			id := tgis.QualifyID(args[0], conf.Mapset)
			if err := store.DeleteDataset(id); err != nil {
				return err
			}
			fmt.Printf("removed space time raster dataset <%s>\n", id)
			return nil
		},
	}
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists space time raster datasets (of all mapsets unless --mapset is given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			mapset := ""
			if cmd.Flags().Changed("mapset") {
				mapset = viper.GetString("mapset")
			}
			datasets, err := store.ListDatasets(mapset)
			if err != nil {
				return err
			}
			for _, ds := range datasets {
				fmt.Printf("%s|%s|%d\n", ds.ID, ds.TemporalType, ds.Extent.NumberOfMaps)
			}
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info [name]",
		Short: "Prints the metadata and extent of a space time raster dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ds, err := store.GetDataset(tgis.QualifyID(args[0], conf.Mapset))
			if err != nil {
				return err
			}
			fmt.Print(formatDataset(&ds))
			return nil
		},
	}
	mapsCmd = &cobra.Command{
		Use:   "maps [name]",
		Short: "Lists the registered maps of a space time raster dataset ordered by start time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			maps, err := store.RegisteredMaps(tgis.QualifyID(args[0], conf.Mapset), viper.GetString("where"))
			if err != nil {
				return err
			}
			for i := range maps {
				fmt.Println(formatMapRow(&maps[i]))
			}
			return nil
		},
	}
	registerCmd = &cobra.Command{
		Use:   "register [name] [map]",
		Short: "Registers a raster map in a space time raster dataset",
		Long: `Registers a raster map in a space time raster dataset.

If the map is not yet in the temporal database, its extent and value range are
loaded with r.info and it is inserted with the timestamp given by --start,
--end and --timezone; --start is required in that case. A map that is already
known keeps its timestamp. The extent of the dataset is updated afterwards.`,
		Args: cobra.ExactArgs(2),
		RunE: runRegister,
	}
)

func runRegister(cmd *cobra.Command, args []string) error {
	conf, store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	dsID := tgis.QualifyID(args[0], conf.Mapset)
	mapID := tgis.QualifyID(args[1], conf.Mapset)

	ds, err := store.GetDataset(dsID)
	if err != nil {
		return err
	}

	exists, err := store.HasMap(mapID)
	if err != nil {
		return err
	}
	if exists {
		plog.Infof("raster map <%s> is already in the temporal database, its timestamp is kept", mapID)
	} else {
		if viper.GetString("start") == "" {
			return fmt.Errorf("raster map <%s> is not in the temporal database, --start is required to register it", mapID)
		}
		m := tgis.Map{ID: mapID, Creator: util.Creator(), CreationTime: time.Now()}
		var tz *int
		if cmd.Flags().Changed("timezone") {
			v := viper.GetInt("timezone")
			tz = &v
		}
		if err := setTimestamp(&m, ds.TemporalType, viper.GetString("start"), viper.GetString("end"), tz); err != nil {
			return err
		}

		info, err := util.GetExecutor(conf).Info(cmd.Context(), mapID.String())
		if err != nil {
			return err
		}
		info.Apply(&m)

		if err := store.InsertMap(m); err != nil {
			return err
		}
	}

	if err := store.RegisterMap(dsID, mapID); err != nil {
		return err
	}
	updated, err := store.UpdateFromRegisteredMaps(dsID)
	if err != nil {
		return err
	}
	fmt.Printf("registered <%s> in <%s> (%d maps)\n", mapID, dsID, updated.Extent.NumberOfMaps)
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// setTimestamp parses start and end according to the temporal type and sets
// them on the map. end may be empty.
func setTimestamp(m *tgis.Map, temporalType tgis.TemporalType, start, end string, tz *int) error {
	switch temporalType {
	case tgis.TemporalAbsolute:
		s, err := tgis.ParseTime(start)
		if err != nil {
			return err
		}
		var e *time.Time
		if end != "" {
			t, err := tgis.ParseTime(end)
			if err != nil {
				return err
			}
			if t.Before(s) {
				return fmt.Errorf("end time %s is before start time %s", end, start)
			}
			e = &t
		}
		m.SetAbsoluteTime(s, e, tz)
	case tgis.TemporalRelative:
		s, err := strconv.ParseFloat(start, 64)
		if err != nil {
			return fmt.Errorf("invalid relative start time %q: %w", start, err)
		}
		var e *float64
		if end != "" {
			v, err := strconv.ParseFloat(end, 64)
			if err != nil {
				return fmt.Errorf("invalid relative end time %q: %w", end, err)
			}
			if v < s {
				return fmt.Errorf("end time %s is before start time %s", end, start)
			}
			e = &v
		}
		m.SetRelativeTime(s, e)
	default:
		return fmt.Errorf("unknown temporal type %q", temporalType)
	}
	return nil
}

// formatMapRow renders a map as "id|start|end|min|max"
func formatMapRow(m *tgis.Map) string {
	start, end := "", ""
	switch {
	case m.Absolute != nil:
		start = m.Absolute.Start.Format(tgis.TimeLayout)
		if m.Absolute.End != nil {
			end = m.Absolute.End.Format(tgis.TimeLayout)
		}
	case m.Relative != nil:
		start = formatFloat(&m.Relative.Start)
		end = formatFloat(m.Relative.End)
	}
	return strings.Join([]string{string(m.ID), start, end, formatFloat(m.Metadata.Min), formatFloat(m.Metadata.Max)}, "|")
}

// formatDataset renders the metadata and extent of a dataset
func formatDataset(ds *tgis.Dataset) string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	ext := &ds.Extent

	addSection("Basic Information")
	addField("Id", string(ds.ID))
	addField("Name", ds.ID.Name())
	addField("Mapset", ds.ID.Mapset())
	addField("Creator", ds.Creator)
	if !ds.CreationTime.IsZero() {
		addField("Creation Time", ds.CreationTime.Format(tgis.TimeLayout))
	}
	addField("Temporal Type", string(ds.TemporalType))
	addField("Semantic Type", ds.SemanticType)
	addField("Title", ds.Title)
	addField("Description", ds.Description)

	addSection("Temporal Extent")
	switch {
	case ext.Absolute != nil:
		addField("Start Time", ext.Absolute.Start.Format(tgis.TimeLayout))
		if ext.Absolute.End != nil {
			addField("End Time", ext.Absolute.End.Format(tgis.TimeLayout))
		}
	case ext.Relative != nil:
		addField("Start Time", formatFloat(&ext.Relative.Start))
		addField("End Time", formatFloat(ext.Relative.End))
	default:
		addField("Start Time", "None")
	}

	addSection("Spatial Extent")
	addField("North", formatFloat(&ext.Spatial.North))
	addField("South", formatFloat(&ext.Spatial.South))
	addField("East", formatFloat(&ext.Spatial.East))
	addField("West", formatFloat(&ext.Spatial.West))

	addSection("Metadata")
	addField("Number Of Maps", strconv.Itoa(ext.NumberOfMaps))
	addField("Min Min", formatFloat(ext.MinMin))
	addField("Min Max", formatFloat(ext.MinMax))
	addField("Max Min", formatFloat(ext.MaxMin))
	addField("Max Max", formatFloat(ext.MaxMax))
	addField("NS Res Min", formatFloat(ext.NSResMin))
	addField("NS Res Max", formatFloat(ext.NSResMax))
	addField("EW Res Min", formatFloat(ext.EWResMin))
	addField("EW Res Max", formatFloat(ext.EWResMax))

	return sb.String()
}

func formatFloat(v *float64) string {
	if v == nil {
		return "None"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
