package util

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ValentinKolb/tgis/lib/common"
	"github.com/ValentinKolb/tgis/lib/extract"
	"github.com/ValentinKolb/tgis/lib/gisenv"
	"github.com/ValentinKolb/tgis/lib/raster"
	"github.com/ValentinKolb/tgis/lib/tgis"
	"github.com/ValentinKolb/tgis/lib/tgis/sqlstore"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50

	// DefaultDSN is used if neither --db-dsn nor a GRASS session is available
	DefaultDSN = "tgis.db"
)

var plog = logger.GetLogger("cmd")

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupGlobalFlags adds the flags shared by all commands to a command
func SetupGlobalFlags(cmd *cobra.Command) {
	key := "mapset"
	cmd.PersistentFlags().String(key, "", WrapString("The current mapset. Bare dataset and map names are qualified with it. Defaults to MAPSET of the GRASS session ($GISRC)"))

	key = "overwrite"
	cmd.PersistentFlags().Bool(key, false, WrapString("Allow existing datasets and maps to be overwritten (also enabled by GRASS_OVERWRITE=1)"))

	key = "db-driver"
	cmd.PersistentFlags().String(key, string(sqlstore.DriverSQLite), WrapString("The temporal database backend (sqlite, postgres)"))

	key = "db-dsn"
	cmd.PersistentFlags().String(key, "", WrapString("The temporal database. A file path for sqlite, a connection string for postgres. Defaults to $GISDBASE/$LOCATION_NAME/PERMANENT/tgis/sqlite.db of the GRASS session, else "+DefaultDSN))

	key = "mapcalc"
	cmd.PersistentFlags().String(key, raster.DefaultMapCalc, WrapString("The r.mapcalc executable"))

	key = "rinfo"
	cmd.PersistentFlags().String(key, raster.DefaultRInfo, WrapString("The r.info executable"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "info", WrapString("The log level (debug, info, warn, error)"))

	key = "message-format"
	cmd.PersistentFlags().String(key, string(extract.FormatPlain), WrapString("How progress is printed (plain, gui, silent)"))

	key = "metrics-file"
	cmd.PersistentFlags().String(key, "", WrapString("Write run metrics in Prometheus text format to this file"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("tgis")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// Setup binds the flags of the executed command and initializes the loggers.
// It is the PersistentPreRunE of the root command.
func Setup(cmd *cobra.Command, _ []string) error {
	if err := BindCommandFlags(cmd); err != nil {
		return err
	}
	return common.InitLoggers(viper.GetString("log-level"))
}

// GetConfig reads the configuration from viper and fills the defaults that come
// from the GRASS session.
func GetConfig() (*common.Config, error) {
	conf := &common.Config{
		Mapset:        viper.GetString("mapset"),
		Overwrite:     viper.GetBool("overwrite") || os.Getenv("GRASS_OVERWRITE") == "1",
		DBDriver:      viper.GetString("db-driver"),
		DBDSN:         viper.GetString("db-dsn"),
		MapCalc:       viper.GetString("mapcalc"),
		RInfo:         viper.GetString("rinfo"),
		LogLevel:      viper.GetString("log-level"),
		MessageFormat: viper.GetString("message-format"),
		MetricsFile:   viper.GetString("metrics-file"),
	}

	if conf.Mapset == "" || conf.DBDSN == "" {
		env, err := gisenv.Current()
		switch {
		case errors.Is(err, gisenv.ErrNoSession):
			plog.Debugf("no GRASS session found")
		case err != nil:
			return nil, err
		default:
			if conf.Mapset == "" {
				conf.Mapset = env.Mapset
			}
			if conf.DBDSN == "" {
				conf.DBDSN = env.TemporalDatabase()
			}
		}
	}
	if conf.DBDSN == "" {
		conf.DBDSN = DefaultDSN
	}

	plog.Debugf("configuration:%s", conf.String())
	return conf, nil
}

// OpenStore connects to the configured temporal database
func OpenStore(conf *common.Config) (tgis.IStore, error) {
	driver, err := sqlstore.ParseDriver(conf.DBDriver)
	if err != nil {
		return nil, err
	}
	store, err := sqlstore.Open(driver, conf.DBDSN)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// GetExecutor creates the raster engine based on configuration
func GetExecutor(conf *common.Config) raster.IExecutor {
	return raster.NewGRASSExecutor(conf.MapCalc, conf.RInfo)
}

// GetProgress creates the progress reporter based on configuration
func GetProgress(conf *common.Config, w io.Writer) (extract.Progress, error) {
	format, err := extract.ParseMessageFormat(conf.MessageFormat)
	if err != nil {
		return nil, err
	}
	return extract.NewProgress(w, format), nil
}

// WriteMetrics writes the metrics to the configured file, if any
func WriteMetrics(conf *common.Config, m *extract.Metrics) error {
	if conf.MetricsFile == "" || m == nil {
		return nil
	}
	f, err := os.Create(conf.MetricsFile)
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	m.WritePrometheus(f)
	return f.Close()
}

// Creator returns the name of the user running the command
func Creator() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}
