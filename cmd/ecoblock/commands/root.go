package commands

import (
	"os"

	"github.com/ecoblock/ecoblock/src/config"
	"github.com/ecoblock/ecoblock/src/ecoblock"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	_config = NewDefaultCLIConfig()
)

func init() {
	RootCmd.PersistentFlags().String("datadir", _config.Ecoblock.DataDir, "Top-level directory for configuration and data")
	RootCmd.PersistentFlags().String("log", _config.Ecoblock.LogLevel, "debug, info, warn, error, fatal, panic")

	// Store
	RootCmd.PersistentFlags().String("store", _config.Ecoblock.Store, "Block store: inmem, badger or bolt")
	RootCmd.PersistentFlags().String("db", _config.Ecoblock.DatabaseDir, "Database path (defaults to a location inside datadir)")
	RootCmd.PersistentFlags().String("snapshot", _config.Ecoblock.Snapshot, "Snapshot file of the inmem store (defaults to datadir/tangle.json)")
	RootCmd.PersistentFlags().Bool("allow-unsigned", _config.Ecoblock.AllowUnsigned, "Accept blocks without signature")
}

//RootCmd is the root command for ecoblock
var RootCmd = &cobra.Command{
	Use:               "ecoblock",
	Short:             "ecoblock tangle of signed sensor readings",
	PersistentPreRunE: loadConfig,
	TraverseChildren:  true,
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

func loadConfig(cmd *cobra.Command, args []string) error {
	err := bindFlagsLoadViper(cmd)
	if err != nil {
		return err
	}

	logger := _config.Ecoblock.BaseLogger()
	logger.Level = config.LogLevel(_config.Ecoblock.LogLevel)

	addFileHook(logger, _config.Ecoblock.LogFile())

	_config.Ecoblock.Logger().WithFields(logrus.Fields{
		"ecoblock.DataDir":       _config.Ecoblock.DataDir,
		"ecoblock.LogLevel":      _config.Ecoblock.LogLevel,
		"ecoblock.Store":         _config.Ecoblock.Store,
		"ecoblock.DatabasePath":  _config.Ecoblock.DatabasePath(),
		"ecoblock.SnapshotFile":  _config.Ecoblock.SnapshotFile(),
		"ecoblock.AllowUnsigned": _config.Ecoblock.AllowUnsigned,
	}).Debug(cmd.Name())

	return nil
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all other
	// persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/ecoblock.toml (.json, .yaml also work)
	viper.SetConfigName("ecoblock")               // name of config file (without extension)
	viper.AddConfigPath(_config.Ecoblock.DataDir) // search root directory

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		_config.Ecoblock.Logger().Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Ecoblock.Logger().Debugf("No config file found in: %s", _config.Ecoblock.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from config file
	return viper.Unmarshal(_config)
}

// addFileHook mirrors every log entry to path, if the file can be opened.
func addFileHook(logger *logrus.Logger, path string) {
	if err := os.MkdirAll(_config.Ecoblock.DataDir, 0700); err != nil {
		logger.WithError(err).Debug("Cannot create datadir, logging to stderr only")
		return
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		logger.WithError(err).Debugf("Failed to open %s, logging to stderr only", path)
		return
	}
	f.Close()

	pathMap := lfshook.PathMap{}
	for _, level := range logrus.AllLevels {
		pathMap[level] = path
	}

	logger.Hooks.Add(lfshook.NewHook(
		pathMap,
		&logrus.JSONFormatter{},
	))
}

// openNode initialises a node from the loaded configuration. The caller must
// close it.
func openNode() (*ecoblock.Ecoblock, error) {
	node := ecoblock.NewEcoblock(&_config.Ecoblock)

	if err := node.Init(); err != nil {
		_config.Ecoblock.Logger().WithError(err).Error("Cannot initialize node")
		return nil, err
	}

	return node, nil
}
