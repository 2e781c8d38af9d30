package commands

import (
	"github.com/ecoblock/ecoblock/src/config"
)

//CLIConfig contains the configuration of the ecoblock command
type CLIConfig struct {
	Ecoblock config.Config `mapstructure:",squash"`
}

//NewDefaultCLIConfig creates a CLIConfig with default values
func NewDefaultCLIConfig() *CLIConfig {
	return &CLIConfig{
		Ecoblock: *config.NewDefaultConfig(),
	}
}
