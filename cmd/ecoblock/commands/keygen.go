package commands

import (
	"fmt"

	"github.com/ecoblock/ecoblock/src/ecoblock"
	"github.com/spf13/cobra"
)

// NewKeygenCmd produces a KeygenCmd which creates the node's key pair
func NewKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Create new key pair in datadir",
		Args:  cobra.NoArgs,
		RunE:  keygen,
	}
}

func keygen(cmd *cobra.Command, args []string) error {
	kp, err := ecoblock.Keygen(_config.Ecoblock.DataDir)
	if err != nil {
		return fmt.Errorf("generating key: %s", err)
	}

	fmt.Printf("Your private key has been saved to: %s\n", _config.Ecoblock.Keyfile())
	fmt.Printf("PublicKey: %s\n", kp.PublicKey())

	return nil
}
