package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewGetCmd produces a GetCmd which prints a block
func NewGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Print a block as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  get,
	}
}

func get(cmd *cobra.Command, args []string) error {
	node, err := openNode()
	if err != nil {
		return err
	}
	defer node.Tangle.Close()

	block, ok := node.Tangle.Get(args[0])
	if !ok {
		return fmt.Errorf("block %s not found", args[0])
	}

	out, err := json.MarshalIndent(block, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))

	return nil
}
