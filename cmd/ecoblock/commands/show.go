package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/ecoblock/ecoblock/src/tangle"
	"github.com/spf13/cobra"
)

// NewShowCmd produces a ShowCmd which lists the blocks and their parents
func NewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List every block with its parents",
		Args:  cobra.NoArgs,
		RunE:  show,
	}
}

func show(cmd *cobra.Command, args []string) error {
	node, err := openNode()
	if err != nil {
		return err
	}
	defer node.Tangle.Close()

	return tangle.Display(node.Tangle, os.Stdout)
}

// NewTipsCmd produces a TipsCmd which lists the blocks without children
func NewTipsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tips",
		Short: "List the blocks that have no children",
		Args:  cobra.NoArgs,
		RunE:  tips,
	}
}

func tips(cmd *cobra.Command, args []string) error {
	node, err := openNode()
	if err != nil {
		return err
	}
	defer node.Tangle.Close()

	if t := node.Tangle.Tips(); len(t) > 0 {
		fmt.Println(strings.Join(t, "\n"))
	}

	return nil
}
