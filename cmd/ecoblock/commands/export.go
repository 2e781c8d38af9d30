package commands

import (
	"fmt"
	"os"

	"github.com/ecoblock/ecoblock/src/tangle"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewExportCmd produces an ExportCmd which writes a JSON snapshot
func NewExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write a JSON snapshot of the tangle to file, or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE:  export,
	}
}

func export(cmd *cobra.Command, args []string) error {
	node, err := openNode()
	if err != nil {
		return err
	}
	defer node.Tangle.Close()

	if len(args) == 0 || args[0] == "-" {
		data, err := tangle.Snapshot(node.Tangle)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if err := tangle.WriteSnapshotFile(node.Tangle, args[0]); err != nil {
		return err
	}

	_config.Ecoblock.Logger().WithFields(logrus.Fields{
		"path":   args[0],
		"blocks": node.Tangle.Len(),
	}).Info("Exported snapshot")

	return nil
}

// NewImportCmd produces an ImportCmd which adds the blocks of a snapshot
func NewImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Validate and add the blocks of a JSON snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  importSnapshot,
	}
}

func importSnapshot(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return &tangle.PersistenceError{Op: "open", Path: args[0], Err: err}
	}
	defer f.Close()

	node, err := openNode()
	if err != nil {
		return err
	}

	n, err := tangle.Import(node.Tangle, f)

	// blocks accepted before a failure are kept
	if cerr := node.Close(); cerr != nil && err == nil {
		err = cerr
	}

	fmt.Printf("Imported %d block(s)\n", n)

	return err
}
