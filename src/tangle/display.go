package tangle

import (
	"fmt"
	"io"
	"strings"
)

// Display writes one line per accepted block, in acceptance order: the block id
// followed by "genesis" or by the list of its parents.
func Display(t *Tangle, w io.Writer) error {
	blocks, err := t.Blocks()
	if err != nil {
		return err
	}

	for _, b := range blocks {
		var line string
		if b.IsGenesis() {
			line = fmt.Sprintf("%s genesis\n", b.ID)
		} else {
			line = fmt.Sprintf("%s parents: %s\n", b.ID, strings.Join(b.Parents, ", "))
		}
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}

	return nil
}
