package commands

import (
	"fmt"

	"github.com/ecoblock/ecoblock/src/sensor"
	"github.com/ecoblock/ecoblock/src/tangle"
	"github.com/spf13/cobra"
)

var (
	parents   []string
	rawData   string
	reading   sensor.Reading
	timestamp uint64
)

// NewAddCmd produces an AddCmd which signs a reading and inserts it
func NewAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Sign a sensor reading and add it to the tangle",
		Long: `Sign a sensor reading with the key in datadir and add it to the tangle.
Without --parent, the block is a genesis block. With --data, the given JSON
object is used as payload instead of the sensor flags.`,
		Args: cobra.NoArgs,
		RunE: add,
	}

	AddAddFlags(cmd)

	return cmd
}

//AddAddFlags adds flags to the add command
func AddAddFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&parents, "parent", "p", nil, "Parent block id (repeatable)")
	cmd.Flags().StringVar(&rawData, "data", "", "Raw JSON payload")
	cmd.Flags().Float64Var(&reading.PM25, "pm25", 0, "PM2.5 in µg/m³")
	cmd.Flags().Float64Var(&reading.CO2, "co2", 0, "CO2 in ppm")
	cmd.Flags().Float64Var(&reading.Temperature, "temperature", 0, "Temperature in °C")
	cmd.Flags().Float64Var(&reading.Humidity, "humidity", 0, "Relative humidity in %")
	cmd.Flags().Uint64Var(&timestamp, "timestamp", 0, "Unix timestamp (defaults to now)")
}

func add(cmd *cobra.Command, args []string) error {
	var payload tangle.Payload

	if rawData != "" {
		payload = tangle.RawPayload(rawData)
	} else {
		r := sensor.NewReading(reading.PM25, reading.CO2, reading.Temperature, reading.Humidity)
		if timestamp != 0 {
			r.Timestamp = timestamp
		}
		payload = r
	}

	node, err := openNode()
	if err != nil {
		return err
	}

	block, err := node.Add(payload, parents)
	if err != nil {
		node.Tangle.Close()
		return err
	}

	if err := node.Close(); err != nil {
		return err
	}

	fmt.Println(block.ID)

	return nil
}
