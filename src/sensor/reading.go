// Package sensor defines the air-quality reading carried as block payload by
// ecoblock nodes.
package sensor

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Reading is a single air-quality measurement.
type Reading struct {
	PM25        float64 `json:"pm25" validate:"gte=0,lte=1000"`
	CO2         float64 `json:"co2" validate:"gte=0,lte=100000"`
	Temperature float64 `json:"temperature" validate:"gte=-100,lte=100"`
	Humidity    float64 `json:"humidity" validate:"gte=0,lte=100"`
	Timestamp   uint64  `json:"timestamp"`
}

// NewReading returns a reading stamped with the current unix time.
func NewReading(pm25, co2, temperature, humidity float64) Reading {
	return Reading{
		PM25:        pm25,
		CO2:         co2,
		Temperature: temperature,
		Humidity:    humidity,
		Timestamp:   uint64(time.Now().Unix()),
	}
}

// Validate checks that every measurement is within physical bounds.
func (r Reading) Validate() error {
	if err := validate.Struct(r); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		fields := make([]string, len(verrs))
		for i, fe := range verrs {
			fields[i] = fmt.Sprintf("%s (%s=%s)", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("invalid reading: %s", strings.Join(fields, ", "))
	}
	return nil
}

// Marshal validates the reading and returns its JSON encoding. Field order is
// fixed by the struct, so the output is deterministic.
func (r Reading) Marshal() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(r)
}

// Unmarshal decodes and validates a reading.
func Unmarshal(data []byte) (Reading, error) {
	var r Reading
	if err := json.Unmarshal(data, &r); err != nil {
		return r, err
	}
	return r, r.Validate()
}
