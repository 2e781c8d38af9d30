package sensor

import (
	"strings"
	"testing"

	"github.com/ecoblock/ecoblock/src/crypto/keys"
	"github.com/ecoblock/ecoblock/src/tangle"
)

func TestReadingMarshal(t *testing.T) {
	r := Reading{PM25: 10, CO2: 400, Temperature: 20, Humidity: 50, Timestamp: 123456}

	data, err := r.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	expected := `{"pm25":10,"co2":400,"temperature":20,"humidity":50,"timestamp":123456}`
	if string(data) != expected {
		t.Fatalf("Marshal should be %s, not %s", expected, data)
	}

	back, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if back != r {
		t.Fatalf("Unmarshal should give back %+v, not %+v", r, back)
	}
}

func TestReadingValidate(t *testing.T) {
	if err := (Reading{}).Validate(); err != nil {
		t.Fatalf("a zero reading is valid: %v", err)
	}

	bad := Reading{PM25: -1, Humidity: 120}
	err := bad.Validate()
	if err == nil {
		t.Fatalf("out of range values should be rejected")
	}
	if !strings.Contains(err.Error(), "PM25") || !strings.Contains(err.Error(), "Humidity") {
		t.Fatalf("error should name the offending fields: %v", err)
	}

	if _, err := bad.Marshal(); err == nil {
		t.Fatalf("Marshal should refuse an invalid reading")
	}

	if _, err := Unmarshal([]byte(`{"humidity":101}`)); err == nil {
		t.Fatalf("Unmarshal should refuse an invalid reading")
	}
}

func TestReadingAsPayload(t *testing.T) {
	kp, err := keys.GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}

	r := NewReading(12.5, 400, 22.5, 45)

	block, err := tangle.NewBlock(r, nil, kp)
	if err != nil {
		t.Fatal(err)
	}

	tg := tangle.NewTangle(tangle.NewInmemStore(), tangle.RequireSignatures, nil)
	if err := tg.Insert(block); err != nil {
		t.Fatal(err)
	}

	got, _ := tg.Get(block.ID)
	var decoded Reading
	if err := got.Payload(&decoded); err != nil {
		t.Fatal(err)
	}
	if decoded != r {
		t.Fatalf("payload should decode to %+v, not %+v", r, decoded)
	}

	if _, err := tangle.NewBlock(Reading{Humidity: 200}, nil, kp); err == nil {
		t.Fatalf("NewBlock should fail on an invalid reading")
	}
}
