// Package dvpdoc builds sample DvP transaction documents for the demo
// workflow clients, so a scripted end-to-end run doesn't require hand
// authoring a JSON fixture first.
package dvpdoc

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/luxfi/dvpguard/pkg/envelope"
)

// Sample describes the fields a scaffolded document carries before it is
// rendered to an envelope.Document.
type Sample struct {
	Product   string
	Amount    decimal.Decimal
	Route     string
	Warehouse string
}

// DefaultSample returns a representative DvP document: a product, a unit
// amount, and a logistics route, the same shape the layered-disclosure
// scenario in the core's test suite exercises.
func DefaultSample() Sample {
	return Sample{
		Product:   "Widget-Pro-9000",
		Amount:    decimal.NewFromFloat(1249.50),
		Route:     "WAREHOUSE-EU -> PORT-ROTTERDAM",
		Warehouse: "WH-EU-04",
	}
}

// NewDocument renders s as a fresh envelope.Document with a generated id.
// The amount is emitted as a JSON number via decimal's float conversion;
// canonical encoding only requires the document be valid JSON, so precision
// beyond float64 is not a concern for this demo fixture.
func NewDocument(s Sample) envelope.Document {
	amount, _ := s.Amount.Float64()
	return envelope.Document{
		"id":        uuid.New().String(),
		"product":   s.Product,
		"amount":    amount,
		"route":     s.Route,
		"warehouse": s.Warehouse,
	}
}
