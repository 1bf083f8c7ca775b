// Package prediction runs the profitability prediction form for a clicked
// map coordinate.
package prediction

import (
	"context"
	"errors"
	"fmt"
)

// Prediction errors.
var (
	ErrNoDraft        = errors.New("no prediction draft is open")
	ErrSubmitInFlight = errors.New("a prediction is already being submitted")
	ErrReadOnlyField  = errors.New("field is read-only")
	ErrUnknownField   = errors.New("unknown field")
)

// Submission constants.
const (
	// FixedStoreID is sent as TIENDA_ID on every request. The form has no
	// store id input.
	FixedStoreID = 12

	// DatasetLive tags requests built from the live form.
	DatasetLive = "LIVE"

	// DefaultFailureMessage is shown when a failure carries no text.
	DefaultFailureMessage = "Error al predecir"
)

// Field names a draft input. Values match the request JSON keys.
type Field string

// Draft fields.
const (
	FieldPlazaKey           Field = "PLAZA_CVE"
	FieldSocioeconomicLevel Field = "NIVELSOCIOECONOMICO_DES"
	FieldEnvironment        Field = "ENTORNO_DES"
	FieldSalesArea          Field = "MTS2VENTAS_NUM"
	FieldRefrigeratorDoors  Field = "PUERTASREFRIG_NUM"
	FieldParkingSpots       Field = "CAJONESESTACIONAMIENTO_NUM"
	FieldLatitude           Field = "LATITUD_NUM"
	FieldLongitude          Field = "LONGITUD_NUM"
	FieldMasterSegment      Field = "SEGMENTO_MAESTRO_DESC"
	FieldLocationType       Field = "LID_UBICACION_TIENDA"
)

// Fields lists the draft fields in form order.
var Fields = []Field{
	FieldPlazaKey,
	FieldSocioeconomicLevel,
	FieldEnvironment,
	FieldSalesArea,
	FieldRefrigeratorDoors,
	FieldParkingSpots,
	FieldLatitude,
	FieldLongitude,
	FieldMasterSegment,
	FieldLocationType,
}

// Request is the body posted to the scoring service.
type Request struct {
	StoreID            int      `json:"TIENDA_ID"`
	PlazaKey           *int     `json:"PLAZA_CVE"`
	SocioeconomicLevel string   `json:"NIVELSOCIOECONOMICO_DES"`
	Environment        string   `json:"ENTORNO_DES"`
	SalesArea          *float64 `json:"MTS2VENTAS_NUM"`
	RefrigeratorDoors  *int     `json:"PUERTASREFRIG_NUM"`
	ParkingSpots       *int     `json:"CAJONESESTACIONAMIENTO_NUM"`
	Latitude           float64  `json:"LATITUD_NUM"`
	Longitude          float64  `json:"LONGITUD_NUM"`
	MasterSegment      string   `json:"SEGMENTO_MAESTRO_DESC"`
	LocationType       string   `json:"LID_UBICACION_TIENDA"`
	Dataset            string   `json:"DATASET"`
}

// Result is the scoring service response.
type Result struct {
	Probability float64 `json:"prob_rentable"`
	Profitable  bool    `json:"rentable"`
}

// ProbabilityText renders the probability as a percentage with two decimals.
func (r Result) ProbabilityText() string {
	return fmt.Sprintf("%.2f%%", r.Probability*100)
}

// VerdictText renders the verdict in Spanish.
func (r Result) VerdictText() string {
	if r.Profitable {
		return "Sí"
	}
	return "No"
}

// Scorer scores a candidate store location.
type Scorer interface {
	Predict(ctx context.Context, req Request) (*Result, error)
}
