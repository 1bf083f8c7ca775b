package prediction

import (
	"math"
	"strconv"
	"strings"

	"github.com/storeradar/radar/internal/api/models"
)

// Draft holds the form inputs as entered. Values stay text until Serialize.
type Draft struct {
	values map[Field]string
}

// NewDraft creates a blank draft at the given coordinate.
func NewDraft(lat, lng float64) Draft {
	return Draft{values: map[Field]string{
		FieldLatitude:  formatCoordinate(lat),
		FieldLongitude: formatCoordinate(lng),
	}}
}

// Get returns the entered text for f.
func (d Draft) Get(f Field) string {
	return d.values[f]
}

// Values returns a copy of every field, blank ones included.
func (d Draft) Values() map[Field]string {
	out := make(map[Field]string, len(Fields))
	for _, f := range Fields {
		out[f] = d.values[f]
	}
	return out
}

// With returns a copy of d with f set to value.
func (d Draft) With(f Field, value string) Draft {
	values := make(map[Field]string, len(d.values)+1)
	for k, v := range d.values {
		values[k] = v
	}
	values[f] = value
	return Draft{values: values}
}

// Validate applies the form input constraints: every field except the
// optional numerics is required, and numeric fields must parse.
func (d Draft) Validate() []models.FieldError {
	var errs []models.FieldError

	for _, f := range Fields {
		v := strings.TrimSpace(d.values[f])
		fs := fieldSpecs[f]

		if v == "" {
			if fs.required {
				errs = append(errs, models.FieldError{
					Field:   string(f),
					Message: "field is required",
					Code:    "REQUIRED",
				})
			}
			continue
		}

		if fs.numeric {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
				errs = append(errs, models.FieldError{
					Field:   string(f),
					Message: "must be a number",
					Code:    "NOT_NUMERIC",
				})
			}
		}
	}

	return errs
}

// Serialize converts the draft to a scoring request. Optional numeric fields
// left blank become null. Validate must pass first.
func (d Draft) Serialize() Request {
	return Request{
		StoreID:            FixedStoreID,
		PlazaKey:           parseInt(d.values[FieldPlazaKey]),
		SocioeconomicLevel: strings.TrimSpace(d.values[FieldSocioeconomicLevel]),
		Environment:        strings.TrimSpace(d.values[FieldEnvironment]),
		SalesArea:          parseFloat(d.values[FieldSalesArea]),
		RefrigeratorDoors:  parseInt(d.values[FieldRefrigeratorDoors]),
		ParkingSpots:       parseInt(d.values[FieldParkingSpots]),
		Latitude:           deref(parseFloat(d.values[FieldLatitude])),
		Longitude:          deref(parseFloat(d.values[FieldLongitude])),
		MasterSegment:      strings.TrimSpace(d.values[FieldMasterSegment]),
		LocationType:       strings.TrimSpace(d.values[FieldLocationType]),
		Dataset:            DatasetLive,
	}
}

type fieldSpec struct {
	required bool
	numeric  bool
	readOnly bool
}

var fieldSpecs = map[Field]fieldSpec{
	FieldPlazaKey:           {required: true, numeric: true},
	FieldSocioeconomicLevel: {required: true},
	FieldEnvironment:        {required: true},
	FieldSalesArea:          {numeric: true},
	FieldRefrigeratorDoors:  {numeric: true},
	FieldParkingSpots:       {numeric: true},
	FieldLatitude:           {required: true, numeric: true, readOnly: true},
	FieldLongitude:          {required: true, numeric: true, readOnly: true},
	FieldMasterSegment:      {required: true},
	FieldLocationType:       {required: true},
}

// Required reports whether f must be filled before submitting.
func Required(f Field) bool {
	return fieldSpecs[f].required
}

// Numeric reports whether f holds a number.
func Numeric(f Field) bool {
	return fieldSpecs[f].numeric
}

// ReadOnly reports whether f is fixed by the clicked coordinate.
func ReadOnly(f Field) bool {
	return fieldSpecs[f].readOnly
}

// Editable returns ErrUnknownField or ErrReadOnlyField when f cannot be
// set by the user.
func Editable(f Field) error {
	if !knownField(f) {
		return ErrUnknownField
	}
	if ReadOnly(f) {
		return ErrReadOnlyField
	}
	return nil
}

func knownField(f Field) bool {
	_, ok := fieldSpecs[f]
	return ok
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseInt truncates decimal input toward zero.
func parseInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return &v
	}
	f := parseFloat(s)
	if f == nil {
		return nil
	}
	v := int(math.Trunc(*f))
	return &v
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
