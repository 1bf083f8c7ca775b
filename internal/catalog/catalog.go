// Package catalog holds the static category option lists shown by the dashboard
// filters and the prediction form.
package catalog

// Dimension identifies a categorical attribute of a store.
type Dimension string

const (
	DimensionLocationType       Dimension = "LOCATION_TYPE"
	DimensionMasterSegment      Dimension = "MASTER_SEGMENT"
	DimensionEnvironment        Dimension = "ENVIRONMENT"
	DimensionSocioeconomicLevel Dimension = "SOCIOECONOMIC_LEVEL"
	DimensionPlazaKey           Dimension = "PLAZA_KEY"
	DimensionPredictionLocation Dimension = "PREDICTION_LOCATION_TYPE"
	DimensionPredictionSegment  Dimension = "PREDICTION_MASTER_SEGMENT"
)

// Option is a selectable value with its display label.
type Option struct {
	Value string
	Label string
}

// Location types.
const (
	LocationHighwayGasStation = "UT_CARRETERA_GAS"
	LocationDensity           = "UT_DENSIDAD"
	LocationUrbanGasStation   = "UT_GAS_URBANA"
	LocationPedestrianTraffic = "UT_TRAFICO_PEATONAL"
	LocationVehicleTraffic    = "UT_TRAFICO_VEHICULAR"
)

// LocationTypes are the filter options for the location-type dimension.
var LocationTypes = []Option{
	{Value: LocationHighwayGasStation, Label: "Gasolinera en Carretera"},
	{Value: LocationDensity, Label: "Densidad"},
	{Value: LocationUrbanGasStation, Label: "Gasolinera Urbana"},
	{Value: LocationPedestrianTraffic, Label: "Tráfico Peatonal"},
	{Value: LocationVehicleTraffic, Label: "Tráfico Vehicular"},
}

// MasterSegments are the filter options for the master-segment dimension.
var MasterSegments = []Option{
	{Value: "Barrio Competido", Label: "Barrio Competido"},
	{Value: "Clásico", Label: "Clásico"},
	{Value: "Hogar Reunión", Label: "Hogar Reunión"},
	{Value: "NA", Label: "NA"},
	{Value: "Oficinistas", Label: "Oficinistas"},
	{Value: "Parada Técnica", Label: "Parada Técnica"},
}

// Environments are the filter options for the environment dimension.
var Environments = []Option{
	{Value: "Base", Label: "Base"},
	{Value: "Hogar", Label: "Hogar"},
	{Value: "Peatonal", Label: "Peatonal"},
	{Value: "Receso", Label: "Receso"},
}

// SocioeconomicLevels are the socioeconomic levels accepted by the scoring model.
var SocioeconomicLevels = []Option{
	{Value: "A", Label: "A"},
	{Value: "AB", Label: "AB"},
	{Value: "B", Label: "B"},
	{Value: "BC", Label: "BC"},
	{Value: "C", Label: "C"},
	{Value: "CD", Label: "CD"},
	{Value: "D", Label: "D"},
}

// PlazaKeys are the plaza keys accepted by the scoring model.
var PlazaKeys = []Option{
	{Value: "1", Label: "1"},
	{Value: "2", Label: "2"},
	{Value: "3", Label: "3"},
	{Value: "4", Label: "4"},
	{Value: "5", Label: "5"},
	{Value: "6", Label: "6"},
}

// PredictionLocationTypes are the location types the scoring model was trained on.
// It is a narrower list than the filter options.
var PredictionLocationTypes = []Option{
	{Value: LocationHighwayGasStation, Label: LocationHighwayGasStation},
	{Value: LocationVehicleTraffic, Label: LocationVehicleTraffic},
	{Value: LocationDensity, Label: LocationDensity},
}

// PredictionMasterSegments are the master segments accepted by the scoring model.
// The model spells "Barrio competido" with a lower-case c.
var PredictionMasterSegments = []Option{
	{Value: "Hogar Reunión", Label: "Hogar Reunión"},
	{Value: "Barrio competido", Label: "Barrio competido"},
	{Value: "Oficinistas", Label: "Oficinistas"},
	{Value: "Clásico", Label: "Clásico"},
	{Value: "Parada Técnica", Label: "Parada Técnica"},
	{Value: "NA", Label: "NA"},
}

// Options returns the option list for a dimension, or nil if unknown.
func Options(d Dimension) []Option {
	switch d {
	case DimensionLocationType:
		return LocationTypes
	case DimensionMasterSegment:
		return MasterSegments
	case DimensionEnvironment:
		return Environments
	case DimensionSocioeconomicLevel:
		return SocioeconomicLevels
	case DimensionPlazaKey:
		return PlazaKeys
	case DimensionPredictionLocation:
		return PredictionLocationTypes
	case DimensionPredictionSegment:
		return PredictionMasterSegments
	default:
		return nil
	}
}

// Label returns the display label for a value in a dimension.
// Unknown values are returned unchanged.
func Label(d Dimension, value string) string {
	for _, o := range Options(d) {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}
