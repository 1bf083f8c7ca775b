package models

// FiltersRequest replaces the session filter selection.
type FiltersRequest struct {
	LocationTypes  []string `json:"locationTypes" validate:"omitempty,dive,required,max=64"`
	MasterSegments []string `json:"masterSegments" validate:"omitempty,dive,required,max=64"`
	Environments   []string `json:"environments" validate:"omitempty,dive,required,max=64"`
}

// CameraRequest reports a camera move.
type CameraRequest struct {
	Lat  *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng  *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
	Zoom *float64 `json:"zoom" validate:"required,gte=0,lte=22"`
}

// MapClickRequest reports a click on the map background.
type MapClickRequest struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}

// SearchRequest carries the search box text.
type SearchRequest struct {
	Text string `json:"text" validate:"max=256"`
}

// SearchSelectRequest picks an autocomplete candidate.
type SearchSelectRequest struct {
	PlaceID     string `json:"placeId" validate:"required,max=512"`
	Description string `json:"description" validate:"max=512"`
}

// DraftUpdateRequest edits prediction form fields, keyed by field name.
type DraftUpdateRequest struct {
	Fields map[string]string `json:"fields" validate:"required,min=1,dive,keys,required,endkeys,max=64"`
}
