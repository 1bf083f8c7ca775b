package models

// Option is a selectable value with its display label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Enums are the option lists shown by the filters and the prediction form.
type Enums struct {
	LocationTypes  []Option `json:"locationTypes"`
	MasterSegments []Option `json:"masterSegments"`
	Environments   []Option `json:"environments"`

	Prediction PredictionEnums `json:"prediction"`
}

// PredictionEnums are the values accepted by the scoring model.
type PredictionEnums struct {
	PlazaKeys           []Option `json:"plazaKeys"`
	SocioeconomicLevels []Option `json:"socioeconomicLevels"`
	Environments        []Option `json:"environments"`
	MasterSegments      []Option `json:"masterSegments"`
	LocationTypes       []Option `json:"locationTypes"`
}
