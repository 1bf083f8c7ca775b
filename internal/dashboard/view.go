package dashboard

import (
	"math"
	"strconv"

	"github.com/storeradar/radar/internal/dataset"
	"github.com/storeradar/radar/internal/filter"
	"github.com/storeradar/radar/internal/heatmap"
	"github.com/storeradar/radar/internal/marker"
	"github.com/storeradar/radar/internal/places"
	"github.com/storeradar/radar/internal/prediction"
)

// Placeholder is shown for store attributes missing from the dataset.
const Placeholder = "N/A"

// View is everything the map client renders for a session.
type View struct {
	SessionID  string           `json:"sessionId"`
	Dataset    DatasetView      `json:"dataset"`
	Filters    filter.Selection `json:"filters"`
	Camera     CameraView       `json:"camera"`
	Heatmap    *heatmap.Layer   `json:"heatmap"`
	Markers    []marker.Marker  `json:"markers"`
	Detail     *Detail          `json:"detail"`
	Prediction *PredictionView  `json:"prediction"`
	Search     SearchView       `json:"search"`
}

// DatasetView summarizes the loaded collection.
type DatasetView struct {
	Version  uint64 `json:"version"`
	Total    int    `json:"total"`
	Filtered int    `json:"filtered"`
}

// LatLng is a coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CameraView is the camera the client should show.
type CameraView struct {
	Center         LatLng  `json:"center"`
	Zoom           float64 `json:"zoom"`
	MarkersVisible bool    `json:"markersVisible"`
	Pin            *LatLng `json:"pin"`
}

// Detail is the store detail panel.
type Detail struct {
	StoreID            string `json:"storeId"`
	PlazaKey           string `json:"plazaKey"`
	Coordinates        string `json:"coordinates"`
	LocationType       string `json:"locationType"`
	SocioeconomicLevel string `json:"socioeconomicLevel"`
	MasterSegment      string `json:"masterSegment"`
	Environment        string `json:"environment"`
	Area               string `json:"area"`

	// Compliance is the goal-compliance percentage, floor(weight).
	Compliance int `json:"compliance"`
}

// PredictionView is the prediction popup.
type PredictionView struct {
	Phase       prediction.Phase  `json:"phase"`
	Fields      map[string]string `json:"fields"`
	ReadOnly    []string          `json:"readOnly"`
	Loading     bool              `json:"loading"`
	SubmitLabel string            `json:"submitLabel"`
	Error       string            `json:"error,omitempty"`
	Result      *ResultView       `json:"result,omitempty"`
}

// ResultView renders a scoring result.
type ResultView struct {
	Probability     float64 `json:"probability"`
	Profitable      bool    `json:"profitable"`
	ProbabilityText string  `json:"probabilityText"`
	VerdictText     string  `json:"verdictText"`
}

// SearchView is the search box.
type SearchView struct {
	Text        string              `json:"text"`
	Suggestions []places.Suggestion `json:"suggestions"`
}

// render derives the view from state. filtered must already be
// filter.Apply(snap.Points, s.Filters).
func render(id string, s State, snap dataset.Snapshot, filtered []dataset.Point, layer *heatmap.Layer) View {
	v := View{
		SessionID: id,
		Dataset: DatasetView{
			Version:  snap.Version,
			Total:    len(snap.Points),
			Filtered: len(filtered),
		},
		Filters: s.Filters,
		Camera: CameraView{
			Center:         LatLng{Lat: s.Viewport.Center.Lat(), Lng: s.Viewport.Center.Lon()},
			Zoom:           s.Viewport.Zoom,
			MarkersVisible: marker.Visible(s.Viewport.Zoom),
		},
		Heatmap: layer,
		Markers: marker.Markers(filtered, s.Viewport.Zoom),
		Search: SearchView{
			Text:        s.Search.Text,
			Suggestions: s.Search.Suggestions,
		},
	}

	if v.Search.Suggestions == nil {
		v.Search.Suggestions = []places.Suggestion{}
	}
	if pin := s.Viewport.Pin; pin != nil {
		v.Camera.Pin = &LatLng{Lat: pin.Lat(), Lng: pin.Lon()}
	}
	if p := s.Selection.Active; p != nil {
		d := detailOf(*p)
		v.Detail = &d
	}
	if s.Prediction.Phase != prediction.PhaseIdle && s.Prediction.Phase != "" {
		pv := predictionViewOf(s.Prediction)
		v.Prediction = &pv
	}

	return v
}

func detailOf(p dataset.Point) Detail {
	d := Detail{
		StoreID:            orPlaceholder(p.StoreID),
		PlazaKey:           orPlaceholder(p.PlazaKey),
		Coordinates:        formatFloat(p.Lat()) + ", " + formatFloat(p.Lng()),
		LocationType:       orPlaceholder(p.LocationType),
		SocioeconomicLevel: orPlaceholder(p.SocioeconomicLevel),
		MasterSegment:      orPlaceholder(p.MasterSegment),
		Environment:        orPlaceholder(p.Environment),
		Area:               Placeholder,
		Compliance:         int(math.Floor(p.Weight)),
	}
	if p.Area != nil {
		d.Area = formatFloat(*p.Area)
	}
	return d
}

func predictionViewOf(w prediction.Workflow) PredictionView {
	values := w.Draft.Values()
	fields := make(map[string]string, len(values))
	for f, v := range values {
		fields[string(f)] = v
	}

	readOnly := make([]string, 0, 2)
	for _, f := range prediction.Fields {
		if prediction.ReadOnly(f) {
			readOnly = append(readOnly, string(f))
		}
	}

	pv := PredictionView{
		Phase:       w.Phase,
		Fields:      fields,
		ReadOnly:    readOnly,
		Loading:     w.Loading(),
		SubmitLabel: w.SubmitLabel(),
		Error:       w.Error,
	}
	if r := w.Result; r != nil {
		pv.Result = &ResultView{
			Probability:     r.Probability,
			Profitable:      r.Profitable,
			ProbabilityText: r.ProbabilityText(),
			VerdictText:     r.VerdictText(),
		}
	}
	return pv
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
