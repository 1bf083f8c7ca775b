package handler

import (
	"net/http"

	"github.com/storeradar/radar/internal/api/models"
	"github.com/storeradar/radar/internal/api/response"
	"github.com/storeradar/radar/internal/catalog"
)

// MetadataHandler handles metadata endpoints.
type MetadataHandler struct{}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler() *MetadataHandler {
	return &MetadataHandler{}
}

// GetEnums handles GET /v1/metadata/enums - option lists for filters and the prediction form.
func (h *MetadataHandler) GetEnums(w http.ResponseWriter, r *http.Request) {
	enums := models.Enums{
		LocationTypes:  options(catalog.DimensionLocationType),
		MasterSegments: options(catalog.DimensionMasterSegment),
		Environments:   options(catalog.DimensionEnvironment),
		Prediction: models.PredictionEnums{
			PlazaKeys:           options(catalog.DimensionPlazaKey),
			SocioeconomicLevels: options(catalog.DimensionSocioeconomicLevel),
			Environments:        options(catalog.DimensionEnvironment),
			MasterSegments:      options(catalog.DimensionPredictionSegment),
			LocationTypes:       options(catalog.DimensionPredictionLocation),
		},
	}
	response.JSON(w, r, http.StatusOK, enums)
}

func options(d catalog.Dimension) []models.Option {
	src := catalog.Options(d)
	out := make([]models.Option, len(src))
	for i, o := range src {
		out[i] = models.Option{Value: o.Value, Label: o.Label}
	}
	return out
}
