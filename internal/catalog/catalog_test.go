package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storeradar/radar/internal/catalog"
)

func TestOptions(t *testing.T) {
	assert.Len(t, catalog.Options(catalog.DimensionLocationType), 5)
	assert.Len(t, catalog.Options(catalog.DimensionMasterSegment), 6)
	assert.Len(t, catalog.Options(catalog.DimensionEnvironment), 4)
	assert.Len(t, catalog.Options(catalog.DimensionSocioeconomicLevel), 7)
	assert.Len(t, catalog.Options(catalog.DimensionPlazaKey), 6)
	assert.Len(t, catalog.Options(catalog.DimensionPredictionLocation), 3)
	assert.Nil(t, catalog.Options(catalog.Dimension("nope")))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Gasolinera Urbana", catalog.Label(catalog.DimensionLocationType, catalog.LocationUrbanGasStation))
	assert.Equal(t, "Tráfico Peatonal", catalog.Label(catalog.DimensionLocationType, "UT_TRAFICO_PEATONAL"))
	assert.Equal(t, "UT_OTRO", catalog.Label(catalog.DimensionLocationType, "UT_OTRO"))
}
