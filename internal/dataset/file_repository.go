package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// FileRepository loads points from a JSON export of the store table.
//
// The export is an array of objects keyed by the Spanish column names:
//
//	{"ID de Tienda": "1", "clave de plaza": "3", "lat": "25.6", "lng": "-100.2", ...}
//
// Values may be strings or numbers.
type FileRepository struct {
	path string
}

// NewFileRepository creates a repository reading the JSON file at path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Name returns the source name.
func (r *FileRepository) Name() string {
	return "file:" + r.path
}

// Load reads and decodes the file.
func (r *FileRepository) Load(_ context.Context) ([]Point, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode parses a JSON store export. Rows whose coordinates or weight cannot be
// parsed get out-of-range values so Validate rejects them.
func Decode(r io.Reader) ([]Point, error) {
	var records []storeRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding dataset: %w", err)
	}

	points := make([]Point, 0, len(records))
	for _, rec := range records {
		points = append(points, rec.toPoint())
	}
	return points, nil
}

type storeRecord struct {
	StoreID            flexString `json:"ID de Tienda"`
	PlazaKey           flexString `json:"clave de plaza"`
	SocioeconomicLevel flexString `json:"nivel socioeconomico"`
	Environment        flexString `json:"entorno"`
	Area               flexString `json:"metros"`
	Lat                flexString `json:"lat"`
	Lng                flexString `json:"lng"`
	MasterSegment      flexString `json:"segmento maestro"`
	LocationType       flexString `json:"tipo de ubicacion"`
	Weight             flexString `json:"weight"`
}

func (rec storeRecord) toPoint() Point {
	lat, latErr := strconv.ParseFloat(string(rec.Lat), 64)
	lng, lngErr := strconv.ParseFloat(string(rec.Lng), 64)
	if latErr != nil || lngErr != nil {
		// Out of range on purpose so Validate rejects the row.
		lat, lng = 999, 999
	}

	weight, err := strconv.ParseFloat(string(rec.Weight), 64)
	if err != nil {
		weight = -1
	}

	p := Point{
		StoreID:            string(rec.StoreID),
		PlazaKey:           string(rec.PlazaKey),
		Location:           NewLocation(lat, lng),
		LocationType:       string(rec.LocationType),
		MasterSegment:      string(rec.MasterSegment),
		Environment:        string(rec.Environment),
		SocioeconomicLevel: string(rec.SocioeconomicLevel),
		Weight:             weight,
	}

	if area, err := strconv.ParseFloat(string(rec.Area), 64); err == nil {
		p.Area = &area
	}

	return p
}

// flexString accepts a JSON string, number or null.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*s = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(v))
		return nil
	}
	*s = flexString(raw)
	return nil
}
