package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"

	perrors "github.com/matzehuels/provmap/pkg/errors"
	"github.com/matzehuels/provmap/pkg/report"
)

// Source produces a dataset. Implementations are [FileSource], [MongoSource]
// and [SQLSource].
type Source interface {
	Load(ctx context.Context) (*Dataset, error)
}

// FileSource loads a dataset from a JSON file.
type FileSource struct {
	Path string
}

// Load implements Source.
func (s FileSource) Load(context.Context) (*Dataset, error) {
	return Load(s.Path)
}

func (s FileSource) String() string { return s.Path }

// cityRecord is the wire shape of one city. "coords" is accepted as an alias
// of "coordinates".
type cityRecord struct {
	Coordinates []float64 `json:"coordinates"`
	Coords      []float64 `json:"coords,omitempty"`
	Connections []string  `json:"connections"`
}

// ReadJSON decodes a dataset from r.
//
// The input must be a JSON object of provinces, each an object of cities:
//
//	{
//	  "West Java": {
//	    "Bandung": {"coordinates": [-6.9175, 107.6191], "connections": ["Cimahi"]}
//	  }
//	}
//
// Provinces and cities keep the order of the input. A city with an empty
// key, a record that cannot be decoded or coordinates that are not exactly
// two finite numbers is left out and recorded in [Dataset.Issues]. A
// repeated province key replaces the earlier object in place and is recorded
// too. Connections are not checked; see
// [Check].
//
// ReadJSON returns an INVALID_FORMAT error if the input is not valid JSON or
// does not have the two-level object shape. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Dataset, error) {
	dec := json.NewDecoder(r)
	b := NewBuilder()

	seen := make(map[string]bool)
	err := decodeObject(dec, func(province string) error {
		if seen[province] {
			b.ReplaceProvince(province)
		}
		seen[province] = true
		b.AddProvince(province)
		return decodeObject(dec, func(city string) error {
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return err
			}
			c, reason := parseCity(city, raw)
			if reason != "" {
				b.Quarantine(province, city, reason)
				return nil
			}
			b.AddCity(province, c)
			return nil
		})
	})
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "dataset is not a province/city object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, perrors.New(perrors.ErrCodeInvalidFormat, "unexpected data after dataset object")
	}
	return b.Build(), nil
}

// Load reads the dataset file at path.
//
// A missing file yields a FILE_NOT_FOUND error; decoding failures yield
// INVALID_FORMAT. Both carry the path in their message.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "file %s not found", path)
	}
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()

	ds, err := ReadJSON(f)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "file %s is not a valid dataset", path)
	}
	return ds, nil
}

// LoadOrEmpty loads from src and never fails: any load error is reported once
// through r and an empty dataset is returned. Quarantined entries are
// reported as warnings.
func LoadOrEmpty(ctx context.Context, src Source, r report.Reporter) *Dataset {
	if r == nil {
		r = report.Discard
	}
	ds, err := src.Load(ctx)
	if err != nil {
		r.Error(err)
		return Empty()
	}
	for _, is := range ds.Issues() {
		r.Warn("dataset entry skipped", "province", is.Province, "city", is.City, "reason", is.Reason)
	}
	return ds
}

// decodeObject reads a JSON object from dec, calling fn for each key with the
// decoder positioned at the value. fn must consume the value.
func decodeObject(dec *json.Decoder, fn func(key string) error) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := fn(key); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	_, err = dec.Token()
	return err
}

// parseCity validates a raw city record. A non-empty reason means the entry
// must be quarantined.
func parseCity(name string, raw json.RawMessage) (City, string) {
	if name == "" {
		return City{}, "missing city name"
	}
	var rec cityRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return City{}, "malformed city record: " + err.Error()
	}
	coords := rec.Coordinates
	if coords == nil {
		coords = rec.Coords
	}
	if coords == nil {
		return City{}, "missing coordinates"
	}
	pos, reason := coordinatesFrom(coords)
	if reason != "" {
		return City{}, reason
	}
	return City{
		Name:        name,
		Coordinates: pos,
		Connections: rec.Connections,
	}, ""
}

// coordinatesFrom validates a [lat, lon] pair.
func coordinatesFrom(values []float64) (Coordinates, string) {
	if len(values) != 2 {
		return Coordinates{}, fmt.Sprintf("coordinates must be [lat, lon], got %d values", len(values))
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Coordinates{}, "coordinates must be finite numbers"
		}
	}
	return Coordinates{Lat: values[0], Lon: values[1]}, ""
}
