package dataset

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/matzehuels/provmap/pkg/cache"
)

// DefaultFilename is the dataset file name looked up when no path is configured.
const DefaultFilename = "province_data.json"

// Coordinates is a position in decimal degrees. The order mirrors the input
// file: latitude first, longitude second.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lon float64 `json:"lon" bson:"lon"`
}

// City is one named point of a province and the names of the cities it
// connects to. Connections are names, not references; a name that is not a
// city of the same province is a dangling connection.
type City struct {
	Name        string
	Coordinates Coordinates
	Connections []string
}

// Province is an ordered set of cities keyed by name.
//
// Cities keep the order in which they appeared in the source.
type Province struct {
	Name   string
	cities []City
	index  map[string]int
}

// Cities returns the cities of the province in source order.
// The returned slice must not be modified.
func (p *Province) Cities() []City { return p.cities }

// City looks up a city by name.
func (p *Province) City(name string) (City, bool) {
	i, ok := p.index[name]
	if !ok {
		return City{}, false
	}
	return p.cities[i], true
}

// Len returns the number of cities.
func (p *Province) Len() int { return len(p.cities) }

// ConnectionCount returns the total number of connection entries across all cities.
func (p *Province) ConnectionCount() int {
	n := 0
	for _, c := range p.cities {
		n += len(c.Connections)
	}
	return n
}

// Issue records a dataset entry that was dropped or replaced while loading.
type Issue struct {
	Province string `json:"province"`
	City     string `json:"city"`
	Reason   string `json:"reason"`
}

// Dataset maps province names to provinces. It is built once by a loader and
// is read-only afterwards, so it can be shared between goroutines.
//
// The zero value is an empty dataset.
type Dataset struct {
	provinces []*Province
	index     map[string]int
	issues    []Issue
}

// Empty returns a dataset with no provinces.
func Empty() *Dataset {
	return &Dataset{}
}

// Province looks up a province by name.
func (d *Dataset) Province(name string) (*Province, bool) {
	if d == nil {
		return nil, false
	}
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.provinces[i], true
}

// Provinces returns all provinces in source order.
func (d *Dataset) Provinces() []*Province {
	if d == nil {
		return nil
	}
	return d.provinces
}

// Names returns the province names in source order.
func (d *Dataset) Names() []string {
	if d == nil {
		return nil
	}
	names := make([]string, len(d.provinces))
	for i, p := range d.provinces {
		names[i] = p.Name
	}
	return names
}

// Len returns the number of provinces.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.provinces)
}

// IsEmpty reports whether the dataset has no provinces.
func (d *Dataset) IsEmpty() bool { return d.Len() == 0 }

// Issues returns the entries that were quarantined or replaced during loading.
func (d *Dataset) Issues() []Issue {
	if d == nil {
		return nil
	}
	return d.issues
}

// MarshalJSON encodes the dataset in the input file shape, preserving order.
// Coordinates are written under the "coordinates" key.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range d.Provinces() {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeKey(&buf, p.Name)
		buf.WriteByte('{')
		for j, c := range p.cities {
			if j > 0 {
				buf.WriteByte(',')
			}
			writeKey(&buf, c.Name)
			conns := c.Connections
			if conns == nil {
				conns = []string{}
			}
			body, err := json.Marshal(cityRecord{
				Coordinates: []float64{c.Coordinates.Lat, c.Coordinates.Lon},
				Connections: conns,
			})
			if err != nil {
				return nil, err
			}
			buf.Write(body)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) {
	buf.WriteString(strconv.Quote(key))
	buf.WriteByte(':')
}

// Hash returns a content hash of the dataset, stable across loads of the same data.
func (d *Dataset) Hash() string {
	data, err := d.MarshalJSON()
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// Builder assembles a Dataset. Loaders feed it entries in source order.
type Builder struct {
	ds *Dataset
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{ds: &Dataset{index: make(map[string]int)}}
}

// AddProvince registers a province so that it exists even with no cities.
func (b *Builder) AddProvince(name string) *Province {
	if i, ok := b.ds.index[name]; ok {
		return b.ds.provinces[i]
	}
	p := &Province{Name: name, index: make(map[string]int)}
	b.ds.index[name] = len(b.ds.provinces)
	b.ds.provinces = append(b.ds.provinces, p)
	return p
}

// AddCity adds c to the named province, creating the province if needed.
// A city with the same name replaces the earlier entry in place and an issue
// is recorded. A city without a name is quarantined.
func (b *Builder) AddCity(province string, c City) {
	p := b.AddProvince(province)
	if c.Name == "" {
		b.Quarantine(province, c.Name, "missing city name")
		return
	}
	if i, ok := p.index[c.Name]; ok {
		p.cities[i] = c
		b.Quarantine(province, c.Name, "duplicate city key, earlier entry replaced")
		return
	}
	p.index[c.Name] = len(p.cities)
	p.cities = append(p.cities, c)
}

// ReplaceProvince drops the cities added so far to the named province,
// keeping its position, and records an issue. Loaders call it when a
// province key repeats: the later object wins.
func (b *Builder) ReplaceProvince(name string) {
	p := b.AddProvince(name)
	p.cities = nil
	p.index = make(map[string]int)
	b.Quarantine(name, "", "duplicate province key, earlier entry replaced")
}

// Quarantine records an entry that was not added.
func (b *Builder) Quarantine(province, city, reason string) {
	b.ds.issues = append(b.ds.issues, Issue{Province: province, City: city, Reason: reason})
}

// Build returns the assembled dataset. The builder must not be used afterwards.
func (b *Builder) Build() *Dataset {
	ds := b.ds
	b.ds = nil
	return ds
}
