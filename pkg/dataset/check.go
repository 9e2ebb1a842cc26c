package dataset

// Dangling is a connection whose target is not a city of the same province.
type Dangling struct {
	Province string `json:"province"`
	City     string `json:"city"`
	Target   string `json:"target"`
}

// Check lists every dangling connection in ds, in source order.
// It never fails; an empty result means every connection resolves.
func Check(ds *Dataset) []Dangling {
	var out []Dangling
	for _, p := range ds.Provinces() {
		out = append(out, CheckProvince(p)...)
	}
	return out
}

// CheckProvince lists the dangling connections of a single province.
func CheckProvince(p *Province) []Dangling {
	var out []Dangling
	for _, c := range p.cities {
		for _, target := range c.Connections {
			if _, ok := p.index[target]; !ok {
				out = append(out, Dangling{Province: p.Name, City: c.Name, Target: target})
			}
		}
	}
	return out
}
