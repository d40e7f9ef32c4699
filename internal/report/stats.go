package report

import "sort"

// PriceStats summarises prices of a group of rows
type PriceStats struct {
	Count int     `json:"count"`
	Min   int     `json:"min"`
	Max   int     `json:"max"`
	Mean  float64 `json:"mean"`
}

// ModelStats are the price statistics of one model
type ModelStats struct {
	Model string `json:"model"`
	PriceStats
}

// Summary holds the read-only statistics derived from a Table
type Summary struct {
	Overall     PriceStats   `json:"overall"`
	WithMemory  int          `json:"with_memory"`
	WithStorage int          `json:"with_storage"`
	ByModel     []ModelStats `json:"by_model"`
}

// Summary computes overall and per-model price statistics.
// Rows without a model are left out of ByModel, which is ordered by count then model name.
func (t *Table) Summary() Summary {
	var s Summary
	groups := make(map[string]*PriceStats)

	for _, row := range t.rows {
		s.Overall.add(row.Price)
		if row.Memory != "" {
			s.WithMemory++
		}
		if row.Storage != "" {
			s.WithStorage++
		}
		if row.Model == "" {
			continue
		}
		g, ok := groups[row.Model]
		if !ok {
			g = &PriceStats{}
			groups[row.Model] = g
		}
		g.add(row.Price)
	}

	s.Overall.finish()
	for model, g := range groups {
		g.finish()
		s.ByModel = append(s.ByModel, ModelStats{Model: model, PriceStats: *g})
	}
	sort.Slice(s.ByModel, func(i, j int) bool {
		if s.ByModel[i].Count != s.ByModel[j].Count {
			return s.ByModel[i].Count > s.ByModel[j].Count
		}
		return s.ByModel[i].Model < s.ByModel[j].Model
	})

	return s
}

// add accumulates price; Mean holds the running sum until finish
func (p *PriceStats) add(price int) {
	if p.Count == 0 || price < p.Min {
		p.Min = price
	}
	if p.Count == 0 || price > p.Max {
		p.Max = price
	}
	p.Count++
	p.Mean += float64(price)
}

func (p *PriceStats) finish() {
	if p.Count > 0 {
		p.Mean /= float64(p.Count)
	}
}
