package crawler

import (
	"context"
	"strconv"

	"sjsage522/refurbworker/helpers"
)

// CandidateRecord is a product link discovered on the listing page
type CandidateRecord struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Product is a candidate enriched with its detail page and title attributes.
// Empty strings mean the attribute is unknown.
type Product struct {
	Model       string `json:"model"`
	ScreenSize  string `json:"screen_size"`
	Chip        string `json:"chip"`
	CPUCores    string `json:"cpu_cores"`
	GPUCores    string `json:"gpu_cores"`
	Color       string `json:"color"`
	Memory      string `json:"memory"`
	Storage     string `json:"storage"`
	ReleaseYear string `json:"release_year"`
	Price       int    `json:"price"`
	Title       string `json:"title"`
	URL         string `json:"url"`
}

// Columns is the canonical column order of the report
var Columns = []string{
	"model", "screen_size", "chip", "cpu_cores", "gpu_cores", "color",
	"memory", "storage", "release_year", "price", "title", "url",
}

// DetailFields are the attributes read from a detail page
type DetailFields struct {
	Price       int
	Memory      string
	Storage     string
	ReleaseYear string
}

// TitleFields are the attributes read from a product title
type TitleFields struct {
	Model      string
	ScreenSize string
	Chip       string
	CPUCores   string
	GPUCores   string
	Color      string
}

// PageFetcher is the network capability the pipeline depends on
type PageFetcher interface {
	Fetch(ctx context.Context, url string, policy helpers.RetryPolicy) (string, error)
}

// NewProduct merges a candidate with the fields read from its detail page
func NewProduct(c CandidateRecord, d DetailFields) Product {
	return Product{
		Title:       c.Title,
		URL:         c.URL,
		Price:       d.Price,
		Memory:      d.Memory,
		Storage:     d.Storage,
		ReleaseYear: d.ReleaseYear,
	}
}

// FillFrom copies title-derived values into fields that are still empty
func (p *Product) FillFrom(t TitleFields) {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&p.Model, t.Model)
	fill(&p.ScreenSize, t.ScreenSize)
	fill(&p.Chip, t.Chip)
	fill(&p.CPUCores, t.CPUCores)
	fill(&p.GPUCores, t.GPUCores)
	fill(&p.Color, t.Color)
}

// Values returns the product's cells in Columns order
func (p Product) Values() []string {
	return []string{
		p.Model, p.ScreenSize, p.Chip, p.CPUCores, p.GPUCores, p.Color,
		p.Memory, p.Storage, p.ReleaseYear, strconv.Itoa(p.Price), p.Title, p.URL,
	}
}
