package report

import (
	"encoding/json"
	"time"

	"crosscheck/internal/core/ports"
	"crosscheck/internal/engine/detect"
)

// jsonReport is the machine-readable shape handed to merge tooling.
// Only regions are exported; the internal conflict structs stay internal.
type jsonReport struct {
	RunID     string           `json:"run_id"`
	StartedAt time.Time        `json:"started_at"`
	Degraded  bool             `json:"degraded"`
	Files     []jsonFileReport `json:"files"`
}

type jsonFileReport struct {
	Path        string                  `json:"path"`
	Regions     []detect.ConflictRegion `json:"regions"`
	Unavailable map[string]string       `json:"unavailable,omitempty"`
}

type JSONGenerator struct{}

func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{}
}

func (j *JSONGenerator) Generate(result ports.AnalyzeResult) (string, error) {
	doc := jsonReport{
		RunID:     result.RunID,
		StartedAt: result.StartedAt.UTC(),
		Degraded:  result.Degraded,
		Files:     make([]jsonFileReport, 0, len(result.Files)),
	}
	for _, file := range result.Files {
		doc.Files = append(doc.Files, jsonFileReport{
			Path:        file.Path,
			Regions:     file.Regions,
			Unavailable: file.Unavailable,
		})
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out) + "\n", nil
}
