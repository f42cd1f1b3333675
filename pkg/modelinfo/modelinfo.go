package modelinfo

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

//go:embed model_info.yaml
var modelInfoYaml []byte

type ModelScore struct {
	Model string  `yaml:"model" json:"model"`
	R2    float64 `yaml:"r2" json:"r2"`
}

type ChartDomain struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

type Performance struct {
	Title      string       `yaml:"title" json:"title"`
	ScoreLabel string       `yaml:"score_label" json:"score_label"`
	Domain     ChartDomain  `yaml:"domain" json:"domain"`
	Scores     []ModelScore `yaml:"scores" json:"scores"`
}

type DatasetColumn struct {
	Name        string `yaml:"name" json:"name" csv:"Column Name"`
	Role        string `yaml:"role" json:"role" csv:"Role"`
	Description string `yaml:"description" json:"description" csv:"Impact on Prediction"`
}

// ModelInfo is the fixed description of the prediction model shown on the model
// info page
type ModelInfo struct {
	Title        string          `yaml:"title" json:"title"`
	Performance  Performance     `yaml:"performance" json:"performance"`
	ColumnsTitle string          `yaml:"columns_title" json:"columns_title"`
	Columns      []DatasetColumn `yaml:"columns" json:"columns"`
}

func Load() (*ModelInfo, error) {
	return Parse(modelInfoYaml)
}

func Parse(data []byte) (*ModelInfo, error) {
	var modelInfo ModelInfo
	if err := yaml.Unmarshal(data, &modelInfo); err != nil {
		return nil, err
	}

	if len(modelInfo.Performance.Scores) == 0 {
		return nil, errors.New("model info has no performance scores")
	}
	if len(modelInfo.Columns) == 0 {
		return nil, errors.New("model info has no dataset columns")
	}
	if modelInfo.Performance.Domain.Min >= modelInfo.Performance.Domain.Max {
		return nil, fmt.Errorf("chart domain [%g, %g] is empty", modelInfo.Performance.Domain.Min, modelInfo.Performance.Domain.Max)
	}

	return &modelInfo, nil
}

// Bar is one model score placed on the chart, as percentages of the chart height.
// Offset is where the bar starts measured from the bottom of the chart.
type Bar struct {
	Model  string
	Score  float64
	Offset float64
	Height float64
}

// Bars lays the scores out against the chart domain with bars growing from the
// zero line. Scores outside the domain are clipped.
func (m *ModelInfo) Bars() []Bar {
	domain := m.Performance.Domain
	span := domain.Max - domain.Min

	scale := func(value float64) float64 {
		value = min(max(value, domain.Min), domain.Max)
		return (value - domain.Min) / span * 100
	}

	zero := scale(0)

	bars := make([]Bar, 0, len(m.Performance.Scores))
	for _, score := range m.Performance.Scores {
		top := scale(score.R2)

		bar := Bar{Model: score.Model, Score: score.R2}
		if top >= zero {
			bar.Offset = zero
			bar.Height = top - zero
		} else {
			bar.Offset = top
			bar.Height = zero - top
		}

		bars = append(bars, bar)
	}

	return bars
}

func (m *ModelInfo) ColumnsCSV() ([]byte, error) {
	return gocsv.MarshalBytes(m.Columns)
}
