package estimate

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ============================================================
// Unit Rates
// ============================================================

//go:embed rates.yaml
var defaultRates []byte

type RateTable struct {
	Currency   string             `yaml:"currency"`
	WallHeight float64            `yaml:"wall_height"`
	LowFactor  float64            `yaml:"low_factor"`
	HighFactor float64            `yaml:"high_factor"`
	Rates      map[string]float64 `yaml:"rates"`
}

// DefaultRates возвращает встроенную таблицу расценок.
func DefaultRates() (*RateTable, error) {
	return ParseRates(defaultRates)
}

// LoadRates читает таблицу расценок из файла.
func LoadRates(path string) (*RateTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rates: %w", err)
	}
	return ParseRates(data)
}

func ParseRates(data []byte) (*RateTable, error) {
	var t RateTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse rates: %w", err)
	}
	if t.Currency == "" {
		t.Currency = "INR"
	}
	if t.WallHeight <= 0 {
		t.WallHeight = 3.0
	}
	if t.LowFactor <= 0 {
		t.LowFactor = 1
	}
	if t.HighFactor <= 0 {
		t.HighFactor = 1
	}
	if t.LowFactor > t.HighFactor {
		return nil, fmt.Errorf("low_factor %.2f exceeds high_factor %.2f", t.LowFactor, t.HighFactor)
	}
	return &t, nil
}

// Rate возвращает nil, если для позиции нет расценки.
func (t *RateTable) Rate(key string) *float64 {
	v, ok := t.Rates[key]
	if !ok {
		return nil
	}
	return &v
}
