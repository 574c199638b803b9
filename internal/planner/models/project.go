package models

import "time"

// ============================================================
// Project Model
// ============================================================

type Site struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s Site) Area() float64 {
	return s.Width * s.Height
}

type SpaceRequirement struct {
	Name    string  `json:"name" yaml:"name"`
	MinArea float64 `json:"min_area" yaml:"min_area"`
}

type Project struct {
	ID               string             `json:"project_id"`
	Title            string             `json:"title"`
	ProjectType      string             `json:"project_type"`
	Site             Site               `json:"site"`
	RequiredSpaces   []SpaceRequirement `json:"required_spaces"`
	AdjacencyNotes   *string            `json:"adjacency_notes"`
	OrientationNotes *string            `json:"orientation_notes"`
	CulturalTuning   string             `json:"cultural_tuning"`
	MunicipalCode    string             `json:"municipal_code"`
	Generation       int                `json:"generation"`
	CreatedAt        time.Time          `json:"created_at"`
}

// ProjectInput: тело POST /api/projects.
type ProjectInput struct {
	Title            string             `json:"title" yaml:"title"`
	ProjectType      string             `json:"project_type" yaml:"project_type"`
	Site             Site               `json:"site" yaml:"site"`
	RequiredSpaces   []SpaceRequirement `json:"required_spaces" yaml:"required_spaces"`
	AdjacencyNotes   *string            `json:"adjacency_notes" yaml:"adjacency_notes"`
	OrientationNotes *string            `json:"orientation_notes" yaml:"orientation_notes"`
	CulturalTuning   string             `json:"cultural_tuning" yaml:"cultural_tuning"`
	MunicipalCode    string             `json:"municipal_code" yaml:"municipal_code"`
}

// ProjectTypes перечисляет типы проектов, доступные в форме.
var ProjectTypes = []string{
	"Residential (Single-family)",
	"Residential (Multi-family)",
	"Commercial (Office)",
	"Commercial (Retail)",
	"Mixed-use",
	"Other",
}

type Catalog struct {
	ProjectTypes    []string `json:"project_types"`
	CulturalTunings []string `json:"cultural_tunings"`
	MunicipalCodes  []string `json:"municipal_codes"`
}
