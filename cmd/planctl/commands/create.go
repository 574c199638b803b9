package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"archplan/internal/planner/models"
)

// DefaultBrief повторяет начальные значения формы нового проекта.
func DefaultBrief() models.ProjectInput {
	return models.ProjectInput{
		Title:       "My New Home",
		ProjectType: "Residential (Single-family)",
		Site:        models.Site{Width: 12, Height: 18},
		RequiredSpaces: []models.SpaceRequirement{
			{Name: "Living", MinArea: 20},
			{Name: "Kitchen", MinArea: 12},
			{Name: "Bedroom", MinArea: 12},
			{Name: "Toilet", MinArea: 4},
		},
		CulturalTuning: "General Vastu",
		MunicipalCode:  "BBMP",
	}
}

// LoadBrief читает YAML поверх значений по умолчанию.
func LoadBrief(path string) (models.ProjectInput, error) {
	brief := DefaultBrief()
	if path == "" {
		return brief, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return brief, fmt.Errorf("read brief: %w", err)
	}
	if err := yaml.Unmarshal(data, &brief); err != nil {
		return brief, fmt.Errorf("parse brief: %w", err)
	}
	return brief, nil
}

type createOptions struct {
	file        string
	title       string
	projectType string
	width       float64
	height      float64
	spaces      []string
	drop        []string
	adjacency   string
	orientation string
	cultural    string
	municipal   string
}

// applyFlags накладывает явно заданные флаги на бриф.
func (o *createOptions) applyFlags(cmd *cobra.Command, brief *models.ProjectInput) error {
	flags := cmd.Flags()
	if flags.Changed("title") {
		brief.Title = o.title
	}
	if flags.Changed("type") {
		brief.ProjectType = o.projectType
	}
	if flags.Changed("width") {
		brief.Site.Width = o.width
	}
	if flags.Changed("height") {
		brief.Site.Height = o.height
	}
	if flags.Changed("adjacency") {
		brief.AdjacencyNotes = &o.adjacency
	}
	if flags.Changed("orientation") {
		brief.OrientationNotes = &o.orientation
	}
	if flags.Changed("cultural") {
		brief.CulturalTuning = o.cultural
	}
	if flags.Changed("municipal") {
		brief.MunicipalCode = o.municipal
	}

	list := NewSpaceList(brief.RequiredSpaces)
	if len(o.spaces) > 0 {
		list = NewSpaceList(nil)
		for _, s := range o.spaces {
			name, area, err := ParseSpace(s)
			if err != nil {
				return err
			}
			if err := list.Add(name, area); err != nil {
				return err
			}
		}
	}
	if err := list.Drop(o.drop); err != nil {
		return err
	}
	if list.Len() == 0 {
		return fmt.Errorf("at least one space is required")
	}
	brief.RequiredSpaces = list.Items()
	return nil
}

func createCmd() *cobra.Command {
	o := &createOptions{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project from a brief",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			brief, err := LoadBrief(o.file)
			if err != nil {
				return err
			}
			if err := o.applyFlags(cmd, &brief); err != nil {
				return err
			}
			id, err := api.CreateProject(commandContext(cmd), brief)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.file, "file", "f", "", "brief YAML file")
	f.StringVar(&o.title, "title", "", "project title")
	f.StringVar(&o.projectType, "type", "", "project type")
	f.Float64Var(&o.width, "width", 0, "site width, m")
	f.Float64Var(&o.height, "height", 0, "site depth, m")
	f.StringArrayVar(&o.spaces, "space", nil, "required space as name=area (repeatable, replaces the list)")
	f.StringArrayVar(&o.drop, "drop-space", nil, "remove a space by name or 1-based position (repeatable)")
	f.StringVar(&o.adjacency, "adjacency", "", "adjacency notes")
	f.StringVar(&o.orientation, "orientation", "", "orientation notes")
	f.StringVar(&o.cultural, "cultural", "", "cultural tuning")
	f.StringVar(&o.municipal, "municipal", "", "municipal code")
	return cmd
}
