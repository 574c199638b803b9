package commands

import (
	"fmt"
	"strconv"
	"strings"

	"archplan/internal/planner/models"
)

// SpaceList: редактируемый список помещений. Порядок добавления сохраняется.
type SpaceList struct {
	items []models.SpaceRequirement
}

func NewSpaceList(items []models.SpaceRequirement) *SpaceList {
	return &SpaceList{items: append([]models.SpaceRequirement(nil), items...)}
}

// Add отклоняет пустое имя и неположительную площадь.
func (l *SpaceList) Add(name string, area float64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("space name is empty")
	}
	if area <= 0 {
		return fmt.Errorf("space %q: area must be positive", name)
	}
	l.items = append(l.items, models.SpaceRequirement{Name: name, MinArea: area})
	return nil
}

// Drop удаляет помещения по ссылкам: число означает позицию в списке с
// единицы, иначе имя. Все позиции относятся к списку до удаления.
func (l *SpaceList) Drop(refs []string) error {
	marked := make(map[int]bool, len(refs))
	for _, ref := range refs {
		i, err := l.resolve(ref, marked)
		if err != nil {
			return err
		}
		marked[i] = true
	}

	kept := l.items[:0]
	for i, it := range l.items {
		if !marked[i] {
			kept = append(kept, it)
		}
	}
	l.items = kept
	return nil
}

func (l *SpaceList) resolve(ref string, marked map[int]bool) (int, error) {
	ref = strings.TrimSpace(ref)
	if pos, err := strconv.Atoi(ref); err == nil {
		if pos < 1 || pos > len(l.items) {
			return 0, fmt.Errorf("no space at position %d (list has %d)", pos, len(l.items))
		}
		if marked[pos-1] {
			return 0, fmt.Errorf("space at position %d is dropped twice", pos)
		}
		return pos - 1, nil
	}
	for i, it := range l.items {
		if !marked[i] && strings.EqualFold(it.Name, ref) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no space named %q", ref)
}

func (l *SpaceList) Items() []models.SpaceRequirement {
	return append([]models.SpaceRequirement(nil), l.items...)
}

func (l *SpaceList) Len() int {
	return len(l.items)
}

// ParseSpace разбирает "Name=area".
func ParseSpace(s string) (string, float64, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok {
		return "", 0, fmt.Errorf("space %q: expected name=area", s)
	}
	area, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, fmt.Errorf("space %q: bad area: %w", s, err)
	}
	return strings.TrimSpace(name), area, nil
}
