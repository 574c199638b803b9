package rules

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// ============================================================
// Rule Packs
// ============================================================

const (
	KindBase      = "base"
	KindMunicipal = "municipal"
	KindCultural  = "cultural"

	ScopePlan = "plan"
	ScopeRoom = "room"
)

// SupportedVersions: диапазон версий формата пакетов, который понимает движок.
const SupportedVersions = "^1"

var ErrUnknownPack = errors.New("unknown rule pack")

type Setbacks struct {
	Front float64 `yaml:"front" json:"front"`
	Rear  float64 `yaml:"rear" json:"rear"`
	Side  float64 `yaml:"side" json:"side"`
}

type Rule struct {
	Name    string `yaml:"name"`
	Scope   string `yaml:"scope"`
	When    string `yaml:"when,omitempty"`
	Expr    string `yaml:"expr"`
	Message string `yaml:"message"`
	Failure string `yaml:"failure,omitempty"`
}

type Pack struct {
	Name              string              `yaml:"name"`
	Kind              string              `yaml:"kind"`
	Version           string              `yaml:"version"`
	Order             int                 `yaml:"order"`
	Description       string              `yaml:"description,omitempty"`
	Setbacks          Setbacks            `yaml:"setbacks,omitempty"`
	MaxGroundCoverage float64             `yaml:"max_ground_coverage,omitempty"`
	Preferences       map[string][]string `yaml:"preferences,omitempty"` // room kind -> preferred zones
	Avoid             map[string][]string `yaml:"avoid,omitempty"`       // room kind -> zones to avoid
	Rules             []Rule              `yaml:"rules"`
}

// Validate проверяет структуру пакета и совместимость версии.
func (p *Pack) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("pack name required")
	}
	switch p.Kind {
	case KindBase, KindMunicipal, KindCultural:
	default:
		return fmt.Errorf("pack %q: unknown kind %q", p.Name, p.Kind)
	}

	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return err
	}
	v, err := semver.NewVersion(p.Version)
	if err != nil {
		return fmt.Errorf("pack %q: version %q: %w", p.Name, p.Version, err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("pack %q: version %s not in %s", p.Name, v, SupportedVersions)
	}

	for i, r := range p.Rules {
		if r.Name == "" || r.Expr == "" || r.Message == "" {
			return fmt.Errorf("pack %q: rule %d: name, expr and message required", p.Name, i)
		}
		switch r.Scope {
		case ScopePlan, ScopeRoom:
		case "":
			p.Rules[i].Scope = ScopePlan
		default:
			return fmt.Errorf("pack %q: rule %q: unknown scope %q", p.Name, r.Name, r.Scope)
		}
		if r.When != "" && p.Rules[i].Scope != ScopeRoom {
			return fmt.Errorf("pack %q: rule %q: when is only valid for room scope", p.Name, r.Name)
		}
	}
	return nil
}

// Prefers сообщает, входит ли зона в предпочтительные для типа помещения.
// Второе значение false, если пакет ничего не говорит об этом типе.
func (p *Pack) Prefers(kind, zone string) (bool, bool) {
	zones, ok := p.Preferences[kind]
	if !ok || len(zones) == 0 {
		return false, false
	}
	for _, z := range zones {
		if z == zone {
			return true, true
		}
	}
	return false, true
}

func (p *Pack) Avoids(kind, zone string) bool {
	for _, z := range p.Avoid[kind] {
		if z == zone {
			return true
		}
	}
	return false
}
