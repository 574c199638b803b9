package rules

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ============================================================
// Registry
// ============================================================

//go:embed packs/*.yaml
var embeddedPacks embed.FS

type Registry struct {
	engine    *Engine
	base      *Pack
	municipal map[string]*Pack
	cultural  map[string]*Pack
}

// LoadEmbedded загружает встроенные пакеты правил.
func LoadEmbedded(engine *Engine) (*Registry, error) {
	return load(engine, embeddedPacks, "packs")
}

// LoadDir загружает пакеты из каталога; одноимённые встроенные пакеты
// заменяются, остальные встроенные сохраняются.
func LoadDir(engine *Engine, dir string) (*Registry, error) {
	reg, err := LoadEmbedded(engine)
	if err != nil {
		return nil, err
	}
	override, err := load(engine, os.DirFS(dir), ".")
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, err)
	}
	if override.base != nil {
		reg.base = override.base
	}
	for name, p := range override.municipal {
		reg.municipal[name] = p
	}
	for name, p := range override.cultural {
		reg.cultural[name] = p
	}
	return reg, nil
}

func load(engine *Engine, fsys fs.FS, dir string) (*Registry, error) {
	reg := &Registry{
		engine:    engine,
		municipal: make(map[string]*Pack),
		cultural:  make(map[string]*Pack),
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}

		p, err := ParsePack(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		if err := engine.CompilePack(p); err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}

		switch p.Kind {
		case KindBase:
			reg.base = p
		case KindMunicipal:
			reg.municipal[p.Name] = p
		case KindCultural:
			reg.cultural[p.Name] = p
		}
	}
	return reg, nil
}

func ParsePack(data []byte) (*Pack, error) {
	var p Pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse pack: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Registry) Engine() *Engine {
	return r.engine
}

// Base может вернуть nil, если базовый пакет не загружен.
func (r *Registry) Base() *Pack {
	return r.base
}

func (r *Registry) Municipal(name string) (*Pack, error) {
	p, ok := r.municipal[name]
	if !ok {
		return nil, fmt.Errorf("municipal code %q: %w", name, ErrUnknownPack)
	}
	return p, nil
}

func (r *Registry) Cultural(name string) (*Pack, error) {
	p, ok := r.cultural[name]
	if !ok {
		return nil, fmt.Errorf("cultural tuning %q: %w", name, ErrUnknownPack)
	}
	return p, nil
}

func (r *Registry) MunicipalNames() []string {
	return sortedNames(r.municipal)
}

func (r *Registry) CulturalNames() []string {
	return sortedNames(r.cultural)
}

func sortedNames(packs map[string]*Pack) []string {
	list := make([]*Pack, 0, len(packs))
	for _, p := range packs {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Order != list[j].Order {
			return list[i].Order < list[j].Order
		}
		return list[i].Name < list[j].Name
	})

	names := make([]string, len(list))
	for i, p := range list {
		names[i] = p.Name
	}
	return names
}
