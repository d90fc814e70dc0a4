package monster

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/dnd-tactics/internal/domain/rules"
	dnderr "github.com/KirkDiggler/dnd-tactics/internal/errors"
)

//go:embed content/bestiary.yaml
var defaultBestiary []byte

//go:generate mockgen -destination=mock/mock_bestiary.go -package=mockmonster . Bestiary

// Bestiary looks up monster templates by key
type Bestiary interface {
	Monster(key string) (*Template, error)
}

// MemoryBestiary holds templates in memory and is safe for concurrent use
type MemoryBestiary struct {
	mu       sync.RWMutex
	monsters map[string]*Template
}

type bestiaryFile struct {
	Monsters []*Template `yaml:"monsters"`
}

// NewBestiary creates an empty bestiary
func NewBestiary() *MemoryBestiary {
	return &MemoryBestiary{monsters: make(map[string]*Template)}
}

// DefaultBestiary loads the built-in monsters
func DefaultBestiary() (*MemoryBestiary, error) {
	b := NewBestiary()
	if err := b.Load(bytes.NewReader(defaultBestiary)); err != nil {
		return nil, dnderr.Wrap(err, "failed to load built-in bestiary")
	}
	return b, nil
}

// LoadBestiaryFile reads a YAML bestiary from path on top of the built-in monsters
func LoadBestiaryFile(path string) (*MemoryBestiary, error) {
	b, err := DefaultBestiary()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to open bestiary file %s", path)
	}
	defer f.Close()

	if err := b.Load(f); err != nil {
		return nil, dnderr.Wrapf(err, "failed to load bestiary file %s", path)
	}
	return b, nil
}

// Load merges YAML monsters into the bestiary
func (b *MemoryBestiary) Load(r io.Reader) error {
	var file bestiaryFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return dnderr.WrapWithCode(err, dnderr.CodeValidation, "invalid bestiary yaml")
	}
	for _, t := range file.Monsters {
		if err := b.Add(t); err != nil {
			return err
		}
	}
	return nil
}

// Add validates t and stores it under its key
func (b *MemoryBestiary) Add(t *Template) error {
	if t == nil || t.Key == "" {
		return dnderr.InvalidArgument("monster key is required")
	}
	if err := Validate(t); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.monsters[t.Key] = t
	return nil
}

// Validate fills defaults and checks that every reference in t resolves
func Validate(t *Template) error {
	if t.Speed == 0 {
		t.Speed = 30
	}
	t.Abilities = t.Abilities.WithDefaults()

	for _, a := range t.Actions {
		if a.Key == "" {
			a.Key = Slug(a.Name)
		}
		if a.Ranged && a.Range <= 0 {
			return dnderr.Validationf("monster %s: ranged action %s needs a range", t.Key, a.Key)
		}
	}
	for _, key := range t.Multiattack {
		if _, ok := t.Action(key); !ok {
			return dnderr.Validationf("monster %s: multiattack references unknown action %s", t.Key, key)
		}
	}
	for _, ab := range t.AreaAbilities {
		if ab.ID == "" {
			ab.ID = Slug(ab.Name)
		}
		if ab.Recharge == 0 {
			ab.Recharge = ParseRecharge(ab.Name)
		}
		if ab.Size <= 0 {
			return dnderr.Validationf("monster %s: ability %s needs a size", t.Key, ab.ID)
		}
	}
	for _, la := range t.LegendaryActions {
		if la.Cost <= 0 {
			la.Cost = 1
		}
		switch la.Kind {
		case LegendaryAttack:
			if _, ok := t.Action(la.Ref); !ok {
				return dnderr.Validationf("monster %s: legendary action %s references unknown action %s", t.Key, la.ID, la.Ref)
			}
		case LegendaryAbility:
			if _, ok := t.AreaAbility(la.Ref); !ok {
				return dnderr.Validationf("monster %s: legendary action %s references unknown ability %s", t.Key, la.ID, la.Ref)
			}
		case LegendaryMove:
		default:
			return dnderr.Validationf("monster %s: legendary action %s has unknown kind %q", t.Key, la.ID, la.Kind)
		}
	}
	return nil
}

// Monster returns a deep copy of the template with the given key
func (b *MemoryBestiary) Monster(key string) (*Template, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	t, ok := b.monsters[key]
	if !ok {
		return nil, dnderr.NotFoundf("monster %s not found", key)
	}
	return t.Clone(), nil
}

// Keys lists every monster key, sorted
func (b *MemoryBestiary) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.monsters))
	for k := range b.monsters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of t
func (t *Template) Clone() *Template {
	c := *t
	c.Resistances = append([]rules.DamageType(nil), t.Resistances...)
	c.Immunities = append([]rules.DamageType(nil), t.Immunities...)
	c.Vulnerabilities = append([]rules.DamageType(nil), t.Vulnerabilities...)
	c.Multiattack = append([]string(nil), t.Multiattack...)
	c.Actions = make([]*Action, len(t.Actions))
	for i, a := range t.Actions {
		copied := *a
		c.Actions[i] = &copied
	}
	c.AreaAbilities = make([]*AreaAbility, len(t.AreaAbilities))
	for i, a := range t.AreaAbilities {
		copied := *a
		c.AreaAbilities[i] = &copied
	}
	c.LegendaryActions = make([]*LegendaryAction, len(t.LegendaryActions))
	for i, a := range t.LegendaryActions {
		copied := *a
		c.LegendaryActions[i] = &copied
	}
	return &c
}
