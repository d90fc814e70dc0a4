package equipment

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	dnderr "github.com/KirkDiggler/dnd-tactics/internal/errors"
)

//go:embed content/equipment.yaml
var defaultContent []byte

//go:generate mockgen -destination=mock/mock_catalog.go -package=mockequipment . Catalog

// Catalog looks up equipment by key
type Catalog interface {
	Weapon(key string) (*Weapon, error)
	Armor(key string) (*Armor, error)
}

// MemoryCatalog is a Catalog held in memory. It is safe for concurrent use.
type MemoryCatalog struct {
	mu      sync.RWMutex
	weapons map[string]*Weapon
	armor   map[string]*Armor
}

type catalogFile struct {
	Weapons []*Weapon `yaml:"weapons"`
	Armor   []*Armor  `yaml:"armor"`
}

// NewCatalog creates an empty catalog
func NewCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		weapons: make(map[string]*Weapon),
		armor:   make(map[string]*Armor),
	}
}

// DefaultCatalog loads the built-in SRD weapons and armor
func DefaultCatalog() (*MemoryCatalog, error) {
	c := NewCatalog()
	if err := c.Load(bytes.NewReader(defaultContent)); err != nil {
		return nil, dnderr.Wrap(err, "failed to load built-in equipment")
	}
	return c, nil
}

// LoadCatalogFile reads a YAML catalog from path on top of the built-in content
func LoadCatalogFile(path string) (*MemoryCatalog, error) {
	c, err := DefaultCatalog()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to open equipment file %s", path)
	}
	defer f.Close()

	if err := c.Load(f); err != nil {
		return nil, dnderr.Wrapf(err, "failed to load equipment file %s", path)
	}
	return c, nil
}

// Load merges YAML content into the catalog, replacing entries with the same key
func (c *MemoryCatalog) Load(r io.Reader) error {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return dnderr.WrapWithCode(err, dnderr.CodeValidation, "invalid equipment yaml")
	}

	for _, w := range file.Weapons {
		if err := c.AddWeapon(w); err != nil {
			return err
		}
	}
	for _, a := range file.Armor {
		if err := c.AddArmor(a); err != nil {
			return err
		}
	}
	return nil
}

// AddWeapon stores w under its key
func (c *MemoryCatalog) AddWeapon(w *Weapon) error {
	if w == nil || w.Key == "" {
		return dnderr.InvalidArgument("weapon key is required")
	}
	if w.WeaponRange == "" {
		w.WeaponRange = "melee"
	}
	if w.WeaponRange != "melee" && w.WeaponRange != "ranged" {
		return dnderr.Validationf("weapon %s: weapon_range must be melee or ranged, got %q", w.Key, w.WeaponRange)
	}
	if w.IsRanged() && w.Range <= 0 {
		return dnderr.Validationf("weapon %s: ranged weapons need a range", w.Key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.weapons[w.Key] = w
	return nil
}

// AddArmor stores a under its key
func (c *MemoryCatalog) AddArmor(a *Armor) error {
	if a == nil || a.Key == "" {
		return dnderr.InvalidArgument("armor key is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.armor[a.Key] = a
	return nil
}

// Weapon returns a copy of the weapon with the given key
func (c *MemoryCatalog) Weapon(key string) (*Weapon, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	w, ok := c.weapons[key]
	if !ok {
		return nil, dnderr.NotFoundf("weapon %s not found", key)
	}
	copied := *w
	return &copied, nil
}

// Armor returns a copy of the armor with the given key
func (c *MemoryCatalog) Armor(key string) (*Armor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	a, ok := c.armor[key]
	if !ok {
		return nil, dnderr.NotFoundf("armor %s not found", key)
	}
	copied := *a
	return &copied, nil
}

// WeaponKeys lists every weapon key, sorted
func (c *MemoryCatalog) WeaponKeys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.weapons))
	for k := range c.weapons {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *MemoryCatalog) String() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fmt.Sprintf("equipment catalog (%d weapons, %d armor)", len(c.weapons), len(c.armor))
}
