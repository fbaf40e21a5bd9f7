// Package catalogs defines the buildable-kind catalog: per-kind glyph,
// footprint, labor requirement, and cost. Content is data, not code, so the
// catalog can be loaded from YAML; a compiled-in default set keeps the
// simulation runnable without a config directory.
package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"tileyard/internal/sim/grid"
)

// Building kind IDs used by the default catalog.
const (
	KindWall   = "WALL"
	KindDoor   = "DOOR"
	KindWindow = "WINDOW"
)

type BuildingDef struct {
	ID            string  `yaml:"id" json:"id"`
	Glyph         string  `yaml:"glyph" json:"glyph"`
	RequiredLabor float64 `yaml:"required_labor" json:"required_labor"`
	Cost          int     `yaml:"cost" json:"cost"`

	// Footprint offsets relative to the anchor. Empty means single-cell.
	Footprint []Offset `yaml:"footprint,omitempty" json:"footprint,omitempty"`

	// Rotatable kinds (doors) may be placed with the footprint X/Y swapped.
	Rotatable bool `yaml:"rotatable,omitempty" json:"rotatable,omitempty"`
}

type Offset struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// BuildingCatalog is immutable after Load.
type BuildingCatalog struct {
	ByID   map[string]BuildingDef
	IDs    []string // sorted
	Digest string
}

type catalogFile struct {
	Buildings []BuildingDef `yaml:"buildings"`
}

// FootprintOf resolves a def's footprint, defaulting to a single cell.
func (c *BuildingCatalog) FootprintOf(id string) (grid.Footprint, bool) {
	def, ok := c.ByID[id]
	if !ok {
		return nil, false
	}
	if len(def.Footprint) == 0 {
		return grid.Single, true
	}
	fp := make(grid.Footprint, len(def.Footprint))
	for i, off := range def.Footprint {
		fp[i] = grid.Cell{X: off.X, Y: off.Y}
	}
	return fp, true
}

// Defaults mirrors the shipped configs/buildings.yaml.
func Defaults() *BuildingCatalog {
	cat, err := New([]BuildingDef{
		{ID: KindWall, Glyph: "#", RequiredLabor: 100, Cost: 10},
		{ID: KindDoor, Glyph: "+", RequiredLabor: 150, Cost: 25,
			Footprint: []Offset{{X: 0, Y: 0}, {X: 0, Y: 1}}, Rotatable: true},
		{ID: KindWindow, Glyph: "=", RequiredLabor: 120, Cost: 15},
	})
	if err != nil {
		panic(fmt.Sprintf("catalogs: default catalog invalid: %v", err))
	}
	return cat
}

// Load reads a building catalog from a YAML file. An empty path yields the
// defaults; a missing file is an error so typos in -configs fail loudly.
func Load(path string) (*BuildingCatalog, error) {
	if strings.TrimSpace(path) == "" {
		return Defaults(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalogs: read %s: %w", path, err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("catalogs: parse %s: %w", path, err)
	}
	cat, err := New(f.Buildings)
	if err != nil {
		return nil, fmt.Errorf("catalogs: %s: %w", path, err)
	}
	return cat, nil
}

// New validates a set of defs and builds the catalog. Tests use it to stand
// up purpose-built kind sets.
func New(defs []BuildingDef) (*BuildingCatalog, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("no building kinds defined")
	}
	byID := make(map[string]BuildingDef, len(defs))
	ids := make([]string, 0, len(defs))
	for _, def := range defs {
		if strings.TrimSpace(def.ID) == "" {
			return nil, fmt.Errorf("building kind with empty id")
		}
		if _, dup := byID[def.ID]; dup {
			return nil, fmt.Errorf("duplicate building kind %q", def.ID)
		}
		if def.RequiredLabor <= 0 {
			return nil, fmt.Errorf("building kind %q: required_labor must be > 0", def.ID)
		}
		if def.Cost < 0 {
			return nil, fmt.Errorf("building kind %q: negative cost", def.ID)
		}
		fp := grid.Single
		if len(def.Footprint) > 0 {
			fp = make(grid.Footprint, len(def.Footprint))
			for i, off := range def.Footprint {
				fp[i] = grid.Cell{X: off.X, Y: off.Y}
			}
		}
		if err := fp.Validate(); err != nil {
			return nil, fmt.Errorf("building kind %q: %v", def.ID, err)
		}
		byID[def.ID] = def
		ids = append(ids, def.ID)
	}
	sort.Strings(ids)
	return &BuildingCatalog{ByID: byID, IDs: ids, Digest: digest(byID, ids)}, nil
}

// digest hashes the canonical JSON of the sorted defs, matching how other
// content catalogs are fingerprinted for replay comparison.
func digest(byID map[string]BuildingDef, ids []string) string {
	ordered := make([]BuildingDef, 0, len(ids))
	for _, id := range ids {
		ordered = append(ordered, byID[id])
	}
	b, _ := json.Marshal(ordered)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
