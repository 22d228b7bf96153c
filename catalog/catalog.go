// Package catalog supplies the static, read-only piece catalog the
// simulation consumes. Piece definitions are data-driven YAML; a default set
// ships embedded so the engine works out of the box, and Load lets deployments
// swap in their own balance file.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/brensch/reeftank/game"
)

//go:embed data/pieces.yaml
var defaultPiecesYAML []byte

type pieceFile struct {
	Pieces []pieceDef `yaml:"pieces"`
}

type pieceDef struct {
	Name      string    `yaml:"name"`
	Category  string    `yaml:"category"`
	Cost      int       `yaml:"cost"`
	Shape     [][]int   `yaml:"shape"`
	Stats     statsDef  `yaml:"stats"`
	Grants    grantsDef `yaml:"grants"`
	Tags      []string  `yaml:"tags"`
	Abilities []string  `yaml:"abilities"`
}

type statsDef struct {
	Attack    int `yaml:"attack"`
	Health    int `yaml:"health"`
	Speed     int `yaml:"speed"`
	MaxHealth int `yaml:"maxHealth"`
}

type grantsDef struct {
	Attack int `yaml:"attack"`
	Health int `yaml:"health"`
	Speed  int `yaml:"speed"`
}

// Catalog is an immutable set of piece templates. Spawn mints playable copies
// with fresh IDs; the templates themselves are never handed out mutable.
type Catalog struct {
	templates []game.Piece
	byName    map[string]int
	seq       atomic.Int64
}

// Load reads and validates a piece catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from raw YAML.
func Parse(data []byte) (*Catalog, error) {
	var file pieceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}
	if len(file.Pieces) == 0 {
		return nil, fmt.Errorf("catalog has no pieces")
	}

	c := &Catalog{byName: make(map[string]int, len(file.Pieces))}
	for i, def := range file.Pieces {
		p, err := def.toPiece()
		if err != nil {
			return nil, fmt.Errorf("piece %q: %w", def.Name, err)
		}
		if _, dup := c.byName[p.Name]; dup {
			return nil, fmt.Errorf("duplicate piece name %q", p.Name)
		}
		c.templates = append(c.templates, p)
		c.byName[p.Name] = i
	}
	return c, nil
}

// Default returns the embedded catalog. The embedded data is validated at
// build time by tests, so a parse failure here is a packaging bug.
func Default() *Catalog {
	c, err := Parse(defaultPiecesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog invalid: %v", err))
	}
	return c
}

func (d pieceDef) toPiece() (game.Piece, error) {
	cat := game.Category(d.Category)
	switch cat {
	case game.CategoryFish, game.CategoryPlant, game.CategoryEquipment, game.CategoryConsumable:
	default:
		return game.Piece{}, fmt.Errorf("unknown category %q", d.Category)
	}
	if d.Name == "" {
		return game.Piece{}, fmt.Errorf("name is required")
	}
	if d.Cost < 0 {
		return game.Piece{}, fmt.Errorf("cost must be >= 0, got %d", d.Cost)
	}

	shape := make([]game.Position, 0, len(d.Shape))
	hasAnchor := false
	for _, off := range d.Shape {
		if len(off) != 2 {
			return game.Piece{}, fmt.Errorf("shape offsets must be [x,y] pairs")
		}
		if off[0] == 0 && off[1] == 0 {
			hasAnchor = true
		}
		shape = append(shape, game.Position{X: off[0], Y: off[1]})
	}
	if len(shape) == 0 {
		shape = []game.Position{{}}
		hasAnchor = true
	}
	if !hasAnchor {
		return game.Piece{}, fmt.Errorf("shape must include the (0,0) anchor")
	}

	stats := game.Stats{
		Attack:    d.Stats.Attack,
		Health:    d.Stats.Health,
		Speed:     d.Stats.Speed,
		MaxHealth: d.Stats.MaxHealth,
	}
	if stats.MaxHealth == 0 {
		stats.MaxHealth = stats.Health
	}

	return game.Piece{
		Name:      d.Name,
		Category:  cat,
		Shape:     shape,
		BaseStats: stats,
		Tags:      d.Tags,
		Cost:      d.Cost,
		Abilities: d.Abilities,
		Grants: game.StatBonus{
			Attack: d.Grants.Attack,
			Health: d.Grants.Health,
			Speed:  d.Grants.Speed,
		},
	}, nil
}

// Pieces returns deep copies of every template, so writes through a returned
// piece's slices cannot reach the catalog.
func (c *Catalog) Pieces() []game.Piece {
	out := make([]game.Piece, len(c.templates))
	for i := range c.templates {
		out[i] = *c.templates[i].Clone()
	}
	return out
}

// Len returns the number of distinct pieces in the catalog.
func (c *Catalog) Len() int {
	return len(c.templates)
}

// Spawn mints a playable copy of the named piece with a fresh unique ID.
// A fresh ID is generated on every acquisition so two copies of the same
// catalog entry never alias.
func (c *Catalog) Spawn(name string) (*game.Piece, error) {
	idx, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("spawn %q: %w", name, game.ErrPieceNotFound)
	}
	p := c.templates[idx].Clone()
	p.ID = fmt.Sprintf("%s-%d", slug(name), c.seq.Add(1))
	return p, nil
}

func slug(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}
