package inventory

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidDatabase = errors.New("database is not in the allowed list")

// Database describes one configured backend. DSN never leaves the router.
type Database struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	DSN         string `yaml:"dsn" json:"-"`
}

// Catalog is the allow-list of selectable databases.
type Catalog struct {
	primary string
	order   []string
	byID    map[string]Database
}

func NewCatalog(primary string, databases []Database) (*Catalog, error) {
	if len(databases) == 0 {
		return nil, errors.New("catalog: no databases configured")
	}

	c := &Catalog{
		primary: primary,
		byID:    make(map[string]Database, len(databases)),
	}
	for _, db := range databases {
		if db.ID == "" {
			return nil, errors.New("catalog: database without id")
		}
		if _, dup := c.byID[db.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate database %q", db.ID)
		}
		if db.Name == "" {
			db.Name = db.ID
		}
		c.byID[db.ID] = db
		c.order = append(c.order, db.ID)
	}

	if _, ok := c.byID[primary]; !ok {
		return nil, fmt.Errorf("catalog: primary database %q is not configured", primary)
	}
	return c, nil
}

func (c *Catalog) Primary() string {
	return c.primary
}

func (c *Catalog) Lookup(id string) (Database, bool) {
	db, ok := c.byID[id]
	return db, ok
}

// List returns databases in configuration order.
func (c *Catalog) List() []Database {
	out := make([]Database, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

type catalogFile struct {
	Primary   string     `yaml:"primary"`
	Databases []Database `yaml:"databases"`
}

// LoadCatalogFile reads a YAML catalog:
//
//	primary: ITINVENT
//	databases:
//	  - id: ITINVENT
//	    name: Head office
//	    dsn: host=... dbname=...
func LoadCatalogFile(path string) (string, []Database, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read catalog file: %w", err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return "", nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}
	return f.Primary, f.Databases, nil
}
