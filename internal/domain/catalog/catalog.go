package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrUnknownRestaurant = errors.New("restaurant not found")

type Table struct {
	ID    int `json:"id" yaml:"id"`
	Seats int `json:"seats" yaml:"seats"`
}

type WorkingHours struct {
	Open  string `json:"open" yaml:"open"`
	Close string `json:"close" yaml:"close"`
}

type Restaurant struct {
	Key          string       `json:"key" yaml:"key"`
	Name         string       `json:"name" yaml:"name"`
	City         string       `json:"city" yaml:"city"`
	Address      string       `json:"address" yaml:"address"`
	Tables       []Table      `json:"tables" yaml:"tables"`
	WorkingHours WorkingHours `json:"working_hours" yaml:"working_hours"`
}

// Catalog is the read-only set of restaurants known to the service.
// Restaurants and their tables keep declaration order.
type Catalog struct {
	restaurants []Restaurant
	byKey       map[string]int
}

func New(restaurants []Restaurant) (*Catalog, error) {
	c := &Catalog{
		restaurants: make([]Restaurant, 0, len(restaurants)),
		byKey:       make(map[string]int, len(restaurants)),
	}
	for _, r := range restaurants {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, ok := c.byKey[r.Key]; ok {
			return nil, fmt.Errorf("duplicate restaurant key %q", r.Key)
		}
		r.Tables = append([]Table(nil), r.Tables...)
		c.byKey[r.Key] = len(c.restaurants)
		c.restaurants = append(c.restaurants, r)
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New([]Restaurant{
		{
			Key:     "bachevski",
			Name:    "Baczewski",
			City:    "Lviv",
			Address: "8 Shevska Str.",
			Tables: []Table{
				{ID: 1, Seats: 2},
				{ID: 2, Seats: 4},
				{ID: 3, Seats: 6},
				{ID: 4, Seats: 8},
			},
			WorkingHours: WorkingHours{Open: "10:00", Close: "23:00"},
		},
		{
			Key:     "kryivka",
			Name:    "Kryivka",
			City:    "Lviv",
			Address: "14 Rynok Sq.",
			Tables: []Table{
				{ID: 1, Seats: 4},
				{ID: 2, Seats: 4},
				{ID: 3, Seats: 6},
			},
			WorkingHours: WorkingHours{Open: "12:00", Close: "00:00"},
		},
	})
	if err != nil {
		panic(err)
	}
	return c
}

type fileFormat struct {
	Restaurants []Restaurant `yaml:"restaurants"`
}

// LoadFile reads a YAML catalog of the form
//
//	restaurants:
//	  - key: bachevski
//	    name: Baczewski
//	    tables:
//	      - {id: 1, seats: 2}
func LoadFile(path string) (*Catalog, error) {
	const op = "catalog.LoadFile"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(f.Restaurants) == 0 {
		return nil, fmt.Errorf("%s: %s has no restaurants", op, path)
	}
	c, err := New(f.Restaurants)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func (r Restaurant) Validate() error {
	if strings.TrimSpace(r.Key) == "" {
		return fmt.Errorf("restaurant key required")
	}
	if len(r.Tables) == 0 {
		return fmt.Errorf("restaurant %q: at least one table required", r.Key)
	}
	seen := make(map[int]struct{}, len(r.Tables))
	for _, t := range r.Tables {
		if _, ok := seen[t.ID]; ok {
			return fmt.Errorf("restaurant %q: duplicate table id %d", r.Key, t.ID)
		}
		seen[t.ID] = struct{}{}
		if t.Seats < 1 {
			return fmt.Errorf("restaurant %q: table %d must have at least one seat", r.Key, t.ID)
		}
	}
	return nil
}

func (c *Catalog) Restaurant(key string) (Restaurant, error) {
	i, ok := c.byKey[key]
	if !ok {
		return Restaurant{}, fmt.Errorf("%q: %w", key, ErrUnknownRestaurant)
	}
	return c.restaurants[i], nil
}

func (c *Catalog) Restaurants() []Restaurant {
	return append([]Restaurant(nil), c.restaurants...)
}

// Listing renders the human readable catalog summary served as the
// restaurants://list resource.
func (c *Catalog) Listing() string {
	var b strings.Builder
	b.WriteString("# Available Restaurants\n\n")
	for _, r := range c.restaurants {
		fmt.Fprintf(&b, "## %s (%s)\n", r.Name, r.Key)
		fmt.Fprintf(&b, "- City: %s\n", r.City)
		fmt.Fprintf(&b, "- Address: %s\n", r.Address)
		fmt.Fprintf(&b, "- Hours: %s - %s\n\n", r.WorkingHours.Open, r.WorkingHours.Close)
	}
	return b.String()
}
