package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	rs := c.Restaurants()
	require.Len(t, rs, 2)
	assert.Equal(t, "bachevski", rs[0].Key)
	assert.Equal(t, "kryivka", rs[1].Key)

	r, err := c.Restaurant("bachevski")
	require.NoError(t, err)
	assert.Equal(t, "Baczewski", r.Name)
	assert.Equal(t, []Table{{1, 2}, {2, 4}, {3, 6}, {4, 8}}, r.Tables)
}

func TestRestaurantUnknown(t *testing.T) {
	_, err := Default().Restaurant("nope")
	require.ErrorIs(t, err, ErrUnknownRestaurant)
}

func TestRestaurantsReturnsCopy(t *testing.T) {
	c := Default()
	rs := c.Restaurants()
	rs[0].Name = "changed"

	r, err := c.Restaurant("bachevski")
	require.NoError(t, err)
	assert.Equal(t, "Baczewski", r.Name)
}

func TestListing(t *testing.T) {
	want := "# Available Restaurants\n\n" +
		"## Baczewski (bachevski)\n- City: Lviv\n- Address: 8 Shevska Str.\n- Hours: 10:00 - 23:00\n\n" +
		"## Kryivka (kryivka)\n- City: Lviv\n- Address: 14 Rynok Sq.\n- Hours: 12:00 - 00:00\n\n"
	assert.Equal(t, want, Default().Listing())
}

func TestNewValidation(t *testing.T) {
	cases := map[string][]Restaurant{
		"empty key":      {{Key: " ", Tables: []Table{{1, 2}}}},
		"no tables":      {{Key: "a"}},
		"duplicate id":   {{Key: "a", Tables: []Table{{1, 2}, {1, 4}}}},
		"zero seats":     {{Key: "a", Tables: []Table{{1, 0}}}},
		"duplicate keys": {{Key: "a", Tables: []Table{{1, 2}}}, {Key: "a", Tables: []Table{{1, 2}}}},
	}
	for name, rs := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(rs)
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	data := `
restaurants:
  - key: pid-zolotoyu-rozoyu
    name: Pid Zolotoyu Rozoyu
    city: Lviv
    address: 3 Staroyevreiska Str.
    working_hours: {open: "11:00", close: "22:00"}
    tables:
      - {id: 7, seats: 2}
      - {id: 3, seats: 10}
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)

	r, err := c.Restaurant("pid-zolotoyu-rozoyu")
	require.NoError(t, err)
	assert.Equal(t, []Table{{7, 2}, {3, 10}}, r.Tables)
	assert.Equal(t, "22:00", r.WorkingHours.Close)
	assert.True(t, strings.Contains(c.Listing(), "## Pid Zolotoyu Rozoyu (pid-zolotoyu-rozoyu)"))
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("restaurants: []\n"), 0o600))
	_, err = LoadFile(empty)
	assert.Error(t, err)
}
