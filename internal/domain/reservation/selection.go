package reservation

import "github.com/example/table-booking/internal/domain/catalog"

// FreeTables returns the tables that seat at least guests and are not in
// booked, in catalog order. The result is never nil.
func FreeTables(tables []catalog.Table, guests int, booked map[int]bool) []catalog.Table {
	out := make([]catalog.Table, 0, len(tables))
	for _, t := range tables {
		if t.Seats < guests || booked[t.ID] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ChooseTable returns the first free table in catalog order. There is no
// best-fit search: a party of two takes table 2 (4 seats) when table 1
// (2 seats) is booked, even if a better match exists further down.
func ChooseTable(free []catalog.Table) (catalog.Table, bool) {
	if len(free) == 0 {
		return catalog.Table{}, false
	}
	return free[0], true
}
