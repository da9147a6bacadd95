package samples

import (
	"bayesview/domain/dataset"

	"github.com/montanaflynn/stats"
)

// Profile summarises every column of a table: state counts over observed
// cells plus min, max and mode of the codes
func Profile(table *dataset.Table) []dataset.ColumnProfile {
	profiles := make([]dataset.ColumnProfile, 0, len(table.Names()))
	for _, col := range table.Columns() {
		space := dataset.StateSpaceOf(col)
		p := dataset.ColumnProfile{
			Name:   col.Name,
			Rows:   len(col.Codes),
			States: space.Codes,
			Counts: make([]int, space.Len()),
		}

		data := make(stats.Float64Data, 0, col.Usable())
		for r, code := range col.Codes {
			if !col.Observed(r) {
				p.Missing++
				continue
			}
			i, _ := space.Index(code)
			p.Counts[i]++
			data = append(data, float64(code))
		}

		// stats returns EmptyInputErr for all-missing columns; zero values stand
		if len(data) > 0 {
			p.Min, _ = stats.Min(data)
			p.Max, _ = stats.Max(data)
			p.Mode, _ = stats.Mode(data)
		}
		profiles = append(profiles, p)
	}
	return profiles
}
