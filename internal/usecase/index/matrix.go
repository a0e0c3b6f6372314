package index

import (
	"sort"

	"github.com/kailas-cloud/bookrec/internal/domain/rating"
)

// FillValue is written to every (title, user) cell with no observation.
// It coincides with an explicit zero rating; the two are not distinguished.
const FillValue = 0.0

// Matrix is a dense title x user rating table.
// Titles and Users are sorted ascending; Values[i][j] is the rating of Users[j] for Titles[i].
type Matrix struct {
	Titles []string
	Users  []string
	Values [][]float64
}

// BuildMatrix pivots events into a dense matrix.
// Repeated (title, user) observations, e.g. one user rating two editions, are averaged.
func BuildMatrix(events []rating.Event) Matrix {
	type cell struct {
		sum   float64
		count int
	}

	titleSet := make(map[string]struct{})
	userSet := make(map[string]struct{})
	cells := make(map[[2]string]*cell)

	for i := range events {
		e := &events[i]
		titleSet[e.Title()] = struct{}{}
		userSet[e.UserID()] = struct{}{}
		k := [2]string{e.Title(), e.UserID()}
		c, ok := cells[k]
		if !ok {
			c = &cell{}
			cells[k] = c
		}
		c.sum += e.Value()
		c.count++
	}

	titles := sortedKeys(titleSet)
	users := sortedKeys(userSet)

	titlePos := positions(titles)
	userPos := positions(users)

	values := make([][]float64, len(titles))
	for i := range values {
		row := make([]float64, len(users))
		if FillValue != 0 {
			for j := range row {
				row[j] = FillValue
			}
		}
		values[i] = row
	}
	for k, c := range cells {
		values[titlePos[k[0]]][userPos[k[1]]] = c.sum / float64(c.count)
	}

	return Matrix{Titles: titles, Users: users, Values: values}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func positions(keys []string) map[string]int {
	m := make(map[string]int, len(keys))
	for i, k := range keys {
		m[k] = i
	}
	return m
}
