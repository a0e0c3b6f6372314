// Package similarity holds the immutable title-by-title similarity index.
package similarity

import "fmt"

// Index is a square similarity matrix plus its title ordering, kept as one unit.
// Position i refers to the same title in the matrix rows, columns and Titles().
type Index struct {
	titles []string
	pos    map[string]int
	scores []float64 // row-major n*n
	users  int
}

// New creates an index. scores must be row-major with len(titles)^2 entries.
// users records how many rating columns the matrix was computed from.
func New(titles []string, scores []float64, users int) (Index, error) {
	n := len(titles)
	if len(scores) != n*n {
		return Index{}, fmt.Errorf("similarity: %d titles need %d scores, got %d", n, n*n, len(scores))
	}
	pos := make(map[string]int, n)
	for i, t := range titles {
		if _, dup := pos[t]; dup {
			return Index{}, fmt.Errorf("similarity: duplicate title %q", t)
		}
		pos[t] = i
	}
	return Index{
		titles: append([]string(nil), titles...),
		pos:    pos,
		scores: append([]float64(nil), scores...),
		users:  users,
	}, nil
}

// Empty returns an index with no titles.
func Empty() Index {
	return Index{pos: map[string]int{}}
}

// Len returns the number of titles.
func (x *Index) Len() int { return len(x.titles) }

// Users returns the number of user columns behind the matrix.
func (x *Index) Users() int { return x.users }

// Degenerate reports whether fewer than two titles survived, so no neighbors exist.
func (x *Index) Degenerate() bool { return len(x.titles) < 2 }

// Position returns the row of a title (exact, case-sensitive match).
func (x *Index) Position(title string) (int, bool) {
	i, ok := x.pos[title]
	return i, ok
}

// Title returns the title at position i.
func (x *Index) Title(i int) string { return x.titles[i] }

// Titles returns a copy of the ordering.
func (x *Index) Titles() []string {
	return append([]string(nil), x.titles...)
}

// Score returns sim(i, j).
func (x *Index) Score(i, j int) float64 {
	return x.scores[i*len(x.titles)+j]
}

// Row returns a copy of row i.
func (x *Index) Row(i int) []float64 {
	n := len(x.titles)
	return append([]float64(nil), x.scores[i*n:(i+1)*n]...)
}
