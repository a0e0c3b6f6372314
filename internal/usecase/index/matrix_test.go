package index

import (
	"reflect"
	"testing"

	"github.com/kailas-cloud/bookrec/internal/domain/rating"
)

func TestBuildMatrix_SortedAxesAndZeroFill(t *testing.T) {
	m := BuildMatrix([]rating.Event{
		ev("u2", "Beta", 4),
		ev("u1", "Alpha", 8),
		ev("u3", "Beta", 0),
	})

	if !reflect.DeepEqual(m.Titles, []string{"Alpha", "Beta"}) {
		t.Errorf("titles = %v", m.Titles)
	}
	if !reflect.DeepEqual(m.Users, []string{"u1", "u2", "u3"}) {
		t.Errorf("users = %v", m.Users)
	}
	want := [][]float64{
		{8, FillValue, FillValue},
		{FillValue, 4, 0},
	}
	if !reflect.DeepEqual(m.Values, want) {
		t.Errorf("values = %v, want %v", m.Values, want)
	}
}

func TestBuildMatrix_DuplicateObservationsAreAveraged(t *testing.T) {
	// One user rated two editions of the same title.
	m := BuildMatrix([]rating.Event{
		rating.New("u1", "isbn-1", "Dune", 6),
		rating.New("u1", "isbn-2", "Dune", 9),
		rating.New("u1", "isbn-1", "Dune", 0),
	})
	if got := m.Values[0][0]; got != 5 {
		t.Errorf("expected mean 5, got %f", got)
	}
}

func TestBuildMatrix_Empty(t *testing.T) {
	m := BuildMatrix(nil)
	if len(m.Titles) != 0 || len(m.Users) != 0 || len(m.Values) != 0 {
		t.Errorf("expected empty matrix, got %+v", m)
	}
}
