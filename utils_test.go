package seizureplot

import (
	"reflect"
	"testing"
)

func TestFilter(t *testing.T) {
	t.Run("empty slice", func(t *testing.T) {
		var input []int = nil
		pred := func(int) bool { return true }
		got := Filter(input, pred)
		want := []int{}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("Filter(%v) = %v, want %v", input, got, want)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		input := []int{1, 2, 3}
		pred := func(x int) bool { return x > 10 }
		got := Filter(input, pred)
		want := []int{}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("Filter(%v) = %v, want %v", input, got, want)
		}
	})

	t.Run("partial match keeps order", func(t *testing.T) {
		input := []int{5, 2, 7, 4, 1}
		pred := func(x int) bool { return x%2 == 1 }
		got := Filter(input, pred)
		want := []int{5, 7, 1}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("Filter(%v) = %v, want %v", input, got, want)
		}
	})
}

func TestTicks(t *testing.T) {
	t.Run("integer step", func(t *testing.T) {
		got := Ticks(0, 100, 4)
		want := []float64{0, 100, 200, 300}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("Ticks(0,100,4) = %v, want %v", got, want)
		}
	})

	t.Run("float start", func(t *testing.T) {
		got := Ticks(0.5, 0.25, 3)
		want := []float64{0.5, 0.75, 1.0}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("Ticks(0.5,0.25,3) = %v, want %v", got, want)
		}
	})

	t.Run("thirty ticks of a hundred", func(t *testing.T) {
		got := Ticks(0, 100, 30)
		if len(got) != 30 || got[0] != 0 || got[29] != 2900 {
			t.Fatalf("unexpected ticks: %v", got)
		}
	})

	t.Run("non-positive count", func(t *testing.T) {
		if got := Ticks(0, 1, 0); len(got) != 0 {
			t.Fatalf("expected no ticks, got %v", got)
		}
		if got := Ticks(0, 1, -3); len(got) != 0 {
			t.Fatalf("expected no ticks, got %v", got)
		}
	})
}
