package normalize

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func sample() []float64 {
	v := make([]float64, 63)
	for i := range v {
		v[i] = 0.3 + 0.01*float64(i%7) - 0.02*float64(i%3)
	}
	return v
}

func TestWristRelative(t *testing.T) {
	t.Run("wrist moves to origin", func(t *testing.T) {
		v := sample()
		v[0], v[1], v[2] = 0.5, 0.8, -0.1

		out := WristRelative(v)

		for i := 0; i < 3; i++ {
			if out[i] != 0 {
				t.Errorf("out[%d] = %f, want 0", i, out[i])
			}
		}
		for i := 3; i < len(v); i++ {
			want := v[i] - v[i%3]
			if math.Abs(out[i]-want) > epsilon {
				t.Errorf("out[%d] = %f, want %f", i, out[i], want)
			}
		}
	})

	t.Run("partial input", func(t *testing.T) {
		if got := WristRelative(nil); len(got) != 0 {
			t.Errorf("expected empty output, got %v", got)
		}

		got := WristRelative([]float64{1, 2, 3, 4, 6})
		want := []float64{0, 0, 0, 3, 4}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("got %v, want %v", got, want)
				break
			}
		}

		short := WristRelative([]float64{5, 7})
		if short[0] != 0 || short[1] != 0 {
			t.Errorf("got %v, want [0 0]", short)
		}
	})
}

func TestZScore(t *testing.T) {
	t.Run("all equal values are returned unchanged", func(t *testing.T) {
		for _, value := range []float64{0, 0.1, 0.5, -3.7} {
			v := make([]float64, 63)
			for i := range v {
				v[i] = value
			}

			out := ZScore(v)
			for i := range v {
				if out[i] != v[i] {
					t.Fatalf("value %f: out[%d] = %f, want unchanged", value, i, out[i])
				}
			}
		}
	})

	t.Run("mean 0 and population std dev 1", func(t *testing.T) {
		out := ZScore(sample())

		var sum, sq float64
		for _, f := range out {
			sum += f
		}
		mean := sum / float64(len(out))
		for _, f := range out {
			sq += (f - mean) * (f - mean)
		}
		std := math.Sqrt(sq / float64(len(out)))

		if math.Abs(mean) > 1e-9 {
			t.Errorf("mean = %g, want 0", mean)
		}
		if math.Abs(std-1) > 1e-9 {
			t.Errorf("std dev = %g, want 1", std)
		}
	})

	t.Run("known values", func(t *testing.T) {
		// mean 2.5, population std dev sqrt(1.25)
		out := ZScore([]float64{1, 2, 3, 4})
		s := math.Sqrt(1.25)
		want := []float64{-1.5 / s, -0.5 / s, 0.5 / s, 1.5 / s}
		for i := range want {
			if math.Abs(out[i]-want[i]) > epsilon {
				t.Errorf("out[%d] = %f, want %f", i, out[i], want[i])
			}
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := ZScore([]float64{}); len(got) != 0 {
			t.Errorf("expected empty output, got %v", got)
		}
	})
}

func TestMinMax(t *testing.T) {
	t.Run("all equal values are returned unchanged", func(t *testing.T) {
		v := make([]float64, 63)
		for i := range v {
			v[i] = 0.42
		}
		out := MinMax(v)
		for i := range v {
			if out[i] != 0.42 {
				t.Fatalf("out[%d] = %f, want 0.42", i, out[i])
			}
		}
	})

	t.Run("outputs lie in [0,1]", func(t *testing.T) {
		out := MinMax(sample())

		var sawZero, sawOne bool
		for i, f := range out {
			if f < 0 || f > 1 {
				t.Errorf("out[%d] = %f outside [0,1]", i, f)
			}
			sawZero = sawZero || f == 0
			sawOne = sawOne || f == 1
		}
		if !sawZero || !sawOne {
			t.Error("expected the minimum to map to 0 and the maximum to 1")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := MinMax(nil); len(got) != 0 {
			t.Errorf("expected empty output, got %v", got)
		}
	})
}

func TestStrategies_DoNotMutateInput(t *testing.T) {
	for _, s := range All() {
		t.Run(s.Name, func(t *testing.T) {
			v := sample()
			orig := append([]float64(nil), v...)

			out := s.Apply(v)
			if len(out) != len(v) {
				t.Fatalf("len = %d, want %d", len(out), len(v))
			}
			for i := range v {
				if v[i] != orig[i] {
					t.Fatalf("input mutated at %d", i)
				}
			}

			out[0] = 1234
			if v[0] == 1234 {
				t.Error("output aliases input")
			}
		})
	}
}

func TestByName(t *testing.T) {
	names := []string{NameWristRelative, NameZScore, NameMinMax, NameIdentity}
	all := All()
	if len(all) != len(names) {
		t.Fatalf("expected %d strategies, got %d", len(names), len(all))
	}

	for i, name := range names {
		if all[i].Name != name {
			t.Errorf("strategy %d = %s, want %s", i, all[i].Name, name)
		}
		s, ok := ByName(name)
		if !ok || s.Name != name {
			t.Errorf("ByName(%q) = %v, %v", name, s.Name, ok)
		}
	}

	if _, ok := ByName("softmax"); ok {
		t.Error("expected unknown strategy lookup to fail")
	}
}
