package vector

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ayusman/handkeys/internal/landmark"
)

func TestBuild_Landmarks(t *testing.T) {
	hand := landmark.PointingLeft()

	inputs := map[string]any{
		"hand value":   hand,
		"hand pointer": &hand,
		"point slice":  hand.Points[:],
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			v, err := Build(input)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if len(v) != Size {
				t.Fatalf("len = %d, want %d", len(v), Size)
			}
			for i, p := range hand.Points {
				if v[3*i] != p.X || v[3*i+1] != p.Y || v[3*i+2] != p.Z {
					t.Errorf("landmark %d = (%f,%f,%f), want %+v", i, v[3*i], v[3*i+1], v[3*i+2], p)
				}
			}
		})
	}
}

func TestBuild_FlatValuesUnchanged(t *testing.T) {
	values := make([]float64, Size)
	for i := range values {
		values[i] = float64(i) * 0.01
	}

	v, err := Build(values)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	for i := range values {
		if v[i] != values[i] {
			t.Errorf("v[%d] = %f, want %f", i, v[i], values[i])
		}
	}

	v[0] = 99
	if values[0] == 99 {
		t.Error("Build must not alias the caller's slice")
	}
}

func TestBuild_DecodedJSON(t *testing.T) {
	t.Run("landmark objects with missing fields", func(t *testing.T) {
		entries := make([]any, landmark.Count)
		for i := range entries {
			entries[i] = map[string]any{"x": float64(i), "y": 0.5}
		}
		entries[3] = map[string]any{"x": "oops", "z": 0.25}

		v, err := Build(entries)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if v[3*2] != 2 || v[3*2+1] != 0.5 || v[3*2+2] != 0 {
			t.Errorf("landmark 2 = %v, want [2 0.5 0]", v[6:9])
		}
		if v[3*3] != 0 || v[3*3+1] != 0 || v[3*3+2] != 0.25 {
			t.Errorf("landmark 3 = %v, want [0 0 0.25]", v[9:12])
		}
	})

	t.Run("raw JSON landmarks", func(t *testing.T) {
		hand := landmark.Fist()
		data, err := json.Marshal(hand.Points)
		if err != nil {
			t.Fatal(err)
		}

		v, err := Build(json.RawMessage(data))
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if v[0] != hand.Points[landmark.Wrist].X {
			t.Errorf("v[0] = %f, want %f", v[0], hand.Points[landmark.Wrist].X)
		}
	})

	t.Run("raw JSON flat vector", func(t *testing.T) {
		values := make([]float64, Size)
		values[62] = 1.5
		data, _ := json.Marshal(values)

		v, err := Build(data)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if v[62] != 1.5 {
			t.Errorf("v[62] = %f, want 1.5", v[62])
		}
	})
}

func TestBuild_InvalidLandmarkFormat(t *testing.T) {
	entries := make([]any, landmark.Count)
	for i := range entries {
		entries[i] = map[string]any{"x": 0.1, "y": 0.2, "z": 0.3}
	}
	entries[7] = 0.5

	v, err := Build(entries)
	if !errors.Is(err, ErrInvalidLandmarkFormat) {
		t.Fatalf("expected ErrInvalidLandmarkFormat, got %v", err)
	}
	if v != nil {
		t.Errorf("expected nil vector, got %v", v)
	}
}

func TestBuild_InvalidInputShape(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{name: "nil", input: nil},
		{name: "string", input: "landmarks"},
		{name: "number", input: 21.0},
		{name: "object", input: map[string]any{"x": 1.0}},
		{name: "empty slice", input: []float64{}},
		{name: "20 points", input: make([]landmark.Point3D, 20)},
		{name: "22 points", input: make([]landmark.Point3D, 22)},
		{name: "62 values", input: make([]float64, 62)},
		{name: "64 values", input: make([]float64, 64)},
		{name: "decoded 10 entries", input: make([]any, 10)},
		{name: "non-numeric flat value", input: append(make([]any, 62), "x")},
		{name: "JSON object", input: []byte(`{"data": []}`)},
		{name: "malformed JSON", input: []byte(`[1, 2`)},
		{name: "nil hand pointer", input: (*landmark.Hand)(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Build(tt.input)
			if !errors.Is(err, ErrInvalidInputShape) {
				t.Errorf("expected ErrInvalidInputShape, got %v", err)
			}
			if v != nil {
				t.Errorf("expected nil vector, got len %d", len(v))
			}
		})
	}
}
