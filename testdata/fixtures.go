// Package testdata holds recorded hand detections shared by tests.
package testdata

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/ayusman/handkeys/internal/landmark"
)

//go:embed hands/*.json
var handsFS embed.FS

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

type handFile struct {
	Handedness string              `json:"handedness"`
	Score      float64             `json:"score"`
	Landmarks  jsoniter.RawMessage `json:"landmarks"`
}

func readHand(name string) (handFile, error) {
	var f handFile
	data, err := handsFS.ReadFile("hands/" + name + ".json")
	if err != nil {
		return f, fmt.Errorf("load hand %s: %w", name, err)
	}
	if err := codec.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("decode hand %s: %w", name, err)
	}
	return f, nil
}

// LoadHand returns the named recording as detector output.
func LoadHand(name string) (landmark.Hand, error) {
	f, err := readHand(name)
	if err != nil {
		return landmark.Hand{}, err
	}
	var points []landmark.Point3D
	if err := codec.Unmarshal(f.Landmarks, &points); err != nil {
		return landmark.Hand{}, fmt.Errorf("decode landmarks %s: %w", name, err)
	}
	hand, err := landmark.FromPoints(points, f.Handedness, f.Score)
	if err != nil {
		return hand, fmt.Errorf("hand %s: %w", name, err)
	}
	return hand, nil
}

// RawLandmarks returns the named recording's landmark array as JSON, the
// shape clients post to the recognize endpoint.
func RawLandmarks(name string) ([]byte, error) {
	f, err := readHand(name)
	if err != nil {
		return nil, err
	}
	return []byte(f.Landmarks), nil
}

// Hands lists the available recordings.
func Hands() []string {
	entries, _ := handsFS.ReadDir("hands")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}
