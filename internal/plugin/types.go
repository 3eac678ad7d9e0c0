// Package plugin discovers out-of-process action plugins and runs them with
// a JSON request on stdin and a JSON response on stdout.
package plugin

import jsoniter "github.com/json-iterator/go"

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Key actions understood by the keyboard plugin.
const (
	ActionKeyDown = "keydown"
	ActionKeyUp   = "keyup"
)

// Manifest is the plugin.json found in each plugin directory.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Actions     []string `json:"actions"`
}

// Supports reports whether the manifest lists action.
func (m Manifest) Supports(action string) bool {
	for _, a := range m.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Request is written to the plugin's stdin.
type Request struct {
	Action string `json:"action"`
	Key    string `json:"key"`
	Label  string `json:"label,omitempty"`
}

// Response is read from the plugin's stdout.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Plugin is a discovered plugin and where it lives.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
