// Package main is the keyboard plugin. It reads one key request on stdin,
// presses or releases an arrow key through the OS scripting layer and writes
// one response on stdout.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Request is the input from the plugin executor.
type Request struct {
	Action string `json:"action"`
	Key    string `json:"key"`
	Label  string `json:"label,omitempty"`
}

// Response is the output to the plugin executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// macKeyCodes are System Events key codes for the arrow keys.
var macKeyCodes = map[string]int{
	"ArrowLeft":  123,
	"ArrowRight": 124,
	"ArrowDown":  125,
	"ArrowUp":    126,
}

// xdotoolKeys are X11 keysym names for the arrow keys.
var xdotoolKeys = map[string]string{
	"ArrowLeft":  "Left",
	"ArrowRight": "Right",
	"ArrowDown":  "Down",
	"ArrowUp":    "Up",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	if req.Action != "keydown" && req.Action != "keyup" {
		writeResponse(fmt.Errorf("unknown action: %s", req.Action))
		return
	}
	if _, ok := macKeyCodes[req.Key]; !ok {
		writeResponse(fmt.Errorf("unsupported key: %q", req.Key))
		return
	}

	writeResponse(handleKey(req.Action, req.Key))
}

func handleKey(action, key string) error {
	switch runtime.GOOS {
	case "darwin":
		// System Events delivers press and release as one event, so the
		// release request has nothing left to do.
		if action == "keyup" {
			return nil
		}
		script := fmt.Sprintf(`tell application "System Events" to key code %d`, macKeyCodes[key])
		return run("osascript", "-e", script)
	case "linux":
		return run("xdotool", action, xdotoolKeys[key])
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

func run(name string, args ...string) error {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, string(output))
	}
	return nil
}
