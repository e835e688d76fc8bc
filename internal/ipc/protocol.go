// Package ipc is the unix-socket control channel between the daemon and the
// short-lived CLI invocations that compositor keybindings fire.
package ipc

// Commands understood by the daemon.
const (
	CommandPress   = "press"
	CommandRelease = "release"
	CommandToggle  = "toggle"
	CommandStatus  = "status"
	CommandStop    = "stop"
)

// Request is one newline-delimited JSON command. Key carries the hotkey
// identifier for press and release.
type Request struct {
	Command string `json:"command"`
	Key     string `json:"key,omitempty"`
}

// ChainStats mirrors provider chain counters for the status command.
type ChainStats struct {
	Usage         map[string]int64 `json:"usage,omitempty"`
	FallbackCount int64            `json:"fallback_count"`
	Active        string           `json:"active,omitempty"`
	Providers     int              `json:"providers"`
}

type Response struct {
	OK         bool        `json:"ok"`
	State      string      `json:"state,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Pending    int         `json:"pending,omitempty"`
	Transcribe *ChainStats `json:"transcribe,omitempty"`
	Enhance    *ChainStats `json:"enhance,omitempty"`
}
