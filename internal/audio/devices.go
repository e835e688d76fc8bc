// Package audio captures microphone PCM through PulseAudio and packages
// finished recordings as WAV clips for transcription.
package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// Device describes one Pulse input source.
type Device struct {
	ID          string
	Description string
	State       string
	Available   bool
	Muted       bool
	Default     bool
}

// ListDevices returns the Pulse input sources with default and availability
// metadata.
func ListDevices(_ context.Context) ([]Device, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("audioscribe"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	defaultSource, err := client.DefaultSource()
	if err != nil {
		return nil, fmt.Errorf("read default source: %w", err)
	}
	defaultID := defaultSource.ID()

	var infos pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &infos); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		if info == nil {
			continue
		}
		devices = append(devices, Device{
			ID:          info.SourceName,
			Description: info.Device,
			State:       stateName(info.State),
			Available:   portAvailable(info),
			Muted:       info.Mute,
			Default:     info.SourceName == defaultID,
		})
	}
	return devices, nil
}

// Pick resolves the configured device preference against live sources,
// falling back to the default source when the preference is unusable.
func Pick(ctx context.Context, preferred string) (Device, string, error) {
	devices, err := ListDevices(ctx)
	if err != nil {
		return Device{}, "", err
	}
	return pickFromList(devices, preferred)
}

// pickFromList is the selection policy over a pre-fetched device list. It
// returns the chosen device and a non-empty warning when the preference had
// to be abandoned.
func pickFromList(devices []Device, preferred string) (Device, string, error) {
	if len(devices) == 0 {
		return Device{}, "", errors.New("no audio input devices found")
	}

	preferred = strings.TrimSpace(strings.ToLower(preferred))

	var fallback *Device
	for i := range devices {
		if devices[i].Default {
			fallback = &devices[i]
			break
		}
	}

	if preferred == "" || preferred == "default" {
		if fallback == nil {
			return Device{}, "", errors.New("default audio source is unavailable")
		}
		if err := usable(*fallback); err != nil {
			return Device{}, "", err
		}
		return *fallback, "", nil
	}

	var match *Device
	for i := range devices {
		if matches(devices[i], preferred) {
			match = &devices[i]
			break
		}
	}
	if match == nil {
		return Device{}, "", fmt.Errorf("audio device %q did not match any source", preferred)
	}

	if err := usable(*match); err != nil {
		if fallback == nil || fallback.ID == match.ID {
			return Device{}, "", err
		}
		if ferr := usable(*fallback); ferr != nil {
			return Device{}, "", fmt.Errorf("device %q unusable (%v) and default source unusable: %w", match.ID, err, ferr)
		}
		warning := fmt.Sprintf("audio device %q is %s; using default source %q", match.ID, unusableReason(*match), fallback.ID)
		return *fallback, warning, nil
	}

	return *match, "", nil
}

func usable(d Device) error {
	if !d.Available {
		return fmt.Errorf("audio device %q is not available", d.ID)
	}
	if d.Muted {
		return fmt.Errorf("audio device %q is muted", d.ID)
	}
	return nil
}

func unusableReason(d Device) string {
	if d.Muted {
		return "muted"
	}
	return "unavailable"
}

// matches reports whether a search term matches a device id or description.
func matches(d Device, term string) bool {
	if term == "" {
		return false
	}
	return strings.Contains(strings.ToLower(d.ID), term) ||
		strings.Contains(strings.ToLower(d.Description), term)
}

func stateName(state uint32) string {
	switch state {
	case 0:
		return "running"
	case 1:
		return "idle"
	case 2:
		return "suspended"
	default:
		return fmt.Sprintf("unknown(%d)", state)
	}
}

// portAvailable maps Pulse port availability to a boolean. Sources without
// ports are treated as available.
func portAvailable(info *pulseproto.GetSourceInfoReply) bool {
	if info == nil {
		return false
	}
	if len(info.Ports) == 0 {
		return true
	}
	for _, port := range info.Ports {
		if port.Name != info.ActivePortName {
			continue
		}
		// PulseAudio values: unknown=0, no=1, yes=2.
		return port.Available != 1
	}
	return true
}
