// Package audio starts local playback of the mission cue via PulseAudio
// tooling, preferring paplay and falling back to aplay's pulse device.
package audio

import (
	"fmt"
	"os/exec"
)

// Player implements secondary.AudioPlayer by shelling out to paplay/aplay.
type Player struct {
	file string
	sink string
}

// NewPlayer creates a player for the configured audio file. sink optionally
// forces a PulseAudio sink; empty uses the default.
func NewPlayer(file, sink string) *Player {
	return &Player{file: file, sink: sink}
}

// Play starts playback detached and returns immediately. The child process
// is not waited on; playback outliving a short-lived command is fine.
func (p *Player) Play() error {
	if p.file == "" {
		return fmt.Errorf("no audio file configured")
	}

	var script string
	if p.sink != "" {
		script = fmt.Sprintf(
			"command -v paplay >/dev/null 2>&1 && paplay --device=%s %q || aplay -D pulse %q",
			p.sink, p.file, p.file)
	} else {
		script = fmt.Sprintf(
			"command -v paplay >/dev/null 2>&1 && paplay %q || aplay -D pulse %q",
			p.file, p.file)
	}

	cmd := exec.Command("bash", "-lc", script)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}
	go cmd.Wait() // reap, ignore outcome
	return nil
}
