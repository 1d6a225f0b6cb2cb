// Package sound is the consumer-side audio backend. Playback is always best
// effort: a Player reports success or failure and nothing upstream treats a
// failure as fatal.
package sound

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
)

// Player plays a named cue. Play never blocks on the cue finishing.
type Player interface {
	Play(name string) bool
	Available() []string
}

// builtins are the cue names that always exist even with no sound files on
// disk.
var builtins = []string{"reminder", "success"}

// Bell writes the terminal bell for every cue. It is the fallback when no
// playback command is configured.
type Bell struct{}

func (Bell) Play(name string) bool {
	_, err := fmt.Fprint(os.Stderr, "\a")
	return err == nil
}

func (Bell) Available() []string {
	return append([]string(nil), builtins...)
}

// Dir plays cues from a directory of sound files through an external player
// command (afplay, paplay, ...). Cues without a matching file fall back to
// the terminal bell, matching the original system-beep behavior.
type Dir struct {
	Path    string
	Command string
	bell    Bell
}

// NewDir creates a Dir player rooted at path using the given command, and
// makes sure the directory exists so users can drop files in.
func NewDir(path, command string) *Dir {
	os.MkdirAll(path, 0755)
	return &Dir{Path: path, Command: command}
}

var soundExts = []string{".wav", ".mp3", ".ogg"}

func (d *Dir) lookup(name string) (string, bool) {
	for _, ext := range soundExts {
		p := filepath.Join(d.Path, name+ext)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

func (d *Dir) Play(name string) bool {
	file, ok := d.lookup(name)
	if !ok || d.Command == "" {
		return d.bell.Play(name)
	}
	// Fire and forget; the reminder must not wait on playback.
	cmd := exec.Command(d.Command, file)
	if err := cmd.Start(); err != nil {
		return d.bell.Play(name)
	}
	go cmd.Wait()
	return true
}

// Available lists the builtin cues plus every distinct file stem in the
// sound directory, sorted.
func (d *Dir) Available() []string {
	seen := map[string]bool{}
	for _, b := range builtins {
		seen[b] = true
	}
	for _, ext := range soundExts {
		matches, _ := filepath.Glob(filepath.Join(d.Path, "*"+ext))
		for _, m := range matches {
			base := filepath.Base(m)
			seen[base[:len(base)-len(ext)]] = true
		}
	}
	var names []string
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Null swallows every cue, reporting failure. Used in tests and when audio
// is disabled entirely.
type Null struct{}

func (Null) Play(string) bool    { return false }
func (Null) Available() []string { return append([]string(nil), builtins...) }
