// Package state persists the bot's counter and rate-limit cooldown as
// two small plain-text files, so a wrapping CI job can commit them
// back to the repository after a run.
package state

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	counterFile  = "counter.txt"
	cooldownFile = "rate_limit_failure.txt"
)

// State is the persisted counter plus, when known, the ID of the last
// post it produced. LastPostID anchors the next day's quote post
// without scanning the timeline.
type State struct {
	Counter    int
	LastPostID string
}

// Store reads and writes the state files under a single directory.
// Reads fail soft; writes fail hard so the caller can tell "posted but
// not saved" apart from "posted and saved".
type Store struct {
	dir string

	// Bootstrap is the counter reported when no state file exists
	// yet, normally the campaign's minimum counter.
	Bootstrap int
}

func NewStore(dir string, bootstrap int) *Store {
	return &Store{dir: dir, Bootstrap: bootstrap}
}

func (s *Store) counterPath() string  { return filepath.Join(s.dir, counterFile) }
func (s *Store) cooldownPath() string { return filepath.Join(s.dir, cooldownFile) }

// ReadState returns the persisted state. A missing file yields the
// bootstrap state; a file that exists but cannot be parsed yields
// counter 0, which the orchestrator treats as fatal. A corrupt file
// means something went wrong out-of-band, and restarting from the
// bootstrap value could repeat already-posted days.
func (s *Store) ReadState() State {
	data, err := os.ReadFile(s.counterPath())
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("[state] %s not found, starting from %d", counterFile, s.Bootstrap)
			return State{Counter: s.Bootstrap}
		}
		log.Printf("[state] read %s: %v", counterFile, err)
		return State{}
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	counter, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil || counter < 0 {
		log.Printf("[state] invalid counter in %s: %q", counterFile, lines[0])
		return State{}
	}

	st := State{Counter: counter}
	if len(lines) > 1 {
		st.LastPostID = strings.TrimSpace(lines[1])
	}
	return st
}

// WriteState replaces the whole state file. Errors propagate: the
// orchestrator must know when a publish succeeded but the counter did
// not land on disk.
func (s *Store) WriteState(st State) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	content := strconv.Itoa(st.Counter)
	if st.LastPostID != "" {
		content += "\n" + st.LastPostID
	}
	if err := os.WriteFile(s.counterPath(), []byte(content+"\n"), 0644); err != nil {
		return fmt.Errorf("write %s: %w", counterFile, err)
	}
	log.Printf("[state] counter updated to %d", st.Counter)
	return nil
}

// ReadCooldown returns the recorded rate-limit timestamp, if any.
// Unreadable markers are ignored rather than blocking the bot forever.
func (s *Store) ReadCooldown() (time.Time, bool) {
	data, err := os.ReadFile(s.cooldownPath())
	if err != nil {
		return time.Time{}, false
	}
	at, err := time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	if err != nil {
		log.Printf("[state] invalid cooldown marker, ignoring: %v", err)
		return time.Time{}, false
	}
	return at, true
}

// WriteCooldown records when the platform reported rate limiting.
func (s *Store) WriteCooldown(at time.Time) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(s.cooldownPath(), []byte(at.Format(time.RFC3339)+"\n"), 0644); err != nil {
		return fmt.Errorf("write %s: %w", cooldownFile, err)
	}
	log.Printf("[state] cooldown marker saved")
	return nil
}

// ClearCooldown removes the marker once the window has elapsed.
func (s *Store) ClearCooldown() error {
	err := os.Remove(s.cooldownPath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", cooldownFile, err)
	}
	return nil
}

// CooldownExists reports whether the marker file is on disk, used to
// tell a wrapping CI job that there is a state change to commit.
func (s *Store) CooldownExists() bool {
	_, err := os.Stat(s.cooldownPath())
	return err == nil
}
