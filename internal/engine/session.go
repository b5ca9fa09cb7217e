package engine

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

// Session accumulates what one run learned and observed: perception counts,
// saved captures, diagnoses. Owned by the caller, guarded by one mutex.
type Session struct {
	mu sync.Mutex

	id          string
	dir         string
	perceptions int
	screenshots []string
	diagnoses   []entity.Diagnosis
	lastCapture []string // fingerprint of the last saved screenshot
}

// SessionSnapshot is an owned copy of the session state.
type SessionSnapshot struct {
	ID          string
	Perceptions int
	Screenshots []string
	Diagnoses   []entity.Diagnosis
}

func NewSession(screenshotDir string) *Session {
	return &Session{
		id:  uuid.NewString(),
		dir: screenshotDir,
	}
}

func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *Session) countPerception() {
	s.mu.Lock()
	s.perceptions++
	s.mu.Unlock()
}

func (s *Session) addDiagnosis(d entity.Diagnosis) {
	s.mu.Lock()
	s.diagnoses = append(s.diagnoses, d)
	s.mu.Unlock()
}

// saveScreenshot persists a capture unless the screen fingerprint is
// unchanged since the previous save; duplicate frames are skipped.
func (s *Session) saveScreenshot(img image.Image, name string, fingerprint []string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastCapture != nil && sameStrings(s.lastCapture, fingerprint) {
		return "", false, nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", false, fmt.Errorf("create screenshot dir: %w", err)
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%s.png", name))
	if err := imaging.Save(img, path); err != nil {
		return "", false, fmt.Errorf("save screenshot: %w", err)
	}

	s.screenshots = append(s.screenshots, path)
	s.lastCapture = fingerprint
	return path, true, nil
}

// FinalizeAndClear returns an owned snapshot and atomically resets the
// session for reuse.
func (s *Session) FinalizeAndClear() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := SessionSnapshot{
		ID:          s.id,
		Perceptions: s.perceptions,
		Screenshots: append([]string(nil), s.screenshots...),
		Diagnoses:   append([]entity.Diagnosis(nil), s.diagnoses...),
	}

	s.id = uuid.NewString()
	s.perceptions = 0
	s.screenshots = nil
	s.diagnoses = nil
	s.lastCapture = nil

	return snap
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
