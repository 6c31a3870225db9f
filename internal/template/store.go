// Package template loads per-practice-type message templates and renders
// them with named placeholders. The store is read-only after startup.
package template

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/massaflow/practice-api/internal/model"
	"github.com/massaflow/practice-api/pkg/logger"
)

//go:embed templates/*.json
var defaultTemplates embed.FS

// Routine is one message template for a routine.
type Routine struct {
	DefaultMessage string `json:"default_message"`
	Subject        string `json:"subject,omitempty"`
}

// Set holds the routine templates of one practice type.
type Set struct {
	Routines map[model.RoutineID]Routine `json:"routines"`
}

// Store keys template sets by practice type. A missing type falls back to
// the independent set.
type Store struct {
	sets     map[model.PracticeType]Set
	degraded bool
}

var practiceTypes = []model.PracticeType{
	model.PracticeTypeIndependent,
	model.PracticeTypeClinic,
	model.PracticeTypeSpa,
}

// NewStore loads the template sets once. Files in dir override the embedded
// defaults; an unreadable or malformed file degrades that practice type to
// an empty set rather than failing startup.
func NewStore(dir string, log *logger.Logger) *Store {
	s := &Store{sets: make(map[model.PracticeType]Set)}

	for _, pt := range practiceTypes {
		set, err := loadSet(dir, pt)
		if err != nil {
			log.Error(err, "failed to load practice templates, running degraded", "practice_type", string(pt))
			s.degraded = true
			set = Set{Routines: map[model.RoutineID]Routine{}}
		}
		s.sets[pt] = set
	}
	return s
}

func loadSet(dir string, pt model.PracticeType) (Set, error) {
	name := string(pt) + ".json"

	var data []byte
	var err error
	if dir != "" {
		if data, err = os.ReadFile(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			return Set{}, fmt.Errorf("failed to read template file %s: %w", name, err)
		}
	}
	if data == nil {
		if data, err = defaultTemplates.ReadFile("templates/" + name); err != nil {
			return Set{}, fmt.Errorf("no embedded templates for %s: %w", pt, err)
		}
	}

	var set Set
	if err := json.Unmarshal(data, &set); err != nil {
		return Set{}, fmt.Errorf("failed to parse template file %s: %w", name, err)
	}
	return set, nil
}

// Degraded reports whether any template set failed to load.
func (s *Store) Degraded() bool { return s.degraded }

// Resolve returns the message template for the practice type and routine.
// An unknown practice type falls back to the independent set; a missing
// routine is a lookup failure the caller skips over.
func (s *Store) Resolve(pt model.PracticeType, routine model.RoutineID) (Routine, error) {
	set, ok := s.sets[pt]
	if !ok {
		set = s.sets[model.PracticeTypeIndependent]
	}
	r, ok := set.Routines[routine]
	if !ok || r.DefaultMessage == "" {
		return Routine{}, fmt.Errorf("no template for practice type %q routine %q", pt, routine)
	}
	return r, nil
}
