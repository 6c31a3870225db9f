package template

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/massaflow/practice-api/internal/model"
	"github.com/massaflow/practice-api/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func TestStoreLoadsEmbeddedDefaults(t *testing.T) {
	s := NewStore("", testLogger())
	assert.False(t, s.Degraded())

	for _, pt := range practiceTypes {
		for _, routine := range []model.RoutineID{
			model.RoutineConfirm24h, model.RoutineReminder1h, model.RoutineFollowUp24h,
		} {
			tpl, err := s.Resolve(pt, routine)
			require.NoError(t, err, "%s/%s", pt, routine)
			assert.NotEmpty(t, tpl.DefaultMessage)
		}
	}
}

func TestStoreUnknownPracticeTypeFallsBack(t *testing.T) {
	s := NewStore("", testLogger())

	fallback, err := s.Resolve(model.PracticeType("chiropractor"), model.RoutineConfirm24h)
	require.NoError(t, err)
	independent, err := s.Resolve(model.PracticeTypeIndependent, model.RoutineConfirm24h)
	require.NoError(t, err)
	assert.Equal(t, independent, fallback)
}

func TestStoreDirOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	override := `{"routines":{"confirm_24h":{"default_message":"Custom [ClientName]"}}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spa.json"), []byte(override), 0o600))

	s := NewStore(dir, testLogger())
	assert.False(t, s.Degraded())

	tpl, err := s.Resolve(model.PracticeTypeSpa, model.RoutineConfirm24h)
	require.NoError(t, err)
	assert.Equal(t, "Custom [ClientName]", tpl.DefaultMessage)

	// Types without an override keep the embedded defaults.
	_, err = s.Resolve(model.PracticeTypeClinic, model.RoutineReminder1h)
	assert.NoError(t, err)
}

func TestStoreMalformedFileDegrades(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clinic.json"), []byte("{not json"), 0o600))

	s := NewStore(dir, testLogger())
	assert.True(t, s.Degraded())

	// The broken type resolves nothing; the healthy types keep working.
	_, err := s.Resolve(model.PracticeTypeClinic, model.RoutineConfirm24h)
	assert.Error(t, err)
	_, err = s.Resolve(model.PracticeTypeIndependent, model.RoutineConfirm24h)
	assert.NoError(t, err)
}

func TestStoreMissingRoutineIsError(t *testing.T) {
	dir := t.TempDir()
	override := `{"routines":{"confirm_24h":{"default_message":"Only confirmations"}}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "independent.json"), []byte(override), 0o600))

	s := NewStore(dir, testLogger())

	_, err := s.Resolve(model.PracticeTypeIndependent, model.RoutineFollowUp24h)
	assert.Error(t, err)
}
