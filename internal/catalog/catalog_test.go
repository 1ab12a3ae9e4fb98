package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-server/internal/catalog"
	"survey-server/internal/models"
)

// writeQuestionsFile создает временный CSV с вопросами и возвращает его путь.
func writeQuestionsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCSV(t *testing.T) {
	t.Run("Loads questions with and without options", func(t *testing.T) {
		path := writeQuestionsFile(t, "id,question,options\n1,What is your age group?,18-25|26-40|41+\n2,Any comments?,\n")

		cat, err := catalog.LoadCSV(path)
		require.NoError(t, err)
		assert.Equal(t, 2, cat.Len())

		q1, err := cat.Get(0)
		require.NoError(t, err)
		assert.Equal(t, 1, q1.ID)
		assert.Equal(t, "What is your age group?", q1.Text)
		assert.Equal(t, []string{"18-25", "26-40", "41+"}, q1.Options)
		assert.False(t, q1.IsOpenEnded())

		q2, err := cat.ByID(2)
		require.NoError(t, err)
		assert.True(t, q2.IsOpenEnded())
	})

	t.Run("Fails on empty file", func(t *testing.T) {
		path := writeQuestionsFile(t, "id,question,options\n")
		_, err := catalog.LoadCSV(path)
		assert.Error(t, err)
	})

	t.Run("Fails on non-contiguous ids", func(t *testing.T) {
		path := writeQuestionsFile(t, "id,question,options\n1,First?,\n3,Third?,\n")
		_, err := catalog.LoadCSV(path)
		assert.Error(t, err)
	})

	t.Run("Fails on missing file", func(t *testing.T) {
		_, err := catalog.LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
		assert.Error(t, err)
	})
}

func TestCatalogAccess(t *testing.T) {
	cat, err := catalog.New([]models.Question{
		{ID: 1, Text: "First?", Options: []string{"a", "b"}},
		{ID: 2, Text: "Second?"},
	})
	require.NoError(t, err)

	t.Run("Get out of range returns ErrQuestionNotFound", func(t *testing.T) {
		_, err := cat.Get(2)
		assert.ErrorIs(t, err, models.ErrQuestionNotFound)
		_, err = cat.Get(-1)
		assert.ErrorIs(t, err, models.ErrQuestionNotFound)
	})

	t.Run("All returns a copy", func(t *testing.T) {
		all := cat.All()
		all[0].Text = "mutated"
		q, err := cat.Get(0)
		require.NoError(t, err)
		assert.Equal(t, "First?", q.Text)
	})
}
