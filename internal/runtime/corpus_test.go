package runtime_test

import (
	"testing"

	"github.com/aretw0/weaver/internal/runtime"
	"github.com/aretw0/weaver/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendCorpus(t *testing.T) {
	existing := []domain.CorpusEntry{{SourceID: "a.txt", Text: "alpha"}}

	t.Run("Appends In Order", func(t *testing.T) {
		out, err := runtime.AppendCorpus(existing, []domain.CorpusEntry{
			{SourceID: "b.txt", Text: "beta"},
			{SourceID: "c.txt", Text: "  gamma\n"},
		})
		require.NoError(t, err)
		require.Len(t, out, 3)
		assert.Equal(t, "  gamma\n", out[2].Text, "text is stored verbatim")
		assert.Len(t, existing, 1, "input slice must not grow")
	})

	t.Run("Duplicate Within Call", func(t *testing.T) {
		_, err := runtime.AppendCorpus(existing, []domain.CorpusEntry{
			{SourceID: "b.txt"}, {SourceID: "b.txt"},
		})
		var dup *domain.DuplicateSourceError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "b.txt", dup.SourceID)
	})

	t.Run("Duplicate Across Calls", func(t *testing.T) {
		out, err := runtime.AppendCorpus(existing, []domain.CorpusEntry{{SourceID: "a.txt", Text: "again"}})
		require.NoError(t, err)
		assert.Len(t, out, 2)
	})
}
