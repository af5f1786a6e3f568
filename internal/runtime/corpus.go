package runtime

import (
	"github.com/aretw0/weaver/pkg/domain"
)

// AppendCorpus returns corpus followed by entries, in order.
// A source_id repeated within entries is a DuplicateSourceError; repeats across
// calls are allowed. Text is stored as given.
func AppendCorpus(corpus, entries []domain.CorpusEntry) ([]domain.CorpusEntry, error) {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.SourceID]; dup {
			return nil, &domain.DuplicateSourceError{SourceID: e.SourceID}
		}
		seen[e.SourceID] = struct{}{}
	}

	out := make([]domain.CorpusEntry, 0, len(corpus)+len(entries))
	out = append(out, corpus...)
	return append(out, entries...), nil
}
