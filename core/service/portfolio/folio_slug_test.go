package portfolio

import (
	"context"
	"testing"

	"folio_server/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNanoidGenerator(t *testing.T) {
	gen := NanoidGenerator(12)
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		s, err := gen()
		require.NoError(t, err)
		assert.Len(t, s, 12)
		for _, r := range s {
			assert.Contains(t, SlugAlphabet, string(r))
		}
		assert.False(t, seen[s], "duplicate slug %s", s)
		seen[s] = true
	}
}

func TestSlugAllocator_Reserve(t *testing.T) {
	tests := []struct {
		name       string
		taken      []string
		candidates []string
		attempts   int
		want       string
		wantCode   string
	}{
		{"first candidate free", nil, []string{"aaaaaaaa"}, 3, "aaaaaaaa", ""},
		{"retry after collision", []string{"aaaaaaaa"}, []string{"aaaaaaaa", "bbbbbbbb"}, 3, "bbbbbbbb", ""},
		{"reserved word skipped", nil, []string{"dashboard", "cccccccc"}, 3, "cccccccc", ""},
		{"exhausted", []string{"aaaaaaaa", "bbbbbbbb"}, []string{"aaaaaaaa", "bbbbbbbb"}, 2, "", apperr.CodeAllocationExhaust},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			for _, s := range tt.taken {
				store.slugs[s] = "someone@x.com"
			}
			alloc := NewSlugAllocator(store, fixedSlugs(tt.candidates...), tt.attempts)

			got, err := alloc.Reserve(context.Background(), "a@x.com")
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, apperr.HasCode(err, tt.wantCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "a@x.com", store.slugs[got])
			for _, s := range tt.taken {
				assert.Equal(t, "someone@x.com", store.slugs[s], "existing reservation must not be overwritten")
			}
		})
	}
}

func TestSlugAllocator_StoreErrorStops(t *testing.T) {
	store := newMemStore()
	store.failSlug = errStoreDown
	alloc := NewSlugAllocator(store, fixedSlugs("aaaaaaaa", "bbbbbbbb"), 5)

	_, err := alloc.Reserve(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodePersistenceError))
}
