package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("ids are 26 chars and unique", func(t *testing.T) {
		seen := make(map[ID]struct{})
		for range 100 {
			id := New()
			require.Len(t, id.String(), 26)
			_, dup := seen[id]
			require.False(t, dup)
			seen[id] = struct{}{}
		}
	})

	t.Run("ids generated in sequence sort ascending", func(t *testing.T) {
		a := New()
		b := New()
		require.Less(t, a.String(), b.String())
	})
}

func TestNewAt(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	id := NewAt(ts)
	require.Equal(t, ts.UnixMilli(), id.Time().UnixMilli())
}

func TestParse(t *testing.T) {
	t.Parallel()

	id := New()

	parsed, err := Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	_, err = Parse("not-a-ulid")
	require.Error(t, err)

	require.Panics(t, func() { MustParse("not-a-ulid") })
}

func TestIsZero(t *testing.T) {
	t.Parallel()

	var zero ID
	require.True(t, zero.IsZero())
	require.False(t, New().IsZero())
}
