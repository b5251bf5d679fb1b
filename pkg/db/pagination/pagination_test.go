package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "123", CreatedAt: "2026-03-15T12:00:00Z"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "123", cursor.ID)
	assert.Equal(t, "2026-03-15T12:00:00Z", cursor.CreatedAt)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("not base64 at all!!!")
	assert.Error(t, err)
}

type item struct {
	ID string
}

func TestBuildCursorPageInfo(t *testing.T) {
	extract := func(i *item) string { return i.ID }

	t.Run("empty", func(t *testing.T) {
		data, info := BuildCursorPageInfo(nil, 10, extract)
		assert.Empty(t, data)
		assert.False(t, info.HasMore)
	})

	t.Run("partial page", func(t *testing.T) {
		data, info := BuildCursorPageInfo([]*item{{ID: "a"}, {ID: "b"}}, 10, extract)
		assert.Len(t, data, 2)
		assert.False(t, info.HasMore)
		assert.Equal(t, "b", info.NextPageToken)
	})

	t.Run("overflow row trimmed", func(t *testing.T) {
		data, info := BuildCursorPageInfo([]*item{{ID: "a"}, {ID: "b"}, {ID: "c"}}, 2, extract)
		assert.Len(t, data, 2)
		assert.True(t, info.HasMore)
		assert.Equal(t, "b", info.NextPageToken)
	})
}
