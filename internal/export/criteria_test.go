package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCriteria(t *testing.T) {
	t.Run("always excludes variant products", func(t *testing.T) {
		c := BuildCriteria(CriteriaOptions{})
		assert.True(t, c.ExcludeChildren)
	})

	t.Run("loads the full association set", func(t *testing.T) {
		c := BuildCriteria(CriteriaOptions{})
		assert.Len(t, c.Associations, 4)
	})

	t.Run("pagination window passes through", func(t *testing.T) {
		offset, limit := 40, 20
		c := BuildCriteria(CriteriaOptions{Offset: &offset, Limit: &limit})
		require.NotNil(t, c.Offset)
		require.NotNil(t, c.Limit)
		assert.Equal(t, 40, *c.Offset)
		assert.Equal(t, 20, *c.Limit)
	})

	t.Run("window stays unset when omitted", func(t *testing.T) {
		c := BuildCriteria(CriteriaOptions{})
		assert.Nil(t, c.Offset)
		assert.Nil(t, c.Limit)
	})

	t.Run("visibility filter requires the flag", func(t *testing.T) {
		c := BuildCriteria(CriteriaOptions{ChannelID: "channel-1"})
		assert.Empty(t, c.VisibilityChannelID)

		c = BuildCriteria(CriteriaOptions{ChannelID: "channel-1", RequireVisibility: true})
		assert.Equal(t, "channel-1", c.VisibilityChannelID)
	})

	t.Run("uuid identifier matches term and id", func(t *testing.T) {
		id := "01902f3e-4b7a-7c33-aa45-9f2e1d6b8c01"
		c := BuildCriteria(CriteriaOptions{ProductID: id})
		assert.Equal(t, id, c.IdentifierTerm)
		assert.Equal(t, id, c.IdentifierID)
	})

	t.Run("non-uuid identifier matches term only", func(t *testing.T) {
		c := BuildCriteria(CriteriaOptions{ProductID: "SW-10001"})
		assert.Equal(t, "SW-10001", c.IdentifierTerm)
		assert.Empty(t, c.IdentifierID)
	})

	t.Run("empty identifier sets neither", func(t *testing.T) {
		c := BuildCriteria(CriteriaOptions{})
		assert.Empty(t, c.IdentifierTerm)
		assert.Empty(t, c.IdentifierID)
	})
}
