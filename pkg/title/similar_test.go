package title

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("Doctor Who (2005)", "doctor who"), 0.0001)
	assert.Less(t, Similarity("Doctor Who", "Peaky Blinders"), DefaultSimilarity)
}

func TestSimilarGroups(t *testing.T) {
	groups := SimilarGroups([]string{"Doctor Who", "Peaky Blinders", "Doctor Who (2005)"}, DefaultSimilarity)

	assert.Len(t, groups, 2)
	assert.Equal(t, []string{"Doctor Who", "Doctor Who (2005)"}, groups["Doctor Who (2005)"])
	assert.Equal(t, []string{"Peaky Blinders"}, groups["Peaky Blinders"])
}

func TestSimilarGroups_Empty(t *testing.T) {
	assert.Empty(t, SimilarGroups(nil, DefaultSimilarity))
}
