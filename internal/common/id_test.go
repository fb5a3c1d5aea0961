package common

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointID_Stable(t *testing.T) {
	url := "https://www.bitovi.com/blog/comparing-schema-validation-libraries"

	first := PointID(url)
	assert.Equal(t, first, PointID(url))
	assert.NotEqual(t, first, PointID(url+"/"))

	parsed, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), parsed.Version())
}

func TestPointID_URLNamespace(t *testing.T) {
	// Matches uuid5(NAMESPACE_URL, "https://example.com") from other uuid implementations
	assert.Equal(t, "4fd35a71-71ef-5a55-a9d9-aa75c889a6d0", PointID("https://example.com"))
}

func TestNewJobID_Unique(t *testing.T) {
	assert.NotEqual(t, NewJobID(), NewJobID())
}
