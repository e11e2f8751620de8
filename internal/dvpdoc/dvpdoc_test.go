package dvpdoc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultSampleHasAllFields(t *testing.T) {
	require := require.New(t)
	s := DefaultSample()
	require.NotEmpty(s.Product)
	require.True(s.Amount.IsPositive())
	require.NotEmpty(s.Route)
	require.NotEmpty(s.Warehouse)
}

func TestNewDocumentCarriesGeneratedID(t *testing.T) {
	require := require.New(t)
	doc := NewDocument(DefaultSample())

	id, ok := doc["id"].(string)
	require.True(ok)
	require.NotEmpty(id)
	require.Equal("Widget-Pro-9000", doc["product"])
	require.Equal("WH-EU-04", doc["warehouse"])
}

func TestNewDocumentIDsAreUnique(t *testing.T) {
	require := require.New(t)
	a := NewDocument(DefaultSample())
	b := NewDocument(DefaultSample())
	require.NotEqual(a["id"], b["id"])
}
