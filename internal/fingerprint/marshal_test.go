package fingerprint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() map[string]*Record {
	page := newRecord("page.md", baseTime, false, false)
	feed := newRecord("virtual/feed.xml", baseTime.Add(time.Minute), true, false)
	feed.addDependency("page.md")
	feed.addDependency("layout.html")
	forced := newRecord("always.md", baseTime, false, true)
	return map[string]*Record{
		"page.md":          page,
		"virtual/feed.xml": feed,
		"always.md":        forced,
	}
}

func TestMarshalRecords_Deterministic(t *testing.T) {
	first, err := marshalRecords(sampleRecords(), "run-1")
	require.NoError(t, err)
	second, err := marshalRecords(sampleRecords(), "run-1")
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical stores must produce identical bytes")
}

func TestMarshalRecords_RoundTrip(t *testing.T) {
	data, err := marshalRecords(sampleRecords(), "run-1")
	require.NoError(t, err)

	records, runID, err := unmarshalRecords(data)
	require.NoError(t, err)
	assert.Equal(t, "run-1", runID)
	require.Len(t, records, 3)

	feed := records["virtual/feed.xml"]
	require.NotNil(t, feed)
	assert.True(t, feed.Dynamic)
	assert.True(t, feed.SeenBefore, "re-materialized records are trusted")
	assert.True(t, feed.LastModified.Equal(baseTime.Add(time.Minute)))
	assert.Equal(t, []string{"layout.html", "page.md"}, feed.DependencyList())

	assert.True(t, records["always.md"].Forced)
	assert.False(t, records["page.md"].Dynamic)
}

func TestUnmarshalRecords_Corrupt(t *testing.T) {
	_, _, err := unmarshalRecords([]byte("{not json"))
	assert.Error(t, err)
}

func TestUnmarshalRecords_VersionMismatch(t *testing.T) {
	_, _, err := unmarshalRecords([]byte(`{"version": 99, "records": {}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version")
}
