package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecordTiming(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(OpDriveUpload, 10*time.Millisecond, nil)
	c.RecordTiming(OpDriveUpload, 30*time.Millisecond, errors.New("boom"))

	snap := c.Snapshot()
	require.NotNil(t, snap.DriveUpload)
	assert.Equal(t, int64(2), snap.DriveUpload.Count)
	assert.Equal(t, int64(1), snap.DriveUpload.Errors)
	assert.Equal(t, int64(10), snap.DriveUpload.MinTimeMs)
	assert.Equal(t, int64(30), snap.DriveUpload.MaxTimeMs)
	assert.Equal(t, 20.0, snap.DriveUpload.AvgTimeMs)
	assert.Nil(t, snap.DriveUpload.TotalInputTokens)
	assert.Nil(t, snap.LLMGenerate)
}

func TestCollectorRecordLLMUsage(t *testing.T) {
	c := NewCollector()
	c.RecordLLMUsage(OpLLMGenerate, time.Second, 100, 40, nil)
	c.RecordLLMUsage(OpLLMGenerate, time.Second, 50, 20, nil)

	snap := c.Snapshot()
	require.NotNil(t, snap.LLMGenerate)
	require.NotNil(t, snap.LLMGenerate.TotalInputTokens)
	assert.Equal(t, int64(150), *snap.LLMGenerate.TotalInputTokens)
	assert.Equal(t, int64(60), *snap.LLMGenerate.TotalOutputTokens)
	assert.Equal(t, 75.0, *snap.LLMGenerate.AvgInputTokens)
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.RecordTiming(OpStoreQuery, time.Millisecond, nil)
	c.RecordLLMUsage(OpLLMGenerate, time.Millisecond, 1, 1, nil)
	assert.Equal(t, Snapshot{}, c.Snapshot())
}
