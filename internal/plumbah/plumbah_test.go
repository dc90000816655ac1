package plumbah

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galdi-project/galdi/internal/galerr"
)

func TestWrap_RequiredFieldsPresent(t *testing.T) {
	start := Start()
	time.Sleep(time.Millisecond)
	obj := Wrap(Declared{Deterministic: true, Safe: true}, start)

	assert.Equal(t, EnvelopeVersion, obj.Version)
	assert.Equal(t, StatusOK, obj.Status)
	assert.Equal(t, Level, obj.Meta.PlumbahLevel)
	assert.Equal(t, ToolName, obj.Meta.Tool)
	assert.GreaterOrEqual(t, obj.Meta.ExecutionTimeMs, int64(0))
	assert.Nil(t, obj.Error)

	_, err := time.Parse(time.RFC3339Nano, obj.Meta.Timestamp)
	require.NoError(t, err)
}

func TestWrapError_CarriesKindAndPath(t *testing.T) {
	start := Start()
	obj := WrapError(galerr.KindAlgorithmMismatch, "mismatched algorithms", "/tmp/x", Declared{}, start)

	assert.Equal(t, StatusError, obj.Status)
	require.NotNil(t, obj.Error)
	assert.Equal(t, galerr.KindAlgorithmMismatch, obj.Error.Kind)
	assert.Equal(t, "/tmp/x", obj.Error.Path)
}

func TestObject_SiblingNotWrapper(t *testing.T) {
	// The envelope must serialize as a sibling field, never nesting the
	// annotated document's own fields underneath it.
	type document struct {
		Plumbah Object `json:"$plumbah"`
		Version string `json:"version"`
		Count   int    `json:"count"`
	}

	doc := document{
		Plumbah: Wrap(Declared{}, Start()),
		Version: "1.0",
		Count:   3,
	}

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Contains(t, decoded, "$plumbah")
	assert.Equal(t, "1.0", decoded["version"])
	assert.Equal(t, float64(3), decoded["count"])
	assert.NotContains(t, decoded, "result")
	assert.NotContains(t, decoded, "data")
}

func TestErrorEnvelope_NoResultFields(t *testing.T) {
	obj := WrapError(galerr.KindIO, "boom", "/x", Declared{}, Start())
	raw, err := json.Marshal(obj)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "error", decoded["status"])
	assert.Contains(t, decoded, "error")
	assert.NotContains(t, decoded, "result")
	assert.NotContains(t, decoded, "data")
}
