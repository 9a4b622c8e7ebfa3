package sse

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_StartSetsHeadersOnce(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(rec)

	w.Start()
	w.Start()

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.True(t, rec.Flushed)
}

func TestWriter_WriteEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(rec)
	w.Start()

	require.NoError(t, w.WriteEvent("transcript", map[string]int{"generation": 2}))
	require.NoError(t, w.WriteComment("ping"))

	assert.Equal(t, "event: transcript\ndata: {\"generation\":2}\n\n: ping\n\n", rec.Body.String())
}

func TestWriter_ClosedRejectsWrites(t *testing.T) {
	w := NewWriter(httptest.NewRecorder())
	w.Close()

	assert.ErrorIs(t, w.WriteEvent("x", 1), ErrClosed)
	assert.ErrorIs(t, w.WriteComment("x"), ErrClosed)
}

func TestWriter_MarshalError(t *testing.T) {
	w := NewWriter(httptest.NewRecorder())
	assert.Error(t, w.WriteEvent("bad", make(chan int)))
}
