package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/greenthumb/internal/botanist"
)

const roseJSON = `{"name":"Rose","scientificName":"Rosa","description":"A shrub.",` +
	`"care":{"water":"Twice weekly","sun":"Full Sun","soil":"Loamy","temperature":"15-25C","fertilizer":"Monthly"},` +
	`"funFact":"Related to apples.","problems":["Aphids","Black spot"]}`

// fakeGemini answers generateContent calls with queued texts and keeps the
// decoded request bodies.
type fakeGemini struct {
	mu       sync.Mutex
	replies  []string
	requests []map[string]any
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	f.requests = append(f.requests, req)
	text := ""
	if len(f.replies) > 0 {
		text, f.replies = f.replies[0], f.replies[1:]
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"role":  "model",
				"parts": []map[string]any{{"text": text}},
			},
			"finishReason": "STOP",
		}},
	})
}

func newTestBotanist(t *testing.T, replies ...string) (*GeminiBotanist, *fakeGemini) {
	t.Helper()
	fake := &fakeGemini{replies: replies}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	b, err := NewGeminiBotanist(context.Background(), "test-key", "gemini-3-pro-preview", server.URL)
	require.NoError(t, err)
	return b, fake
}

func TestGeminiIdentify(t *testing.T) {
	b, fake := newTestBotanist(t, roseJSON)

	record, err := b.Identify(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "Rose", record.Name)
	assert.Equal(t, "Rosa", record.ScientificName)
	assert.Equal(t, []string{"Aphids", "Black spot"}, record.Problems)

	require.Len(t, fake.requests, 1)
	cfg, ok := fake.requests[0]["generationConfig"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "application/json", cfg["responseMimeType"])
	assert.NotNil(t, cfg["responseSchema"])
	assert.NotNil(t, fake.requests[0]["systemInstruction"])
}

func TestGeminiIdentifyEmpty(t *testing.T) {
	b, _ := newTestBotanist(t, "")

	_, err := b.Identify(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")
	assert.ErrorIs(t, err, botanist.ErrEmptyResponse)
}

func TestGeminiIdentifyAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`))
	}))
	defer server.Close()

	b, err := NewGeminiBotanist(context.Background(), "test-key", "gemini-3-pro-preview", server.URL)
	require.NoError(t, err)

	_, err = b.Identify(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")
	var extErr *botanist.ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, "request", extErr.Op)
}

func TestGeminiChat(t *testing.T) {
	b, fake := newTestBotanist(t, "Twice a week.", "Bright, indirect light.")

	conv, err := b.StartChat(context.Background(), "You are GreenThumb.")
	require.NoError(t, err)

	reply, err := conv.Send(context.Background(), "How often should I water?")
	require.NoError(t, err)
	assert.Equal(t, "Twice a week.", reply)

	reply, err = conv.Send(context.Background(), "Light?")
	require.NoError(t, err)
	assert.Equal(t, "Bright, indirect light.", reply)

	require.Len(t, fake.requests, 2)
	contents, ok := fake.requests[1]["contents"].([]any)
	require.True(t, ok)
	// user, model, user
	assert.Len(t, contents, 3)
}

func TestRecordSchemaMatchesShared(t *testing.T) {
	s := recordSchema()

	assert.ElementsMatch(t, botanist.RequiredFields, s.Required)
	assert.ElementsMatch(t, botanist.RequiredCareFields, s.Properties["care"].Required)
	assert.Len(t, s.Properties, len(botanist.RequiredFields))
}
