package httpadapter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prassanna-ravishankar/phlow-go/pkg/registry"
)

func TestAgentCardHandler_ServesDocumentedShape(t *testing.T) {
	t.Parallel()

	card := registry.AgentCard{
		AgentID:     "alice",
		Name:        "alice",
		Description: "billing service agent",
		ServiceURL:  "https://alice.example.com",
		PublicKey:   "-----BEGIN PUBLIC KEY-----\n...\n-----END PUBLIC KEY-----",
		Skills:      []string{"billing.read", "billing.write"},
		Metadata:    map[string]any{"team": "payments"},
	}

	req := httptest.NewRequest(http.MethodGet, "/.well-known/agent.json", nil)
	rec := httptest.NewRecorder()

	AgentCardHandler(card).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))

	assert.Equal(t, "1.0", doc["schemaVersion"])
	assert.Equal(t, "alice", doc["name"])
	assert.Equal(t, "billing service agent", doc["description"])
	assert.Equal(t, "https://alice.example.com", doc["serviceUrl"])
	assert.Equal(t, card.PublicKey, doc["publicKey"])

	skills, ok := doc["skills"].([]any)
	require.True(t, ok)
	require.Len(t, skills, 2)
	first, ok := skills[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "billing.read", first["name"])

	schemes, ok := doc["securitySchemes"].(map[string]any)
	require.True(t, ok)
	bearer, ok := schemes["bearer"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "bearer", bearer["type"])
	assert.Equal(t, "bearer", bearer["scheme"])

	metadata, ok := doc["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "payments", metadata["team"])
}

func TestAgentCardHandler_OmitsEmptyDescriptionAndMetadata(t *testing.T) {
	t.Parallel()

	card := registry.AgentCard{AgentID: "alice", Name: "alice", PublicKey: "pem"}

	req := httptest.NewRequest(http.MethodGet, "/.well-known/agent.json", nil)
	rec := httptest.NewRecorder()

	AgentCardHandler(card).ServeHTTP(rec, req)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))

	_, hasDescription := doc["description"]
	assert.False(t, hasDescription)
	_, hasMetadata := doc["metadata"]
	assert.False(t, hasMetadata)
	assert.Equal(t, []any{}, doc["skills"])
}
