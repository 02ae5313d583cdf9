package credential

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prassanna-ravishankar/phlow-go/pkg/apierrors"
)

func TestHTTPResolver_ResolvesDocument(t *testing.T) {
	t.Parallel()

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/did:web:issuer.example", r.URL.Path)
		doc := Document{
			ID: "did:web:issuer.example",
			VerificationMethod: []VerificationMethod{
				{ID: "did:web:issuer.example#key-1", Type: "JsonWebKey2020", PublicKeyJwk: toJWK(t, pub)},
			},
		}
		_ = json.NewEncoder(w).Encode(doc)
	}))
	defer srv.Close()

	resolver := NewHTTPResolver(srv.Client(), srv.URL)
	doc, err := resolver.Resolve(context.Background(), "did:web:issuer.example")
	require.NoError(t, err)
	assert.Equal(t, "did:web:issuer.example", doc.ID)
	require.Len(t, doc.VerificationMethod, 1)
}

func TestHTTPResolver_NotFoundIsIssuerUnresolved(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	resolver := NewHTTPResolver(srv.Client(), srv.URL)
	_, err := resolver.Resolve(context.Background(), "did:web:missing.example")
	require.Error(t, err)
	kind, ok := apierrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apierrors.IssuerUnresolved, kind)
}

func TestHTTPResolver_ServerErrorIsIssuerUnresolved(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	resolver := NewHTTPResolver(srv.Client(), srv.URL)
	_, err := resolver.Resolve(context.Background(), "did:web:issuer.example")
	require.Error(t, err)
	kind, _ := apierrors.KindOf(err)
	assert.Equal(t, apierrors.IssuerUnresolved, kind)
}

type countingResolver struct {
	calls int
	doc   Document
}

func (c *countingResolver) Resolve(context.Context, string) (Document, error) {
	c.calls++
	return c.doc, nil
}

func TestCachedResolver_ServesFromCacheWithinTTL(t *testing.T) {
	t.Parallel()

	inner := &countingResolver{doc: Document{ID: "did:web:issuer.example"}}
	cached := NewCachedResolver(inner, time.Minute)

	_, err := cached.Resolve(context.Background(), "did:web:issuer.example")
	require.NoError(t, err)
	_, err = cached.Resolve(context.Background(), "did:web:issuer.example")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
}

func TestCachedResolver_RefetchesAfterTTL(t *testing.T) {
	t.Parallel()

	inner := &countingResolver{doc: Document{ID: "did:web:issuer.example"}}
	cached := NewCachedResolver(inner, time.Millisecond)

	_, err := cached.Resolve(context.Background(), "did:web:issuer.example")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = cached.Resolve(context.Background(), "did:web:issuer.example")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestVerificationMethod_Key_MissingJWK(t *testing.T) {
	t.Parallel()

	vm := VerificationMethod{ID: "did:web:issuer.example#key-1"}
	_, err := vm.Key()
	require.Error(t, err)
	kind, ok := apierrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apierrors.VerificationMethodNotFound, kind)
}

func TestVerificationMethod_Key_ParsesEd25519JWK(t *testing.T) {
	t.Parallel()

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	key, err := jwk.Import(pub)
	require.NoError(t, err)
	encoded, err := json.Marshal(key)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(encoded, &raw))

	vm := VerificationMethod{ID: "did:web:issuer.example#key-1", PublicKeyJwk: raw}
	resolved, err := vm.Key()
	require.NoError(t, err)
	assert.Equal(t, ed25519.PublicKey(pub), resolved)
}
