package credential

import (
	"context"
	"crypto"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"

	"github.com/prassanna-ravishankar/phlow-go/pkg/apierrors"
)

// VerificationMethod is one entry of a resolved DID document.
type VerificationMethod struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Controller   string         `json:"controller,omitempty"`
	PublicKeyJwk map[string]any `json:"publicKeyJwk,omitempty"`
}

// Key parses the verification method's embedded JWK into a usable public key.
func (vm VerificationMethod) Key() (crypto.PublicKey, error) {
	if vm.PublicKeyJwk == nil {
		return nil, apierrors.NewVerificationMethodNotFound(vm.ID)
	}
	raw, err := json.Marshal(vm.PublicKeyJwk)
	if err != nil {
		return nil, err
	}
	key, err := jwk.ParseKey(raw)
	if err != nil {
		return nil, err
	}
	var pub any
	if err := jwk.Export(key, &pub); err != nil {
		return nil, err
	}
	return pub, nil
}

// Document is a minimal DID document: just enough to locate a
// verification method by fragment-qualified id.
type Document struct {
	ID                 string                `json:"id"`
	VerificationMethod []VerificationMethod  `json:"verificationMethod"`
}

// Find locates the verification method whose id equals methodID.
func (d Document) Find(methodID string) (VerificationMethod, bool) {
	for _, vm := range d.VerificationMethod {
		if vm.ID == methodID {
			return vm, true
		}
	}
	return VerificationMethod{}, false
}

// DIDResolver resolves a DID to its document. Verifier calls its resolver
// through the "didResolver" circuit breaker it is constructed with.
type DIDResolver interface {
	Resolve(ctx context.Context, did string) (Document, error)
}

// HTTPResolver resolves DIDs by fetching a did:web-style document over
// HTTPS. It makes no assumption about method-specific resolution beyond a
// GET to a configured base URL keyed by the DID string, which is
// sufficient for the core's purposes and mirrors how the DID registry
// endpoint is expected to be fronted.
type HTTPResolver struct {
	client  *http.Client
	baseURL string
}

// NewHTTPResolver constructs a resolver that issues GET {baseURL}/{did}.
func NewHTTPResolver(client *http.Client, baseURL string) *HTTPResolver {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPResolver{client: client, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Resolve implements DIDResolver.
func (r *HTTPResolver) Resolve(ctx context.Context, did string) (Document, error) {
	url := fmt.Sprintf("%s/%s", r.baseURL, did)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Document{}, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Document{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Document{}, apierrors.NewIssuerUnresolved(did, nil)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return Document{}, apierrors.NewIssuerUnresolved(did, fmt.Errorf("status %d: %s", resp.StatusCode, body))
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return Document{}, apierrors.NewIssuerUnresolved(did, err)
	}
	return doc, nil
}

type cachedDoc struct {
	doc       Document
	expiresAt time.Time
}

// CachedResolver wraps another resolver with a process-wide TTL cache,
// keyed by DID, matching PHLOW_DID_CACHE_TTL_MS (§6).
type CachedResolver struct {
	inner DIDResolver
	ttl   time.Duration

	mu    sync.Mutex
	cache map[string]cachedDoc
}

// NewCachedResolver wraps inner with a cache of the given TTL.
func NewCachedResolver(inner DIDResolver, ttl time.Duration) *CachedResolver {
	return &CachedResolver{inner: inner, ttl: ttl, cache: make(map[string]cachedDoc)}
}

// Resolve implements DIDResolver, serving from cache when fresh.
func (c *CachedResolver) Resolve(ctx context.Context, did string) (Document, error) {
	c.mu.Lock()
	entry, ok := c.cache[did]
	c.mu.Unlock()
	if ok && entry.expiresAt.After(time.Now()) {
		return entry.doc, nil
	}

	doc, err := c.inner.Resolve(ctx, did)
	if err != nil {
		return Document{}, err
	}

	c.mu.Lock()
	c.cache[did] = cachedDoc{doc: doc, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return doc, nil
}
