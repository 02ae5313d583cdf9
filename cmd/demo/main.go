// Command demo wires C1-C9 together end to end against an in-memory
// registry and an in-process peer, then serves them behind the optional
// net/http host integration. It exists for local smoke-testing of the
// authentication core, not as a deployable service.
package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"log"
	"net/http"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"

	"github.com/prassanna-ravishankar/phlow-go/internal/logging"
	"github.com/prassanna-ravishankar/phlow-go/pkg/breaker"
	"github.com/prassanna-ravishankar/phlow-go/pkg/credential"
	"github.com/prassanna-ravishankar/phlow-go/pkg/httpadapter"
	"github.com/prassanna-ravishankar/phlow-go/pkg/observability"
	"github.com/prassanna-ravishankar/phlow-go/pkg/pipeline"
	"github.com/prassanna-ravishankar/phlow-go/pkg/ratelimit"
	"github.com/prassanna-ravishankar/phlow-go/pkg/registry"
	"github.com/prassanna-ravishankar/phlow-go/pkg/registry/memstore"
	"github.com/prassanna-ravishankar/phlow-go/pkg/roleexchange"
	"github.com/prassanna-ravishankar/phlow-go/pkg/token"
)

const selfAgentID = "alice"
const peerAgentID = "bob"
const peerDID = "did:web:bob.example.com"
const peerVerificationMethod = peerDID + "#key-1"

// inProcessTransport simulates a peer reachable over the network by calling
// the client-side handler directly against an in-memory credential store.
type inProcessTransport struct {
	store      roleexchange.CredentialStore
	privateKey any
}

func (t *inProcessTransport) Send(ctx context.Context, _ string, req roleexchange.RoleRequest) (roleexchange.RoleResponse, error) {
	return roleexchange.HandleRoleRequest(ctx, t.store, t.privateKey, req)
}

type memoryCredentialStore struct {
	credentials map[string]credential.Credential
}

func (s *memoryCredentialStore) CredentialFor(_ context.Context, role string) (credential.Credential, bool, error) {
	cred, ok := s.credentials[role]
	return cred, ok, nil
}

type staticDIDResolver struct {
	docs map[string]credential.Document
}

func (r *staticDIDResolver) Resolve(_ context.Context, did string) (credential.Document, error) {
	doc, ok := r.docs[did]
	if !ok {
		return credential.Document{}, nil
	}
	return doc, nil
}

func newBreaker(name string) *breaker.Breaker {
	return breaker.New(name, breaker.Config{
		FailureThreshold:       5,
		RecoveryMillis:         60 * time.Second,
		OperationTimeoutMillis: 15 * time.Second,
		OnStateChange:          observability.BreakerStateChangeFunc(),
	})
}

func jwkOf(pub *rsa.PublicKey) map[string]any {
	key, err := jwk.Import(pub)
	if err != nil {
		log.Fatalf("jwk.Import: %v", err)
	}
	encoded, err := json.Marshal(key)
	if err != nil {
		log.Fatalf("marshal jwk: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(encoded, &raw); err != nil {
		log.Fatalf("unmarshal jwk: %v", err)
	}
	return raw
}

func pemOf(pub *rsa.PublicKey) string {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		log.Fatalf("marshal public key: %v", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func mustRSAKey() *rsa.PrivateKey {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		log.Fatalf("generate key: %v", err)
	}
	return key
}

func main() {
	selfKey := mustRSAKey()
	peerKey := mustRSAKey()
	issuerKey := mustRSAKey()

	store := memstore.New()
	store.PutAgentCard(registry.AgentCard{
		AgentID:     peerAgentID,
		Name:        "bob",
		Description: "billing agent",
		PublicKey:   pemOf(&peerKey.PublicKey),
		ServiceURL:  "https://bob.example.com",
		Skills:      []string{"billing.read"},
	})

	reg := registry.NewClient(store, newBreaker("registry"))

	didResolver := &staticDIDResolver{docs: map[string]credential.Document{
		peerDID: {
			ID: peerDID,
			VerificationMethod: []credential.VerificationMethod{
				{ID: peerVerificationMethod, Type: "JsonWebKey2020", Controller: peerDID, PublicKeyJwk: jwkOf(&issuerKey.PublicKey)},
			},
		},
	}}
	cachedResolver := credential.NewCachedResolver(didResolver, time.Hour)
	verifier := credential.NewVerifier(cachedResolver, newBreaker("didResolver"))

	heldCredential := credential.Credential{
		Issuer:            peerDID,
		IssuanceDate:      time.Now().Format(time.RFC3339),
		ExpirationDate:    time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		CredentialSubject: credential.CredentialSubject{ID: peerAgentID, Role: "billing-admin"},
		Proof: credential.Proof{
			Type:               "RsaSignature2018",
			VerificationMethod: peerVerificationMethod,
			ProofPurpose:       "assertionMethod",
		},
	}
	signedCredential, err := credential.Sign(heldCredential, issuerKey)
	if err != nil {
		log.Fatalf("sign credential: %v", err)
	}

	credentialStore := &memoryCredentialStore{credentials: map[string]credential.Credential{
		"billing-admin": signedCredential,
	}}
	transport := &inProcessTransport{store: credentialStore, privateKey: peerKey}

	limiter := ratelimit.NewMemoryLimiter(map[string]ratelimit.Config{
		"auth": {MaxRequests: 100, Window: time.Minute},
		"role": {MaxRequests: 20, Window: time.Minute},
	})

	exchanger := roleexchange.NewExchanger(reg, verifier, transport, newBreaker("peerMessaging"), limiter, time.Hour)

	p := pipeline.New(selfAgentID, limiter, token.NewCodec(), reg, exchanger)

	selfCard := registry.AgentCard{
		AgentID:     selfAgentID,
		Name:        "alice",
		Description: "demo authentication core",
		PublicKey:   pemOf(&selfKey.PublicKey),
		ServiceURL:  "https://alice.example.com",
		Skills:      []string{"auth.demo"},
	}

	mux := http.NewServeMux()
	mux.Handle("/.well-known/agent.json", httpadapter.AgentCardHandler(selfCard))
	mux.Handle("/billing", httpadapter.Middleware(p, func(*http.Request) pipeline.Options {
		return pipeline.Options{RequiredRole: "billing-admin"}
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCtx, _ := httpadapter.FromRequest(r)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"agentId":       authCtx.Agent.AgentID,
			"verifiedRoles": authCtx.VerifiedRoles,
			"requestId":     authCtx.RequestID,
		})
	})))

	logging.Info("demo token for bob->alice", "token", mustDemoToken(peerKey))
	logging.Info("serving demo authentication core", "addr", ":8080")
	if err := http.ListenAndServe(":8080", mux); err != nil {
		log.Fatal(err)
	}
}

func mustDemoToken(priv *rsa.PrivateKey) string {
	codec := token.NewCodec()
	signed, err := codec.SignWithTTL(token.Claims{
		Subject:  peerAgentID,
		Issuer:   peerAgentID,
		Audience: selfAgentID,
	}, priv, time.Hour)
	if err != nil {
		log.Fatalf("sign demo token: %v", err)
	}
	return signed
}
