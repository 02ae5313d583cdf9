package registry

import (
	"context"
	"errors"
	"time"

	"github.com/prassanna-ravishankar/phlow-go/pkg/apierrors"
	"github.com/prassanna-ravishankar/phlow-go/pkg/breaker"
)

// Client is the breaker-wrapped registry adapter the pipeline depends on.
type Client struct {
	store   Store
	breaker *breaker.Breaker
}

// NewClient wraps store with the named "registry" breaker.
func NewClient(store Store, b *breaker.Breaker) *Client {
	return &Client{store: store, breaker: b}
}

// GetAgentCard returns the card, or (nil, nil) on ErrNotFound. Any other
// failure is wrapped as RegistryUnavailable.
func (c *Client) GetAgentCard(ctx context.Context, agentID string) (*AgentCard, error) {
	var card AgentCard
	var notFound bool
	err := c.breaker.Call(ctx, func(ctx context.Context) error {
		var storeErr error
		card, storeErr = c.store.GetAgentCard(ctx, agentID)
		if errors.Is(storeErr, ErrNotFound) {
			notFound = true
			return nil
		}
		return storeErr
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if notFound {
		return nil, nil
	}
	return &card, nil
}

// RecordAuthEvent is a fire-and-forget, best-effort write: a failure here
// never fails a request that has otherwise succeeded (§7).
func (c *Client) RecordAuthEvent(ctx context.Context, event AuthEvent) error {
	return c.breaker.Call(ctx, func(ctx context.Context) error {
		return c.store.InsertAuthEvent(ctx, event)
	})
}

// GetVerifiedRole returns the row, or (nil, nil) if absent or expired.
func (c *Client) GetVerifiedRole(ctx context.Context, agentID, role string) (*VerifiedRole, error) {
	var row VerifiedRole
	var notFound bool
	err := c.breaker.Call(ctx, func(ctx context.Context) error {
		var storeErr error
		row, storeErr = c.store.GetVerifiedRole(ctx, agentID, role)
		if errors.Is(storeErr, ErrNotFound) {
			notFound = true
			return nil
		}
		return storeErr
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if notFound || row.Expired(time.Now()) {
		return nil, nil
	}
	return &row, nil
}

// UpsertVerifiedRole writes row, keyed by the unique (agentId, role) pair.
func (c *Client) UpsertVerifiedRole(ctx context.Context, row VerifiedRole) error {
	return c.breaker.Call(ctx, func(ctx context.Context) error {
		return c.store.UpsertVerifiedRole(ctx, row)
	})
}

// GetDIDPublicKey returns a cached DID key, or (nil, nil) if absent. The
// resolvers in pkg/credential do not read this table.
func (c *Client) GetDIDPublicKey(ctx context.Context, did, keyFragment string) (*DIDPublicKey, error) {
	var key DIDPublicKey
	var notFound bool
	err := c.breaker.Call(ctx, func(ctx context.Context) error {
		var storeErr error
		key, storeErr = c.store.GetDIDPublicKey(ctx, did, keyFragment)
		if errors.Is(storeErr, ErrNotFound) {
			notFound = true
			return nil
		}
		return storeErr
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if notFound {
		return nil, nil
	}
	return &key, nil
}

// PutDIDPublicKey writes a resolved DID key to the cache.
func (c *Client) PutDIDPublicKey(ctx context.Context, key DIDPublicKey) error {
	return c.breaker.Call(ctx, func(ctx context.Context) error {
		return c.store.PutDIDPublicKey(ctx, key)
	})
}

func wrapStoreErr(err error) error {
	if _, ok := apierrors.KindOf(err); ok {
		// already CircuitOpen/OperationTimeout/Cancelled from the breaker.
		return err
	}
	return apierrors.NewRegistryUnavailable(err)
}
