package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"sbtc-heritage.backend/internal/domain/entities"
	domainerrors "sbtc-heritage.backend/internal/domain/errors"
	"sbtc-heritage.backend/internal/infrastructure/blockchain"
	"sbtc-heritage.backend/internal/infrastructure/codec"
	"sbtc-heritage.backend/pkg/clarity"
	"sbtc-heritage.backend/pkg/logger"
)

// VaultRepository resolves vaults from the ledger contract. The local
// cache is advisory: entries are dropped, never updated, on invalidation
// and the next read always goes back to the ledger.
type VaultRepository struct {
	client      *blockchain.StacksClient
	readRetries int

	mu    sync.RWMutex
	cache map[string]*entities.Vault
}

// NewVaultRepository creates a ledger-backed vault repository.
func NewVaultRepository(client *blockchain.StacksClient, readRetries int) *VaultRepository {
	if readRetries < 1 {
		readRetries = 1
	}
	return &VaultRepository{
		client:      client,
		readRetries: readRetries,
		cache:       make(map[string]*entities.Vault),
	}
}

// Get returns one vault, preferring the cache until it is invalidated.
func (r *VaultRepository) Get(ctx context.Context, vaultID string) (*entities.Vault, error) {
	r.mu.RLock()
	cached, ok := r.cache[vaultID]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	vault, err := r.fetch(ctx, vaultID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[vaultID] = vault
	r.mu.Unlock()
	return vault, nil
}

func (r *VaultRepository) fetch(ctx context.Context, vaultID string) (*entities.Vault, error) {
	result, err := r.readWithRetry(ctx, blockchain.FnGetVault, []clarity.Value{clarity.String(vaultID)})
	if err != nil {
		return nil, err
	}

	vault, found, err := codec.DecodeVaultResponse(result)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("vault %s: %w", vaultID, domainerrors.ErrNotFound)
	}

	// Defense against a corrupted or adversarial write: re-check the
	// allocation invariants on what the ledger handed back. The vault
	// is still returned; the violation is surfaced in logs.
	if ierr := vault.CheckInvariants(); ierr != nil {
		logger.Warn(ctx, "decoded vault violates invariants",
			zap.String("vault_id", vaultID), zap.Error(ierr))
	}
	return vault, nil
}

// ListForOwner resolves the owner's vault set. The owner index is the
// primary path; an index outage falls back to a bounded map scan. When
// both are unavailable the failure is hard: no id guessing.
func (r *VaultRepository) ListForOwner(ctx context.Context, owner string) ([]*entities.Vault, error) {
	ids, indexErr := r.listIDsByIndex(ctx, owner)
	if indexErr == nil {
		vaults := make([]*entities.Vault, 0, len(ids))
		for _, id := range ids {
			vault, err := r.Get(ctx, id)
			if err != nil {
				if errors.Is(err, domainerrors.ErrNotFound) {
					// Index can be momentarily ahead of the map.
					continue
				}
				return nil, err
			}
			vaults = append(vaults, vault)
		}
		return vaults, nil
	}

	logger.Warn(ctx, "owner index unavailable, scanning vault map",
		zap.String("owner", owner), zap.Error(indexErr))

	vaults, scanErr := r.scanByOwner(ctx, owner)
	if scanErr != nil {
		return nil, fmt.Errorf("index failed (%v), scan failed (%v): %w",
			indexErr, scanErr, domainerrors.ErrIndexUnavailable)
	}
	return vaults, nil
}

func (r *VaultRepository) listIDsByIndex(ctx context.Context, owner string) ([]string, error) {
	result, err := r.readWithRetry(ctx, blockchain.FnGetUserVaults, []clarity.Value{clarity.Principal(owner)})
	if err != nil {
		return nil, err
	}
	return codec.DecodeVaultIDList(result)
}

func (r *VaultRepository) scanByOwner(ctx context.Context, owner string) ([]*entities.Vault, error) {
	total, err := r.TotalVaults(ctx)
	if err != nil {
		return nil, err
	}

	var vaults []*entities.Vault
	for i := uint64(0); i < total; i++ {
		result, err := r.readWithRetry(ctx, blockchain.FnGetVaultByIndex, []clarity.Value{clarity.Uint(i)})
		if err != nil {
			return nil, err
		}
		vault, found, err := codec.DecodeVaultResponse(result)
		if err != nil {
			return nil, err
		}
		if !found || vault.Owner != owner {
			continue
		}
		vaults = append(vaults, vault)
	}
	return vaults, nil
}

// TotalVaults returns the contract's vault count.
func (r *VaultRepository) TotalVaults(ctx context.Context) (uint64, error) {
	result, err := r.readWithRetry(ctx, blockchain.FnGetTotalVaults, nil)
	if err != nil {
		return 0, err
	}
	return codec.DecodeUint(result)
}

// Invalidate drops the cache entry. Entries are removed, not updated;
// the next Get re-fetches from the ledger.
func (r *VaultRepository) Invalidate(vaultID string) {
	r.mu.Lock()
	delete(r.cache, vaultID)
	r.mu.Unlock()
}

// CacheSize reports resident advisory entries.
func (r *VaultRepository) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// readWithRetry retries idempotent reads on transport failure with a
// capped backoff. Decode failures and ledger rejections are final.
func (r *VaultRepository) readWithRetry(ctx context.Context, fn string, args []clarity.Value) (clarity.Value, error) {
	backoff := 100 * time.Millisecond
	var lastErr error
	for attempt := 0; attempt < r.readRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return clarity.Value{}, ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 2*time.Second {
				backoff *= 2
			}
		}

		result, err := r.client.CallReadOnly(ctx, fn, args)
		if err == nil {
			return result, nil
		}
		var de *clarity.DecodeError
		if errors.As(err, &de) {
			return clarity.Value{}, err
		}
		lastErr = err
	}
	return clarity.Value{}, lastErr
}
