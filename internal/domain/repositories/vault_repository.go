package repositories

import (
	"context"

	"sbtc-heritage.backend/internal/domain/entities"
)

// VaultRepository resolves vaults from the ledger. Implementations own a
// local cache that is advisory only: a cached snapshot is never the sole
// basis for a lifecycle decision, and any mutating call invalidates it.
type VaultRepository interface {
	ListForOwner(ctx context.Context, owner string) ([]*entities.Vault, error)
	Get(ctx context.Context, vaultID string) (*entities.Vault, error)
	TotalVaults(ctx context.Context) (uint64, error)
	// Invalidate drops the cache entry for the vault; the next read
	// goes to the ledger.
	Invalidate(vaultID string)
	// CacheSize reports resident advisory entries (admin surface).
	CacheSize() int
}

// TransactionLogRepository is the append-only audit log of submitted
// calls and their confirmation status.
type TransactionLogRepository interface {
	Append(ctx context.Context, tx *entities.VaultTransaction) error
	ListByVault(ctx context.Context, vaultID string, limit, offset int) ([]*entities.VaultTransaction, int, error)
	ListPending(ctx context.Context, limit int) ([]*entities.VaultTransaction, error)
	// SetStatus applies the only legal mutation: pending -> confirmed/failed.
	SetStatus(ctx context.Context, txRef string, status entities.TransactionStatus, blockHeight uint64) error
}
