package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"sbtc-heritage.backend/internal/domain/entities"
	domainerrors "sbtc-heritage.backend/internal/domain/errors"
	"sbtc-heritage.backend/internal/infrastructure/models"
)

// TransactionLogRepository persists the append-only audit log in the
// database.
type TransactionLogRepository struct {
	db *gorm.DB
}

// NewTransactionLogRepository creates the audit log repository.
func NewTransactionLogRepository(db *gorm.DB) *TransactionLogRepository {
	return &TransactionLogRepository{db: db}
}

// Append stores a new audit record. Records are never deleted.
func (r *TransactionLogRepository) Append(ctx context.Context, tx *entities.VaultTransaction) error {
	m := toModel(tx)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	tx.ID = m.ID
	tx.CreatedAt = m.CreatedAt
	tx.UpdatedAt = m.UpdatedAt
	return nil
}

// ListByVault returns audit records for one vault, newest first.
func (r *TransactionLogRepository) ListByVault(ctx context.Context, vaultID string, limit, offset int) ([]*entities.VaultTransaction, int, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.VaultTransaction{}).
		Where("vault_id = ?", vaultID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.VaultTransaction
	if err := r.db.WithContext(ctx).
		Where("vault_id = ?", vaultID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	txs := make([]*entities.VaultTransaction, 0, len(ms))
	for i := range ms {
		txs = append(txs, toEntity(&ms[i]))
	}
	return txs, int(total), nil
}

// ListPending returns unconfirmed records, oldest first, for the poller.
func (r *TransactionLogRepository) ListPending(ctx context.Context, limit int) ([]*entities.VaultTransaction, error) {
	var ms []models.VaultTransaction
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(entities.TxPending)).
		Order("created_at ASC").
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}

	txs := make([]*entities.VaultTransaction, 0, len(ms))
	for i := range ms {
		txs = append(txs, toEntity(&ms[i]))
	}
	return txs, nil
}

// SetStatus applies the pending -> confirmed/failed transition.
func (r *TransactionLogRepository) SetStatus(ctx context.Context, txRef string, status entities.TransactionStatus, blockHeight uint64) error {
	updates := map[string]interface{}{
		"status":     string(status),
		"updated_at": time.Now(),
	}
	if blockHeight > 0 {
		updates["block_height"] = blockHeight
	}

	result := r.db.WithContext(ctx).Model(&models.VaultTransaction{}).
		Where("tx_ref = ? AND status = ?", txRef, string(entities.TxPending)).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Already transitioned, or unknown ref.
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.VaultTransaction{}).
			Where("tx_ref = ?", txRef).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrNotFound
		}
	}
	return nil
}

// Migrate creates the audit table.
func (r *TransactionLogRepository) Migrate() error {
	return r.db.AutoMigrate(&models.VaultTransaction{})
}

func toModel(tx *entities.VaultTransaction) *models.VaultTransaction {
	m := &models.VaultTransaction{
		ID:        tx.ID,
		VaultID:   tx.VaultID,
		Principal: tx.Principal,
		Type:      string(tx.Type),
		Status:    string(tx.Status),
		TxRef:     tx.TxRef,
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if tx.AmountSats.Valid {
		v := tx.AmountSats.Uint64
		m.AmountSats = &v
	}
	if tx.BeneficiaryIndex.Valid {
		v := tx.BeneficiaryIndex.Uint64
		m.BeneficiaryIndex = &v
	}
	if tx.BlockHeight.Valid {
		v := tx.BlockHeight.Uint64
		m.BlockHeight = &v
	}
	return m
}

func toEntity(m *models.VaultTransaction) *entities.VaultTransaction {
	return &entities.VaultTransaction{
		ID:               m.ID,
		VaultID:          m.VaultID,
		Principal:        m.Principal,
		Type:             entities.TransactionType(m.Type),
		AmountSats:       null.Uint64FromPtr(m.AmountSats),
		BeneficiaryIndex: null.Uint64FromPtr(m.BeneficiaryIndex),
		Status:           entities.TransactionStatus(m.Status),
		TxRef:            m.TxRef,
		BlockHeight:      null.Uint64FromPtr(m.BlockHeight),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
