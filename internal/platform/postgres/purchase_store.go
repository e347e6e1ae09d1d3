package postgres

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/habit-api/internal/domain"
	"github.com/phrazzld/habit-api/internal/store"
)

// PostgresPurchaseStore implements the store.PurchaseStore interface.
type PostgresPurchaseStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPurchaseStore creates a new PostgreSQL implementation of the PurchaseStore interface.
func NewPostgresPurchaseStore(db store.DBTX, logger *slog.Logger) *PostgresPurchaseStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPurchaseStore{
		db:     db,
		logger: logger.With(slog.String("component", "purchase_store")),
	}
}

var _ store.PurchaseStore = (*PostgresPurchaseStore)(nil)

// Create implements store.PurchaseStore.Create
func (s *PostgresPurchaseStore) Create(ctx context.Context, purchase *domain.Purchase) error {
	if err := purchase.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO purchased_items (user_id, item_id, price, purchased_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query,
		purchase.UserID, purchase.ItemID, purchase.Price, purchase.PurchasedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return MapUniqueViolation(err, store.ErrItemAlreadyOwned)
		}
		s.logger.Error("failed to insert purchase",
			slog.String("user_id", purchase.UserID.String()),
			slog.String("item_id", purchase.ItemID),
			slog.String("error", err.Error()))
		return storeError("purchase", "create", "failed to insert purchase", err)
	}
	return nil
}

// ListByUser implements store.PurchaseStore.ListByUser
func (s *PostgresPurchaseStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Purchase, error) {
	query := `
		SELECT item_id, price, purchased_at FROM purchased_items
		WHERE user_id = $1
		ORDER BY purchased_at, item_id
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, storeError("purchase", "list", "failed to query purchases", err)
	}
	defer func() { _ = rows.Close() }()

	purchases := make([]*domain.Purchase, 0)
	for rows.Next() {
		p := domain.Purchase{UserID: userID}
		if err := rows.Scan(&p.ItemID, &p.Price, &p.PurchasedAt); err != nil {
			return nil, storeError("purchase", "list", "failed to scan purchase", err)
		}
		purchases = append(purchases, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("purchase", "list", "failed to iterate purchases", err)
	}
	return purchases, nil
}
