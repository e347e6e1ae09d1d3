package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/habit-api/internal/domain"
	"github.com/phrazzld/habit-api/internal/store"
)

type purchaseStore struct {
	v view
}

var _ store.PurchaseStore = (*purchaseStore)(nil)

func (s *purchaseStore) Create(ctx context.Context, purchase *domain.Purchase) error {
	if err := purchase.Validate(); err != nil {
		return err
	}
	return s.v.write(func(st *state) error {
		for _, p := range st.purchases[purchase.UserID] {
			if p.ItemID == purchase.ItemID {
				return store.ErrItemAlreadyOwned
			}
		}
		st.purchases[purchase.UserID] = append(st.purchases[purchase.UserID], *purchase)
		return nil
	})
}

func (s *purchaseStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Purchase, error) {
	purchases := make([]*domain.Purchase, 0)
	err := s.v.read(func(st *state) error {
		for _, p := range st.purchases[userID] {
			purchase := p
			purchases = append(purchases, &purchase)
		}
		return nil
	})
	return purchases, err
}
