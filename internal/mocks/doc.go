// Package mocks provides centralized mock implementations for testing.
//
// Each mock has a function field per interface method plus default return
// values used when the function is not set:
//
//	svc := &mocks.MockTrackerService{
//	    ToggleCompletionFn: func(ctx context.Context, userID, habitID uuid.UUID, day domain.Day) (*tracker.ToggleResult, error) {
//	        return nil, store.ErrHabitNotFound
//	    },
//	}
package mocks
