package usecase

import (
	"context"
	"fmt"
	"time"

	"rooted-backend/internal/docstore"
	"rooted-backend/internal/domain"
)

type CounterRepo interface {
	Get(ctx context.Context, id string) (*domain.OrderCounter, error)
	Create(ctx context.Context, c *domain.OrderCounter) error
	Replace(ctx context.Context, c *domain.OrderCounter) error
}

const (
	orderCounterID    = "Orders"
	sequencerRetries  = 5
	counterDateLayout = "20060102"
)

// OrderSequencer hands out order ids of the form {yyyymmdd}ORD{n}. The
// sequence restarts at 1 on the first id of each day; contention on the
// counter document is resolved by rereading and retrying.
type OrderSequencer struct {
	Counters CounterRepo
	Now      func() time.Time
}

func (s *OrderSequencer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// NextOrderID reserves and returns the next order id. An id, once
// returned, is never handed out again even if the caller discards it.
func (s *OrderSequencer) NextOrderID(ctx context.Context) (string, error) {
	today := s.now().UTC().Format(counterDateLayout)
	var lastErr error
	for attempt := 0; attempt < sequencerRetries; attempt++ {
		counter, err := s.Counters.Get(ctx, orderCounterID)
		if err == docstore.ErrNotFound {
			counter = &domain.OrderCounter{ID: orderCounterID, Type: "order", Date: today, Value: 1}
			if cerr := s.Counters.Create(ctx, counter); cerr != nil {
				if cerr == docstore.ErrConflict {
					lastErr = cerr
					continue
				}
				return "", cerr
			}
			return fmt.Sprintf("%sORD%d", today, counter.Value), nil
		}
		if err != nil {
			return "", err
		}

		if counter.Date != today {
			counter.Date = today
			counter.Value = 1
		} else {
			counter.Value++
		}
		if err := s.Counters.Replace(ctx, counter); err != nil {
			if err == docstore.ErrConflict {
				lastErr = err
				continue
			}
			return "", err
		}
		return fmt.Sprintf("%sORD%d", today, counter.Value), nil
	}
	return "", lastErr
}
