package intent

import (
	"context"
	"sort"
)

// Filter selects intents by stored fields. Zero values match everything.
type Filter struct {
	Vendor   string
	Statuses []Status
	Limit    int
}

func (f Filter) Matches(pi *PaymentIntent) bool {
	if f.Vendor != "" && pi.VendorLabel != f.Vendor {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if pi.Status == s {
			return true
		}
	}
	return false
}

// MutateFunc edits an intent inside a compare-and-swap. Returning an error
// aborts the swap and the error is passed through.
type MutateFunc func(pi *PaymentIntent) error

// Store persists intents. Implementations must make CompareAndSwap atomic per
// intent: the mutation is applied only while the stored status still equals
// expected. When it does not, the current record is returned with
// swapped == false and a nil error.
type Store interface {
	Create(ctx context.Context, pi *PaymentIntent) error
	Get(ctx context.Context, id string) (*PaymentIntent, error)
	List(ctx context.Context, filter Filter) ([]*PaymentIntent, error)
	CompareAndSwap(ctx context.Context, id string, expected Status, mutate MutateFunc) (pi *PaymentIntent, swapped bool, err error)
}

// Pinger is implemented by stores backed by a remote system.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SortByCreation orders intents oldest first, ties broken by id.
func SortByCreation(intents []*PaymentIntent) {
	sort.SliceStable(intents, func(i, j int) bool {
		if intents[i].CreatedAt.Equal(intents[j].CreatedAt) {
			return intents[i].ID < intents[j].ID
		}
		return intents[i].CreatedAt.Before(intents[j].CreatedAt)
	})
}

// ApplyLimit truncates a sorted result set.
func ApplyLimit(intents []*PaymentIntent, limit int) []*PaymentIntent {
	if limit > 0 && len(intents) > limit {
		return intents[:limit]
	}
	return intents
}
