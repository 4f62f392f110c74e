package storage

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/kashguard/go-payment-intents/internal/intent"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const pgCASRetries = 10

// PostgreSQLStore keeps intents in the payment_intents table. Status and
// vendor are mirrored into columns for filtering; the document itself lives
// in body. Swaps are conditional updates on (status, version).
type PostgreSQLStore struct {
	db *sql.DB
}

func NewPostgreSQLStore(db *sql.DB) *PostgreSQLStore {
	return &PostgreSQLStore{db: db}
}

func (s *PostgreSQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgreSQLStore) Create(ctx context.Context, pi *intent.PaymentIntent) error {
	b, err := encodeIntent(pi)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO payment_intents (intent_id, cart_id, vendor, status, body, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 1, $6, $7)
		ON CONFLICT (intent_id) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query, pi.ID, pi.CartID, pi.VendorLabel, string(pi.Status), b, pi.CreatedAt, pi.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "failed to insert intent")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to insert intent")
	}
	if n == 0 {
		return errors.Wrapf(intent.ErrAlreadyExists, "intent %s", pi.ID)
	}
	return nil
}

func (s *PostgreSQLStore) Get(ctx context.Context, id string) (*intent.PaymentIntent, error) {
	pi, _, err := s.get(ctx, id)
	return pi, err
}

func (s *PostgreSQLStore) get(ctx context.Context, id string) (*intent.PaymentIntent, int64, error) {
	query := `SELECT body, version FROM payment_intents WHERE intent_id = $1`

	var (
		body    []byte
		version int64
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(&body, &version)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, 0, errors.Wrapf(intent.ErrNotFound, "intent %s", id)
		}
		return nil, 0, errors.Wrap(err, "failed to get intent")
	}

	pi, err := decodeIntent(body)
	if err != nil {
		return nil, 0, err
	}
	return pi, version, nil
}

func (s *PostgreSQLStore) List(ctx context.Context, filter intent.Filter) ([]*intent.PaymentIntent, error) {
	var (
		where []string
		args  []interface{}
	)

	if filter.Vendor != "" {
		args = append(args, filter.Vendor)
		where = append(where, "vendor = $1")
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, st := range filter.Statuses {
			statuses = append(statuses, string(st))
		}
		args = append(args, pq.Array(statuses))
		where = append(where, "status = ANY($"+strconv.Itoa(len(args))+")")
	}

	query := `SELECT body FROM payment_intents`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at ASC, intent_id ASC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list intents")
	}
	defer rows.Close()

	var res []*intent.PaymentIntent
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, errors.Wrap(err, "failed to scan intent")
		}
		pi, err := decodeIntent(body)
		if err != nil {
			return nil, err
		}
		res = append(res, pi)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list intents")
	}

	return res, nil
}

func (s *PostgreSQLStore) CompareAndSwap(ctx context.Context, id string, expected intent.Status, mutate intent.MutateFunc) (*intent.PaymentIntent, bool, error) {
	query := `
		UPDATE payment_intents
		SET status = $1, body = $2, version = version + 1, updated_at = $3
		WHERE intent_id = $4 AND status = $5 AND version = $6
	`

	for i := 0; i < pgCASRetries; i++ {
		pi, version, err := s.get(ctx, id)
		if err != nil {
			return nil, false, err
		}

		if pi.Status != expected {
			return pi, false, nil
		}

		if err := mutate(pi); err != nil {
			return nil, false, err
		}

		b, err := encodeIntent(pi)
		if err != nil {
			return nil, false, err
		}

		res, err := s.db.ExecContext(ctx, query, string(pi.Status), b, pi.UpdatedAt, id, string(expected), version)
		if err != nil {
			return nil, false, errors.Wrap(err, "failed to update intent")
		}

		n, err := res.RowsAffected()
		if err != nil {
			return nil, false, errors.Wrap(err, "failed to update intent")
		}
		if n == 1 {
			return pi, true, nil
		}
	}

	return nil, false, errors.Errorf("compare-and-swap on intent %s did not converge", id)
}

func (s *PostgreSQLStore) Close() error {
	return s.db.Close()
}
