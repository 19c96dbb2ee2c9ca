package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct{ DB *pgxpool.Pool }

const orderColumns = `tracker_id, user_email, items, subtotal, delivery_fee, total,
	payment_method, fulfilment, delivery_location, delivery_address,
	status, timeline, placed_at, updated_at, version`

func (s *PostgresStore) Insert(ctx context.Context, o *Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	timeline, err := json.Marshal(o.Timeline)
	if err != nil {
		return fmt.Errorf("marshal timeline: %w", err)
	}

	_, err = s.DB.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		o.TrackerID, o.UserEmail, items, o.Subtotal, o.DeliveryFee, o.Total,
		o.PaymentMethod, o.Fulfilment, o.DeliveryLocation, o.DeliveryAddress,
		o.Status, timeline, o.PlacedAt, o.UpdatedAt, o.Version,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrTrackerExists
	}
	return err
}

func (s *PostgresStore) GetByTrackerID(ctx context.Context, trackerID string) (*Order, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE tracker_id=$1`, trackerID)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

func (s *PostgresStore) List(ctx context.Context) ([]Order, error) {
	return s.query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY placed_at DESC`)
}

func (s *PostgresStore) ListByEmail(ctx context.Context, email string) ([]Order, error) {
	return s.query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_email=$1 ORDER BY placed_at DESC`, email)
}

func (s *PostgresStore) Update(ctx context.Context, o *Order, expectedVersion int64) error {
	timeline, err := json.Marshal(o.Timeline)
	if err != nil {
		return fmt.Errorf("marshal timeline: %w", err)
	}

	ct, err := s.DB.Exec(ctx, `
		UPDATE orders
		SET status=$2, timeline=$3, updated_at=$4, version=$5
		WHERE tracker_id=$1 AND version=$6`,
		o.TrackerID, o.Status, timeline, o.UpdatedAt, o.Version, expectedVersion,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		// Distinguish a missing row from a stale version.
		var exists bool
		if err := s.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE tracker_id=$1)`, o.TrackerID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

func (s *PostgresStore) DeleteInvalid(ctx context.Context) (int64, error) {
	ct, err := s.DB.Exec(ctx, `DELETE FROM orders WHERE tracker_id IS NULL OR tracker_id=''`)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (s *PostgresStore) query(ctx context.Context, sql string, args ...any) ([]Order, error) {
	rows, err := s.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var items, timeline []byte
	err := row.Scan(
		&o.TrackerID, &o.UserEmail, &items, &o.Subtotal, &o.DeliveryFee, &o.Total,
		&o.PaymentMethod, &o.Fulfilment, &o.DeliveryLocation, &o.DeliveryAddress,
		&o.Status, &timeline, &o.PlacedAt, &o.UpdatedAt, &o.Version,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if err := json.Unmarshal(timeline, &o.Timeline); err != nil {
		return nil, fmt.Errorf("unmarshal timeline: %w", err)
	}
	return &o, nil
}
