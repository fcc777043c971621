package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pocketpilot/backend/internal/model"
)

type PushRepository struct {
	db *sqlx.DB
}

func NewPushRepository(db *sqlx.DB) *PushRepository {
	return &PushRepository{db: db}
}

// CreateSubscription registers a push endpoint. Re-subscribing an existing
// endpoint refreshes its keys instead of duplicating it.
func (r *PushRepository) CreateSubscription(ctx context.Context, sub *model.PushSubscription) error {
	query := `
		INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh, auth, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (endpoint) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			p256dh = EXCLUDED.p256dh,
			auth = EXCLUDED.auth
		RETURNING id, created_at`

	sub.ID = uuid.New()
	return r.db.QueryRowxContext(ctx, query,
		sub.ID, sub.UserID, sub.Endpoint, sub.P256dh, sub.Auth,
	).Scan(&sub.ID, &sub.CreatedAt)
}

func (r *PushRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	query := `SELECT * FROM push_subscriptions WHERE user_id = $1`
	err := r.db.SelectContext(ctx, &subs, query, userID)
	return subs, err
}

func (r *PushRepository) DeleteSubscription(ctx context.Context, userID uuid.UUID, endpoint string) error {
	query := `DELETE FROM push_subscriptions WHERE user_id = $1 AND endpoint = $2`
	_, err := r.db.ExecContext(ctx, query, userID, endpoint)
	return err
}

// DeleteByEndpoint removes a subscription the push service reported dead.
func (r *PushRepository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	query := `DELETE FROM push_subscriptions WHERE endpoint = $1`
	_, err := r.db.ExecContext(ctx, query, endpoint)
	return err
}
