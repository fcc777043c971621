package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pocketpilot/backend/internal/model"
)

var ErrBillNotFound = errors.New("bill not found")

type BillRepository struct {
	db *sqlx.DB
}

func NewBillRepository(db *sqlx.DB) *BillRepository {
	return &BillRepository{db: db}
}

func (r *BillRepository) Create(ctx context.Context, bill *model.Bill) error {
	query := `
		INSERT INTO bills (id, user_id, name, amount, due_date, frequency, reminder_days, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at`

	bill.ID = uuid.New()
	return r.db.QueryRowxContext(ctx, query,
		bill.ID, bill.UserID, bill.Name, bill.Amount, bill.DueDate,
		bill.Frequency, bill.ReminderDays, bill.IsActive,
	).Scan(&bill.CreatedAt, &bill.UpdatedAt)
}

func (r *BillRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Bill, error) {
	var bill model.Bill
	query := `SELECT * FROM bills WHERE id = $1`
	err := r.db.GetContext(ctx, &bill, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBillNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadPayments(ctx, &bill); err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *BillRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Bill, error) {
	var bills []model.Bill
	query := `SELECT * FROM bills WHERE user_id = $1 ORDER BY due_date, name`
	if err := r.db.SelectContext(ctx, &bills, query, userID); err != nil {
		return nil, err
	}

	if len(bills) == 0 {
		return bills, nil
	}

	var payments []model.BillPayment
	paymentsQuery := `
		SELECT p.* FROM bill_payments p
		JOIN bills b ON b.id = p.bill_id
		WHERE b.user_id = $1
		ORDER BY p.paid_date, p.created_at`
	if err := r.db.SelectContext(ctx, &payments, paymentsQuery, userID); err != nil {
		return nil, err
	}

	byBill := make(map[uuid.UUID][]model.BillPayment, len(bills))
	for _, p := range payments {
		byBill[p.BillID] = append(byBill[p.BillID], p)
	}
	for i := range bills {
		bills[i].PaymentHistory = byBill[bills[i].ID]
	}

	return bills, nil
}

// ListActive returns every active bill across all users, with payment
// history. Used by the reminder scheduler.
func (r *BillRepository) ListActive(ctx context.Context) ([]model.Bill, error) {
	var bills []model.Bill
	query := `SELECT * FROM bills WHERE is_active = TRUE ORDER BY user_id, due_date`
	if err := r.db.SelectContext(ctx, &bills, query); err != nil {
		return nil, err
	}

	var payments []model.BillPayment
	paymentsQuery := `
		SELECT p.* FROM bill_payments p
		JOIN bills b ON b.id = p.bill_id
		WHERE b.is_active = TRUE`
	if err := r.db.SelectContext(ctx, &payments, paymentsQuery); err != nil {
		return nil, err
	}

	byBill := make(map[uuid.UUID][]model.BillPayment, len(bills))
	for _, p := range payments {
		byBill[p.BillID] = append(byBill[p.BillID], p)
	}
	for i := range bills {
		bills[i].PaymentHistory = byBill[bills[i].ID]
	}

	return bills, nil
}

func (r *BillRepository) Update(ctx context.Context, bill *model.Bill) error {
	query := `
		UPDATE bills
		SET name = $2, amount = $3, due_date = $4, frequency = $5, reminder_days = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1 AND user_id = $8
		RETURNING updated_at`
	err := r.db.QueryRowxContext(ctx, query,
		bill.ID, bill.Name, bill.Amount, bill.DueDate,
		bill.Frequency, bill.ReminderDays, bill.IsActive, bill.UserID,
	).Scan(&bill.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBillNotFound
	}
	return err
}

func (r *BillRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM bills WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrBillNotFound
	}
	return nil
}

// AddPayment appends a payment record to a bill's history.
func (r *BillRepository) AddPayment(ctx context.Context, payment *model.BillPayment) error {
	query := `
		INSERT INTO bill_payments (id, bill_id, paid_date, amount, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at`

	payment.ID = uuid.New()
	return r.db.QueryRowxContext(ctx, query,
		payment.ID, payment.BillID, payment.Date, payment.Amount,
	).Scan(&payment.CreatedAt)
}

func (r *BillRepository) loadPayments(ctx context.Context, bill *model.Bill) error {
	query := `SELECT * FROM bill_payments WHERE bill_id = $1 ORDER BY paid_date, created_at`
	return r.db.SelectContext(ctx, &bill.PaymentHistory, query, bill.ID)
}
