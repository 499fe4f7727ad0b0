package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rongwang/nailpos-server/internal/models"
	"github.com/shopspring/decimal"
)

const uniqueViolation = "23505"

const saleLineColumns = `
	l.id, l.sale_id, l.service_id, COALESCE(sv.name, '') AS service_name, l.quantity, l.unit_price
	FROM sale_lines l
	LEFT JOIN services sv ON sv.id = l.service_id`

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection
func (r *PostgresRepository) GetDB() *sqlx.DB {
	return r.db
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Catalog repository methods
func (r *PostgresRepository) ListServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	err := r.db.SelectContext(ctx, &services, `SELECT * FROM services ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	return services, nil
}

func (r *PostgresRepository) GetService(ctx context.Context, id int64) (*models.Service, error) {
	var svc models.Service
	err := r.db.GetContext(ctx, &svc, `SELECT * FROM services WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Service not found
		}
		return nil, err
	}
	return &svc, nil
}

func (r *PostgresRepository) CreateService(ctx context.Context, svc *models.Service) error {
	now := time.Now().UTC()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	return r.db.QueryRowxContext(ctx,
		`INSERT INTO services (name, price, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		svc.Name, svc.Price, svc.CreatedAt, svc.UpdatedAt,
	).Scan(&svc.ID)
}

func (r *PostgresRepository) UpdateService(ctx context.Context, svc *models.Service) error {
	svc.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx,
		`UPDATE services SET name = $1, price = $2, updated_at = $3 WHERE id = $4`,
		svc.Name, svc.Price, svc.UpdatedAt, svc.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepository) GetServicePrices(ctx context.Context) (map[int64]decimal.Decimal, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT id, price FROM services`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prices := make(map[int64]decimal.Decimal)
	for rows.Next() {
		var id int64
		var price decimal.Decimal
		if err := rows.Scan(&id, &price); err != nil {
			return nil, err
		}
		prices[id] = price
	}
	return prices, rows.Err()
}

// Roster repository methods
func (r *PostgresRepository) ListSalesPeople(ctx context.Context) ([]models.SalesPerson, error) {
	var people []models.SalesPerson
	err := r.db.SelectContext(ctx, &people, `SELECT * FROM salespeople ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	return people, nil
}

func (r *PostgresRepository) GetSalesPerson(ctx context.Context, id int64) (*models.SalesPerson, error) {
	var sp models.SalesPerson
	err := r.db.GetContext(ctx, &sp, `SELECT * FROM salespeople WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Sales person not found
		}
		return nil, err
	}
	return &sp, nil
}

func (r *PostgresRepository) GetSalesPersonByEmail(ctx context.Context, email string) (*models.SalesPerson, error) {
	var sp models.SalesPerson
	err := r.db.GetContext(ctx, &sp, `SELECT * FROM salespeople WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &sp, nil
}

func (r *PostgresRepository) CreateSalesPerson(ctx context.Context, sp *models.SalesPerson) error {
	now := time.Now().UTC()
	sp.CreatedAt = now
	sp.UpdatedAt = now

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO salespeople (name, email, role, identity_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		sp.Name, sp.Email, sp.Role, sp.IdentityUserID, sp.CreatedAt, sp.UpdatedAt,
	).Scan(&sp.ID)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *PostgresRepository) UpdateSalesPerson(ctx context.Context, sp *models.SalesPerson) error {
	sp.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx,
		`UPDATE salespeople SET name = $1, email = $2, role = $3, updated_at = $4 WHERE id = $5`,
		sp.Name, sp.Email, sp.Role, sp.UpdatedAt, sp.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepository) DeleteSalesPerson(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM salespeople WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepository) LinkIdentityUser(ctx context.Context, salesPersonID int64, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE salespeople SET identity_user_id = $1, updated_at = $2 WHERE id = $3`,
		userID, time.Now().UTC(), salesPersonID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Sale repository methods
func (r *PostgresRepository) CreateSale(ctx context.Context, sale *models.Sale) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	err = tx.QueryRowxContext(ctx,
		`INSERT INTO sales (sale_date, sales_person) VALUES ($1, $2) RETURNING id`,
		sale.SaleDate, sale.SalesPerson,
	).Scan(&sale.ID)
	if err != nil {
		return err
	}

	for i := range sale.Lines {
		sale.Lines[i].SaleID = sale.ID
		if err = insertSaleLine(ctx, tx, &sale.Lines[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetSale(ctx context.Context, id int64) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.GetContext(ctx, &sale, `SELECT id, sale_date, sales_person FROM sales WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Sale not found
		}
		return nil, err
	}

	sales := []models.Sale{sale}
	if err := r.loadLines(ctx, sales); err != nil {
		return nil, err
	}
	return &sales[0], nil
}

func (r *PostgresRepository) ApplySaleChanges(ctx context.Context, changes models.SaleChangeSet) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE sales SET sales_person = $1, sale_date = $2 WHERE id = $3`,
		changes.SalesPerson, changes.SaleDate, changes.SaleID)
	if err != nil {
		return err
	}
	if err = requireRow(res); err != nil {
		return err
	}

	for _, line := range changes.Updates {
		_, err = tx.ExecContext(ctx,
			`UPDATE sale_lines SET service_id = $1, quantity = $2, unit_price = $3 WHERE id = $4 AND sale_id = $5`,
			line.ServiceID, line.Quantity, line.UnitPrice, line.ID, changes.SaleID)
		if err != nil {
			return err
		}
	}

	for i := range changes.Inserts {
		changes.Inserts[i].SaleID = changes.SaleID
		if err = insertSaleLine(ctx, tx, &changes.Inserts[i]); err != nil {
			return err
		}
	}

	if len(changes.DeleteLineIDs) > 0 {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM sale_lines WHERE sale_id = $1 AND id = ANY($2)`,
			changes.SaleID, pq.Array(changes.DeleteLineIDs))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) DeleteSale(ctx context.Context, id int64) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// Delete lines first (due to foreign key constraint)
	_, err = tx.ExecContext(ctx, `DELETE FROM sale_lines WHERE sale_id = $1`, id)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if err = requireRow(res); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PostgresRepository) FindSales(ctx context.Context, q models.SaleQuery) ([]models.Sale, int, error) {
	where, args := saleFilter(q)

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM sales s`+where, args...); err != nil {
		return nil, 0, err
	}

	query := `SELECT s.id, s.sale_date, s.sales_person FROM sales s` + where +
		` ORDER BY s.sale_date DESC, s.id DESC`
	if q.Limit > 0 {
		args = append(args, q.Limit, q.Offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	var sales []models.Sale
	if err := r.db.SelectContext(ctx, &sales, query, args...); err != nil {
		return nil, 0, err
	}

	if err := r.loadLines(ctx, sales); err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

// saleFilter builds the WHERE clause shared by the count and page queries
func saleFilter(q models.SaleQuery) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if q.Text != "" {
		args = append(args, q.Text)
		n := len(args)
		conds = append(conds, fmt.Sprintf(`(strpos(s.sales_person, $%d) > 0 OR EXISTS (
			SELECT 1 FROM sale_lines l JOIN services sv ON sv.id = l.service_id
			WHERE l.sale_id = s.id AND strpos(sv.name, $%d) > 0))`, n, n))
	}
	if q.From != nil {
		args = append(args, *q.From)
		conds = append(conds, fmt.Sprintf(`s.sale_date >= $%d`, len(args)))
	}
	if q.Until != nil {
		args = append(args, *q.Until)
		conds = append(conds, fmt.Sprintf(`s.sale_date < $%d`, len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// loadLines fills Lines on each sale with one query
func (r *PostgresRepository) loadLines(ctx context.Context, sales []models.Sale) error {
	if len(sales) == 0 {
		return nil
	}

	ids := make([]int64, len(sales))
	index := make(map[int64]int, len(sales))
	for i := range sales {
		ids[i] = sales[i].ID
		index[sales[i].ID] = i
		sales[i].Lines = []models.SaleLine{}
	}

	var lines []models.SaleLine
	err := r.db.SelectContext(ctx, &lines,
		`SELECT`+saleLineColumns+` WHERE l.sale_id = ANY($1) ORDER BY l.sale_id, l.id`,
		pq.Array(ids))
	if err != nil {
		return err
	}

	for _, l := range lines {
		i := index[l.SaleID]
		sales[i].Lines = append(sales[i].Lines, l)
	}
	return nil
}

func insertSaleLine(ctx context.Context, tx *sqlx.Tx, line *models.SaleLine) error {
	return tx.QueryRowxContext(ctx, `
		INSERT INTO sale_lines (sale_id, service_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		line.SaleID, line.ServiceID, line.Quantity, line.UnitPrice,
	).Scan(&line.ID)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
