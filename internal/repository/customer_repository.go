package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"

	appErrors "github.com/DevidBilalov/CRMshit/internal/errors"
	"github.com/DevidBilalov/CRMshit/internal/model"
)

// CustomerRepositoryInterface defines methods used by the service layer.
type CustomerRepositoryInterface interface {
	Create(c *model.Customer) error
	GetByID(id int) (*model.Customer, error)
	GetByPhone(phone string) (*model.Customer, error)
	ListAll() ([]model.Customer, error)
	ListByCreatedDate(day time.Time) ([]model.Customer, error)
	UpdateInfo(phone, info string) (*model.Customer, error)
	DeleteByPhone(phone string) (*model.Customer, error)
}

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx, so lookups can run
// either standalone or inside a mutation's transaction.
type SQLExecutor interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
}

// CustomerRepository is the concrete sqlite implementation. Every mutating
// method is a self-contained unit of work: one transaction that either commits
// fully or rolls back.
type CustomerRepository struct {
	DB *sql.DB
}

// Create inserts a new customer and fills in the assigned id and created_at.
// A phone already present in the table yields DuplicatePhoneError and no row.
func (r *CustomerRepository) Create(c *model.Customer) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return appErrors.NewStore("begin", err)
	}

	now := time.Now().UTC()
	query := `
        INSERT INTO customers (name, email, phone, info, created_at)
        VALUES (?, ?, ?, ?, ?)
    `
	res, err := tx.Exec(query, c.Name, c.Email, c.Phone, c.Info, now)
	if err != nil {
		tx.Rollback()
		if isUniqueViolation(err) {
			return appErrors.NewDuplicatePhone(c.Phone)
		}
		return appErrors.NewStore("insert customer", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return appErrors.NewStore("insert customer", err)
	}
	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return appErrors.NewDuplicatePhone(c.Phone)
		}
		return appErrors.NewStore("commit insert", err)
	}

	c.ID = int(id)
	c.CreatedAt = &now
	return nil
}

// GetByID fetches a customer by id.
func (r *CustomerRepository) GetByID(id int) (*model.Customer, error) {
	query := `
        SELECT id, name, email, phone, info, created_at
        FROM customers
        WHERE id = ?
    `
	return scanCustomerRow(r.DB.QueryRow(query, id))
}

// GetByPhone fetches a customer by phone. At most one row can match because of
// the unique constraint. Returns (nil, nil) when no row matches.
func (r *CustomerRepository) GetByPhone(phone string) (*model.Customer, error) {
	return getByPhone(r.DB, phone)
}

// ListAll fetches a snapshot of all customers. No ordering is guaranteed.
func (r *CustomerRepository) ListAll() ([]model.Customer, error) {
	query := `
        SELECT id, name, email, phone, info, created_at
        FROM customers
    `
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, appErrors.NewStore("list customers", err)
	}
	defer rows.Close()

	return collectCustomers(rows)
}

// ListByCreatedDate fetches customers whose created_at falls within
// [day 00:00, day+1 00:00) in day's location.
func (r *CustomerRepository) ListByCreatedDate(day time.Time) ([]model.Customer, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	query := `
        SELECT id, name, email, phone, info, created_at
        FROM customers
        WHERE created_at >= ? AND created_at < ?
    `
	rows, err := r.DB.Query(query, start.UTC(), end.UTC())
	if err != nil {
		return nil, appErrors.NewStore("list customers by date", err)
	}
	defer rows.Close()

	return collectCustomers(rows)
}

// UpdateInfo replaces the info field of the customer with the given phone.
func (r *CustomerRepository) UpdateInfo(phone, info string) (*model.Customer, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return nil, appErrors.NewStore("begin", err)
	}

	c, err := getByPhone(tx, phone)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if c == nil {
		tx.Rollback()
		return nil, appErrors.NewCustomerNotFound(phone)
	}

	if _, err := tx.Exec(`UPDATE customers SET info = ? WHERE phone = ?`, info, phone); err != nil {
		tx.Rollback()
		return nil, appErrors.NewStore("update info", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.NewStore("commit update", err)
	}

	c.Info = info
	return c, nil
}

// DeleteByPhone removes the customer with the given phone and returns the
// deleted record. The customer's pending reminder job, if any, is left alone.
func (r *CustomerRepository) DeleteByPhone(phone string) (*model.Customer, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return nil, appErrors.NewStore("begin", err)
	}

	c, err := getByPhone(tx, phone)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if c == nil {
		tx.Rollback()
		return nil, appErrors.NewCustomerNotFound(phone)
	}

	if _, err := tx.Exec(`DELETE FROM customers WHERE phone = ?`, phone); err != nil {
		tx.Rollback()
		return nil, appErrors.NewStore("delete customer", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.NewStore("commit delete", err)
	}

	return c, nil
}

func getByPhone(ex SQLExecutor, phone string) (*model.Customer, error) {
	query := `
        SELECT id, name, email, phone, info, created_at
        FROM customers
        WHERE phone = ?
    `
	return scanCustomerRow(ex.QueryRow(query, phone))
}

func scanCustomerRow(row *sql.Row) (*model.Customer, error) {
	var c model.Customer
	var created sql.NullTime
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Info, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, appErrors.NewStore("scan customer", err)
	}
	if created.Valid {
		t := created.Time
		c.CreatedAt = &t
	}
	return &c, nil
}

func collectCustomers(rows *sql.Rows) ([]model.Customer, error) {
	customers := []model.Customer{}
	for rows.Next() {
		var c model.Customer
		var created sql.NullTime
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Info, &created); err != nil {
			return nil, appErrors.NewStore("scan customer", err)
		}
		if created.Valid {
			t := created.Time
			c.CreatedAt = &t
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.NewStore("scan customers", err)
	}
	return customers, nil
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

var _ CustomerRepositoryInterface = (*CustomerRepository)(nil)
