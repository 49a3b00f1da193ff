package repositories

import (
	"context"
	"errors"
	"fmt"

	"megacrm-backend/internal/models"
	"megacrm-backend/internal/phone"
	"megacrm-backend/internal/store"
	"megacrm-backend/internal/timeutil"
)

type ClientRepository struct {
	Store store.TableStore
}

func NewClientRepository(s store.TableStore) *ClientRepository {
	return &ClientRepository{Store: s}
}

// ListEmployees returns the employee table names in store order
func (r *ClientRepository) ListEmployees(ctx context.Context) ([]string, error) {
	names, err := r.Store.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	var employees []string
	for _, n := range names {
		if IsEmployeeTable(n) {
			employees = append(employees, n)
		}
	}
	return employees, nil
}

func (r *ClientRepository) CreateEmployee(ctx context.Context, name string) error {
	return r.Store.CreateTable(ctx, name, models.ClientHeader)
}

// CheckTableName reports whether the backing store can hold a table named name
func (r *ClientRepository) CheckTableName(name string) error {
	return store.CheckTableName(r.Store, name)
}

// DeleteEmployee drops the employee's client table. Its payments table is kept.
func (r *ClientRepository) DeleteEmployee(ctx context.Context, name string) error {
	return r.Store.DropTable(ctx, name)
}

// Load decodes one employee table
func (r *ClientRepository) Load(ctx context.Context, employee string) (models.EmployeeTable, error) {
	rows, err := r.Store.ReadAll(ctx, employee)
	if err != nil {
		return models.EmployeeTable{}, fmt.Errorf("read %s: %w", employee, err)
	}
	return DecodeClients(employee, rows), nil
}

// LoadAll decodes every employee table. Tables dropped between listing and
// reading are ignored.
func (r *ClientRepository) LoadAll(ctx context.Context) ([]models.EmployeeTable, error) {
	employees, err := r.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	tables := make([]models.EmployeeTable, 0, len(employees))
	for _, e := range employees {
		t, err := r.Load(ctx, e)
		if errors.Is(err, store.ErrTableNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// Find returns the first client of employee whose phone key matches
func (r *ClientRepository) Find(ctx context.Context, employee, phoneKey string) (models.Client, bool, error) {
	t, err := r.Load(ctx, employee)
	if err != nil {
		return models.Client{}, false, err
	}
	for _, c := range t.Clients {
		if c.PhoneKey == phoneKey {
			return c, true, nil
		}
	}
	return models.Client{}, false, nil
}

func (r *ClientRepository) Append(ctx context.Context, employee string, c models.Client) error {
	if err := r.Store.AppendRow(ctx, employee, EncodeClient(c)); err != nil {
		return fmt.Errorf("append to %s: %w", employee, err)
	}
	return nil
}

// UpdateFields writes the given 1-based columns of one row, in column order
func (r *ClientRepository) UpdateFields(ctx context.Context, employee string, row int, fields map[int]string) error {
	for col := models.ColName; col <= models.ColTag; col++ {
		v, ok := fields[col]
		if !ok {
			continue
		}
		if err := r.Store.UpdateCell(ctx, employee, row, col, v); err != nil {
			return fmt.Errorf("update %s row %d col %d: %w", employee, row, col, err)
		}
	}
	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, employee string, row int) error {
	if err := r.Store.DeleteRow(ctx, employee, row); err != nil {
		return fmt.Errorf("delete %s row %d: %w", employee, row, err)
	}
	return nil
}

// DecodeClients maps the raw rows of an employee table to clients
func DecodeClients(employee string, rows [][]string) models.EmployeeTable {
	t := models.EmployeeTable{Employee: employee}
	t.Skipped = decodeRows(employee, rows, func(n int, row []string) string {
		c := DecodeClient(n, row)
		if c.Name == "" && c.PhoneKey == "" {
			return "missing name and phone"
		}
		t.Clients = append(t.Clients, c)
		return ""
	})
	return t
}

// DecodeClient maps one row; missing trailing cells read as empty
func DecodeClient(n int, row []string) models.Client {
	enrollment := cell(row, models.ColEnrollment)
	raw := cell(row, models.ColPhone)
	return models.Client{
		Row:         n,
		Name:        cell(row, models.ColName),
		Phone:       raw,
		PhoneKey:    phone.Normalize(raw),
		ContactType: cell(row, models.ColContactType),
		Formation:   cell(row, models.ColFormation),
		Remark:      cell(row, models.ColRemark),
		DateAdded:   optionalDate(cell(row, models.ColDateAdded)),
		FollowUp:    optionalDate(cell(row, models.ColFollowUp)),
		ManualAlert: cell(row, models.ColAlert),
		Enrollment:  enrollment,
		Enrolled:    models.IsEnrolled(enrollment),
		Employee:    cell(row, models.ColEmployee),
		Tag:         cell(row, models.ColTag),
	}
}

// EncodeClient renders a client in ClientHeader order
func EncodeClient(c models.Client) []string {
	key := c.PhoneKey
	if key == "" {
		key = phone.Normalize(c.Phone)
	}
	enrollment := c.Enrollment
	if enrollment == "" {
		enrollment = models.EnrollmentValue(c.Enrolled)
	}
	return []string{
		c.Name,
		key,
		c.ContactType,
		c.Formation,
		c.Remark,
		timeutil.FormatOptionalDate(c.DateAdded),
		timeutil.FormatOptionalDate(c.FollowUp),
		c.ManualAlert,
		enrollment,
		c.Employee,
		c.Tag,
	}
}
