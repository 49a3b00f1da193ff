package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"megacrm-backend/internal/aggregate"
	"megacrm-backend/internal/ledger"
	"megacrm-backend/internal/metrics"
	"megacrm-backend/internal/models"
	"megacrm-backend/internal/phone"
	"megacrm-backend/internal/realtime"
	"megacrm-backend/internal/repositories"
	"megacrm-backend/internal/timeutil"

	"github.com/shopspring/decimal"
)

// FinanceService manages the per-branch monthly revenue and expense
// ledgers. Employees only see the rows they wrote.
type FinanceService struct {
	Repo     *repositories.FinanceRepository
	Clients  *repositories.ClientRepository
	Branches []models.Branch
	Changes  *Changes
	Now      func() time.Time
}

func NewFinanceService(repo *repositories.FinanceRepository, clients *repositories.ClientRepository, branches []models.Branch, changes *Changes) *FinanceService {
	return &FinanceService{Repo: repo, Clients: clients, Branches: branches, Changes: changes, Now: timeutil.Now}
}

// Branch finds a configured branch by name or code
func (s *FinanceService) Branch(nameOrCode string) (models.Branch, error) {
	for _, b := range s.Branches {
		if strings.EqualFold(b.Name, nameOrCode) || strings.EqualFold(b.Code, nameOrCode) {
			return b, nil
		}
	}
	return models.Branch{}, fmt.Errorf("branch %q: %w", nameOrCode, ErrNotFound)
}

func (s *FinanceService) open(session *models.Session, branch string, month int) (models.Branch, error) {
	b, err := s.Branch(branch)
	if err != nil {
		return b, err
	}
	if month < 1 || month > 12 {
		return b, invalid("month must be between 1 and 12, got %d", month)
	}
	return b, requireBranch(session, b)
}

// visibleTo: employees are restricted to their own rows
func visibleTo(session *models.Session, employee string) bool {
	if session != nil && session.Role == models.RoleAdmin {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(employee), actorName(session))
}

func (s *FinanceService) revenues(ctx context.Context, session *models.Session, b models.Branch, month int) ([]models.RevenueEntry, error) {
	all, _, err := s.Repo.Revenues(ctx, b.Code, month)
	if err != nil {
		return nil, err
	}
	out := make([]models.RevenueEntry, 0, len(all))
	for _, e := range all {
		if visibleTo(session, e.Employee) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *FinanceService) expenses(ctx context.Context, session *models.Session, b models.Branch, month int) ([]models.ExpenseEntry, error) {
	all, _, err := s.Repo.Expenses(ctx, b.Code, month)
	if err != nil {
		return nil, err
	}
	out := make([]models.ExpenseEntry, 0, len(all))
	for _, e := range all {
		if visibleTo(session, e.Employee) {
			out = append(out, e)
		}
	}
	return out, nil
}

func inRange(d *time.Time, f models.LedgerFilter) bool {
	if f.From == nil && f.To == nil {
		return true
	}
	if d == nil {
		return false
	}
	if f.From != nil && d.Before(timeutil.StartOfDay(*f.From)) {
		return false
	}
	if f.To != nil && d.After(timeutil.StartOfDay(*f.To)) {
		return false
	}
	return true
}

func matchesSearch(search string, fields ...string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

// List returns one ledger month of a branch, filtered, with its total
func (s *FinanceService) List(ctx context.Context, session *models.Session, branch, kind string, month int, f models.LedgerFilter) (*models.LedgerList, error) {
	b, err := s.open(session, branch, month)
	if err != nil {
		return nil, err
	}
	list := &models.LedgerList{Branch: b.Name, Kind: kind, Month: month, Total: decimal.Zero}
	employee := strings.TrimSpace(f.Employee)

	switch kind {
	case models.KindRevenue:
		entries, err := s.revenues(ctx, session, b, month)
		if err != nil {
			return nil, err
		}
		list.Revenues = []models.RevenueEntry{}
		for _, e := range entries {
			if employee != "" && !strings.EqualFold(e.Employee, employee) {
				continue
			}
			if !inRange(e.Date, f) || !matchesSearch(f.Search, e.Label, e.Note, e.Category, e.Mode, e.Employee) {
				continue
			}
			list.Revenues = append(list.Revenues, e)
			list.Total = list.Total.Add(e.Total)
		}
	case models.KindExpense:
		entries, err := s.expenses(ctx, session, b, month)
		if err != nil {
			return nil, err
		}
		list.Expenses = []models.ExpenseEntry{}
		for _, e := range entries {
			if employee != "" && !strings.EqualFold(e.Employee, employee) {
				continue
			}
			if !inRange(e.Date, f) || !matchesSearch(f.Search, e.Label, e.Note, e.Category, e.Mode, e.Source) {
				continue
			}
			list.Expenses = append(list.Expenses, e)
			list.Total = list.Total.Add(e.Amount)
		}
	default:
		return nil, invalid("kind must be %s or %s", models.KindRevenue, models.KindExpense)
	}
	return list, nil
}

// AddRevenue appends an income row. The remaining balance is recomputed from
// every row of the month with the same label; earlier rows are left as they
// were written.
func (s *FinanceService) AddRevenue(ctx context.Context, session *models.Session, branch string, month int, req *models.CreateRevenueRequest) (*models.RevenueEntry, error) {
	b, err := s.open(session, branch, month)
	if err != nil {
		return nil, err
	}
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}

	label := strings.TrimSpace(req.Label)
	note := strings.TrimSpace(req.Note)
	clientKey := ""
	if strings.TrimSpace(req.ClientPhone) != "" {
		c, err := s.linkedClient(ctx, req.ClientEmployee, req.ClientPhone)
		if err != nil {
			return nil, err
		}
		clientKey = c.PhoneKey
		if label == "" {
			label = ledger.DefaultLabel(c.Formation, c.Name)
		}
		if note == "" {
			note = ledger.DefaultNote(c.Name, phone.Display(c.PhoneKey), c.Formation)
		}
	}
	if label == "" {
		return nil, invalid("label is required")
	}

	total := ledger.RevenueTotal(req.AdminAmount, req.StructureAmount, req.PreRegAmount)
	if !total.IsPositive() {
		return nil, invalid("total amount must be greater than 0")
	}
	for _, a := range []decimal.Decimal{req.Price, req.AdminAmount, req.StructureAmount, req.PreRegAmount} {
		if a.IsNegative() {
			return nil, invalid("amounts cannot be negative")
		}
	}
	date, err := parseOptionalDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	if date == nil {
		today := timeutil.StartOfDay(s.Now())
		date = &today
	}
	due, err := parseOptionalDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}

	existing, _, err := s.Repo.Revenues(ctx, b.Code, month)
	if err != nil {
		return nil, err
	}
	e := models.RevenueEntry{
		Date:            date,
		Label:           label,
		Price:           req.Price,
		AdminAmount:     req.AdminAmount,
		StructureAmount: req.StructureAmount,
		PreRegAmount:    req.PreRegAmount,
		Total:           total,
		DueDate:         due,
		Remaining:       ledger.RevenueRemaining(existing, label, req.Price, total),
		Mode:            strings.TrimSpace(req.Mode),
		Employee:        actorName(session),
		Category:        strings.TrimSpace(req.Category),
		Note:            note,
		ClientKey:       clientKey,
	}
	if err := s.Repo.AppendRevenue(ctx, b.Code, month, e); err != nil {
		return nil, err
	}
	metrics.LedgerAppends.WithLabelValues(models.KindRevenue).Inc()
	s.Changes.Notify(ctx, realtime.Event{Type: realtime.FinanceChanged, Branch: b.Name})
	return &e, nil
}

func (s *FinanceService) linkedClient(ctx context.Context, employee, rawPhone string) (models.Client, error) {
	key := phone.Normalize(rawPhone)
	if key == "" {
		return models.Client{}, invalid("phone %q has no digits", rawPhone)
	}
	tables, err := s.Clients.LoadAll(ctx)
	if err != nil {
		return models.Client{}, err
	}
	for _, t := range tables {
		if employee != "" && t.Employee != employee {
			continue
		}
		for _, c := range t.Clients {
			if c.PhoneKey == key {
				return c, nil
			}
		}
	}
	return models.Client{}, fmt.Errorf("client %s: %w", phone.Display(key), ErrNotFound)
}

func (s *FinanceService) AddExpense(ctx context.Context, session *models.Session, branch string, month int, req *models.CreateExpenseRequest) (*models.ExpenseEntry, error) {
	b, err := s.open(session, branch, month)
	if err != nil {
		return nil, err
	}
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, invalid("amount must be greater than 0")
	}
	date, err := parseOptionalDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	if date == nil {
		today := timeutil.StartOfDay(s.Now())
		date = &today
	}
	e := models.ExpenseEntry{
		Date:     date,
		Label:    strings.TrimSpace(req.Label),
		Amount:   req.Amount,
		Source:   req.Source,
		Mode:     strings.TrimSpace(req.Mode),
		Employee: actorName(session),
		Category: strings.TrimSpace(req.Category),
		Note:     strings.TrimSpace(req.Note),
	}
	if err := s.Repo.AppendExpense(ctx, b.Code, month, e); err != nil {
		return nil, err
	}
	metrics.LedgerAppends.WithLabelValues(models.KindExpense).Inc()
	s.Changes.Notify(ctx, realtime.Event{Type: realtime.FinanceChanged, Branch: b.Name})
	return &e, nil
}

// Summary nets revenue against expenses for one branch month
func (s *FinanceService) Summary(ctx context.Context, session *models.Session, branch string, month int) (*models.FinanceSummary, error) {
	b, err := s.open(session, branch, month)
	if err != nil {
		return nil, err
	}
	revenues, err := s.revenues(ctx, session, b, month)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses(ctx, session, b, month)
	if err != nil {
		return nil, err
	}
	sum := ledger.Summarize(b.Name, month, revenues, expenses)
	return &sum, nil
}

// EnrolledClients lists enrolled clients for the revenue client picker,
// optionally for one employee
func (s *FinanceService) EnrolledClients(ctx context.Context, employee string) ([]models.EnrolledClient, error) {
	tables, err := s.Clients.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	views := aggregate.Enrolled(aggregate.FilterEmployee(aggregate.Merge(tables, s.Now()), employee))
	out := make([]models.EnrolledClient, 0, len(views))
	for _, v := range views {
		out = append(out, models.EnrolledClient{
			Name:      v.Name,
			PhoneKey:  v.PhoneKey,
			Phone:     phone.Display(v.PhoneKey),
			Formation: v.Formation,
			Employee:  v.Source,
		})
	}
	return out, nil
}

// Reconciliation matches the twelve revenue months of a branch against
// enrolled clients
func (s *FinanceService) Reconciliation(ctx context.Context, session *models.Session, branch string) (*ledger.Reconciliation, error) {
	b, err := s.open(session, branch, 1)
	if err != nil {
		return nil, err
	}
	var entries []models.RevenueEntry
	for m := 1; m <= 12; m++ {
		rows, err := s.revenues(ctx, session, b, m)
		if err != nil {
			return nil, err
		}
		entries = append(entries, rows...)
	}
	tables, err := s.Clients.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	var enrolled []models.Client
	for _, v := range aggregate.Enrolled(aggregate.Merge(tables, s.Now())) {
		enrolled = append(enrolled, v.Client)
	}
	r := ledger.Reconcile(entries, enrolled, s.Now())
	return &r, nil
}
