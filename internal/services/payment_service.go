package services

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"megacrm-backend/internal/cache"
	"megacrm-backend/internal/ledger"
	"megacrm-backend/internal/metrics"
	"megacrm-backend/internal/models"
	"megacrm-backend/internal/phone"
	"megacrm-backend/internal/realtime"
	"megacrm-backend/internal/repositories"
	"megacrm-backend/internal/timeutil"

	"github.com/shopspring/decimal"
)

type PaymentService struct {
	Repo    *repositories.PaymentRepository
	Clients *repositories.ClientRepository
	Cache   *cache.Cache
	TTL     time.Duration
	Changes *Changes
	Now     func() time.Time
}

func NewPaymentService(repo *repositories.PaymentRepository, clients *repositories.ClientRepository, c *cache.Cache, ttl time.Duration, changes *Changes) *PaymentService {
	return &PaymentService{Repo: repo, Clients: clients, Cache: c, TTL: ttl, Changes: changes, Now: timeutil.Now}
}

// List returns the installments of one client of an employee, oldest first.
// An empty phone lists the whole table.
func (s *PaymentService) List(ctx context.Context, session *models.Session, employee, rawPhone string) ([]models.Payment, error) {
	if err := requirePayments(session, employee); err != nil {
		return nil, err
	}
	payments, _, err := s.Repo.List(ctx, employee)
	if err != nil {
		return nil, err
	}
	key := phone.Normalize(rawPhone)
	out := make([]models.Payment, 0, len(payments))
	for _, p := range payments {
		if key == "" || p.PhoneKey == key {
			out = append(out, p)
		}
	}
	sortPayments(out, "date", true)
	return out, nil
}

// Add records an installment and returns it with the stored remaining balance
func (s *PaymentService) Add(ctx context.Context, session *models.Session, employee string, req *models.CreatePaymentRequest) (*models.Payment, error) {
	if err := requirePayments(session, employee); err != nil {
		return nil, err
	}
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	key := phone.Normalize(req.Phone)
	if key == "" {
		return nil, invalid("phone %q has no digits", req.Phone)
	}
	if !req.Price.IsPositive() {
		return nil, invalid("price must be greater than 0")
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

	formation := strings.TrimSpace(req.Formation)
	if formation == "" {
		if c, ok, err := s.Clients.Find(ctx, employee, key); err == nil && ok {
			formation = c.Formation
		}
	}

	existing, _, err := s.Repo.List(ctx, employee)
	if err != nil {
		return nil, err
	}
	p := models.Payment{
		Employee:  employee,
		PhoneKey:  key,
		Formation: formation,
		Price:     req.Price,
		Amount:    req.Amount,
		Date:      date,
		Remaining: ledger.PaymentRemaining(existing, key, req.Price, req.Amount),
	}
	if err := s.Repo.Append(ctx, employee, p); err != nil {
		return nil, err
	}
	metrics.LedgerAppends.WithLabelValues("payment").Inc()
	s.Changes.Notify(ctx, realtime.Event{Type: realtime.PaymentsChanged, Employee: employee})
	return &p, nil
}

// loadAll reads every payments table; tables that still fail after the
// store retry are skipped
func (s *PaymentService) loadAll(ctx context.Context) ([]models.Payment, error) {
	var all []models.Payment
	if s.Cache.GetJSON(ctx, cache.PaymentsKey, &all) {
		return all, nil
	}
	employees, err := s.Repo.Employees(ctx)
	if err != nil {
		return nil, err
	}
	all = []models.Payment{}
	for _, e := range employees {
		payments, _, err := s.Repo.List(ctx, e)
		if err != nil {
			log.Printf("[Payments] skipping %s: %v", e, err)
			continue
		}
		all = append(all, payments...)
	}
	s.Cache.SetJSON(ctx, cache.PaymentsKey, all, s.TTL)
	return all, nil
}

// All is the admin view of every installment with totals. TotalRemaining
// sums the latest balance of each (employee, client) pair in the result.
func (s *PaymentService) All(ctx context.Context, session *models.Session, f models.PaymentFilter) (*models.PaymentList, error) {
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}
	all, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := FilterPayments(all, f)
	sortPayments(out, f.SortBy, f.Ascending)

	list := &models.PaymentList{Payments: out, TotalPaid: decimal.Zero, TotalRemaining: decimal.Zero}
	latest := make(map[string]models.Payment)
	for _, p := range out {
		list.TotalPaid = list.TotalPaid.Add(p.Amount)
		k := p.Employee + "|" + p.PhoneKey
		if prev, ok := latest[k]; !ok || p.Row > prev.Row {
			latest[k] = p
		}
	}
	for _, p := range latest {
		list.TotalRemaining = list.TotalRemaining.Add(p.Remaining)
	}
	return list, nil
}

// FilterPayments applies the employee, formation and date range filters
func FilterPayments(payments []models.Payment, f models.PaymentFilter) []models.Payment {
	employees := toSet(f.Employees, false)
	formations := toSet(f.Formations, true)
	out := make([]models.Payment, 0, len(payments))
	for _, p := range payments {
		if len(employees) > 0 && !employees[p.Employee] {
			continue
		}
		if len(formations) > 0 && !formations[strings.ToLower(strings.TrimSpace(p.Formation))] {
			continue
		}
		if f.From != nil && (p.Date == nil || p.Date.Before(timeutil.StartOfDay(*f.From))) {
			continue
		}
		if f.To != nil && (p.Date == nil || p.Date.After(timeutil.StartOfDay(*f.To))) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func toSet(values []string, fold bool) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if fold {
			v = strings.ToLower(v)
		}
		set[v] = true
	}
	return set
}

func sortPayments(payments []models.Payment, by string, asc bool) {
	less := func(a, b models.Payment) bool {
		switch by {
		case "amount":
			return a.Amount.LessThan(b.Amount)
		case "remaining":
			return a.Remaining.LessThan(b.Remaining)
		case "employee":
			return a.Employee < b.Employee
		default:
			if a.Date == nil || b.Date == nil {
				return a.Date != nil && b.Date == nil
			}
			return a.Date.Before(*b.Date)
		}
	}
	sort.SliceStable(payments, func(i, j int) bool {
		if asc {
			return less(payments[i], payments[j])
		}
		return less(payments[j], payments[i])
	})
}
