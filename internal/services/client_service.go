package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"megacrm-backend/internal/aggregate"
	"megacrm-backend/internal/metrics"
	"megacrm-backend/internal/models"
	"megacrm-backend/internal/phone"
	"megacrm-backend/internal/realtime"
	"megacrm-backend/internal/repositories"
	"megacrm-backend/internal/store"
	"megacrm-backend/internal/timeutil"
)

// ClientService owns the employee client tables and the transfer log
type ClientService struct {
	Repo        *repositories.ClientRepository
	TransferLog *repositories.TransferLogRepository
	Changes     *Changes
	Now         func() time.Time
}

func NewClientService(repo *repositories.ClientRepository, transfers *repositories.TransferLogRepository, changes *Changes) *ClientService {
	return &ClientService{Repo: repo, TransferLog: transfers, Changes: changes, Now: timeutil.Now}
}

func (s *ClientService) ListEmployees(ctx context.Context) ([]string, error) {
	return s.Repo.ListEmployees(ctx)
}

func (s *ClientService) CreateEmployee(ctx context.Context, req *models.CreateEmployeeRequest) error {
	if err := ValidateStruct(req); err != nil {
		return err
	}
	name := strings.TrimSpace(req.Name)
	if !repositories.IsEmployeeTable(name) {
		return invalid("%q is a reserved name", name)
	}
	for _, table := range []string{name, repositories.PaymentsTable(name)} {
		if err := s.Repo.CheckTableName(table); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	if err := s.Repo.CreateEmployee(ctx, name); err != nil {
		if errors.Is(err, store.ErrTableExists) {
			return fmt.Errorf("employee %q: %w", name, ErrConflict)
		}
		return err
	}
	log.Printf("[Clients] employee table %q created", name)
	s.Changes.Notify(ctx, realtime.Event{Type: realtime.EmployeesChanged, Employee: name})
	return nil
}

// DeleteEmployee drops the employee table and every client in it
func (s *ClientService) DeleteEmployee(ctx context.Context, name string) error {
	if err := s.requireEmployee(ctx, name); err != nil {
		return err
	}
	if err := s.Repo.DeleteEmployee(ctx, name); err != nil {
		return err
	}
	log.Printf("[Clients] employee table %q deleted", name)
	s.Changes.Notify(ctx, realtime.Event{Type: realtime.EmployeesChanged, Employee: name})
	return nil
}

func (s *ClientService) requireEmployee(ctx context.Context, name string) error {
	employees, err := s.Repo.ListEmployees(ctx)
	if err != nil {
		return err
	}
	for _, e := range employees {
		if e == name {
			return nil
		}
	}
	return fmt.Errorf("employee %q: %w", name, ErrNotFound)
}

// views reads every employee table straight from the store. Uniqueness
// checks never go through the cache.
func (s *ClientService) views(ctx context.Context) ([]models.ClientView, error) {
	tables, err := s.Repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.Merge(tables, s.Now()), nil
}

func (s *ClientService) checkUnique(ctx context.Context, key, employee string, row int) error {
	views, err := s.views(ctx)
	if err != nil {
		return err
	}
	if dup, ok := aggregate.FindDuplicate(views, key, employee, row); ok {
		return fmt.Errorf("%w: %s is already a client of %s", ErrDuplicatePhone, phone.Display(key), dup.Source)
	}
	return nil
}

func parseOptionalDate(field, raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, ok := timeutil.ParseDate(raw)
	if !ok {
		return nil, invalid("%s: unrecognized date %q", field, raw)
	}
	return &t, nil
}

func (s *ClientService) AddClient(ctx context.Context, employee string, req *models.CreateClientRequest) (*models.ClientView, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	key := phone.Normalize(req.Phone)
	if key == "" {
		return nil, invalid("phone %q has no digits", req.Phone)
	}
	added, err := parseOptionalDate("date_added", req.DateAdded)
	if err != nil {
		return nil, err
	}
	if added == nil {
		today := timeutil.StartOfDay(s.Now())
		added = &today
	}
	followUp, err := parseOptionalDate("follow_up", req.FollowUp)
	if err != nil {
		return nil, err
	}
	if err := s.requireEmployee(ctx, employee); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, key, "", 0); err != nil {
		return nil, err
	}

	c := models.Client{
		Name:        strings.TrimSpace(req.Name),
		Phone:       key,
		PhoneKey:    key,
		ContactType: req.ContactType,
		Formation:   strings.TrimSpace(req.Formation),
		Remark:      strings.TrimSpace(req.Remark),
		DateAdded:   added,
		FollowUp:    followUp,
		Enrollment:  models.EnrollmentValue(req.Enrolled),
		Enrolled:    req.Enrolled,
		Employee:    employee,
	}
	if err := s.Repo.Append(ctx, employee, c); err != nil {
		return nil, err
	}
	metrics.ClientsCreated.Inc()
	s.Changes.Notify(ctx, realtime.Event{Type: realtime.ClientsChanged, Employee: employee})
	return s.view(ctx, employee, key)
}

// view reloads one client with its derived columns
func (s *ClientService) view(ctx context.Context, employee, key string) (*models.ClientView, error) {
	c, err := s.find(ctx, employee, key)
	if err != nil {
		return nil, err
	}
	views := aggregate.Merge([]models.EmployeeTable{{Employee: employee, Clients: []models.Client{c}}}, s.Now())
	return &views[0], nil
}

func (s *ClientService) find(ctx context.Context, employee, rawPhone string) (models.Client, error) {
	key := phone.Normalize(rawPhone)
	if key == "" {
		return models.Client{}, invalid("phone %q has no digits", rawPhone)
	}
	c, ok, err := s.Repo.Find(ctx, employee, key)
	if errors.Is(err, store.ErrTableNotFound) {
		return models.Client{}, fmt.Errorf("employee %q: %w", employee, ErrNotFound)
	}
	if err != nil {
		return models.Client{}, err
	}
	if !ok {
		return models.Client{}, fmt.Errorf("client %s of %s: %w", phone.Display(key), employee, ErrNotFound)
	}
	return c, nil
}

// appendStamped adds "[dd/mm/yyyy HH:MM] note" on a new line of remark
func appendStamped(remark, note string, at time.Time) string {
	line := timeutil.Stamp(at) + " " + strings.TrimSpace(note)
	if strings.TrimSpace(remark) == "" {
		return line
	}
	return strings.TrimRight(remark, "\n") + "\n" + line
}

func (s *ClientService) EditClient(ctx context.Context, employee, phoneKey string, req *models.UpdateClientRequest) (*models.ClientView, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	key := phone.Normalize(req.Phone)
	if key == "" {
		return nil, invalid("phone %q has no digits", req.Phone)
	}
	followUp, err := parseOptionalDate("follow_up", req.FollowUp)
	if err != nil {
		return nil, err
	}
	added, err := parseOptionalDate("date_added", req.DateAdded)
	if err != nil {
		return nil, err
	}

	c, err := s.find(ctx, employee, phoneKey)
	if err != nil {
		return nil, err
	}
	if key != c.PhoneKey {
		if err := s.checkUnique(ctx, key, employee, c.Row); err != nil {
			return nil, err
		}
	}

	fields := map[int]string{
		models.ColName:        strings.TrimSpace(req.Name),
		models.ColPhone:       key,
		models.ColContactType: req.ContactType,
		models.ColFormation:   strings.TrimSpace(req.Formation),
		models.ColFollowUp:    timeutil.FormatOptionalDate(followUp),
		models.ColEnrollment:  models.EnrollmentValue(req.Enrolled),
	}
	if added != nil {
		fields[models.ColDateAdded] = timeutil.FormatDate(*added)
	}

	remark := c.Remark
	if req.Remark != nil && strings.TrimSpace(*req.Remark) != strings.TrimSpace(c.Remark) {
		remark = strings.TrimSpace(*req.Remark)
	}
	if strings.TrimSpace(req.Note) != "" {
		remark = appendStamped(remark, req.Note, s.Now())
	}
	if remark != c.Remark {
		fields[models.ColRemark] = remark
	}

	if err := s.Repo.UpdateFields(ctx, employee, c.Row, fields); err != nil {
		return nil, err
	}
	s.Changes.Notify(ctx, realtime.Event{Type: realtime.ClientsChanged, Employee: employee})
	return s.view(ctx, employee, key)
}

func (s *ClientService) AppendNote(ctx context.Context, employee, phoneKey string, req *models.NoteRequest) (*models.ClientView, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	c, err := s.find(ctx, employee, phoneKey)
	if err != nil {
		return nil, err
	}
	remark := appendStamped(c.Remark, req.Note, s.Now())
	return s.setField(ctx, employee, c, models.ColRemark, remark)
}

// SetTag stores a #RRGGBB color, empty clears it
func (s *ClientService) SetTag(ctx context.Context, employee, phoneKey string, req *models.TagRequest) (*models.ClientView, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	c, err := s.find(ctx, employee, phoneKey)
	if err != nil {
		return nil, err
	}
	return s.setField(ctx, employee, c, models.ColTag, strings.ToLower(req.Color))
}

// SetAlert stores a manual alert override, empty clears it
func (s *ClientService) SetAlert(ctx context.Context, employee, phoneKey string, req *models.AlertRequest) (*models.ClientView, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	c, err := s.find(ctx, employee, phoneKey)
	if err != nil {
		return nil, err
	}
	return s.setField(ctx, employee, c, models.ColAlert, strings.TrimSpace(req.Text))
}

func (s *ClientService) setField(ctx context.Context, employee string, c models.Client, col int, value string) (*models.ClientView, error) {
	if err := s.Repo.UpdateFields(ctx, employee, c.Row, map[int]string{col: value}); err != nil {
		return nil, err
	}
	s.Changes.Notify(ctx, realtime.Event{Type: realtime.ClientsChanged, Employee: employee})
	return s.view(ctx, employee, c.PhoneKey)
}

// Reassign moves a client row from one employee table to another: append to
// the destination, delete from the source, then log the transfer. The steps
// are not atomic; a failure after the append leaves the row in both tables
// and is reported as such.
func (s *ClientService) Reassign(ctx context.Context, actor string, req *models.ReassignRequest) (*models.TransferLog, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := s.requireEmployee(ctx, req.Destination); err != nil {
		return nil, err
	}
	c, err := s.find(ctx, req.Source, req.Phone)
	if err != nil {
		return nil, err
	}

	moved := c
	moved.Employee = req.Destination
	if err := s.Repo.Append(ctx, req.Destination, moved); err != nil {
		return nil, err
	}
	if err := s.Repo.Delete(ctx, req.Source, c.Row); err != nil {
		s.Changes.Notify(ctx, realtime.Event{Type: realtime.ClientsChanged, Employee: req.Destination})
		return nil, fmt.Errorf("client copied to %s but still present in %s: %w", req.Destination, req.Source, err)
	}

	entry := models.TransferLog{
		At:          s.Now(),
		Actor:       actor,
		ClientName:  c.Name,
		PhoneKey:    c.PhoneKey,
		Source:      req.Source,
		Destination: req.Destination,
	}
	metrics.ClientsReassigned.Inc()
	s.Changes.Notify(ctx, realtime.Event{Type: realtime.ClientsChanged})
	if err := s.TransferLog.Create(ctx, entry); err != nil {
		return &entry, fmt.Errorf("client moved but transfer log not written: %w", err)
	}
	log.Printf("[Clients] %s moved %s from %s to %s", actor, phone.Display(c.PhoneKey), req.Source, req.Destination)
	return &entry, nil
}

func (s *ClientService) Transfers(ctx context.Context) ([]models.TransferLog, error) {
	return s.TransferLog.List(ctx)
}

// Search looks a phone number up across every employee table
func (s *ClientService) Search(ctx context.Context, rawPhone string) ([]models.ClientView, error) {
	if phone.Normalize(rawPhone) == "" {
		return nil, invalid("phone is required")
	}
	views, err := s.views(ctx)
	if err != nil {
		return nil, err
	}
	found := aggregate.SearchPhone(views, rawPhone)
	if found == nil {
		found = []models.ClientView{}
	}
	return found, nil
}

// ListClients returns one employee table filtered, with the month list and
// the number of rows still waiting for a remark
func (s *ClientService) ListClients(ctx context.Context, employee string, f models.ClientFilter) (*models.ClientList, error) {
	t, err := s.Repo.Load(ctx, employee)
	if errors.Is(err, store.ErrTableNotFound) {
		return nil, fmt.Errorf("employee %q: %w", employee, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	all := aggregate.Merge([]models.EmployeeTable{t}, s.Now())
	clients := aggregate.Apply(all, f)
	if clients == nil {
		clients = []models.ClientView{}
	}
	return &models.ClientList{
		Employee:       employee,
		Clients:        clients,
		Months:         aggregate.Months(all),
		PendingRemarks: aggregate.PendingRemarks(all),
		Skipped:        t.Skipped,
	}, nil
}
