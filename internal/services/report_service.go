package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"megacrm-backend/internal/aggregate"
	"megacrm-backend/internal/ledger"
	"megacrm-backend/internal/models"
	"megacrm-backend/internal/phone"
	"megacrm-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

// ReportService handles report generation
type ReportService struct {
	Dashboard *DashboardService
	Payments  *PaymentService
}

// NewReportService creates a new report service
func NewReportService(dashboard *DashboardService, payments *PaymentService) *ReportService {
	return &ReportService{Dashboard: dashboard, Payments: payments}
}

// ClientsCSV exports the unified client table, or one employee's part of it
func (s *ReportService) ClientsCSV(ctx context.Context, employee string) ([]byte, error) {
	views, err := s.Dashboard.Views(ctx)
	if err != nil {
		return nil, err
	}
	views = aggregate.FilterEmployee(views, employee)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append([]string{"Source"}, models.ClientHeader...)
	header = append(header, "Alerte calculée", "Mois")
	w.Write(header)

	for _, v := range views {
		w.Write([]string{
			v.Source,
			v.Name,
			phone.Display(v.PhoneKey),
			v.ContactType,
			v.Formation,
			v.Remark,
			timeutil.FormatOptionalDate(v.DateAdded),
			timeutil.FormatOptionalDate(v.FollowUp),
			v.ManualAlert,
			v.Enrollment,
			v.Employee,
			v.Tag,
			v.Alert,
			v.Month,
		})
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write clients csv: %w", err)
	}
	return buf.Bytes(), nil
}

// PaymentsCSV exports every installment matching the filter, with a totals row
func (s *ReportService) PaymentsCSV(ctx context.Context, session *models.Session, f models.PaymentFilter) ([]byte, error) {
	list, err := s.Payments.All(ctx, session, f)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write(append([]string{"Employe"}, models.PaymentHeader...))
	for _, p := range list.Payments {
		w.Write([]string{
			p.Employee,
			phone.Display(p.PhoneKey),
			p.Formation,
			ledger.FormatAmount(p.Price),
			ledger.FormatAmount(p.Amount),
			timeutil.FormatOptionalDate(p.Date),
			ledger.FormatAmount(p.Remaining),
		})
	}
	w.Write([]string{""})
	w.Write([]string{"Total payé", ledger.FormatAmount(list.TotalPaid)})
	w.Write([]string{"Total reste", ledger.FormatAmount(list.TotalRemaining)})

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write payments csv: %w", err)
	}
	return buf.Bytes(), nil
}

// DashboardPDF renders the KPIs and the per-employee table
func (s *ReportService) DashboardPDF(ctx context.Context) ([]byte, error) {
	d, err := s.Dashboard.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.Dashboard.ByEmployee(ctx)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Title
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "MegaCRM - Tableau de bord", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, tr(fmt.Sprintf("Généré le %s", timeutil.Stamp(timeutil.Now()))), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// KPIs
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Indicateurs", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(63, 8, fmt.Sprintf("Clients: %d", d.TotalClients), "1", 0, "C", false, 0, "")
	pdf.CellFormat(63, 8, tr(fmt.Sprintf("Ajoutés aujourd'hui: %d", d.AddedToday)), "1", 0, "C", false, 0, "")
	pdf.CellFormat(64, 8, tr(fmt.Sprintf("Inscrits aujourd'hui: %d", d.EnrolledToday)), "1", 1, "C", false, 0, "")
	pdf.CellFormat(63, 8, fmt.Sprintf("Alertes: %d", d.Alerts), "1", 0, "C", false, 0, "")
	pdf.CellFormat(63, 8, fmt.Sprintf("Inscrits: %d", d.Enrolled), "1", 0, "C", false, 0, "")
	pdf.CellFormat(64, 8, fmt.Sprintf("Taux: %.2f%%", d.Rate), "1", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Per employee
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, tr("Par employé"), "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(50, 7, tr("Employé"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Clients", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Inscrits", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Alertes", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Ajout. auj.", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Taux", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, g := range stats {
		pdf.CellFormat(50, 6, tr(g.Key), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, strconv.Itoa(g.Clients), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, strconv.Itoa(g.Enrolled), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, strconv.Itoa(g.Alerts), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, strconv.Itoa(g.AddedToday), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.2f%%", g.Rate), "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	err = pdf.Output(&buf)
	if err != nil {
		return nil, fmt.Errorf("render dashboard pdf: %w", err)
	}
	return buf.Bytes(), nil
}
