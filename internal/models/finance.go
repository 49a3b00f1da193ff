package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger kinds
const (
	KindRevenue = "revenue"
	KindExpense = "expense"
)

// Cash boxes an expense can be drawn from
const (
	CashBoxAdmin       = "Caisse_Admin"
	CashBoxStructure   = "Caisse_Structure"
	CashBoxInscription = "Caisse_Inscription"
)

var CashBoxes = []string{CashBoxAdmin, CashBoxStructure, CashBoxInscription}

// MonthNames are the month names used in finance table titles (index 0 = January)
var MonthNames = []string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Aout", "Septembre", "Octobre", "Novembre", "Décembre",
}

var RevenueHeader = []string{
	"Date", "Libellé", "Prix", "Montant Admin", "Montant Structure", "Montant Préinscription",
	"Montant Total", "Date Échéance", "Reste", "Mode", "Employé", "Catégorie", "Note", "Client",
}

var ExpenseHeader = []string{
	"Date", "Libellé", "Montant", "Caisse_Source", "Mode", "Employé", "Catégorie", "Note",
}

// Branch is a physical location with its own finance tables
type Branch struct {
	Name     string `mapstructure:"name" json:"name"`
	Code     string `mapstructure:"code" json:"code"`
	Password string `mapstructure:"password" json:"-"`
}

// FinanceTable returns the table title for a branch ledger month (1-12)
func FinanceTable(kind string, month int, code string) (string, error) {
	if month < 1 || month > 12 {
		return "", fmt.Errorf("invalid month %d", month)
	}
	prefix := "Revenue"
	if kind == KindExpense {
		prefix = "Dépense"
	}
	return fmt.Sprintf("%s %s (%s)", prefix, MonthNames[month-1], code), nil
}

// RevenueEntry is one income row of a branch month ledger
type RevenueEntry struct {
	Row             int             `json:"row"`
	Date            *time.Time      `json:"date,omitempty"`
	Label           string          `json:"label"`
	Price           decimal.Decimal `json:"price"`
	AdminAmount     decimal.Decimal `json:"admin_amount"`
	StructureAmount decimal.Decimal `json:"structure_amount"`
	PreRegAmount    decimal.Decimal `json:"prereg_amount"`
	Total           decimal.Decimal `json:"total"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	Remaining       decimal.Decimal `json:"remaining"`
	Mode            string          `json:"mode"`
	Employee        string          `json:"employee"`
	Category        string          `json:"category"`
	Note            string          `json:"note"`
	ClientKey       string          `json:"client_key,omitempty"`
}

// ExpenseEntry is one outflow row of a branch month ledger
type ExpenseEntry struct {
	Row      int             `json:"row"`
	Date     *time.Time      `json:"date,omitempty"`
	Label    string          `json:"label"`
	Amount   decimal.Decimal `json:"amount"`
	Source   string          `json:"source"`
	Mode     string          `json:"mode"`
	Employee string          `json:"employee"`
	Category string          `json:"category"`
	Note     string          `json:"note"`
}

// CreateRevenueRequest represents the request body for a revenue append
type CreateRevenueRequest struct {
	Date            string          `json:"date"`
	Label           string          `json:"label" validate:"max=200"`
	Price           decimal.Decimal `json:"price"`
	AdminAmount     decimal.Decimal `json:"admin_amount"`
	StructureAmount decimal.Decimal `json:"structure_amount"`
	PreRegAmount    decimal.Decimal `json:"prereg_amount"`
	DueDate         string          `json:"due_date"`
	Mode            string          `json:"mode"`
	Category        string          `json:"category"`
	Note            string          `json:"note"`
	ClientPhone     string          `json:"client_phone"`
	ClientEmployee  string          `json:"client_employee"`
}

// CreateExpenseRequest represents the request body for an expense append
type CreateExpenseRequest struct {
	Date     string          `json:"date"`
	Label    string          `json:"label" validate:"required,max=200"`
	Amount   decimal.Decimal `json:"amount"`
	Source   string          `json:"source" validate:"required,oneof=Caisse_Admin Caisse_Structure Caisse_Inscription"`
	Mode     string          `json:"mode"`
	Category string          `json:"category"`
	Note     string          `json:"note"`
}

// LedgerFilter narrows a month ledger listing
type LedgerFilter struct {
	From     *time.Time
	To       *time.Time
	Search   string
	Employee string
}

// LedgerList is the listing of one branch month ledger
type LedgerList struct {
	Branch   string          `json:"branch"`
	Kind     string          `json:"kind"`
	Month    int             `json:"month"`
	Revenues []RevenueEntry  `json:"revenues,omitempty"`
	Expenses []ExpenseEntry  `json:"expenses,omitempty"`
	Total    decimal.Decimal `json:"total"`
}

// FinanceSummary is the monthly net of a branch
type FinanceSummary struct {
	Branch   string                     `json:"branch"`
	Month    int                        `json:"month"`
	Revenue  decimal.Decimal            `json:"revenue"`
	Expenses decimal.Decimal            `json:"expenses"`
	Net      decimal.Decimal            `json:"net"`
	BySource map[string]decimal.Decimal `json:"by_source"`
}

// EnrolledClient is an entry of the revenue client picker
type EnrolledClient struct {
	Name      string `json:"name"`
	PhoneKey  string `json:"phone_key"`
	Phone     string `json:"phone"`
	Formation string `json:"formation"`
	Employee  string `json:"employee"`
}
