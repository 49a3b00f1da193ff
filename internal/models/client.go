package models

import (
	"strings"
	"time"
)

// Persisted enrollment values
const (
	EnrollmentYes = "Oui"
	EnrollmentNo  = "Pas encore"
)

// Contact channels offered when adding a client
var ContactTypes = []string{"Visiteur", "Appel téléphonique", "WhatsApp", "Social media"}

// ClientHeader is the column layout of every employee table
var ClientHeader = []string{
	"Nom & Prénom", "Téléphone", "Type de contact", "Formation", "Remarque",
	"Date ajout", "Date de suivi", "Alerte", "Inscription", "Employe", "Tag",
}

// Column positions in ClientHeader (1-based, as used by the store)
const (
	ColName = iota + 1
	ColPhone
	ColContactType
	ColFormation
	ColRemark
	ColDateAdded
	ColFollowUp
	ColAlert
	ColEnrollment
	ColEmployee
	ColTag
)

// IsEnrolled reports whether a stored enrollment value means "enrolled"
func IsEnrolled(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "oui", "inscrit":
		return true
	}
	return false
}

// EnrollmentValue is the canonical persisted value for an enrollment flag
func EnrollmentValue(enrolled bool) string {
	if enrolled {
		return EnrollmentYes
	}
	return EnrollmentNo
}

// Client is one decoded row of an employee table
type Client struct {
	Row         int        `json:"row"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone"`
	PhoneKey    string     `json:"phone_key"`
	ContactType string     `json:"contact_type"`
	Formation   string     `json:"formation"`
	Remark      string     `json:"remark"`
	DateAdded   *time.Time `json:"date_added,omitempty"`
	FollowUp    *time.Time `json:"follow_up,omitempty"`
	ManualAlert string     `json:"manual_alert,omitempty"`
	Enrollment  string     `json:"enrollment"`
	Enrolled    bool       `json:"enrolled"`
	Employee    string     `json:"employee"`
	Tag         string     `json:"tag,omitempty"`
}

// ClientView is a client with derived columns, as produced by the aggregation pipeline
type ClientView struct {
	Client
	Source string `json:"source"`
	Alert  string `json:"alert"`
	Month  string `json:"month"`
}

// CreateClientRequest represents the request body for adding a client
type CreateClientRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Phone       string `json:"phone" validate:"required"`
	ContactType string `json:"contact_type" validate:"omitempty,oneof=Visiteur 'Appel téléphonique' WhatsApp 'Social media'"`
	Formation   string `json:"formation" validate:"required"`
	Remark      string `json:"remark"`
	DateAdded   string `json:"date_added"`
	FollowUp    string `json:"follow_up"`
	Enrolled    bool   `json:"enrolled"`
}

// UpdateClientRequest represents the request body for editing a client
type UpdateClientRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Phone       string  `json:"phone" validate:"required"`
	ContactType string  `json:"contact_type" validate:"omitempty,oneof=Visiteur 'Appel téléphonique' WhatsApp 'Social media'"`
	Formation   string  `json:"formation"`
	DateAdded   string  `json:"date_added"`
	FollowUp    string  `json:"follow_up"`
	Enrolled    bool    `json:"enrolled"`
	Remark      *string `json:"remark,omitempty"`
	Note        string  `json:"note"`
}

type NoteRequest struct {
	Note string `json:"note" validate:"required"`
}

type TagRequest struct {
	Color string `json:"color" validate:"omitempty,hexcolor,len=7"`
}

type AlertRequest struct {
	Text string `json:"text" validate:"max=200"`
}

type ReassignRequest struct {
	Source      string `json:"source" validate:"required"`
	Destination string `json:"destination" validate:"required,nefield=Source"`
	Phone       string `json:"phone" validate:"required"`
}

type CreateEmployeeRequest struct {
	Name string `json:"name" validate:"required,max=90"`
}

// ClientFilter narrows an employee's client list
type ClientFilter struct {
	Month      string
	Formation  string
	AlertsOnly bool
}

// ClientList is the employee table view returned to the UI
type ClientList struct {
	Employee       string       `json:"employee"`
	Clients        []ClientView `json:"clients"`
	Months         []string     `json:"months"`
	PendingRemarks int          `json:"pending_remarks"`
	Skipped        []RowError   `json:"skipped,omitempty"`
}

// EmployeeTable is the decoded content of one employee table
type EmployeeTable struct {
	Employee string     `json:"employee"`
	Clients  []Client   `json:"clients"`
	Skipped  []RowError `json:"skipped,omitempty"`
}
