package models

import "time"

// TransferLogHeader is the column layout of the append-only transfer log table
var TransferLogHeader = []string{"Horodatage", "Acteur", "Client", "Téléphone", "Source", "Destination"}

// TransferLog records one client reassignment between employees
type TransferLog struct {
	At          time.Time `json:"at"`
	Actor       string    `json:"actor"`
	ClientName  string    `json:"client_name"`
	PhoneKey    string    `json:"phone_key"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
}
