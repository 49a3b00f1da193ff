package models

// Dashboard holds the headline KPIs
type Dashboard struct {
	TotalClients  int     `json:"total_clients"`
	AddedToday    int     `json:"added_today"`
	EnrolledToday int     `json:"enrolled_today"`
	Alerts        int     `json:"alerts"`
	Enrolled      int     `json:"enrolled"`
	Rate          float64 `json:"rate"`
}

// GroupStats is one row of a grouped breakdown (employee, month or formation)
type GroupStats struct {
	Key           string  `json:"key"`
	Clients       int     `json:"clients"`
	Enrolled      int     `json:"enrolled"`
	Alerts        int     `json:"alerts"`
	AddedToday    int     `json:"added_today"`
	EnrolledToday int     `json:"enrolled_today"`
	Rate          float64 `json:"rate"`
}
