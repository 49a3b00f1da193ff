package models

import "fmt"

// RowError reports a stored row that could not be decoded
type RowError struct {
	Table  string `json:"table"`
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s row %d: %s", e.Table, e.Row, e.Reason)
}
