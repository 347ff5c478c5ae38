package model

import "time"

// RawEntry is a time entry as returned by the ConnectWise time/entries API.
// Optional objects are nil when the API omits them or sends null.
type RawEntry struct {
	ID           int64      `json:"id"`
	TimeStart    string     `json:"timeStart"`
	TimeEnd      string     `json:"timeEnd"`
	ActualHours  float64    `json:"actualHours"`
	Notes        string     `json:"notes"`
	Ticket       *TicketRef `json:"ticket"`
	Member       *NamedRef  `json:"member"`
	Project      *NamedRef  `json:"project"`
	TicketBoard  string     `json:"ticketBoard"`
	TicketStatus string     `json:"ticketStatus"`
	WorkType     *NamedRef  `json:"workType"`
}

// TicketRef identifies the ticket an entry was logged against. ID is empty when
// the ticket object carries no id.
type TicketRef struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
}

// NamedRef is the {id, name} reference shape the API uses for members,
// projects and work types.
type NamedRef struct {
	Name string `json:"name"`
}

// TicketSummary returns the ticket summary, or "" without a ticket.
func (e RawEntry) TicketSummary() string {
	if e.Ticket == nil {
		return ""
	}
	return e.Ticket.Summary
}

// Row is a normalized entry. Dates and times are in Pacific/Auckland.
type Row struct {
	TicketID      string    `json:"ticket_id" yaml:"ticket_id"`
	TicketSummary string    `json:"ticket_summary" yaml:"ticket_summary"`
	Date          string    `json:"date" yaml:"date"`
	StartTime     string    `json:"start_time" yaml:"start_time"`
	EndTime       string    `json:"end_time" yaml:"end_time"`
	Start         time.Time `json:"start" yaml:"start"`
	End           time.Time `json:"end" yaml:"end"`
	Hours         float64   `json:"hours" yaml:"hours"`
	Engineer      string    `json:"engineer" yaml:"engineer"`
	Detail        string    `json:"detail" yaml:"detail"`
	Notes         string    `json:"notes" yaml:"notes"`
	Board         string    `json:"board" yaml:"board"`
	Status        string    `json:"status" yaml:"status"`
	WorkType      string    `json:"work_type" yaml:"work_type"`
}
