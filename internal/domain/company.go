package domain

import "time"

// Company is owned upstream; this service only reads it.
type Company struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Job is the minimal projection of a job post needed to find its owning company.
type Job struct {
	ID        string
	CompanyID string
	Title     string
	CreatedAt time.Time
}
