package models

import "fmt"

// University groups schools.
type University struct {
	ID      string  `db:"id" json:"id"`
	Name    string  `db:"name" json:"name"`
	Address *string `db:"address" json:"address,omitempty"`
	City    *string `db:"city" json:"city,omitempty"`
}

func (u University) String() string {
	city := ""
	if u.City != nil {
		city = *u.City
	}
	return fmt.Sprintf("%s of %s", u.Name, city)
}

// UniversityFilter captures list parameters for universities.
type UniversityFilter struct {
	Search   string
	Page     int
	PageSize int
}

// School belongs to a university and offers degrees.
type School struct {
	ID           string  `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	Address      *string `db:"address" json:"address,omitempty"`
	UniversityID string  `db:"university_id" json:"university_id"`
}

func (s School) String() string { return s.Name }

// Degree is a programme taught by a school.
type Degree struct {
	ID       string `db:"id" json:"id"`
	Title    string `db:"title" json:"title"`
	SchoolID string `db:"school_id" json:"school_id"`
}

func (d Degree) String() string { return d.Title }
