package domain

import "time"

// Snapshot is the full exported state of a catalog.
type Snapshot struct {
	Games       []Game    `json:"games"`
	Members     []Member  `json:"members"`
	Loans       []Loan    `json:"loans"`
	LastUpdated time.Time `json:"last_updated"`

	// Discarded names the categories a store found but could not read.
	// Saving this snapshot would overwrite what is left of them.
	Discarded []string `json:"-"`
}

// EmptySnapshot has non-nil, empty collections.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Games:   []Game{},
		Members: []Member{},
		Loans:   []Loan{},
	}
}
