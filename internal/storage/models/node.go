package models

import "time"

// Node is a registered Travis instance
type Node struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Subscription binds a project to a job of a node
type Subscription struct {
	ID        int       `json:"id" db:"id"`
	Node      string    `json:"node" db:"node_id"`
	Project   string    `json:"project" db:"project"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Parameter is a single stored key/value pair
type Parameter struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}
