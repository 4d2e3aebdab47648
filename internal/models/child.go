package models

import "time"

// Child is a family member that posts and skills can be associated with
type Child struct {
	ID        string     `json:"id"`
	FamilyID  string     `json:"-"`
	Name      string     `json:"name"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Color     string     `json:"color,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Skill tracks a child's progress on one skill, 0 to 100
type Skill struct {
	ID        string    `json:"id"`
	ChildID   string    `json:"child_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Progress  int       `json:"progress"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
