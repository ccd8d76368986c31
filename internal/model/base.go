package model

import "time"

type BaseModel struct {
	ID        string    `db:"id" json:"id" yaml:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt,omitzero" yaml:"createdAt,omitempty"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt,omitzero" yaml:"updatedAt,omitempty"`
}
