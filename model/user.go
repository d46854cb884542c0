package model

import (
	"time"
)

type User struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	Name string `gorm:"column:name;type:varchar(50);not null" json:"name"`

	Email string `gorm:"column:email;type:varchar(255);not null;unique" json:"email"`

	Password string `gorm:"column:password;type:varchar(255);not null" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (User) TableName() string {
	return "user_db"
}
