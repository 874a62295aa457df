package domain

import "time"

// User is a row of the users table owned by the user directory.
type User struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement" json:"user_id"`
	Username     string    `gorm:"column:username;not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"column:password;not null" json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}
