package users

import (
	"time"
)

// tableName is injected at startup from USERS_TABLE_NAME.
var tableName = "users"

// SetTableName overrides the backing table name. Call before opening the DB.
func SetTableName(name string) {
	if name != "" {
		tableName = name
	}
}

type User struct {
	UserID    string    `json:"userId" gorm:"column:user_id;primaryKey;size:100"`
	Name      string    `json:"name" gorm:"not null;size:200"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return tableName
}

type CreateUserRequest struct {
	UserID string `json:"userId" validate:"required,userid"`
	Name   string `json:"name" validate:"required,notblank,max=200"`
}
