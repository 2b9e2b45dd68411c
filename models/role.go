package models

import (
	"database/sql/driver"
	"fmt"
)

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

func (l *UserRole) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*l = UserRole(v)
	case []byte:
		*l = UserRole(v)
	default:
		return fmt.Errorf("cannot scan %T into UserRole", value)
	}
	return nil
}

func (l UserRole) Value() (driver.Value, error) {
	return string(l), nil
}

func (l UserRole) IsAdmin() bool {
	return l == RoleAdmin
}
