package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Role идентификатор роли пользователя, совпадает с role_id в таблице users.
type Role int

const (
	// RoleAdmin администратор системы.
	RoleAdmin Role = 1
	// RoleManager менеджер аптеки.
	RoleManager Role = 2
	// RolePharmacist фармацевт.
	RolePharmacist Role = 3
	// RoleSalesman продавец.
	RoleSalesman Role = 4
)

var roleNames = map[Role]string{
	RoleAdmin:      "admin",
	RoleManager:    "manager",
	RolePharmacist: "pharmacist",
	RoleSalesman:   "salesman",
}

// Valid сообщает, входит ли роль в известный набор.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "role(" + strconv.Itoa(int(r)) + ")"
}

// ParseRole принимает имя роли ("admin", "Manager") или её числовой идентификатор.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		r := Role(n)
		if !r.Valid() {
			return 0, fmt.Errorf("unknown role id %d: %w", n, ErrValidation)
		}
		return r, nil
	}
	for r, name := range roleNames {
		if strings.EqualFold(name, s) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q: %w", s, ErrValidation)
}
