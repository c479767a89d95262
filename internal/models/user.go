// Package models содержит доменные структуры аптечной системы: пользователей,
// препараты и заказы, а также входные DTO для их создания и изменения.
package models

import "time"

// User представляет учётную запись сотрудника аптеки.
type User struct {
	ID               string     `json:"id"`
	FirstName        string     `json:"f_name"`
	LastName         string     `json:"l_name"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	PasswordHash     string     `json:"-"`
	RoleID           Role       `json:"role_id"`
	Avatar           *string    `json:"avatar"`
	ResetToken       *string    `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Sanitized возвращает копию пользователя без хэша пароля и данных сброса.
func (u *User) Sanitized() *User {
	c := *u
	c.PasswordHash = ""
	c.ResetToken = nil
	c.ResetTokenExpiry = nil
	return &c
}

// FullName собирает имя и фамилию через пробел.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Session проекция пользователя, которую получает клиент после входа.
type Session struct {
	ID     string  `json:"id"`
	Email  string  `json:"email"`
	Name   string  `json:"name"`
	RoleID Role    `json:"role_id"`
	Avatar *string `json:"avatar"`
}

// SessionView строит проекцию Session.
func (u *User) SessionView() Session {
	return Session{
		ID:     u.ID,
		Email:  u.Email,
		Name:   u.FullName(),
		RoleID: u.RoleID,
		Avatar: u.Avatar,
	}
}

// DummyUser входные данные для создания пользователя администратором.
type DummyUser struct {
	FirstName string `json:"f_name" form:"f_name" validate:"required,max=100"`
	LastName  string `json:"l_name" form:"l_name" validate:"required,max=100"`
	Email     string `json:"email" form:"email" validate:"required,email"`
	Phone     string `json:"phone" form:"phone" validate:"omitempty,max=32"`
	Password  string `json:"password" form:"password" validate:"required,min=6"`
	RoleID    Role   `json:"role_id" form:"role_id" validate:"required,min=1,max=4"`
}

// DummyUserUpdate входные данные для изменения пользователя администратором.
// Пустые поля не изменяются.
type DummyUserUpdate struct {
	FirstName string `json:"f_name" form:"f_name" validate:"omitempty,max=100"`
	LastName  string `json:"l_name" form:"l_name" validate:"omitempty,max=100"`
	Phone     string `json:"phone" form:"phone" validate:"omitempty,max=32"`
	RoleID    Role   `json:"role_id" form:"role_id" validate:"omitempty,min=1,max=4"`
}

// DummyProfile входные данные для редактирования собственного профиля.
type DummyProfile struct {
	FirstName   string `json:"f_name" form:"f_name" validate:"omitempty,max=100"`
	LastName    string `json:"l_name" form:"l_name" validate:"omitempty,max=100"`
	Email       string `json:"email" form:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" form:"phone" validate:"omitempty,max=32"`
	OldPassword string `json:"oldPassword" form:"oldPassword"`
	Password    string `json:"password" form:"password" validate:"omitempty,min=6"`
}

// Avatar загруженный файл изображения профиля.
type Avatar struct {
	Filename    string
	ContentType string
	Data        []byte
}
