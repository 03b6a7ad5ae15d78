package domain

import (
	"time"

	"github.com/google/uuid"
)

type Citizen struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Phone     string    `json:"phone" db:"phone"`
	Name      *string   `json:"name,omitempty" db:"name"`
	Email     *string   `json:"email,omitempty" db:"email"`
	IsActive  bool      `json:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Official is a staff member or supervisor. Both log in with a login id and
// password and belong to a department.
type Official struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	LoginID      string     `json:"loginId" db:"login_id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         Role       `json:"role" db:"role"`
	DepartmentID *uuid.UUID `json:"departmentId,omitempty" db:"department_id"`
	IsActive     bool       `json:"isActive" db:"is_active"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

type Department struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Code         string     `json:"code" db:"code"`
	Name         string     `json:"name" db:"name"`
	Category     string     `json:"category" db:"category"`
	State        string     `json:"state" db:"state"`
	City         string     `json:"city" db:"city"`
	Area         *string    `json:"area,omitempty" db:"area"`
	SupervisorID *uuid.UUID `json:"supervisorId,omitempty" db:"supervisor_id"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	ID           uuid.UUID  `json:"id"`
	Role         Role       `json:"role"`
	Name         string     `json:"name,omitempty"`
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	DepartmentID *uuid.UUID `json:"departmentId,omitempty"`
	Active       bool       `json:"active"`
}

func (c *Citizen) Principal() *Principal {
	p := &Principal{ID: c.ID, Role: RoleCitizen, Phone: c.Phone, Active: c.IsActive}
	if c.Name != nil {
		p.Name = *c.Name
	}
	if c.Email != nil {
		p.Email = *c.Email
	}
	return p
}

func (o *Official) Principal() *Principal {
	return &Principal{
		ID:           o.ID,
		Role:         o.Role,
		Name:         o.Name,
		Email:        o.Email,
		DepartmentID: o.DepartmentID,
		Active:       o.IsActive,
	}
}

// InDepartment reports whether the principal belongs to departmentID.
// A nil department on either side never matches.
func (p *Principal) InDepartment(departmentID *uuid.UUID) bool {
	if p == nil || p.DepartmentID == nil || departmentID == nil {
		return false
	}
	return *p.DepartmentID == *departmentID
}

type StartVerificationInput struct {
	Phone string `json:"phone" validate:"required"`
}

type VerifyPhoneInput struct {
	Phone string  `json:"phone" validate:"required"`
	OTP   string  `json:"otp" validate:"required,len=6,numeric"`
	Name  *string `json:"name" validate:"omitempty,max=100"`
}

type OfficialLoginInput struct {
	LoginID  string `json:"staffId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Success bool       `json:"success"`
	Token   string     `json:"token"`
	User    *Principal `json:"user"`
}
