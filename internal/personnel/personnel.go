package personnel

import (
	"time"
)

// Personnel is the employee master record. It links one-to-one with a login
// user; leave applications and balances key off the personnel ID.
type Personnel struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	UserID     int64      `json:"user_id" gorm:"column:user_id;uniqueIndex;not null"`
	FirstName  string     `json:"first_name" gorm:"column:first_name;not null"`
	LastName   string     `json:"last_name" gorm:"column:last_name;not null"`
	Position   string     `json:"position"`
	Department string     `json:"department"`
	HireDate   *time.Time `json:"hire_date,omitempty" gorm:"column:hire_date;type:date"`
	IsActive   bool       `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt  time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Personnel) TableName() string {
	return "personnel"
}

func (p *Personnel) FullName() string {
	return p.FirstName + " " + p.LastName
}
