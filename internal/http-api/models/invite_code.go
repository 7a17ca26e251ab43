package models

import "time"

// InviteCode grants its Role to the user who consumes it during registration.
type InviteCode struct {
	Code string `json:"code" gorm:"primaryKey;size:64"`
	Role string `json:"role" gorm:"not null"`
}

func (InviteCode) TableName() string {
	return "code"
}

// UsedInviteCode is the audit record of a registration attempt with a code.
type UsedInviteCode struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	InviteCode string    `json:"invite_code" gorm:"index;not null"`
	UserID     string    `json:"user_id"`
	UsedDate   time.Time `json:"used_date" gorm:"autoCreateTime"`
	Success    bool      `json:"success"`
}

func (UsedInviteCode) TableName() string {
	return "code_used"
}
