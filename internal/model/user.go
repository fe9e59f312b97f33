package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == Student || r == Admin
}

type SubscriptionPlan string

const (
	PlanFree      SubscriptionPlan = "free"
	PlanOneMonth  SubscriptionPlan = "1-month"
	PlanSixMonths SubscriptionPlan = "6-months"
	PlanOneYear   SubscriptionPlan = "12-months"
	PlanTwoYears  SubscriptionPlan = "2-years"
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

type Subscription struct {
	Plan      SubscriptionPlan   `json:"plan"`
	Status    SubscriptionStatus `json:"status"`
	StartDate time.Time          `json:"startDate"`
	EndDate   *time.Time         `json:"endDate"`
}

// UserProfile users 集合中的用户档案，UID 由身份认证层分配
// swagger:model UserProfile
type UserProfile struct {
	UID          string        `gorm:"primaryKey;type:varchar(36)" json:"uid"`
	Email        string        `gorm:"size:100;uniqueIndex;not null" json:"email"`
	DisplayName  *string       `gorm:"size:100" json:"displayName"`
	Role         UserRole      `gorm:"size:20;default:'student'" json:"role"`
	Subscription *Subscription `gorm:"serializer:json;type:json" json:"subscription"`
	Password     string        `gorm:"size:100" json:"-"`
	Provider     string        `gorm:"size:20;default:'password'" json:"provider"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

func (UserProfile) TableName() string {
	return "users"
}

func (u *UserProfile) IsAdmin() bool {
	return u != nil && u.Role == Admin
}

// Name 展示用作者名：displayName > email > "Anonyme"
func (u *UserProfile) Name() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	if u.Email != "" {
		return u.Email
	}
	return "Anonyme"
}
