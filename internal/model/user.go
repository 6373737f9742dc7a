package model

import "time"

type UserRole string

const (
	Student    UserRole = "student"
	Instructor UserRole = "instructor"
	Admin      UserRole = "admin"
)

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionCanceled SubscriptionStatus = "canceled"
	SubscriptionNone     SubscriptionStatus = "none"
)

// swagger:model
type User struct {
	BaseModel
	Name     string   `gorm:"size:100;not null" json:"name"`
	Email    string   `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password string   `gorm:"size:255;not null" json:"-"`
	Role     UserRole `gorm:"type:enum('student','instructor','admin');default:'student'" json:"role"`

	// 订阅制访问（与按课付费并行的第二种访问来源）
	SubscriptionStatus SubscriptionStatus `gorm:"size:20;default:'none'" json:"subscriptionStatus"`
	CurrentPeriodEnd   *time.Time         `json:"currentPeriodEnd,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// HasActiveSubscription 订阅有效：状态为active且计费周期未过期（无到期时间视为长期有效）
func (u *User) HasActiveSubscription(now time.Time) bool {
	if u.SubscriptionStatus != SubscriptionActive {
		return false
	}
	if u.CurrentPeriodEnd == nil {
		return true
	}
	return u.CurrentPeriodEnd.After(now)
}
