package models

import "time"

// Admin 后台管理员（发起同步、调整佣金的操作人）
type Admin struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	Username     string     `gorm:"uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"size:255" json:"email"` // 同步任务完成通知邮箱
	PasswordHash string     `gorm:"not null" json:"-"`
	TokenVersion uint64     `gorm:"not null;default:0" json:"-"` // 递增后旧 Token 全部失效
	IsSuper      bool       `gorm:"not null;default:false;index" json:"is_super"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (Admin) TableName() string {
	return "admins"
}
