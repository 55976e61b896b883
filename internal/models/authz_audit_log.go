package models

import "time"

// AuthzAuditLog 管理员角色变更记录；DetailJSON 保存变更前后的角色列表
type AuthzAuditLog struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	OperatorAdminID  uint      `gorm:"index;not null" json:"operator_admin_id"`
	OperatorUsername string    `gorm:"type:varchar(100);not null;default:''" json:"operator_username"`
	TargetAdminID    uint      `gorm:"index;not null" json:"target_admin_id"`
	TargetUsername   string    `gorm:"type:varchar(100);not null;default:''" json:"target_username"`
	Action           string    `gorm:"type:varchar(60);index;not null" json:"action"`
	RequestID        string    `gorm:"type:varchar(64);not null;default:''" json:"request_id"`
	DetailJSON       JSON      `gorm:"type:text" json:"detail"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}

func (AuthzAuditLog) TableName() string { return "auditoria_perfis" }
