package models

import "time"

// Representative 销售代表
type Representative struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                // 主键
	Codigo    string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"codigo"` // 代表编码
	Nome      string    `gorm:"type:varchar(255);not null" json:"nome"`              // 代表名称
	Email     string    `gorm:"type:varchar(255)" json:"email"`                      // 联系邮箱
	Ativo     bool      `gorm:"not null;default:true" json:"ativo"`                  // 是否启用
	CreatedAt time.Time `gorm:"index" json:"created_at"`                             // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                             // 更新时间
}

// TableName 指定表名
func (Representative) TableName() string {
	return "representantes"
}
