package models

import "time"

// Customer 客户（归属于某个销售代表）
type Customer struct {
	ID                  uint      `gorm:"primarykey" json:"id"`                               // 主键
	Nome                string    `gorm:"type:varchar(255);index;not null" json:"nome"`       // 客户名称
	RepresentanteCodigo string    `gorm:"type:varchar(64);index" json:"representante_codigo"` // 代表编码
	RepresentanteNome   string    `gorm:"type:varchar(255)" json:"representante_nome"`        // 代表名称
	CreatedAt           time.Time `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt           time.Time `gorm:"index" json:"updated_at"`                            // 更新时间
}

// TableName 指定表名
func (Customer) TableName() string {
	return "clientes"
}
