package models

import (
	"time"
)

// Order 销售订单（外部系统维护，佣金引擎只读取并回写同步字段）
type Order struct {
	ID                   uint       `gorm:"primarykey" json:"id"`                                        // 主键
	Numero               string     `gorm:"type:varchar(64);index" json:"numero"`                        // 订单编号
	Status               string     `gorm:"type:varchar(32);index;not null" json:"status"`               // 订单状态
	ClienteNome          string     `gorm:"type:varchar(255);index" json:"cliente_nome"`                 // 客户名称
	RepresentanteCodigo  string     `gorm:"type:varchar(64);index" json:"representante_codigo"`          // 代表编码
	RepresentanteNome    string     `gorm:"type:varchar(255)" json:"representante_nome"`                 // 代表名称
	ValorTotal           Money      `gorm:"type:decimal(20,2);not null;default:0" json:"valor_total"`    // 订单总额
	TotalPago            Money      `gorm:"type:decimal(20,2);not null;default:0" json:"total_pago"`     // 实收金额
	SaldoRestante        Money      `gorm:"type:decimal(20,2);not null;default:0" json:"saldo_restante"` // 剩余未付金额
	PorcentagemComissao  *Money     `gorm:"type:decimal(10,2)" json:"porcentagem_comissao"`              // 佣金比例（为空时使用默认值）
	DataPagamento        string     `gorm:"type:varchar(40)" json:"data_pagamento"`                      // 付款日期（YYYY-MM-DD 或完整时间戳）
	ComissaoLastSync     *time.Time `gorm:"index" json:"comissao_last_sync"`                             // 最近一次佣金同步时间
	ComissaoEntryID      *uint      `gorm:"index" json:"comissao_entry_id"`                              // 关联佣金记录
	ComissaoFechamentoID *uint      `gorm:"index" json:"comissao_fechamento_id"`                         // 所属结算快照
	ComissaoMesAnoPago   *string    `gorm:"type:varchar(7)" json:"comissao_mes_ano_pago"`                // 佣金支付月份
	ComissaoPaga         bool       `gorm:"not null;default:false;index" json:"comissao_paga"`           // 佣金是否已支付
	CreatedAt            time.Time  `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt            time.Time  `gorm:"index" json:"updated_at"`                                     // 更新时间
}

// TableName 指定表名
func (Order) TableName() string {
	return "pedidos"
}
