package repository

import "time"

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page                int
	PageSize            int
	Status              string
	RepresentanteCodigo string
	Busca               string
}

// CommissionListFilter 查询佣金记录列表的过滤条件
type CommissionListFilter struct {
	Page                int
	PageSize            int
	PedidoID            uint
	MesCompetencia      string
	Status              string
	RepresentanteCodigo string
	Busca               string
}

// SyncJobListFilter 查询同步任务列表的过滤条件
type SyncJobListFilter struct {
	Page     int
	PageSize int
	Status   string
}

// AuthzAuditLogListFilter 角色变更审计查询条件
type AuthzAuditLogListFilter struct {
	Page            int
	PageSize        int
	OperatorAdminID uint
	TargetAdminID   uint
	Action          string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}
