package constants

// 订单状态常量
const (
	OrderStatusPending  = "pendente"
	OrderStatusPaid     = "pago"
	OrderStatusCanceled = "cancelado"
)

// 佣金记录状态常量
const (
	CommissionStatusOpen   = "aberto"
	CommissionStatusClosed = "fechado"
)

// 结算快照状态常量
const (
	SettlementStatusDraft     = "rascunho"
	SettlementStatusOpen      = "aberto"
	SettlementStatusFinalized = "finalizado"
)

// 同步任务状态常量
const (
	SyncJobStatusQueued     = "na_fila"
	SyncJobStatusProcessing = "processando"
	SyncJobStatusConcluded  = "concluido"
	SyncJobStatusError      = "erro"
)

// 进度流阶段常量（前端状态机依赖，取值不可变更）
const (
	StreamPhaseStarting   = "iniciando"
	StreamPhaseProcessing = "processando"
	StreamPhaseConcluded  = "concluido"
	StreamPhaseError      = "erro"
)

// 单笔订单生成佣金结果常量
const (
	GenerateStatusSkipped        = "skipped"
	GenerateStatusSkippedPartial = "skipped_partial"
	GenerateStatusSkippedZero    = "skipped_zero"
	GenerateStatusCreated        = "created"
	GenerateStatusUpdated        = "updated"
)

// 佣金调整动作常量
const (
	CommissionActionUpdateBase = "atualizar_base"
	CommissionActionTransfer   = "transferir"
)

// 通知优先级常量
const (
	NotificationPriorityNormal = "normal"
	NotificationPriorityHigh   = "alta"
)

// 通知类型常量
const (
	NotificationTypeCommissionSync = "sincronizacao_comissoes"
)

// 队列常量
const (
	QueueDefault          = "default"
	QueueCritical         = "critical"
	TaskCommissionSyncJob = "commission:sync_job"
	TaskNotificationEmail = "notification:email"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "cms"
)

// 佣金计算默认值
const (
	DefaultCommissionPercent = 5
	DefaultSyncBatchSize     = 50
	// PaidBalanceTolerance 剩余未付金额容差
	PaidBalanceTolerance = "0.01"
)

// 系统操作人
const (
	ActorSystem = "sistema"
)

// 角色审计动作
const (
	AuthzAuditActionSetAdminRoles = "definir_perfis"
)
