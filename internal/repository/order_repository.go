package repository

import (
	"strings"
	"time"

	"github.com/comissoes-next/internal/constants"
	"github.com/comissoes-next/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository

	GetByID(id uint) (*models.Order, error)
	GetByNumero(numero string) (*models.Order, error)
	Create(order *models.Order) error
	ListPaid() ([]models.Order, error)
	ListMovableByCustomer(clienteNome string) ([]models.Order, error)
	StampCommissionSync(id uint, entryID *uint, syncedAt time.Time) error
	Reassign(id uint, codigo, nome string) error
	List(filter OrderListFilter) ([]models.Order, int64, error)
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, nil
	}
	return firstOrNil[models.Order](r.db, id)
}

// GetByNumero 根据订单编号获取订单
func (r *GormOrderRepository) GetByNumero(numero string) (*models.Order, error) {
	numero = strings.TrimSpace(numero)
	if numero == "" {
		return nil, nil
	}
	return firstOrNil[models.Order](r.db.Where("numero = ?", numero))
}

// Create 创建订单
func (r *GormOrderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// ListPaid 获取全部已付款订单
func (r *GormOrderRepository) ListPaid() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Where("status = ?", constants.OrderStatusPaid).Order("id asc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListMovableByCustomer 获取同一客户下佣金未支付且未取消的订单
func (r *GormOrderRepository) ListMovableByCustomer(clienteNome string) ([]models.Order, error) {
	name := strings.TrimSpace(clienteNome)
	if name == "" {
		return []models.Order{}, nil
	}
	var orders []models.Order
	err := r.db.
		Where("cliente_nome = ?", name).
		Where("comissao_paga = ?", false).
		Where("status <> ?", constants.OrderStatusCanceled).
		Order("id asc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// StampCommissionSync 写入同步时间与佣金关联，不刷新 updated_at
func (r *GormOrderRepository) StampCommissionSync(id uint, entryID *uint, syncedAt time.Time) error {
	if id == 0 {
		return nil
	}
	updates := map[string]interface{}{
		"comissao_last_sync": syncedAt,
	}
	if entryID != nil {
		updates["comissao_entry_id"] = *entryID
	}
	return r.db.Model(&models.Order{}).Where("id = ?", id).UpdateColumns(updates).Error
}

// Reassign 转移订单代表并移出结算快照
func (r *GormOrderRepository) Reassign(id uint, codigo, nome string) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"representante_codigo":   codigo,
			"representante_nome":     nome,
			"comissao_fechamento_id": nil,
			"comissao_mes_ano_pago":  nil,
		}).Error
}

// List 分页查询订单
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if codigo := strings.TrimSpace(filter.RepresentanteCodigo); codigo != "" {
		query = query.Where("representante_codigo = ?", codigo)
	}
	query = applySearch(query, filter.Busca, "numero", "cliente_nome", "representante_nome")
	return countAndFind[models.Order](query, filter.Page, filter.PageSize, "id desc")
}
