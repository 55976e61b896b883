package repository

import (
	"strings"

	"github.com/comissoes-next/internal/models"

	"gorm.io/gorm"
)

// CustomerRepository 客户数据访问接口
type CustomerRepository interface {
	GetByNome(nome string) (*models.Customer, error)
	Create(customer *models.Customer) error
	UpdateRepresentative(id uint, codigo, nome string) error
}

// GormCustomerRepository GORM 实现
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository 创建客户仓库
func NewCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// GetByNome 根据名称获取客户
func (r *GormCustomerRepository) GetByNome(nome string) (*models.Customer, error) {
	name := strings.TrimSpace(nome)
	if name == "" {
		return nil, nil
	}
	return firstOrNil[models.Customer](r.db.Where("nome = ?", name))
}

// Create 创建客户
func (r *GormCustomerRepository) Create(customer *models.Customer) error {
	return r.db.Create(customer).Error
}

// UpdateRepresentative 更新客户所属代表
func (r *GormCustomerRepository) UpdateRepresentative(id uint, codigo, nome string) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.Customer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"representante_codigo": codigo,
			"representante_nome":   nome,
		}).Error
}
