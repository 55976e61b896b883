package main

import (
	"github.com/comissoes-next/internal/app"
	"github.com/comissoes-next/internal/config"
	"github.com/comissoes-next/internal/constants"
	"github.com/comissoes-next/internal/logger"
	"github.com/comissoes-next/internal/models"
	"github.com/comissoes-next/internal/repository"
)

type seedOrder struct {
	Numero        string
	Cliente       string
	Representante string
	Total         float64
	Pago          float64
	Percentual    *models.Money
	DataPagamento string
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := app.OpenDatabase(cfg.Database, false); err != nil {
		stdLog.Fatalf("Failed to prepare database: %v", err)
	}

	representativeRepo := repository.NewRepresentativeRepository(models.DB)
	customerRepo := repository.NewCustomerRepository(models.DB)
	orderRepo := repository.NewOrderRepository(models.DB)
	settlementRepo := repository.NewSettlementRepository(models.DB)

	// 销售代表
	representatives := []models.Representative{
		{Codigo: "R001", Nome: "Ana Souza", Email: "ana@example.com", Ativo: true},
		{Codigo: "R002", Nome: "Bruno Lima", Email: "bruno@example.com", Ativo: true},
		{Codigo: "R003", Nome: "Carla Dias", Ativo: false},
	}
	names := map[string]string{}
	for _, rep := range representatives {
		names[rep.Codigo] = rep.Nome
		existing, err := representativeRepo.GetByCodigo(rep.Codigo)
		if err != nil {
			stdLog.Printf("Failed to load representative %s: %v", rep.Codigo, err)
			continue
		}
		if existing != nil {
			stdLog.Printf("Representative already exists: %s", rep.Codigo)
			continue
		}
		if err := representativeRepo.Create(&rep); err != nil {
			stdLog.Printf("Failed to create representative %s: %v", rep.Codigo, err)
			continue
		}
		stdLog.Printf("Created representative: %s", rep.Codigo)
	}

	// 客户
	customers := []models.Customer{
		{Nome: "Mercado Central", RepresentanteCodigo: "R001"},
		{Nome: "Padaria Aurora", RepresentanteCodigo: "R001"},
		{Nome: "Distribuidora Sul", RepresentanteCodigo: "R002"},
	}
	for _, customer := range customers {
		existing, err := customerRepo.GetByNome(customer.Nome)
		if err != nil {
			stdLog.Printf("Failed to load customer %s: %v", customer.Nome, err)
			continue
		}
		if existing != nil {
			continue
		}
		customer.RepresentanteNome = names[customer.RepresentanteCodigo]
		if err := customerRepo.Create(&customer); err != nil {
			stdLog.Printf("Failed to create customer %s: %v", customer.Nome, err)
		}
	}

	// 订单：覆盖已付清、部分付款、自定义比例与无付款日期的情况
	orders := []seedOrder{
		{Numero: "PED-1001", Cliente: "Mercado Central", Representante: "R001", Total: 1000, Pago: 1000, DataPagamento: "2026-03-10"},
		{Numero: "PED-1002", Cliente: "Mercado Central", Representante: "R001", Total: 1200, Pago: 1200, DataPagamento: "2026-03-28T14:30:00Z"},
		{Numero: "PED-1003", Cliente: "Padaria Aurora", Representante: "R001", Total: 800, Pago: 300, DataPagamento: "2026-04-02"},
		{Numero: "PED-1004", Cliente: "Distribuidora Sul", Representante: "R002", Total: 5000, Pago: 5000, Percentual: models.MoneyPtr(3), DataPagamento: "2026-04-15"},
		{Numero: "PED-1005", Cliente: "Distribuidora Sul", Representante: "R002", Total: 650.5, Pago: 650.5},
	}
	for _, item := range orders {
		existing, err := orderRepo.GetByNumero(item.Numero)
		if err != nil {
			stdLog.Printf("Failed to load order %s: %v", item.Numero, err)
			continue
		}
		if existing != nil {
			stdLog.Printf("Order already exists: %s (id=%d)", existing.Numero, existing.ID)
			continue
		}
		order := models.Order{
			Numero:              item.Numero,
			Status:              constants.OrderStatusPaid,
			ClienteNome:         item.Cliente,
			RepresentanteCodigo: item.Representante,
			RepresentanteNome:   names[item.Representante],
			ValorTotal:          models.NewMoneyFromFloat(item.Total),
			TotalPago:           models.NewMoneyFromFloat(item.Pago),
			SaldoRestante:       models.NewMoneyFromFloat(item.Total - item.Pago),
			PorcentagemComissao: item.Percentual,
			DataPagamento:       item.DataPagamento,
		}
		if item.Pago < item.Total {
			order.Status = constants.OrderStatusPending
		}
		if err := orderRepo.Create(&order); err != nil {
			stdLog.Printf("Failed to create order %s: %v", order.Numero, err)
			continue
		}
		stdLog.Printf("Order ready: %s (id=%d)", order.Numero, order.ID)
	}

	// 结算快照示例（查询接口使用）
	openSnapshots, err := settlementRepo.ListByStatuses([]string{constants.SettlementStatusOpen})
	if err != nil {
		stdLog.Fatalf("Failed to load settlement snapshots: %v", err)
	}
	hasSnapshot := false
	for _, item := range openSnapshots {
		if item.RepresentanteCodigo == "R001" && item.MesAno == "2026-03" {
			hasSnapshot = true
			break
		}
	}
	if !hasSnapshot {
		snapshot := models.SettlementSnapshot{
			RepresentanteCodigo: "R001",
			RepresentanteNome:   names["R001"],
			MesAno:              "2026-03",
			Status:              constants.SettlementStatusOpen,
		}
		if err := settlementRepo.Create(&snapshot); err != nil {
			stdLog.Printf("Failed to create settlement snapshot: %v", err)
		}
	}

	stdLog.Printf("Seed completed")
}
