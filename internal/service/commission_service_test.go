package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/comissoes-next/internal/constants"
	"github.com/comissoes-next/internal/models"
	"github.com/comissoes-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCommissionServiceTest(t *testing.T) (*CommissionService, *gorm.DB) {
	t.Helper()

	db := openCommissionTestDB(t)
	commissionRepo := repository.NewCommissionRepository(db)
	settlementRepo := repository.NewSettlementRepository(db)
	reassignment := NewReassignmentService(
		repository.NewOrderRepository(db),
		commissionRepo,
		repository.NewCustomerRepository(db),
		repository.NewRepresentativeRepository(db),
		settlementRepo,
	)
	svc := NewCommissionService(commissionRepo, settlementRepo, reassignment)
	svc.now = futureClock
	return svc, db
}

func decimalPtr(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func TestUpdateBaseRecomputesCommission(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)
	order := createTestOrder(t, db, testOrder{Numero: "P-1", Pago: 100})
	entry := createTestEntry(t, db, order.ID, "2026-03", constants.CommissionStatusOpen)

	updated, err := svc.UpdateBase(UpdateBaseInput{
		EntryID:    entry.ID,
		ValorBase:  decimalPtr("800.005"),
		Percentual: decimalPtr("7.5"),
		Usuario:    "ana",
	})
	if err != nil {
		t.Fatalf("update base failed: %v", err)
	}
	if !updated.ValorBase.Equal(decimal.RequireFromString("800.01")) {
		t.Fatalf("base should be rounded to 800.01, got %s", updated.ValorBase.String())
	}
	if !updated.ValorComissao.Equal(decimal.RequireFromString("60")) {
		t.Fatalf("expected commission 60.00, got %s", updated.ValorComissao.String())
	}
	if !strings.Contains(updated.Observacao, "Ajuste manual por ana") {
		t.Fatalf("expected audit note, got %q", updated.Observacao)
	}

	// 只改比例时沿用原基数
	again, err := svc.UpdateBase(UpdateBaseInput{EntryID: entry.ID, Percentual: decimalPtr("10")})
	if err != nil {
		t.Fatalf("update percent failed: %v", err)
	}
	if !again.ValorComissao.Equal(decimal.RequireFromString("80")) {
		t.Fatalf("expected commission 80.00, got %s", again.ValorComissao.String())
	}
	if strings.Count(again.Observacao, "\n") != 1 {
		t.Fatalf("notes must be appended, got %q", again.Observacao)
	}
}

// closeAfterReadRepo 读取记录后立即在库中关闭它，模拟并发的月结
type closeAfterReadRepo struct {
	repository.CommissionRepository
	db *gorm.DB
}

func (r *closeAfterReadRepo) GetByID(id uint) (*models.CommissionEntry, error) {
	entry, err := r.CommissionRepository.GetByID(id)
	if err != nil || entry == nil {
		return entry, err
	}
	if err := r.db.Model(&models.CommissionEntry{}).Where("id = ?", id).
		UpdateColumn("status", constants.CommissionStatusClosed).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func TestUpdateBaseRejectsEntryClosedAfterLoad(t *testing.T) {
	db := openCommissionTestDB(t)
	order := createTestOrder(t, db, testOrder{Numero: "P-1", Pago: 100})
	entry := createTestEntry(t, db, order.ID, "2026-03", constants.CommissionStatusOpen)
	svc := NewCommissionService(&closeAfterReadRepo{CommissionRepository: repository.NewCommissionRepository(db), db: db}, repository.NewSettlementRepository(db), nil)

	_, err := svc.UpdateBase(UpdateBaseInput{EntryID: entry.ID, ValorBase: decimalPtr("900")})
	if !errors.Is(err, ErrCommissionClosed) {
		t.Fatalf("expected ErrCommissionClosed, got %v", err)
	}

	var stored models.CommissionEntry
	if err := db.First(&stored, entry.ID).Error; err != nil {
		t.Fatalf("reload entry failed: %v", err)
	}
	if stored.Status != constants.CommissionStatusClosed || !stored.ValorBase.Equal(decimal.NewFromInt(100)) || stored.Observacao != "" {
		t.Fatalf("closed entry must stay untouched: %+v", stored)
	}
}

func TestUpdateBaseRejectsInvalidInput(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)
	order := createTestOrder(t, db, testOrder{Numero: "P-1", Pago: 100})
	closed := createTestEntry(t, db, order.ID, "2026-03", constants.CommissionStatusClosed)

	cases := []struct {
		name  string
		input UpdateBaseInput
		want  error
	}{
		{name: "closed", input: UpdateBaseInput{EntryID: closed.ID, ValorBase: decimalPtr("10")}, want: ErrCommissionClosed},
		{name: "missing", input: UpdateBaseInput{EntryID: 999, ValorBase: decimalPtr("10")}, want: ErrCommissionNotFound},
		{name: "negative base", input: UpdateBaseInput{EntryID: closed.ID, ValorBase: decimalPtr("-1")}, want: ErrCommissionBaseInvalid},
		{name: "percent over 100", input: UpdateBaseInput{EntryID: closed.ID, Percentual: decimalPtr("101")}, want: ErrCommissionPercentInvalid},
	}
	for _, tc := range cases {
		if _, err := svc.UpdateBase(tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("%s: want %v got %v", tc.name, tc.want, err)
		}
	}
}

func TestAdjustDispatchesByAction(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)
	order := createTestOrder(t, db, testOrder{Numero: "P-1", Pago: 100})
	entry := createTestEntry(t, db, order.ID, "2026-03", constants.CommissionStatusOpen)

	result, err := svc.Adjust(AdjustInput{
		Action:     constants.CommissionActionUpdateBase,
		UpdateBase: UpdateBaseInput{EntryID: entry.ID, ValorBase: decimalPtr("200")},
	})
	if err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if result.Action != constants.CommissionActionUpdateBase || result.Comissao == nil || result.Transferencia != nil {
		t.Fatalf("unexpected adjust result: %+v", result)
	}

	if _, err := svc.Adjust(AdjustInput{Action: "apagar"}); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
	if _, err := svc.Adjust(AdjustInput{Action: constants.CommissionActionTransfer}); !errors.Is(err, ErrRepresentativeRequired) {
		t.Fatalf("expected ErrRepresentativeRequired, got %v", err)
	}
}

func TestListAndGetSettlement(t *testing.T) {
	svc, db := setupCommissionServiceTest(t)
	o1 := createTestOrder(t, db, testOrder{Numero: "P-1", Pago: 100})
	o2 := createTestOrder(t, db, testOrder{Numero: "P-2", Pago: 100})
	createTestEntry(t, db, o1.ID, "2026-03", constants.CommissionStatusOpen)
	createTestEntry(t, db, o2.ID, "2026-04", constants.CommissionStatusClosed)

	rows, total, err := svc.List(repository.CommissionListFilter{Page: 1, PageSize: 10, MesCompetencia: "2026-04"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].PedidoID != o2.ID {
		t.Fatalf("unexpected list result: total=%d rows=%+v", total, rows)
	}

	if _, err := svc.GetSettlement(77); !errors.Is(err, ErrSettlementNotFound) {
		t.Fatalf("expected ErrSettlementNotFound, got %v", err)
	}
}
