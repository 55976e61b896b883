package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/comissoes-next/internal/models"
)

// Competency 权责月份解析结果
type Competency struct {
	Date        string // 权责日期（月初）
	Month       string // 权责月份 YYYY-MM
	Rolled      bool   // 是否因原月份已关闭而滚动到当月
	OriginMonth string // 付款日期所在月份
}

// monthStatusCounter 按月份统计佣金记录（总数与已关闭数）
type monthStatusCounter interface {
	CountByMonth(month string) (int64, int64, error)
}

// competencyResolver 单次同步内的权责月份解析器，按原月份缓存开闭状态
type competencyResolver struct {
	counter monthStatusCounter
	now     func() time.Time

	mu     sync.Mutex
	closed map[string]bool
}

func newCompetencyResolver(counter monthStatusCounter, now func() time.Time) *competencyResolver {
	if now == nil {
		now = time.Now
	}
	return &competencyResolver{
		counter: counter,
		now:     now,
		closed:  make(map[string]bool),
	}
}

// Resolve 根据付款日期解析权责月份
func (r *competencyResolver) Resolve(paymentDate string) (Competency, error) {
	origin, err := monthOf(paymentDate)
	if err != nil {
		return Competency{}, err
	}
	closed, err := r.isClosed(origin)
	if err != nil {
		return Competency{}, err
	}
	if closed {
		current := r.now().Format("2006-01")
		return Competency{
			Date:        current + "-01",
			Month:       current,
			Rolled:      true,
			OriginMonth: origin,
		}, nil
	}
	return Competency{
		Date:        origin + "-01",
		Month:       origin,
		Rolled:      false,
		OriginMonth: origin,
	}, nil
}

// isClosed 月份存在记录且全部已关闭才视为关闭，无记录的月份永不关闭
func (r *competencyResolver) isClosed(month string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if closed, ok := r.closed[month]; ok {
		return closed, nil
	}
	total, closedCount, err := r.counter.CountByMonth(month)
	if err != nil {
		return false, fmt.Errorf("check competency month %s: %w", month, err)
	}
	closed := total > 0 && closedCount == total
	r.closed[month] = closed
	return closed, nil
}

// monthOf 截取日期字符串的 YYYY-MM 部分
func monthOf(date string) (string, error) {
	value := strings.TrimSpace(date)
	if len(value) < 7 {
		return "", fmt.Errorf("invalid payment date %q", date)
	}
	month := value[:7]
	if _, err := time.Parse("2006-01", month); err != nil {
		return "", fmt.Errorf("invalid payment date %q", date)
	}
	return month, nil
}

// paymentDateOf 订单付款日期，缺失时回落到最后更新日期
func paymentDateOf(order *models.Order) string {
	if date := strings.TrimSpace(order.DataPagamento); date != "" {
		return date
	}
	return order.UpdatedAt.Format("2006-01-02")
}
