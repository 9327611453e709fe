package statistics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inkwell-labs/inkwell/internal/models"
	"github.com/inkwell-labs/inkwell/pkg/clock"
	"github.com/inkwell-labs/inkwell/pkg/types"
)

type StatisticType string

const (
	// Payment volume
	StatisticTypeDailyPaymentCount StatisticType = "daily_payment_count"
	StatisticTypeDailyRevenue      StatisticType = "daily_revenue"
	StatisticTypeTotalRevenue      StatisticType = "total_revenue"

	// Membership
	StatisticTypeDailyNewPremiumCount StatisticType = "daily_new_premium_count"
	StatisticTypeActivePremiumCount   StatisticType = "active_premium_count"

	// Product usage
	StatisticTypeDailyJournalCount StatisticType = "daily_journal_count"
	StatisticTypeDailySignupCount  StatisticType = "daily_signup_count"
)

// paymentStatistics are the types computed over the payment table; the
// provider filter only applies to these.
var paymentStatistics = []StatisticType{
	StatisticTypeDailyPaymentCount,
	StatisticTypeDailyRevenue,
	StatisticTypeTotalRevenue,
	StatisticTypeDailyNewPremiumCount,
}

type StatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type StatisticRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	DataItems []*StatisticDataItem  `json:"data_items"`
}

func (f *StatisticRequest) filtersFor(statisticType StatisticType) clause.Expression {
	applicable := make([]clause.Expression, 0, len(f.Filters))
	for _, filter := range f.Filters {
		if filter.Field == "provider" && !lo.Contains(paymentStatistics, statisticType) {
			continue
		}
		applicable = append(applicable, filter)
	}
	if len(applicable) == 0 {
		return clause.Expr{SQL: "1=1"}
	}
	return clause.And(applicable...)
}

type StatisticResponseDataItem struct {
	Date  string `json:"date"`
	Label string `json:"label,omitempty"`
	Value int64  `json:"value"`
}

type StatisticResponse struct {
	DataItems map[StatisticType][]StatisticResponseDataItem `json:"data_items"`
}

// Service computes the admin dashboard statistics straight from the
// operational tables.
type Service struct {
	db  *gorm.DB
	clk clock.Clock
}

func New(db *gorm.DB, clk clock.Clock) *Service { return &Service{db: db, clk: clk} }

func (s *Service) getDailyPaymentCount(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.Payment{}).TableName()).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, status as label, count(*) as value").
		Where(clause.Where{Exprs: []clause.Expression{request.filtersFor(StatisticTypeDailyPaymentCount)}}).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Group("status").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyRevenue(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.Payment{}).TableName()).
		Select("TO_CHAR(paid_at, 'YYYY-MM-DD') as date, provider as label, sum(amount) as value").
		Where("status = ?", types.PaymentStatusSuccess).
		Where(clause.Where{Exprs: []clause.Expression{request.filtersFor(StatisticTypeDailyRevenue)}}).
		Group("TO_CHAR(paid_at, 'YYYY-MM-DD')").
		Group("provider").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getTotalRevenue(ctx context.Context, _ *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	err := s.db.WithContext(ctx).Raw(`
WITH daily AS (
    SELECT DATE(paid_at) as date, SUM(amount) as value
    FROM payment
    WHERE status = ? AND paid_at IS NOT NULL
    GROUP BY DATE(paid_at)
)
SELECT TO_CHAR(d.date, 'YYYY-MM-DD') as date, SUM(s.value) as value
FROM daily d
LEFT JOIN daily s ON s.date <= d.date
GROUP BY d.date
ORDER BY d.date DESC
`, types.PaymentStatusSuccess).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyNewPremiumCount(ctx context.Context, request *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.Payment{}).TableName()).
		Select("TO_CHAR(paid_at, 'YYYY-MM-DD') as date, count(distinct user_id) as value").
		Where("status = ?", types.PaymentStatusSuccess).
		Where(clause.Where{Exprs: []clause.Expression{request.filtersFor(StatisticTypeDailyNewPremiumCount)}}).
		Group("TO_CHAR(paid_at, 'YYYY-MM-DD')").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getActivePremiumCount(ctx context.Context, _ *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.User{}).TableName()).
		Select("count(*) as value").
		Where("plan = ?", types.PlanPremium).
		Where("premium_expires_at > ?", s.clk.Now())
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyJournalCount(ctx context.Context, _ *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.JournalEntry{}).TableName()).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, count(*) as value").
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailySignupCount(ctx context.Context, _ *StatisticRequest) ([]StatisticResponseDataItem, error) {
	var results []StatisticResponseDataItem
	q := s.db.WithContext(ctx).Table((models.User{}).TableName()).
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') as date, count(*) as value").
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order("date")
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getStatistic(ctx context.Context, request *StatisticRequest, dataItem *StatisticDataItem) ([]StatisticResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeDailyPaymentCount:
		return s.getDailyPaymentCount(ctx, request)
	case StatisticTypeDailyRevenue:
		return s.getDailyRevenue(ctx, request)
	case StatisticTypeTotalRevenue:
		return s.getTotalRevenue(ctx, request)
	case StatisticTypeDailyNewPremiumCount:
		return s.getDailyNewPremiumCount(ctx, request)
	case StatisticTypeActivePremiumCount:
		return s.getActivePremiumCount(ctx, request)
	case StatisticTypeDailyJournalCount:
		return s.getDailyJournalCount(ctx, request)
	case StatisticTypeDailySignupCount:
		return s.getDailySignupCount(ctx, request)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", dataItem.ID)
	}
}

// GetStatistics computes every requested data item concurrently and merges
// the results by type.
func (s *Service) GetStatistics(ctx context.Context, request *StatisticRequest) (*StatisticResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []StatisticResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		wg.Add(1)
		go func(di *StatisticDataItem) {
			defer wg.Done()
			res, err := s.getStatistic(ctx, request, di)
			if err != nil {
				errChan <- err
				return
			}
			resChan <- &lo.Entry[StatisticType, []StatisticResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	go func() { wg.Wait(); close(errChan); close(resChan) }()

	results := make(map[StatisticType][]StatisticResponseDataItem)
	for i := 0; i < len(request.DataItems); i++ {
		select {
		case err := <-errChan:
			if err != nil {
				return nil, err
			}
		case entry := <-resChan:
			results[entry.Key] = entry.Value
		}
	}
	return &StatisticResponse{DataItems: results}, nil
}
