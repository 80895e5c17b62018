package service

import (
	"bytes"
	"fmt"
	"time"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const (
	topSellingLimit = 5
	exportPageSize  = 500
	exportSheet     = "Orders"
)

// DashboardSummary is the backoffice overview for a date range
type DashboardSummary struct {
	From          *time.Time                  `json:"From,omitempty"`
	To            *time.Time                  `json:"To,omitempty"`
	Revenue       float64                     `json:"Revenue"`
	OrderCount    int64                       `json:"OrderCount"`
	OrdersByState map[model.OrderStatus]int64 `json:"OrdersByStatus"`
	CustomerCount int64                       `json:"CustomerCount"`
	TopProducts   []repository.ProductSales   `json:"TopProducts"`
}

type DashboardService interface {
	GetSummary(from, to *time.Time) (*DashboardSummary, error)
	ExportOrders(from, to *time.Time) ([]byte, error)
}

type dashboardService struct {
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
}

func NewDashboardService(orderRepo repository.OrderRepository, userRepo repository.UserRepository) DashboardService {
	return &dashboardService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
	}
}

func (s *dashboardService) GetSummary(from, to *time.Time) (*DashboardSummary, error) {
	counts, err := s.orderRepo.CountByStatus(from, to)
	if err != nil {
		return nil, err
	}
	revenue, err := s.orderRepo.SumPaidRevenue(from, to)
	if err != nil {
		return nil, err
	}
	customers, err := s.userRepo.CountByRole(model.RoleCustomer)
	if err != nil {
		return nil, err
	}
	top, err := s.orderRepo.TopSellingProducts(from, to, topSellingLimit)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{
		From:          from,
		To:            to,
		Revenue:       revenue,
		OrdersByState: counts,
		CustomerCount: customers,
		TopProducts:   top,
	}
	for _, n := range counts {
		summary.OrderCount += n
	}
	return summary, nil
}

var exportHeader = []interface{}{
	"Order ID", "Created At", "Customer", "Email", "Phone", "Status",
	"Payment Method", "Paid", "Total Price", "Discount", "Total Charged", "Items",
}

// ExportOrders renders every order in the range into an XLSX workbook
func (s *dashboardService) ExportOrders(from, to *time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}

	row := 2
	for offset := 0; ; offset += exportPageSize {
		orders, total, err := s.orderRepo.FindWithFilter(repository.OrderFilter{
			From:   from,
			To:     to,
			Limit:  exportPageSize,
			Offset: offset,
		})
		if err != nil {
			return nil, err
		}

		for _, o := range orders {
			items := 0
			for _, op := range o.OrderProducts {
				items += op.Quantity
			}
			values := []interface{}{
				o.ID,
				o.CreatedAt.Format("2006-01-02 15:04"),
				o.User.Name,
				o.User.Email,
				o.Phone,
				string(o.Status),
				string(o.PaymentMethod),
				o.IsPaid,
				o.TotalPrice,
				o.DiscountAmount,
				o.TotalPriceSale,
				items,
			}
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
				return nil, err
			}
			row++
		}

		if len(orders) < exportPageSize || int64(offset+len(orders)) >= total {
			break
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	logger.Info("Orders exported", map[string]interface{}{
		"rows": row - 2,
	})
	return buf.Bytes(), nil
}
