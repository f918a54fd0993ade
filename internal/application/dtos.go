package application

import (
	"time"

	"github.com/sales-platform/sales-service/internal/domain"
)

// SaleDTO represents a sale in responses
type SaleDTO struct {
	ID           string        `json:"id"`
	SaleNumber   string        `json:"saleNumber"`
	Date         time.Time     `json:"date"`
	CustomerID   string        `json:"customerId"`
	CustomerName string        `json:"customerName"`
	BranchID     string        `json:"branchId"`
	BranchName   string        `json:"branchName"`
	TotalAmount  float64       `json:"totalAmount"`
	IsCancelled  bool          `json:"isCancelled"`
	Items        []SaleItemDTO `json:"items,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// SaleItemDTO represents a line item in responses
type SaleItemDTO struct {
	ID          string    `json:"id"`
	SaleID      string    `json:"saleId"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	Discount    float64   `json:"discount"`
	Total       float64   `json:"total"`
	IsCancelled bool      `json:"isCancelled"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// EventLogDTO represents an audit log entry in responses
type EventLogDTO struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	EventType string    `json:"eventType"`
	EventData string    `json:"eventData"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToSaleDTO maps a Sale aggregate to its response shape
func ToSaleDTO(sale *domain.Sale) *SaleDTO {
	dto := &SaleDTO{
		ID:           sale.ID.String(),
		SaleNumber:   sale.SaleNumber,
		Date:         sale.Date,
		CustomerID:   sale.CustomerID,
		CustomerName: sale.CustomerName,
		BranchID:     sale.BranchID,
		BranchName:   sale.BranchName,
		TotalAmount:  sale.TotalAmount,
		IsCancelled:  sale.IsCancelled,
		CreatedAt:    sale.CreatedAt,
		UpdatedAt:    sale.UpdatedAt,
	}

	if len(sale.Items) > 0 {
		dto.Items = make([]SaleItemDTO, 0, len(sale.Items))
		for i := range sale.Items {
			dto.Items = append(dto.Items, *ToSaleItemDTO(&sale.Items[i]))
		}
	}

	return dto
}

// ToSaleItemDTO maps a SaleItem to its response shape
func ToSaleItemDTO(item *domain.SaleItem) *SaleItemDTO {
	return &SaleItemDTO{
		ID:          item.ID.String(),
		SaleID:      item.SaleID.String(),
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Discount:    item.Discount,
		Total:       item.Total,
		IsCancelled: item.IsCancelled,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// ToEventLogDTO maps an EventLog to its response shape
func ToEventLogDTO(log *domain.EventLog) *EventLogDTO {
	return &EventLogDTO{
		ID:        log.ID,
		EventID:   log.EventID,
		EventType: log.EventType,
		EventData: log.EventData,
		CreatedAt: log.CreatedAt,
	}
}
