package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/alihassan193/snooker-console/internal/domain"
)

var (
	ErrInsufficientStock = errors.New("not enough stock")
	ErrItemUnavailable   = errors.New("item is not available")
	ErrEmptyOrder        = errors.New("order has no items")
)

type CanteenItemInput struct {
	CategoryID    uint            `json:"category_id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	IsAvailable   bool            `json:"is_available"`
}

func (in CanteenItemInput) Validate() error {
	return validation.ValidateStruct(
		&in,
		validation.Field(&in.CategoryID, validation.Required),
		validation.Field(&in.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Price, validation.By(positive)),
		validation.Field(&in.StockQuantity, validation.Min(0)),
	)
}

type CanteenSale struct {
	Items         []domain.OrderLine `json:"items"`
	PaymentMethod string             `json:"payment_method,omitempty"`
}

func validateLines(lines []domain.OrderLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyOrder)
	}
	for _, line := range lines {
		if line.ItemID == 0 || line.Quantity <= 0 {
			return fmt.Errorf("%w: item %d has quantity %d", ErrValidation, line.ItemID, line.Quantity)
		}
	}

	return nil
}

type CanteenService struct {
	gw Gateway
}

func NewCanteenService(gw Gateway) *CanteenService {
	return &CanteenService{
		gw: gw,
	}
}

func (s *CanteenService) Categories(ctx context.Context) ([]domain.CanteenCategory, error) {
	var categories []domain.CanteenCategory
	if err := s.gw.Get(ctx, "/canteen/categories", &categories); err != nil {
		return nil, fmt.Errorf("s.gw.Get -> %w", err)
	}

	return categories, nil
}

func (s *CanteenService) Items(ctx context.Context) ([]domain.CanteenItem, error) {
	var items []domain.CanteenItem
	if err := s.gw.Get(ctx, "/canteen/items", &items); err != nil {
		return nil, fmt.Errorf("s.gw.Get -> %w", err)
	}

	return items, nil
}

func (s *CanteenService) CreateItem(ctx context.Context, in CanteenItemInput) (domain.CanteenItem, error) {
	if err := validate(in); err != nil {
		return domain.CanteenItem{}, err
	}

	var item domain.CanteenItem
	if err := s.gw.Post(ctx, "/canteen/items", in, &item); err != nil {
		return domain.CanteenItem{}, fmt.Errorf("s.gw.Post -> %w", err)
	}

	return item, nil
}

func (s *CanteenService) UpdateItem(ctx context.Context, id uint, in CanteenItemInput) (domain.CanteenItem, error) {
	if err := validate(in); err != nil {
		return domain.CanteenItem{}, err
	}

	var item domain.CanteenItem
	if err := s.gw.Put(ctx, resourcePath("/canteen/items", id), in, &item); err != nil {
		return domain.CanteenItem{}, fmt.Errorf("s.gw.Put -> %w", err)
	}

	return item, nil
}

func (s *CanteenService) UpdateStock(ctx context.Context, id uint, quantity int) (domain.CanteenItem, error) {
	if quantity < 0 {
		return domain.CanteenItem{}, fmt.Errorf("%w: stock quantity must not be negative", ErrValidation)
	}

	body := map[string]int{"stock_quantity": quantity}
	var item domain.CanteenItem
	if err := s.gw.Patch(ctx, resourcePath("/canteen/items", id, "stock"), body, &item); err != nil {
		return domain.CanteenItem{}, fmt.Errorf("s.gw.Patch -> %w", err)
	}

	return item, nil
}

// Sell records a standalone canteen order that is not attached to a table session.
func (s *CanteenService) Sell(ctx context.Context, sale CanteenSale) (domain.CanteenOrder, error) {
	if err := validateLines(sale.Items); err != nil {
		return domain.CanteenOrder{}, err
	}

	var order domain.CanteenOrder
	if err := s.gw.Post(ctx, "/canteen/sales", sale, &order); err != nil {
		return domain.CanteenOrder{}, fmt.Errorf("s.gw.Post -> %w", err)
	}

	return order, nil
}

// Cart collects order lines against the last known catalog. Quantities never exceed the
// stock the catalog reported; the backend still has the final word.
type Cart struct {
	catalog    map[uint]domain.CanteenItem
	quantities map[uint]int
}

func NewCart(items []domain.CanteenItem) *Cart {
	catalog := make(map[uint]domain.CanteenItem, len(items))
	for _, item := range items {
		catalog[item.ID] = item
	}

	return &Cart{
		catalog:    catalog,
		quantities: make(map[uint]int),
	}
}

func (c *Cart) Add(itemID uint, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	item, ok := c.catalog[itemID]
	if !ok || !item.IsAvailable {
		return fmt.Errorf("%w: item %d", ErrItemUnavailable, itemID)
	}

	want := c.quantities[itemID] + quantity
	if want > item.StockQuantity {
		return fmt.Errorf("%w: %s has %d left", ErrInsufficientStock, item.Name, item.StockQuantity)
	}
	c.quantities[itemID] = want

	return nil
}

func (c *Cart) Remove(itemID uint) {
	delete(c.quantities, itemID)
}

func (c *Cart) Lines() []domain.OrderLine {
	lines := make([]domain.OrderLine, 0, len(c.quantities))
	for id, qty := range c.quantities {
		lines = append(lines, domain.OrderLine{ItemID: id, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ItemID < lines[j].ItemID })

	return lines
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for id, qty := range c.quantities {
		total = total.Add(c.catalog[id].Price.Mul(decimal.NewFromInt(int64(qty))))
	}

	return total
}

// FillCart builds a cart from requested lines, failing on the first line the catalog cannot cover.
func FillCart(items []domain.CanteenItem, lines []domain.OrderLine) (*Cart, error) {
	cart := NewCart(items)
	for _, line := range lines {
		if err := cart.Add(line.ItemID, line.Quantity); err != nil {
			return nil, err
		}
	}

	return cart, nil
}
