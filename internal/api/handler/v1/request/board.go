package request

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/alihassan193/snooker-console/internal/domain"
)

type OverrideRequest struct {
	Status string `json:"status"`
}

func (req *OverrideRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required, validation.In(
			string(domain.TableAvailable),
			string(domain.TableOccupied),
			string(domain.TableMaintenance),
			string(domain.TableReserved),
		)),
	)
}

type StartSessionRequest struct {
	GameTypeID      uint   `json:"game_type_id"`
	PlayerID        *uint  `json:"player_id,omitempty"`
	GuestPlayerName string `json:"guest_player_name,omitempty"`
}

func (req *StartSessionRequest) Validate() error {
	req.GuestPlayerName = strings.TrimSpace(req.GuestPlayerName)

	err := validation.ValidateStruct(
		req,
		validation.Field(&req.GameTypeID, validation.Required),
		validation.Field(&req.GuestPlayerName, validation.Length(0, 100)),
	)
	if err != nil {
		return err
	}

	if (req.PlayerID == nil || *req.PlayerID == 0) && req.GuestPlayerName == "" {
		return errors.New("player: pick a registered player or enter a guest name")
	}

	return nil
}

type OrderLineRequest struct {
	ItemID   uint `json:"item_id"`
	Quantity int  `json:"quantity"`
}

func (req OrderLineRequest) Validate() error {
	return validation.ValidateStruct(
		&req,
		validation.Field(&req.ItemID, validation.Required),
		validation.Field(&req.Quantity, validation.Required, validation.Min(1)),
	)
}

type OrderRequest struct {
	Items         []OrderLineRequest `json:"items"`
	PaymentMethod string             `json:"payment_method,omitempty"`
}

func (req *OrderRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Items, validation.Required),
		validation.Field(&req.PaymentMethod, validation.In("cash", "card", "online")),
	)
}

func (req *OrderRequest) Lines() []domain.OrderLine {
	lines := make([]domain.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, domain.OrderLine{ItemID: item.ItemID, Quantity: item.Quantity})
	}

	return lines
}

type InteractionRequest struct {
	Screen string `json:"screen"`
}

func (req *InteractionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Screen, validation.Required, validation.Length(1, 64)),
	)
}
