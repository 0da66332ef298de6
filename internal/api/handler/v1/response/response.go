package response

import (
	"time"

	"github.com/alihassan193/snooker-console/internal/board"
	"github.com/alihassan193/snooker-console/internal/domain"
	"github.com/alihassan193/snooker-console/internal/poller"
)

type LoginResponse struct {
	User         domain.User `json:"user"`
	SessionToken string      `json:"session_token"` // send as "Authorization: Bearer <token>"
	TokenExpiry  *time.Time  `json:"token_expiry,omitempty"`
}

type MeResponse struct {
	User          domain.User         `json:"user"`
	ClubSession   *domain.ClubSession `json:"club_session,omitempty"`
	Authenticated bool                `json:"authenticated"`
}

type BoardResponse struct {
	Cards      []board.Card      `json:"cards"`
	GameTypes  []domain.GameType `json:"game_types"`
	ComputedAt time.Time         `json:"computed_at"`
	FetchedAt  time.Time         `json:"fetched_at"`
	Version    uint64            `json:"version"`
}

type RefreshResponse struct {
	Ran    bool          `json:"ran"`
	Error  string        `json:"error,omitempty"`
	Status poller.Status `json:"status"`
}

type InteractionsResponse struct {
	Held   bool           `json:"held"`
	Leases []poller.Lease `json:"leases"`
}

type OverrideResponse struct {
	TableID uint               `json:"table_id"`
	Status  domain.TableStatus `json:"status,omitempty"`
	Card    *board.Card        `json:"card,omitempty"`
}

type ClubSessionResponse struct {
	Active  bool                `json:"active"`
	Session *domain.ClubSession `json:"session,omitempty"`
}
