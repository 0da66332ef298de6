package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/alihassan193/snooker-console/internal/domain"
)

type UserInput struct {
	Username    string             `json:"username"`
	Email       string             `json:"email,omitempty"`
	Password    string             `json:"password,omitempty"`
	FullName    string             `json:"full_name,omitempty"`
	Role        domain.Role        `json:"role"`
	ClubID      *uint              `json:"club_id,omitempty"`
	Permissions domain.Permissions `json:"permissions"`
}

func (in UserInput) Validate() error {
	return validation.ValidateStruct(
		&in,
		validation.Field(&in.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&in.Email, is.Email),
		validation.Field(&in.Role, validation.Required,
			validation.In(domain.RoleSuperAdmin, domain.RoleSubAdmin, domain.RoleManager)),
	)
}

type UserService struct {
	gw Gateway
}

func NewUserService(gw Gateway) *UserService {
	return &UserService{
		gw: gw,
	}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := s.gw.Get(ctx, "/users", &users); err != nil {
		return nil, fmt.Errorf("s.gw.Get -> %w", err)
	}

	return users, nil
}

func (s *UserService) Create(ctx context.Context, in UserInput) (domain.User, error) {
	if err := validate(in); err != nil {
		return domain.User{}, err
	}
	if in.Password == "" {
		return domain.User{}, fmt.Errorf("%w: password is required", ErrValidation)
	}

	var user domain.User
	if err := s.gw.Post(ctx, "/users", in, &user); err != nil {
		return domain.User{}, fmt.Errorf("s.gw.Post -> %w", err)
	}

	return user, nil
}

func (s *UserService) Update(ctx context.Context, id uint, in UserInput) (domain.User, error) {
	if err := validate(in); err != nil {
		return domain.User{}, err
	}

	var user domain.User
	if err := s.gw.Put(ctx, resourcePath("/users", id), in, &user); err != nil {
		return domain.User{}, fmt.Errorf("s.gw.Put -> %w", err)
	}

	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	if err := s.gw.Delete(ctx, resourcePath("/users", id), nil); err != nil {
		return fmt.Errorf("s.gw.Delete -> %w", err)
	}

	return nil
}

type PlayerInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

func (in PlayerInput) Validate() error {
	return validation.ValidateStruct(
		&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Phone, validation.Length(0, 20)),
		validation.Field(&in.Email, is.Email),
	)
}

type PlayerService struct {
	gw Gateway
}

func NewPlayerService(gw Gateway) *PlayerService {
	return &PlayerService{
		gw: gw,
	}
}

// Search looks players up by name or phone for the start-session dialog.
func (s *PlayerService) Search(ctx context.Context, term string) ([]domain.Player, error) {
	q := url.Values{}
	if term = strings.TrimSpace(term); term != "" {
		q.Set("search", term)
	}

	var players []domain.Player
	if err := s.gw.Get(ctx, withQuery("/players", q), &players); err != nil {
		return nil, fmt.Errorf("s.gw.Get -> %w", err)
	}

	return players, nil
}

func (s *PlayerService) Create(ctx context.Context, in PlayerInput) (domain.Player, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate(in); err != nil {
		return domain.Player{}, err
	}

	var player domain.Player
	if err := s.gw.Post(ctx, "/players", in, &player); err != nil {
		return domain.Player{}, fmt.Errorf("s.gw.Post -> %w", err)
	}

	return player, nil
}
