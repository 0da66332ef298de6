package request

import (
	"errors"
	"strings"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/alihassan193/snooker-console/internal/domain"
)

const (
	// Lookaheads need regexp2; the standard library has no support for them.
	passwordRegexPattern = `^(?=.*[A-Za-z])(?=.*\d)(?=.*[^A-Za-z\d]).{8,}$`
)

var (
	passwordExp = regexp2.MustCompile(passwordRegexPattern, regexp2.None)

	errInvalidPassword         = errors.New("the password must be at least 8 characters and contain 1 letter, 1 number and 1 symbol")
	errConfirmPasswordMismatch = errors.New("confirm password doesn't match the password")
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (req *LoginRequest) Validate() error {
	req.Username = strings.TrimSpace(req.Username)

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Username, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Password, validation.Required),
	)
}

type PermissionsRequest struct {
	ManageTables  bool `json:"can_manage_tables"`
	ManageCanteen bool `json:"can_manage_canteen"`
	ViewReports   bool `json:"can_view_reports"`
}

type CreateUserRequest struct {
	Username        string             `json:"username"`
	Email           string             `json:"email"`
	FullName        string             `json:"full_name"`
	Password        string             `json:"password"`
	ConfirmPassword string             `json:"confirm_password"`
	Role            string             `json:"role"`
	ClubID          *uint              `json:"club_id,omitempty"`
	Permissions     PermissionsRequest `json:"permissions"`
}

func (req *CreateUserRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&req.Email, is.Email),
		validation.Field(&req.FullName, validation.Length(0, 100)),
		validation.Field(&req.Password, validation.Required),
		validation.Field(&req.ConfirmPassword, validation.Required),
		validation.Field(&req.Role, validation.Required,
			validation.In(string(domain.RoleSubAdmin), string(domain.RoleManager))),
	)
	if err != nil {
		return err
	}

	if ok, _ := passwordExp.MatchString(req.Password); !ok {
		return errInvalidPassword
	}

	if req.Password != req.ConfirmPassword {
		return errConfirmPasswordMismatch
	}

	if domain.Role(req.Role) == domain.RoleManager && req.ClubID == nil {
		return errors.New("club_id: a manager must be assigned to a club")
	}

	return nil
}

type UpdateUserRequest struct {
	Username    string             `json:"username"`
	Email       string             `json:"email"`
	FullName    string             `json:"full_name"`
	Role        string             `json:"role"`
	ClubID      *uint              `json:"club_id,omitempty"`
	Permissions PermissionsRequest `json:"permissions"`
}

func (req *UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&req.Email, is.Email),
		validation.Field(&req.FullName, validation.Length(0, 100)),
		validation.Field(&req.Role, validation.Required,
			validation.In(string(domain.RoleSubAdmin), string(domain.RoleManager))),
	)
}

func (p PermissionsRequest) Domain() domain.Permissions {
	return domain.Permissions{
		ManageTables:  p.ManageTables,
		ManageCanteen: p.ManageCanteen,
		ViewReports:   p.ViewReports,
	}
}
