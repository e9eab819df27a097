package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tutorial-service/internal/api/dto"
	"github.com/spec-kit/tutorial-service/internal/auth"
	"github.com/spec-kit/tutorial-service/internal/service"
	"github.com/spec-kit/tutorial-service/internal/validation"
	apperrors "github.com/spec-kit/tutorial-service/pkg/util"
)

// UsersHandler exposes the token endpoint and the account routes of the
// tutorial API.
type UsersHandler struct {
	auth      *service.AuthService
	validator *validation.Validator
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, validator *validation.Validator) *UsersHandler {
	return &UsersHandler{auth: authService, validator: validator}
}

// Token handles POST /token with an OAuth2 password form.
func (h *UsersHandler) Token(c *fiber.Ctx) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	var missing []string
	if username == "" {
		missing = append(missing, "username")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return validation.Required("body", missing...)
	}
	if grantType := c.FormValue("grant_type"); grantType != "" && grantType != "password" {
		return validation.Invalid("body", "grant_type", `string does not match regex "password"`)
	}

	token, err := h.auth.Login(c.UserContext(), username, password, auth.ParseScopes(c.FormValue("scope")))
	if err != nil {
		return err
	}
	return c.JSON(dto.TokenResponse{AccessToken: token.Value, TokenType: "bearer"})
}

// Me handles GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewInvalidToken(auth.Challenge(nil))
	}
	return c.JSON(dto.NewUserOut(principal.Account))
}

// MyItems handles GET /users/me/items/.
func (h *UsersHandler) MyItems(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewInvalidToken(auth.Challenge(nil))
	}
	return c.JSON([]dto.ItemRef{{ItemID: "Foo", Owner: principal.Account.Username}})
}

// Status handles GET /status/; any valid token is enough.
func (h *UsersHandler) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// ReadUser handles GET /users/{user_id}.
func (h *UsersHandler) ReadUser(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user_id": c.Params("user_id")})
}

// CreateUser handles POST /user/. The user is hashed and announced, not stored.
func (h *UsersHandler) CreateUser(c *fiber.Ctx) error {
	var in dto.UserIn
	if err := h.validator.Decode(c.Body(), validation.SchemaUserIn, &in); err != nil {
		return err
	}

	saved, err := h.auth.SaveUser(c.UserContext(), in.Account(), in.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.UserOut{
		Username: saved.Username,
		Email:    saved.Email,
		FullName: in.FullName,
		Disabled: in.Disabled,
	})
}
