package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/bazaarlane/storefront/internal/domain/user"
)

const tokenTTL = 72 * time.Hour

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  user.Role `json:"role"`
}

func presentUser(u *user.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func (h *Handler) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	u, err := h.users.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return h.respondError(c, err)
	}

	token, err := h.issueToken(u)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":  presentUser(u),
		"token": token,
	})
}

func (h *Handler) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	u, err := h.users.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.respondError(c, err)
	}

	token, err := h.issueToken(u)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"user":  presentUser(u),
		"token": token,
	})
}

func (h *Handler) startPasswordReset(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	if err := h.users.StartReset(c.UserContext(), req.Email); err != nil {
		return h.respondError(c, err)
	}
	// Same answer whether the email exists or not.
	return c.JSON(fiber.Map{
		"message": "if the email is registered, reset instructions have been sent",
	})
}

func (h *Handler) completePasswordReset(c *fiber.Ctx) error {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	if err := h.users.CompleteReset(c.UserContext(), req.Token, req.Password); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "password has been reset"})
}

func (h *Handler) getProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	u, err := h.users.Get(c.UserContext(), userID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(presentUser(u))
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	u, err := h.users.UpdateProfile(c.UserContext(), userID, req.Name, req.Email)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(presentUser(u))
}

func (h *Handler) issueToken(u *user.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  u.ID.String(),
		"role": string(u.Role),
		"exp":  time.Now().Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.cfg.JWTSecret)
}

// currentUserID extracts the account id from the validated token. The
// returned error is a *fiber.Error handled by the app's error handler.
func currentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	sub, ok := claim(c, "sub").(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return id, nil
}

// authenticated reports whether a validated token is attached.
func authenticated(c *fiber.Ctx) bool {
	_, ok := claim(c, "sub").(string)
	return ok
}

func claimRole(c *fiber.Ctx) string {
	role, _ := claim(c, "role").(string)
	return role
}

func claim(c *fiber.Ctx, name string) any {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return nil
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	return claims[name]
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
}
