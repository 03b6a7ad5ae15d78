package handler

import (
	"github.com/gofiber/fiber/v2"

	"janmitra/internal/domain"
	"janmitra/internal/middleware"
	"janmitra/internal/service/auth"
)

type AuthHandler struct {
	authService auth.Service
	// exposeOTP echoes verification codes back; never set in production.
	exposeOTP bool
}

func NewAuthHandler(authService auth.Service, exposeOTP bool) *AuthHandler {
	return &AuthHandler{authService: authService, exposeOTP: exposeOTP}
}

func (h *AuthHandler) StartVerification(c *fiber.Ctx) error {
	var input domain.StartVerificationInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	code, err := h.authService.StartVerification(c.UserContext(), input)
	if err != nil {
		return err
	}

	resp := fiber.Map{
		"success": true,
		"message": "OTP sent successfully",
	}
	if h.exposeOTP {
		resp["otp"] = code
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AuthHandler) VerifyPhone(c *fiber.Ctx) error {
	var input domain.VerifyPhoneInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	resp, err := h.authService.VerifyPhone(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AuthHandler) StaffLogin(c *fiber.Ctx) error {
	var input domain.OfficialLoginInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	resp, err := h.authService.OfficialLogin(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)
	if principal == nil {
		return domain.ErrCredentialRequired
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"user":    principal,
	})
}
