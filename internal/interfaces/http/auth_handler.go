package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rvaldivia/almacen-pan/internal/application/dto"
	"github.com/rvaldivia/almacen-pan/pkg/config"
	"github.com/rvaldivia/almacen-pan/pkg/jwt"
)

// AuthHandler emite tokens de desarrollo. El directorio de usuarios vive en
// el sistema de identidad municipal; en development este endpoint acuña
// tokens directamente para poder probar la API.
type AuthHandler struct {
	env string
	jwt config.JWTConfig
}

// NewAuthHandler construye el handler.
func NewAuthHandler(env string, jwtCfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{env: env, jwt: jwtCfg}
}

type loginRequest struct {
	UserID   string `json:"user_id"`
	Programa string `json:"programa"`
	Role     string `json:"role"`
}

// Login acuña un token con los claims pedidos. Deshabilitado en production.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	if h.env == "production" {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "endpoint no disponible"})
	}
	var in loginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.UserID == "" || in.Programa == "" || in.Role == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "user_id, programa y role son obligatorios"})
	}
	token, err := jwt.Generate(h.jwt.Secret, in.UserID, in.Programa, in.Role, h.jwt.Issuer, h.jwt.Expiration)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"token": token})
}
