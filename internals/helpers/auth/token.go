// file: internals/helpers/auth/token.go
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	configs "kodingku_backend/internals/configs"
)

const accessTokenTTL = 12 * time.Hour

type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// MakeAccessToken menerbitkan JWT akses untuk user yang sudah terverifikasi.
func MakeAccessToken(userID uint, email string) (string, error) {
	if configs.JWTSecret == "" {
		return "", fmt.Errorf("JWT_SECRET belum diset")
	}
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(configs.JWTSecret))
}

// ParseAccessToken memverifikasi signature + expiry dan mengembalikan claims.
func ParseAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("signing method tidak dikenal: %v", t.Header["alg"])
		}
		return []byte(configs.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("token tidak valid")
	}
	return claims, nil
}

// ExtractBearerToken mengambil token dari header Authorization atau cookie.
func ExtractBearerToken(c *fiber.Ctx) (string, error) {
	const prefix = "Bearer "
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, prefix) {
		if v := strings.TrimSpace(authHeader[len(prefix):]); v != "" {
			return v, nil
		}
	}
	if v := strings.TrimSpace(c.Cookies("access_token")); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("token tidak ditemukan")
}

// GetUserIDFromToken membaca user_id dari c.Locals("user_id").
// Return 401 kalau belum login.
func GetUserIDFromToken(c *fiber.Ctx) (uint, error) {
	v := c.Locals("user_id")
	if v == nil {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "User belum login")
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "User belum login")
	}
	return id, nil
}

// GetUserEmailFromToken membaca email dari c.Locals("user_email"); boleh kosong.
func GetUserEmailFromToken(c *fiber.Ctx) string {
	if v, ok := c.Locals("user_email").(string); ok {
		return v
	}
	return ""
}
