package pkg

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tiempo de expiración del token
const TokenExpiration = time.Hour * 24

var ErrTokenExpirado = errors.New("token expirado")

func GenerateToken(secret, id, role string) (string, error) {
	now := time.Now()
	expirationTime := now.Add(TokenExpiration)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": id,
		"role":    role,
		"iat":     now.Unix(),
		"exp":     expirationTime.Unix(),
	})

	return token.SignedString([]byte(secret))
}

func parseToken(secret, tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpirado
		}
		return nil, fmt.Errorf("token inválido: %w", err)
	}
	return token, nil
}

// GetUserFromToken extrae el ID y el rol del usuario del token JWT
func GetUserFromToken(secret, tokenString string) (string, string, error) {
	token, err := parseToken(secret, tokenString)
	if err != nil {
		return "", "", err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		userID, _ := claims["user_id"].(string)
		role, _ := claims["role"].(string)
		return userID, role, nil
	}

	return "", "", jwt.ErrSignatureInvalid
}
