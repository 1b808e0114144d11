package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/sifen-api/internal/application/dto"
	"github.com/jhoicas/sifen-api/internal/domain"
	"github.com/jhoicas/sifen-api/pkg/jwt"
)

// RoleAdmin rol del operador configurado por entorno.
const RoleAdmin = "admin"

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// Operator credenciales del único operador (AUTH_ADMIN_USER / AUTH_ADMIN_PASSWORD_HASH).
type Operator struct {
	Username     string
	PasswordHash string // bcrypt
}

// AuthUseCase login del operador.
type AuthUseCase struct {
	operator Operator
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(operator Operator, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{operator: operator, jwtCfg: jwtCfg}
}

// Login verifica usuario/password contra el hash bcrypt y genera el JWT.
// Cualquier credencial incorrecta devuelve domain.ErrUnauthorized.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	if uc.operator.Username == "" || uc.operator.PasswordHash == "" {
		return nil, fmt.Errorf("%w: operador no configurado", domain.ErrUnauthorized)
	}
	userOK := subtle.ConstantTimeCompare([]byte(in.Username), []byte(uc.operator.Username)) == 1
	// bcrypt se evalúa siempre para no distinguir usuario inexistente por tiempo
	passErr := bcrypt.CompareHashAndPassword([]byte(uc.operator.PasswordHash), []byte(in.Password))
	if !userOK || passErr != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, uc.operator.Username, RoleAdmin, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: uc.jwtCfg.ExpMinutes * 60,
	}, nil
}
