package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

const pasetoEmailClaim = "email"

// PasetoService issues and checks PASETO v4.local tokens (XChaCha20-Poly1305
// with a shared 32-byte key).
type PasetoService struct {
	key    paseto.V4SymmetricKey
	parser paseto.Parser
}

func NewPasetoService(symmetricKey []byte) (*PasetoService, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	// NewParser already enforces the exp claim.
	return &PasetoService{key: key, parser: paseto.NewParser()}, nil
}

// CreateToken encrypts the standard claims plus the user's email.
func (s *PasetoService) CreateToken(userID int64, email string, duration time.Duration) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetJti(uuid.NewString())
	token.SetSubject(strconv.FormatInt(userID, 10))
	token.SetIssuedAt(now)
	token.SetExpiration(now.Add(duration))
	token.SetString(pasetoEmailClaim, email)

	return token.V4Encrypt(s.key, nil), nil
}

// VerifyToken decrypts tokenStr and maps its claims onto TokenClaims.
func (s *PasetoService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	token, err := s.parser.ParseV4Local(s.key, tokenStr, nil)
	if err != nil {
		// Rule failures come from the expiry check; anything else is a bad token
		if errors.Is(err, &paseto.RuleError{}) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, err := pasetoClaims(token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

func pasetoClaims(token *paseto.Token) (*TokenClaims, error) {
	subject, err := token.GetSubject()
	if err != nil {
		return nil, err
	}
	userID, err := parseSubject(subject)
	if err != nil {
		return nil, err
	}

	claims := &TokenClaims{UserID: userID}
	if claims.Email, err = token.GetString(pasetoEmailClaim); err != nil {
		return nil, err
	}
	if claims.IssuedAt, err = token.GetIssuedAt(); err != nil {
		return nil, err
	}
	if claims.ExpiresAt, err = token.GetExpiration(); err != nil {
		return nil, err
	}
	claims.ID, _ = token.GetJti()

	return claims, nil
}
