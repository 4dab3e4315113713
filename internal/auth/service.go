package auth

import (
	"context"
)

// Token is the login response payload.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Service implements the login use case: authenticate, then issue.
type Service struct {
	authenticator *Authenticator
	issuer        *Issuer
}

func NewService(authenticator *Authenticator, issuer *Issuer) *Service {
	return &Service{authenticator: authenticator, issuer: issuer}
}

// Login exchanges an email or phone plus password for an access token.
func (s *Service) Login(ctx context.Context, identifier, password string) (Token, error) {
	user, err := s.authenticator.Authenticate(ctx, identifier, password)
	if err != nil {
		return Token{}, err
	}

	accessToken, err := s.issuer.Issue(user)
	if err != nil {
		return Token{}, err
	}
	return Token{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.issuer.cfg.ttl.Seconds()),
	}, nil
}
