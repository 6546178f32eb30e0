package service

import (
	"context"
	"fmt"
	"log/slog"

	"ardelivero-storefront/storefront/internal/apiclient"
	"ardelivero-storefront/storefront/internal/domain"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Guest    bool   `json:"isGuest,omitempty"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type AuthService struct {
	api *apiclient.Client
	log *slog.Logger
}

func NewAuthService(api *apiclient.Client, logger *slog.Logger) *AuthService {
	return &AuthService{api: api, log: logger}
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) error {
	if err := s.api.Post(ctx, "/auth/register", req, nil); err != nil {
		s.log.Error("register", "email", req.Email, "error", err)
		return fmt.Errorf("register %s: %w", req.Email, err)
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	result, err := apiclient.PostData[LoginResult](ctx, s.api, "/auth/login", body)
	if err != nil {
		s.log.Error("login", "email", email, "error", err)
		return nil, fmt.Errorf("login %s: %w", email, err)
	}
	return &result, nil
}

func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) error {
	body := map[string]string{"email": email, "otp": code}
	if err := s.api.Post(ctx, "/auth/verify-otp", body, nil); err != nil {
		s.log.Error("verify otp", "email", email, "error", err)
		return fmt.Errorf("verify otp for %s: %w", email, err)
	}
	return nil
}

func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	if err := s.api.Post(ctx, "/auth/resend-otp", body, nil); err != nil {
		s.log.Error("resend otp", "email", email, "error", err)
		return fmt.Errorf("resend otp for %s: %w", email, err)
	}
	return nil
}
