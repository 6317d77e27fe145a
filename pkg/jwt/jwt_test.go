package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/barak121-cloud/sim-management-bh/config"
)

func newTestManager(ttl time.Duration) *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2024",
		AccessTokenTTL: ttl,
	})
}

func TestGenerateAndParseAccessToken(t *testing.T) {
	m := newTestManager(15 * time.Minute)

	token, err := m.GenerateAccessToken("session-1", "user-1", "admin")
	if err != nil {
		t.Fatalf("GenerateAccessToken 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Errorf("期望 UserID=user-1，实际=%s", claims.UserID)
	}
	if claims.Role != "admin" {
		t.Errorf("期望 Role=admin，实际=%s", claims.Role)
	}
	if claims.SessionID() != "session-1" {
		t.Errorf("期望 SessionID=session-1，实际=%s", claims.SessionID())
	}
	if claims.Issuer != issuer {
		t.Errorf("期望 Issuer=%s，实际=%s", issuer, claims.Issuer)
	}
}

func TestParseToken_Expired(t *testing.T) {
	m := newTestManager(-time.Minute)

	token, err := m.GenerateAccessToken("session-1", "user-1", "trainee")
	if err != nil {
		t.Fatalf("GenerateAccessToken 失败: %v", err)
	}

	if _, err := m.ParseToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("期望 ErrTokenExpired，实际 %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m := newTestManager(time.Hour)
	other := NewManager(&config.AuthConfig{JWTSecret: "another-secret-key-0000", AccessTokenTTL: time.Hour})

	token, _ := other.GenerateAccessToken("session-1", "user-1", "trainee")
	if _, err := m.ParseToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际 %v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	m := newTestManager(time.Hour)
	if _, err := m.ParseToken("not.a.token"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际 %v", err)
	}
}

func TestParseExpired(t *testing.T) {
	m := newTestManager(-time.Minute)
	token, _ := m.GenerateAccessToken("session-9", "user-1", "trainee")

	if _, err := m.ParseToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("期望 ErrTokenExpired，实际 %v", err)
	}
	claims, err := m.ParseExpired(token)
	if err != nil {
		t.Fatalf("ParseExpired 应忽略有效期: %v", err)
	}
	if claims.SessionID() != "session-9" {
		t.Errorf("期望 session-9，实际 %s", claims.SessionID())
	}

	other := NewManager(&config.AuthConfig{JWTSecret: "another-secret-key-for-testing", AccessTokenTTL: time.Hour})
	if _, err := other.ParseExpired(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("签名不匹配应返回 ErrTokenInvalid，实际 %v", err)
	}
}
