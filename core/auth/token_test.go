package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/campusvoice/backend/core"
	"github.com/campusvoice/backend/core/user"
)

func testService(ttl time.Duration) *TokenService {
	conf := &core.Config{AppName: "CampusVoice", SecretKey: "secret"}
	conf.Server.JWTExpirationDelta = ttl
	return NewTokenService(conf)
}

func TestTokenService_roundTrip(t *testing.T) {
	svc := testService(time.Hour)

	subjects := []string{"ana@x.com", "UPPER@Case.Email", "weird subject !?", ""}
	for _, subject := range subjects {
		token, err := svc.Issue(subject, user.RoleStudent)
		if err != nil {
			t.Fatalf("Issue() failed: %v", err)
		}
		got, err := svc.Subject(token)
		if err != nil {
			t.Errorf("Subject() error = %v", err)
		}
		if got != subject {
			t.Errorf("Subject() = %q, want %q", got, subject)
		}
		if !svc.Validate(token) {
			t.Errorf("Validate() = false, want true")
		}
	}
}

func TestTokenService_verify(t *testing.T) {
	svc := testService(time.Hour)

	validToken, err := svc.Issue("ana@x.com", user.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	// generate an expired token
	NowFunc = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := svc.Issue("ana@x.com", user.RoleAdmin)
	NowFunc = time.Now // reset
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	// a token signed with another key
	otherSvc := testService(time.Hour)
	otherSvc.secret = []byte("not-the-secret")
	forgedToken, err := otherSvc.Issue("ana@x.com", user.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "no token", wantErr: ErrTokenInvalid},
		{name: "garbage", token: "lmaooolol", wantErr: ErrTokenInvalid},
		{name: "bad signature", token: forgedToken, wantErr: ErrTokenInvalid},
		{name: "tampered", token: validToken + "x", wantErr: ErrTokenInvalid},
		{name: "expired", token: expiredToken, wantErr: ErrTokenExpired},
		{name: "valid", token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Subject(tt.token)
			if !errors.Is(err, tt.wantErr) && err != tt.wantErr {
				t.Errorf("Subject() error = %v, wantErr %v", err, tt.wantErr)
			}
			// Validate never errors; it reduces every failure to false.
			if got, want := svc.Validate(tt.token), tt.wantErr == nil; got != want {
				t.Errorf("Validate() = %v, want %v", got, want)
			}
		})
	}
}

func TestTokenService_expiredMatchesInvalid(t *testing.T) {
	if !errors.Is(ErrTokenExpired, ErrTokenInvalid) {
		t.Error("ErrTokenExpired should match ErrTokenInvalid")
	}
}
