package backend

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tesnim/internal/adapter/memory"
	"tesnim/internal/domain"
)

var testNow = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

type sentToken struct {
	kind  domain.TokenKind
	email string
	token string
}

func newTestAuth(t *testing.T) (*AuthService, *[]sentToken) {
	t.Helper()
	db := memory.New()
	svc := NewAuthService(db, db.NewTokenRepo(), NewTokenManager(TokenConfig{Secret: "test-secret", Issuer: "tesnim-test"}))
	svc.SetBcryptCost(bcrypt.MinCost)
	svc.SetClock(func() time.Time { return testNow })

	var sent []sentToken
	svc.SetNotifier(func(ctx context.Context, kind domain.TokenKind, email, token string) {
		sent = append(sent, sentToken{kind, email, token})
	})
	return svc, &sent
}

func validRegistration() domain.RegisterInput {
	return domain.RegisterInput{
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Email:          "ada@example.com",
		Password:       "analytical",
		RecaptchaToken: "ok",
	}
}

func assertCode(t *testing.T, err error, status int, code domain.ErrorCode, field string) {
	t.Helper()
	apiErr, ok := domain.AsAPIError(err)
	if !ok {
		t.Fatalf("expected *domain.APIError, got %v", err)
	}
	if apiErr.StatusCode != status || apiErr.Code != code || apiErr.Field != field {
		t.Errorf("got %d/%s/%q; want %d/%s/%q", apiErr.StatusCode, apiErr.Code, apiErr.Field, status, code, field)
	}
}

func TestDemoLogin(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()
	if err := svc.SeedDemoUser(ctx); err != nil {
		t.Fatalf("SeedDemoUser: %v", err)
	}
	if err := svc.SeedDemoUser(ctx); err != nil {
		t.Fatalf("SeedDemoUser twice: %v", err)
	}

	resp, err := svc.Login(ctx, DemoEmail, DemoPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !resp.Success || resp.Token == "" || resp.RefreshToken == "" {
		t.Fatalf("incomplete response: %+v", resp)
	}
	if resp.User.Role != domain.RoleAdmin || resp.User.Plan != domain.PlanFreemium {
		t.Errorf("unexpected user: %+v", resp.User)
	}

	_, err = svc.Login(ctx, DemoEmail, "wrong")
	assertCode(t, err, 401, domain.CodeInvalidCredentials, "")
	if err.Error() != "Invalid email or password" {
		t.Errorf("unexpected message %q", err.Error())
	}
	_, err = svc.Login(ctx, "nobody@mail.com", DemoPassword)
	assertCode(t, err, 401, domain.CodeInvalidCredentials, "")
}

func TestRegisterErrors(t *testing.T) {
	svc, _ := newTestAuth(t)
	svc.SetCaptchaVerifier(func(ctx context.Context, token string) bool { return token == "ok" })
	ctx := context.Background()
	if _, err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*domain.RegisterInput)
		status int
		code   domain.ErrorCode
		field  string
	}{
		{"duplicate email", func(in *domain.RegisterInput) { in.Email = "ADA@example.com" }, 409, domain.CodeEmailTaken, "email"},
		{"captcha", func(in *domain.RegisterInput) { in.Email = "b@example.com"; in.RecaptchaToken = "bot" }, 400, domain.CodeCaptchaFailed, "recaptchaToken"},
		{"short password", func(in *domain.RegisterInput) { in.Password = "short" }, 400, domain.CodeValidation, "password"},
		{"bad email", func(in *domain.RegisterInput) { in.Email = "not-an-email" }, 400, domain.CodeValidation, "email"},
		{"missing name", func(in *domain.RegisterInput) { in.FirstName = " " }, 400, domain.CodeValidation, "firstName"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validRegistration()
			tc.mutate(&in)
			_, err := svc.Register(ctx, in)
			assertCode(t, err, tc.status, tc.code, tc.field)
		})
	}
}

func TestRefreshRotates(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()
	resp, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	pair, err := svc.Refresh(ctx, resp.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !pair.Complete() || pair.RefreshToken == resp.RefreshToken {
		t.Fatalf("expected a new pair, got %+v", pair)
	}

	_, err = svc.Refresh(ctx, resp.RefreshToken)
	assertCode(t, err, 401, domain.CodeInvalidToken, "")

	user, err := svc.Authenticate(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("unexpected user %+v", user)
	}
}

func TestLogoutRevokesRefreshTokens(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()
	resp, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.Logout(ctx, resp.User.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := svc.Refresh(ctx, resp.RefreshToken); !domain.IsUnauthorized(err) {
		t.Errorf("expected 401 after logout, got %v", err)
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()
	resp, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	svc.SetClock(func() time.Time { return testNow.Add(time.Hour) })
	_, err = svc.Authenticate(ctx, resp.Token)
	assertCode(t, err, 401, domain.CodeUnauthorized, "")

	_, err = svc.Authenticate(ctx, "garbage")
	assertCode(t, err, 401, domain.CodeUnauthorized, "")
}

func TestVerifyEmail(t *testing.T) {
	svc, sent := newTestAuth(t)
	ctx := context.Background()
	resp, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.User.IsEmailVerified {
		t.Fatal("new accounts start unverified")
	}
	if len(*sent) != 1 || (*sent)[0].kind != domain.TokenVerifyEmail {
		t.Fatalf("expected a verification token, got %+v", *sent)
	}

	token := (*sent)[0].token
	if err := svc.VerifyEmail(ctx, token); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	again := svc.VerifyEmail(ctx, token)
	assertCode(t, again, 400, domain.CodeInvalidToken, "")

	login, err := svc.Login(ctx, "ada@example.com", "analytical")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !login.User.IsEmailVerified {
		t.Error("expected verified user")
	}
}

func TestPasswordReset(t *testing.T) {
	svc, sent := newTestAuth(t)
	ctx := context.Background()
	resp, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.ForgotPassword(ctx, "unknown@example.com"); err != nil {
		t.Fatalf("ForgotPassword unknown: %v", err)
	}
	if err := svc.ForgotPassword(ctx, "ada@example.com"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	last := (*sent)[len(*sent)-1]
	if last.kind != domain.TokenReset || last.email != "ada@example.com" {
		t.Fatalf("expected a reset token, got %+v", last)
	}

	if err := svc.ResetPassword(ctx, last.token, "difference-engine"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, err := svc.Login(ctx, "ada@example.com", "analytical"); err == nil {
		t.Error("old password must stop working")
	}
	if _, err := svc.Login(ctx, "ada@example.com", "difference-engine"); err != nil {
		t.Errorf("Login with new password: %v", err)
	}
	if _, err := svc.Refresh(ctx, resp.RefreshToken); err == nil {
		t.Error("reset must revoke refresh tokens")
	}
}

func TestLoginWithIdentity(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	first, err := svc.LoginWithIdentity(ctx, "sso@example.com", "Sam", "Sso")
	if err != nil {
		t.Fatalf("LoginWithIdentity: %v", err)
	}
	second, err := svc.LoginWithIdentity(ctx, "sso@example.com", "Sam", "Sso")
	if err != nil {
		t.Fatalf("LoginWithIdentity again: %v", err)
	}
	if first.User.ID != second.User.ID || !first.User.IsEmailVerified {
		t.Errorf("expected the same verified account, got %+v and %+v", first.User, second.User)
	}

	// SSO-only accounts cannot use password login.
	_, err = svc.Login(ctx, "sso@example.com", "")
	if !domain.IsUnauthorized(err) {
		t.Errorf("expected 401, got %v", err)
	}
}
