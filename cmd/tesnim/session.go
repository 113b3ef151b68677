package main

import (
	"context"
	"fmt"

	"tesnim/internal/domain"
)

func (c *cli) login(ctx context.Context, args []string) error {
	fs := c.flags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.session.Login(ctx, *email, *password); err != nil {
		return c.sessionErr(err)
	}
	u := c.session.State().User
	fmt.Fprintf(c.out, "Logged in as %s (%s).\n", u.Email, u.Role)
	return nil
}

func (c *cli) register(ctx context.Context, args []string) error {
	fs := c.flags("register")
	var in domain.RegisterInput
	fs.StringVar(&in.FirstName, "first", "", "first name")
	fs.StringVar(&in.LastName, "last", "", "last name")
	fs.StringVar(&in.Email, "email", "", "account email")
	fs.StringVar(&in.Password, "password", "", "account password")
	fs.StringVar(&in.RecaptchaToken, "captcha", "", "captcha token")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.session.Register(ctx, in); err != nil {
		if fe := c.session.State().FieldError; fe != nil {
			return fmt.Errorf("%s: %s", fe.Field, fe.Message)
		}
		return c.sessionErr(err)
	}
	fmt.Fprintf(c.out, "Registered %s. Check your inbox to verify the address.\n", in.Email)
	return nil
}

func (c *cli) whoami(ctx context.Context) error {
	if !c.session.CheckAuth(ctx) {
		return errNotLoggedIn
	}
	st := c.session.State()
	u := st.User
	if u == nil {
		return errNotLoggedIn
	}
	verified := "unverified"
	if u.IsEmailVerified {
		verified = "verified"
	}
	fmt.Fprintf(c.out, "%s %s <%s>\nrole: %s, plan: %s, %s\n", u.FirstName, u.LastName, u.Email, u.Role, u.Plan, verified)
	if last, err := c.creds.LastLogin(ctx); err == nil && !last.IsZero() {
		fmt.Fprintf(c.out, "last login: %s\n", last.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func (c *cli) forgot(ctx context.Context, args []string) error {
	fs := c.flags("forgot")
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.session.ForgotPassword(ctx, *email); err != nil {
		return c.sessionErr(err)
	}
	fmt.Fprintln(c.out, "If the account exists, a reset link is on its way.")
	return nil
}

func (c *cli) reset(ctx context.Context, args []string) error {
	fs := c.flags("reset")
	token := fs.String("token", "", "reset token")
	password := fs.String("password", "", "new password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.session.ResetPassword(ctx, *token, *password); err != nil {
		return c.sessionErr(err)
	}
	fmt.Fprintln(c.out, "Password updated. Log in with the new password.")
	return nil
}

func (c *cli) verify(ctx context.Context, args []string) error {
	fs := c.flags("verify")
	token := fs.String("token", "", "verification token")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.session.VerifyEmail(ctx, *token); err != nil {
		return c.sessionErr(err)
	}
	fmt.Fprintln(c.out, "Email verified.")
	return nil
}
