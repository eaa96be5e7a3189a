// File: cmd/app/auth.go
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"physical-ai-textbook/internal/domain"
	"physical-ai-textbook/internal/domain/model"
	"physical-ai-textbook/internal/usecase"
)

// prompter reads interactive answers. Passwords are read without echo when
// stdin is a terminal.
type prompter struct {
	in   *bufio.Reader
	out  io.Writer
	file *os.File
}

func newPrompter(cmd *cobra.Command) *prompter {
	p := &prompter{in: bufio.NewReader(cmd.InOrStdin()), out: cmd.ErrOrStderr()}
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.file = f
	}
	return p
}

func (p *prompter) ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *prompter) password(label string) (string, error) {
	if p.file == nil {
		line, err := p.ask(label)
		return line, err
	}
	fmt.Fprintf(p.out, "%s: ", label)
	b, err := term.ReadPassword(int(p.file.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// fillIn prompts only for values not given as flags.
func (p *prompter) fillIn(v *string, label string, secret bool) error {
	if *v != "" {
		return nil
	}
	var (
		s   string
		err error
	)
	if secret {
		s, err = p.password(label)
	} else {
		s, err = p.ask(label)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	*v = s
	return nil
}

// userFacing unwraps auth and content errors to the message meant for people.
func userFacing(err error) error {
	var ae *domain.AuthError
	if errors.As(err, &ae) {
		return errors.New(ae.Message)
	}
	var ce *domain.ContentError
	if errors.As(err, &ce) {
		return errors.New(ce.Message)
	}
	return err
}

func newSignupCmd(flags *rootFlags) *cobra.Command {
	var (
		p                  model.SignupProfile
		software, hardware string
	)
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer d.Close()

			in := newPrompter(cmd)
			if err := in.fillIn(&p.Name, "Full name", false); err != nil {
				return err
			}
			if err := in.fillIn(&p.Email, "Email", false); err != nil {
				return err
			}
			if err := in.fillIn(&p.Password, "Password ("+d.tr.T("auth.password_hint", model.PasswordMinLengthHint)+")", true); err != nil {
				return err
			}
			if err := in.fillIn(&software, "Software experience [beginner|intermediate|advanced]", false); err != nil {
				return err
			}
			if err := in.fillIn(&hardware, "Hardware experience [beginner|intermediate|advanced]", false); err != nil {
				return err
			}
			p.SoftwareExperience = model.ExperienceLevel(strings.ToLower(strings.TrimSpace(software)))
			p.HardwareExperience = model.ExperienceLevel(strings.ToLower(strings.TrimSpace(hardware)))

			u, err := d.session.Signup(cmd.Context(), p)
			if err != nil {
				return userFacing(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), d.tr.T("auth.signed_in_as", u.Name, u.Email))
			return nil
		},
	}
	cmd.Flags().StringVar(&p.Email, "email", "", "account email")
	cmd.Flags().StringVar(&p.Name, "name", "", "full name")
	cmd.Flags().StringVar(&p.Password, "password", "", "password (prompted when empty)")
	cmd.Flags().StringVar(&software, "software", "", "software experience: beginner|intermediate|advanced")
	cmd.Flags().StringVar(&hardware, "hardware", "", "hardware experience: beginner|intermediate|advanced")
	return cmd
}

func newLoginCmd(flags *rootFlags) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer d.Close()

			in := newPrompter(cmd)
			if err := in.fillIn(&email, "Email", false); err != nil {
				return err
			}
			if err := in.fillIn(&password, "Password", true); err != nil {
				return err
			}
			u, err := d.session.Login(cmd.Context(), email, password)
			if err != nil {
				return userFacing(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), d.tr.T("auth.signed_in_as", u.Name, u.Email))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	return cmd
}

func newLogoutCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), d.tr.T("auth.signed_out"))
			return nil
		},
	}
}

func newWhoamiCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Validate the stored token and show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer d.Close()

			d.session.Start(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), describeUser(d.tr, d.session.User()))
			return nil
		},
	}
}

func describeUser(tr usecase.Translator, u *model.User) string {
	if u == nil {
		return tr.T("auth.anonymous")
	}
	return tr.T("auth.signed_in_as", u.Name, u.Email)
}
