package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"ardelivero-storefront/storefront/internal/app"
	"ardelivero-storefront/storefront/internal/otp"
	"ardelivero-storefront/storefront/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	errEmailRequired      = errors.New("--email is required")
	errPasswordRequired   = errors.New("--password is required unless registering as a guest")
	errVerificationPaused = errors.New("verification not completed, run `ardelivero verify` with the code to finish")
)

// guestPausedError carries the placeholder credentials generated for a
// guest, so verification can be finished later with `ardelivero verify`.
type guestPausedError struct {
	email    string
	password string
}

func (e *guestPausedError) Error() string {
	return fmt.Sprintf("verification not completed, finish with `ardelivero verify --guest --email %s --password %s --code <code>`",
		e.email, e.password)
}

func (e *guestPausedError) Unwrap() error { return errVerificationPaused }

func newFlow(cmd *cobra.Command, a *app.App) *otp.Flow {
	out := cmd.OutOrStdout()
	return otp.NewFlow(a.Auth, a.Sessions, a.Scheduler, toastNotifier{out: out}, &pageNavigator{out: out}, a.Log, a.Config.OTP.Countdown)
}

func (r *runner) registerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and verify it with the emailed code",
		Long: `Create an account, then type the code from the verification email.
At the prompt you can also type "resend" once the countdown ends,
"back" to start over, or "quit" to stop.`,
		Args: cobra.NoArgs,
		RunE: r.with(func(cmd *cobra.Command, _ []string, a *app.App) error {
			req := service.RegisterRequest{}
			req.Username, _ = cmd.Flags().GetString("username")
			req.Email, _ = cmd.Flags().GetString("email")
			req.Password, _ = cmd.Flags().GetString("password")
			req.Phone, _ = cmd.Flags().GetString("phone")
			req.Guest, _ = cmd.Flags().GetBool("guest")
			if req.Email == "" {
				return errEmailRequired
			}
			if req.Password == "" && !req.Guest {
				return errPasswordRequired
			}
			if req.Guest && req.Password == "" {
				req.Password = uuid.NewString()
			}

			flow := newFlow(cmd, a)
			defer flow.Close()
			if err := flow.Register(cmd.Context(), req); err != nil {
				return err
			}
			err := verifyLoop(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), flow)
			if req.Guest && errors.Is(err, errVerificationPaused) {
				return &guestPausedError{email: req.Email, password: req.Password}
			}
			return err
		}),
	}
	cmd.Flags().String("username", "", "display name")
	cmd.Flags().String("email", "", "email address")
	cmd.Flags().String("password", "", "password (guests get a generated one when omitted)")
	cmd.Flags().String("phone", "", "phone number")
	cmd.Flags().Bool("guest", false, "register as a guest and continue to checkout")
	return cmd
}

// verifyLoop reads codes and commands until the flow is verified or the user
// leaves it.
func verifyLoop(ctx context.Context, in io.Reader, out io.Writer, flow *otp.Flow) error {
	scanner := bufio.NewScanner(in)
	toast := toastNotifier{out: out}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		renderOTPPrompt(out, flow.State())
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return errVerificationPaused
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "quit", "q":
			return errVerificationPaused
		case "back":
			flow.Back()
			return nil
		case "resend":
			err := flow.Resend(ctx)
			if errors.Is(err, otp.ErrResendNotAllowed) || errors.Is(err, otp.ErrResendInFlight) {
				toast.Failure(err.Error())
			}
			continue
		}

		err := flow.Submit(ctx, line)
		if flow.State().Phase == otp.PhaseVerified {
			return err
		}
		if errors.Is(err, otp.ErrEmptyCode) {
			toast.Failure(err.Error())
		}
	}
}

func renderOTPPrompt(w io.Writer, s otp.State) {
	switch s.Display {
	case otp.DisplayExpired:
		fmt.Fprintln(w, FallbackBadge.Render("The code has expired. Type \"resend\" for a new one."))
	case otp.DisplayFailed:
		fmt.Fprintln(w, ClosedBadge.Render("That code did not work.")+" "+Muted.Render("resend in "+clock(s.Remaining)))
	default:
		fmt.Fprintln(w, "Enter the code sent to "+s.Email+" "+Muted.Render("resend in "+clock(s.Remaining)))
	}
	fmt.Fprint(w, "code> ")
}

func clock(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func (r *runner) verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify an account with the emailed code",
		Args:  cobra.NoArgs,
		RunE: r.with(func(cmd *cobra.Command, _ []string, a *app.App) error {
			email, _ := cmd.Flags().GetString("email")
			code, _ := cmd.Flags().GetString("code")
			guest, _ := cmd.Flags().GetBool("guest")
			password, _ := cmd.Flags().GetString("password")
			if email == "" {
				return errEmailRequired
			}
			if guest && password == "" {
				return errPasswordRequired
			}

			flow := newFlow(cmd, a)
			defer flow.Close()
			flow.Begin(email, password, guest)
			return flow.Submit(cmd.Context(), code)
		}),
	}
	cmd.Flags().String("email", "", "email address the code was sent to")
	cmd.Flags().String("code", "", "verification code")
	cmd.Flags().Bool("guest", false, "log in and continue to checkout once verified")
	cmd.Flags().String("password", "", "password used to log a guest in")
	return cmd
}

func (r *runner) loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in",
		Args:  cobra.NoArgs,
		RunE: r.with(func(cmd *cobra.Command, _ []string, a *app.App) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if email == "" {
				return errEmailRequired
			}
			if password == "" {
				return errPasswordRequired
			}

			toast := toastNotifier{out: cmd.OutOrStdout()}
			result, err := a.Auth.Login(cmd.Context(), email, password)
			if err != nil {
				toast.Failure("Login failed")
				return err
			}
			if err := a.Sessions.Login(cmd.Context(), result.User, result.Token); err != nil {
				return err
			}
			name := result.User.Username
			if name == "" {
				name = result.User.Email
			}
			toast.Success("Welcome back, " + name)
			return nil
		}),
	}
	cmd.Flags().String("email", "", "email address")
	cmd.Flags().String("password", "", "password")
	return cmd
}

func (r *runner) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out",
		Args:  cobra.NoArgs,
		RunE: r.with(func(cmd *cobra.Command, _ []string, a *app.App) error {
			if err := a.Sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			toastNotifier{out: cmd.OutOrStdout()}.Success("Logged out")
			return nil
		}),
	}
}
