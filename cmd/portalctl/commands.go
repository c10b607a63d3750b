package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/brightnest/cleaning-portal/internal/client"
	"github.com/brightnest/cleaning-portal/internal/core/domain"
	"github.com/brightnest/cleaning-portal/internal/core/ports"
	"github.com/brightnest/cleaning-portal/internal/core/session"
)

type usageError string

func (e usageError) Error() string { return string(e) }

type app struct {
	api   *client.Client
	store *client.SessionStore
	roles *client.RoleResolver
	ctrl  *session.Controller
	out   io.Writer
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "signup":
		return a.signUp(ctx, rest)
	case "signin":
		return a.signIn(ctx, rest)
	case "signout":
		a.ctrl.SignOut(ctx)
		fmt.Fprintln(a.out, "Signed out.")
		return nil
	case "whoami":
		return a.gated(ctx, session.Authenticated(), "/account", func() error { return a.whoami(ctx) })
	case "services":
		return a.services(ctx)
	case "book":
		return a.gated(ctx, session.Authenticated(), "/book", func() error { return a.book(ctx, rest) })
	case "retry":
		return a.gated(ctx, session.Authenticated(), "/book", func() error { return a.retry(ctx, rest) })
	case "bookings":
		return a.gated(ctx, session.Authenticated(), "/bookings", func() error { return a.myBookings(ctx) })
	case "cancel":
		return a.gated(ctx, session.Authenticated(), "/bookings", func() error { return a.cancel(ctx, rest) })
	case "admin":
		if len(rest) == 0 {
			return usageError("admin: missing subcommand")
		}
		return a.gated(ctx, session.Admin(), "/admin/"+rest[0], func() error { return a.admin(ctx, rest[0], rest[1:]) })
	case "tasks":
		return a.gated(ctx, session.Employee(), "/employee/tasks", func() error { return a.tasks(ctx) })
	case "task-status":
		return a.gated(ctx, session.Employee(), "/employee/tasks", func() error { return a.taskStatus(ctx, rest) })
	}
	return usageError("unknown command " + cmd)
}

// gated runs fn only when the current session satisfies req.
func (a *app) gated(ctx context.Context, req session.Requirement, origin string, fn func() error) error {
	guard := session.Guard{Requirement: req, Roles: a.roles}
	d := guard.Check(ctx, a.ctrl.State(), origin)
	switch d.Action {
	case session.ActionLoading:
		return errors.New("session is still loading, try again")
	case session.ActionRedirect:
		if d.Mismatch {
			return fmt.Errorf("your account cannot open %s; sign in with another account (%s)", origin, d.RedirectTo)
		}
		return fmt.Errorf("sign in required: run portalctl signin (%s)", d.RedirectTo)
	}
	return fn()
}

// --- Account ---

func (a *app) signUp(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	username := fs.String("username", "", "display name")
	phone := fs.String("phone", "", "phone number")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	if *email == "" || *password == "" || *username == "" || *phone == "" {
		return usageError("signup: -email, -password, -username and -phone are required")
	}

	u, err := a.ctrl.SignUp(ctx, ports.SignUpInput{Email: *email, Password: *password, Username: *username, Phone: *phone})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Account %s created. Please sign in.\n", u.Email)
	return nil
}

func (a *app) signIn(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signin", flag.ContinueOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	if *email == "" || *password == "" {
		return usageError("signin: -email and -password are required")
	}

	if err := a.ctrl.SignIn(ctx, *email, *password); err != nil {
		return err
	}
	st := a.ctrl.State()
	fmt.Fprintf(a.out, "Signed in as %s (%s).\n", *email, roleLabel(st))
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	sess, role, err := a.store.Validate(ctx)
	if err != nil {
		return err
	}
	if sess == nil {
		return errors.New("session expired; sign in again")
	}
	fmt.Fprintf(a.out, "%s\t%s\trole=%s\texpires=%s\n", sess.UserID, sess.Email, role, sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

// --- Customer ---

func (a *app) services(ctx context.Context) error {
	list, err := a.api.Services(ctx)
	if err != nil {
		return err
	}
	tw := newTable(a.out, "ID", "PACKAGE", "PRICE", "INCLUDES")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t$%.2f\t%s\n", s.ID, s.Title, s.Price, strings.Join(s.Features, ", "))
	}
	return tw.Flush()
}

func (a *app) book(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("book", flag.ContinueOnError)
	service := fs.String("service", "", "service package id")
	location := fs.String("location", "", "address")
	notes := fs.String("notes", "", "notes for the cleaner")
	date := fs.String("date", "", "date, YYYY-MM-DD")
	clock := fs.String("time", "", "time, HH:MM")
	evc := fs.String("evc", "", "EVC Plus number")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	if *service == "" {
		return usageError("book: -service is required")
	}

	w, err := a.api.StartWizard(ctx, ports.StartWizardInput{ServiceID: *service, Location: *location, Notes: *notes})
	if err != nil {
		return err
	}
	if w, err = a.api.SetSchedule(ctx, w.ID, *date, *clock); err != nil {
		return err
	}
	if w, err = a.api.SetPayment(ctx, w.ID, *evc); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s on %s at %s, $%.2f. Charging %s...\n", w.Service.Title, w.Date, w.Time, w.Service.Price, w.EVCNumber)
	return a.confirm(ctx, w.ID)
}

func (a *app) retry(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("retry", flag.ContinueOnError)
	id := fs.String("wizard", "", "wizard id")
	evc := fs.String("evc", "", "new EVC Plus number")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	if *id == "" {
		return usageError("retry: -wizard is required")
	}
	if *evc != "" {
		if _, err := a.api.SetPayment(ctx, *id, *evc); err != nil {
			return err
		}
	}
	return a.confirm(ctx, *id)
}

func (a *app) confirm(ctx context.Context, wizardID string) error {
	w, err := a.api.Confirm(ctx, wizardID)
	if err != nil {
		if w != nil && w.Step == domain.StepFailed {
			return fmt.Errorf("%w (retry with: portalctl retry -wizard %s)", err, w.ID)
		}
		return err
	}
	fmt.Fprintf(a.out, "Booking %s confirmed. See it with: portalctl bookings\n", w.BookingID)
	return nil
}

func (a *app) myBookings(ctx context.Context) error {
	list, err := a.api.MyBookings(ctx)
	if err != nil {
		return err
	}
	tw := newTable(a.out, "ID", "SERVICE", "DATE", "TIME", "PRICE", "STATUS", "CANCEL")
	for _, b := range list {
		cancel := ""
		if b.CanCancel {
			cancel = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t$%.2f\t%s\t%s\n", b.ID, b.ServiceType, b.Date, b.Time, b.Price, b.Status, cancel)
	}
	return tw.Flush()
}

func (a *app) cancel(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cancel", flag.ContinueOnError)
	id := fs.String("id", "", "booking id")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	if *id == "" {
		return usageError("cancel: -id is required")
	}
	b, err := a.api.CancelBooking(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Booking %s is now %s.\n", b.ID, b.Status)
	return nil
}

// --- Employee ---

func (a *app) tasks(ctx context.Context) error {
	list, err := a.api.Tasks(ctx)
	if err != nil {
		return err
	}
	tw := newTable(a.out, "ID", "DATE", "TIME", "SERVICE", "CUSTOMER", "PHONE", "LOCATION", "STATUS")
	for _, b := range list {
		name, phone := summary(b.Customer)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", b.ID, b.Date, b.Time, b.ServiceType, name, phone, b.Location, b.Status)
	}
	return tw.Flush()
}

func (a *app) taskStatus(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("task-status", flag.ContinueOnError)
	id := fs.String("id", "", "booking id")
	status := fs.String("status", "", "new status")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	if *id == "" || *status == "" {
		return usageError("task-status: -id and -status are required")
	}
	b, err := a.api.SetTaskStatus(ctx, *id, *status)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Task %s is now %s.\n", b.ID, b.Status)
	return nil
}

func newTable(w io.Writer, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	return tw
}

func summary(p *domain.ProfileSummary) (string, string) {
	if p == nil {
		return "-", "-"
	}
	return p.Username, p.Phone
}

func roleLabel(st session.State) string {
	if !st.RoleResolved {
		return "role unknown"
	}
	return string(st.Role)
}
