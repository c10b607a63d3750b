package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/brightnest/cleaning-portal/internal/core/ports"
)

func (a *app) admin(ctx context.Context, sub string, args []string) error {
	fs := flag.NewFlagSet("admin "+sub, flag.ContinueOnError)
	id := fs.String("id", "", "booking or employee id")

	switch sub {
	case "stats":
		return a.adminStats(ctx)

	case "bookings":
		status := fs.String("status", "", "status filter")
		page := fs.Int("page", 1, "page")
		limit := fs.Int("limit", 20, "page size")
		if err := fs.Parse(args); err != nil {
			return usageError(err.Error())
		}
		return a.adminBookings(ctx, ports.ListBookingsInput{Status: *status, Page: *page, Limit: *limit})

	case "status":
		status := fs.String("status", "", "new status")
		if err := fs.Parse(args); err != nil {
			return usageError(err.Error())
		}
		if *id == "" || *status == "" {
			return usageError("admin status: -id and -status are required")
		}
		b, err := a.api.SetBookingStatus(ctx, *id, *status)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Booking %s is now %s.\n", b.ID, b.Status)
		return nil

	case "assign":
		employee := fs.String("employee", "", "employee id, empty to unassign")
		if err := fs.Parse(args); err != nil {
			return usageError(err.Error())
		}
		if *id == "" {
			return usageError("admin assign: -id is required")
		}
		b, err := a.api.AssignBooking(ctx, *id, *employee)
		if err != nil {
			return err
		}
		if b.AssignedEmployee == "" {
			fmt.Fprintf(a.out, "Booking %s is unassigned.\n", b.ID)
		} else {
			fmt.Fprintf(a.out, "Booking %s assigned to %s.\n", b.ID, b.AssignedEmployee)
		}
		return nil

	case "events":
		if err := fs.Parse(args); err != nil {
			return usageError(err.Error())
		}
		if *id == "" {
			return usageError("admin events: -id is required")
		}
		events, err := a.api.BookingEvents(ctx, *id)
		if err != nil {
			return err
		}
		tw := newTable(a.out, "AT", "EVENT", "ACTOR", "FROM", "TO", "REFERENCE", "MESSAGE")
		for _, ev := range events {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", ev.Timestamp.Local().Format("2006-01-02 15:04:05"), ev.Type, ev.ActorID, ev.From, ev.To, ev.ReferenceID, ev.Message)
		}
		return tw.Flush()

	case "orphans":
		events, err := a.api.OrphanedPayments(ctx)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Fprintln(a.out, "No orphaned payments.")
			return nil
		}
		tw := newTable(a.out, "AT", "WIZARD", "REFERENCE", "AMOUNT", "ERROR")
		for _, ev := range events {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\n", ev.Timestamp.Local().Format("2006-01-02 15:04:05"), ev.WizardID, ev.ReferenceID, ev.Amount, ev.Message)
		}
		return tw.Flush()

	case "employees":
		list, err := a.api.Employees(ctx)
		if err != nil {
			return err
		}
		tw := newTable(a.out, "ID", "USERNAME", "PHONE", "SINCE")
		for _, p := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Username, p.Phone, p.CreatedAt.Local().Format("2006-01-02"))
		}
		return tw.Flush()

	case "add-employee":
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "initial password")
		username := fs.String("username", "", "display name")
		phone := fs.String("phone", "", "phone number")
		if err := fs.Parse(args); err != nil {
			return usageError(err.Error())
		}
		p, err := a.api.CreateEmployee(ctx, ports.CreateEmployeeInput{Email: *email, Password: *password, Username: *username, Phone: *phone})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Employee %s created with id %s.\n", p.Username, p.ID)
		return nil

	case "edit-employee":
		username := fs.String("username", "", "new display name")
		phone := fs.String("phone", "", "new phone number")
		if err := fs.Parse(args); err != nil {
			return usageError(err.Error())
		}
		if *id == "" {
			return usageError("admin edit-employee: -id is required")
		}
		var upd ports.ProfileUpdate
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "username":
				upd.Username = username
			case "phone":
				upd.Phone = phone
			}
		})
		p, err := a.api.UpdateEmployee(ctx, *id, upd)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Employee %s: %s, %s.\n", p.ID, p.Username, p.Phone)
		return nil

	case "remove-employee":
		if err := fs.Parse(args); err != nil {
			return usageError(err.Error())
		}
		if *id == "" {
			return usageError("admin remove-employee: -id is required")
		}
		if err := a.api.DeleteEmployee(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Employee %s removed.\n", *id)
		return nil
	}
	return usageError("admin: unknown subcommand " + sub)
}

func (a *app) adminStats(ctx context.Context) error {
	s, err := a.api.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Customers: %d  Employees: %d  Admins: %d\n",
		s.UsersByRole["customer"], s.UsersByRole["employee"], s.UsersByRole["admin"])
	fmt.Fprintf(a.out, "Bookings: %d total, %d pending, %d completed\n", s.Bookings.Total, s.Bookings.Pending, s.Bookings.Completed)
	fmt.Fprintf(a.out, "Revenue: $%.2f\n", s.Bookings.Revenue)
	return nil
}

func (a *app) adminBookings(ctx context.Context, in ports.ListBookingsInput) error {
	page, err := a.api.AllBookings(ctx, in)
	if err != nil {
		return err
	}
	tw := newTable(a.out, "ID", "DATE", "TIME", "SERVICE", "CUSTOMER", "PHONE", "EMPLOYEE", "STATUS", "PAID")
	for _, b := range page.Items {
		cust, phone := summary(b.Customer)
		emp, _ := summary(b.Employee)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t$%.2f\n", b.ID, b.Date, b.Time, b.ServiceType, cust, phone, emp, b.Status, b.PaymentAmount)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	p := page.Pagination
	fmt.Fprintf(a.out, "page %d of %d (%d bookings)\n", p.Page, p.TotalPages, p.Total)
	return nil
}
