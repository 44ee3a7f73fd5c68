package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"libraryhub/internal/handler"
	"libraryhub/internal/model"
	"libraryhub/internal/repository"
)

// readPassword reads a password without echoing it when stdin is a terminal.
func readPassword(out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	if !term.IsTerminal(int(syscall.Stdin)) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}

func (a *cli) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login EMAIL",
		Short: "Sign in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd.OutOrStdout(), "Password: ")
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			user, err := a.api.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s %s (%s)\n", user.FirstName, user.LastName, user.Role)
			return nil
		},
	}
}

func (a *cli) registerCmd() *cobra.Command {
	var req handler.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register EMAIL",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Email = args[0]
			var err error
			if req.Password, err = readPassword(cmd.OutOrStdout(), "Password: "); err != nil {
				return err
			}
			if req.PasswordConfirm, err = readPassword(cmd.OutOrStdout(), "Confirm password: "); err != nil {
				return err
			}
			user, err := a.api.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s!\n", user.FirstName)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&req.Username, "username", "", "username (default: the email local part)")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")
	return cmd
}

func (a *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.api.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func (a *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, ok := a.api.CurrentUser()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s <%s> role=%s\n", user.FirstName, user.LastName, user.Email, user.Role)
			return nil
		},
	}
}

func (a *cli) booksCmd() *cobra.Command {
	var filter repository.BookFilter
	var status string
	cmd := &cobra.Command{
		Use:   "books [SEARCH]",
		Short: "Search the catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				filter.Search = args[0]
			}
			filter.Status = model.BookStatus(status)
			page, err := a.api.Books(cmd.Context(), filter)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tAUTHORS\tAVAILABLE\tSTATUS")
			for _, b := range page.Items {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d/%d\t%s\n", b.ID, b.Title, authorNames(b.Authors), b.AvailableQuantity, b.Quantity, b.Status)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d books\n", len(page.Items), page.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "available, borrowed or reserved")
	cmd.Flags().StringVar(&filter.Language, "language", "", "language code")
	cmd.Flags().IntVar(&filter.Limit, "limit", 20, "page size")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "page offset")
	return cmd
}

func (a *cli) borrowCmd() *cobra.Command {
	var notes string
	cmd := &cobra.Command{
		Use:   "borrow BOOK_ID",
		Short: "Borrow a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			loan, err := a.api.Borrow(cmd.Context(), id, notes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loan %d created, due %s\n", loan.ID, loan.DueDate.Format("2006-01-02"))
			return nil
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "loan notes")
	return cmd
}

func (a *cli) returnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "return LOAN_ID",
		Short: "Return a borrowed book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			loan, err := a.api.Return(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loan %d returned, fine %s\n", loan.ID, loan.FineAmount.StringFixed(2))
			return nil
		},
	}
}

func (a *cli) loansCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "loans",
		Short: "List loans",
		RunE: func(cmd *cobra.Command, _ []string) error {
			loans, err := a.api.Loans(cmd.Context(), model.LoanStatus(status))
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tBOOK\tBORROWER\tDUE\tSTATUS\tDAYS OVERDUE")
			for _, l := range loans {
				title, borrower := "", ""
				if l.Book != nil {
					title = l.Book.Title
				}
				if l.User != nil {
					borrower = l.User.Email
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\n", l.ID, title, borrower, l.DueDate.Format("2006-01-02"), l.Status, l.DaysOverdue)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "active, returned or overdue")
	return cmd
}

func (a *cli) reserveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reserve BOOK_ID",
		Short: "Reserve a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, err := a.api.Reserve(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reservation %d held until %s\n", r.ID, r.ExpiresAt.Format("2006-01-02"))
			return nil
		},
	}
}

func (a *cli) reservationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reservations",
		Short: "List reservations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reservations, err := a.api.Reservations(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tBOOK\tEXPIRES\tSTATUS")
			for _, r := range reservations {
				title := ""
				if r.Book != nil {
					title = r.Book.Title
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, title, r.ExpiresAt.Format("2006-01-02"), r.Status)
			}
			return w.Flush()
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "cancel RESERVATION_ID",
		Short: "Cancel a reservation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.api.CancelReservation(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reservation %d cancelled\n", id)
			return nil
		},
	})
	return cmd
}

func (a *cli) reviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review BOOK_ID RATING [COMMENT]",
		Short: "Rate a book from 1 to 5",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			rating, err := strconv.Atoi(args[1])
			if err != nil || !model.ValidRating(rating) {
				return fmt.Errorf("invalid rating %q", args[1])
			}
			comment := ""
			if len(args) == 3 {
				comment = args[2]
			}
			r, err := a.api.Review(cmd.Context(), id, rating, comment)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Review %d saved\n", r.ID)
			return nil
		},
	}
}

func (a *cli) reviewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews [BOOK_ID]",
		Short: "List reviews",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var bookID uint
			if len(args) == 1 {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				bookID = id
			}
			reviews, err := a.api.Reviews(cmd.Context(), bookID)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tBOOK\tBY\tRATING\tCOMMENT")
			for _, r := range reviews {
				title, by := "", ""
				if r.Book != nil {
					title = r.Book.Title
				}
				if r.User != nil {
					by = r.User.FullName()
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", r.ID, title, by, r.Rating, r.Comment)
			}
			return w.Flush()
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "delete REVIEW_ID",
		Short: "Delete a review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.api.DeleteReview(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Review %d deleted\n", id)
			return nil
		},
	})
	return cmd
}

func (a *cli) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard counters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := a.api.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if s := stats.Admin; s != nil {
				fmt.Fprintf(out, "Books: %d (%d copies available, %d borrowed)\n", s.TotalBooks, s.AvailableBooks, s.BorrowedBooks)
				fmt.Fprintf(out, "Users: %d\nActive loans: %d (%d overdue)\n", s.TotalUsers, s.ActiveLoans, s.OverdueLoans)
				for _, c := range s.TopCategories {
					fmt.Fprintf(out, "  %-24s %d\n", c.Name, c.BookCount)
				}
			}
			if s := stats.User; s != nil {
				fmt.Fprintf(out, "Active loans: %d (%d overdue)\nBorrowed so far: %d\nBooks available: %d\n",
					s.ActiveLoans, s.OverdueLoans, s.TotalBorrowed, s.BooksAvailable)
			}
			return nil
		},
	}
}

func (a *cli) connectionsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "connections",
		Short: "Show the connection log (administrators)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := a.api.ConnectionLogs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tTYPE\tUSER\tIP")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Type, e.UserEmail, e.IPAddress)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "number of entries")
	return cmd
}

func authorNames(authors []model.Author) string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		names = append(names, a.FullName())
	}
	return strings.Join(names, ", ")
}
