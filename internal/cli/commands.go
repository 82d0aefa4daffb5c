package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/segyhp/ludoteca/internal/domain"
	"github.com/segyhp/ludoteca/internal/service"
	customError "github.com/segyhp/ludoteca/pkg/errors"
	"github.com/segyhp/ludoteca/pkg/utils"
)

func (a *app) gameCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "game", Short: "Manage games"}

	var req domain.RegisterGameRequest
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			game, err := a.library.RegisterGame(req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Game registered: %s\n%s\n", game.ID, game)
			return nil
		},
	}
	add.Flags().StringVar(&req.Name, "name", "", "game name")
	add.Flags().IntVar(&req.Year, "year", 0, "publication year")
	add.Flags().StringVar(&req.Category, "category", "", "category")
	add.Flags().IntVar(&req.MinPlayers, "min-players", domain.DefaultMinPlayers, "minimum players")
	add.Flags().IntVar(&req.MaxPlayers, "max-players", domain.DefaultMaxPlayers, "maximum players")

	var availableOnly bool
	list := &cobra.Command{
		Use:         "list",
		Short:       "List games",
		Args:        cobra.NoArgs,
		Annotations: readOnlyAnnotation(),
		RunE: func(cmd *cobra.Command, args []string) error {
			games := a.library.Games(availableOnly)
			out := cmd.OutOrStdout()
			if len(games) == 0 {
				fmt.Fprintln(out, "No games found.")
				return nil
			}
			for _, game := range games {
				fmt.Fprintf(out, "[%s] %s\n", game.ID, game)
			}
			return nil
		},
	}
	list.Flags().BoolVar(&availableOnly, "available", false, "only games that can be lent")

	cmd.AddCommand(add, list)
	return cmd
}

func (a *app) memberCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "member", Short: "Manage members"}

	var req domain.RegisterMemberRequest
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			member, err := a.library.RegisterMember(req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Member registered: %s\n%s\n", member.ID, member)
			return nil
		},
	}
	add.Flags().StringVar(&req.Name, "name", "", "member name")
	add.Flags().StringVar(&req.Email, "email", "", "email address")
	add.Flags().StringVar(&req.Phone, "phone", "", "phone number")
	add.Flags().StringVar(&req.MembershipNumber, "number", "", "membership number")

	var withFineOnly bool
	list := &cobra.Command{
		Use:         "list",
		Short:       "List members",
		Args:        cobra.NoArgs,
		Annotations: readOnlyAnnotation(),
		RunE: func(cmd *cobra.Command, args []string) error {
			members := a.library.Members(withFineOnly)
			out := cmd.OutOrStdout()
			if len(members) == 0 {
				fmt.Fprintln(out, "No members found.")
				return nil
			}
			for _, member := range members {
				fmt.Fprintf(out, "[%s] %s\n", member.ID, member)
			}
			return nil
		},
	}
	list.Flags().BoolVar(&withFineOnly, "with-fine", false, "only members with a pending fine")

	cmd.AddCommand(add, list, a.setActiveCommand("activate", true), a.setActiveCommand("deactivate", false))
	return cmd
}

func (a *app) setActiveCommand(use string, active bool) *cobra.Command {
	short := "Allow a member to borrow again"
	if !active {
		short = "Block a member from borrowing"
	}
	return &cobra.Command{
		Use:   use + " MEMBER_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			member, err := a.library.SetMemberActive(id, active)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), member)
			return nil
		},
	}
}

func (a *app) loanCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "loan", Short: "Lend and return games"}

	var gameID, memberID string
	var loanDays int
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Lend a game to a member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			game, err := parseID(gameID)
			if err != nil {
				return err
			}
			member, err := parseID(memberID)
			if err != nil {
				return err
			}

			loan, err := a.library.IssueLoan(domain.IssueLoanRequest{GameID: game, MemberID: member, LoanDays: loanDays})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loan issued: %s\n%s\n", loan.ID, loan)
			return nil
		},
	}
	issue.Flags().StringVar(&gameID, "game", "", "game id")
	issue.Flags().StringVar(&memberID, "member", "", "member id")
	issue.Flags().IntVar(&loanDays, "days", domain.DefaultLoanDays, "loan length in days")

	ret := &cobra.Command{
		Use:   "return LOAN_ID",
		Short: "Return a lent game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			loan, err := a.library.ReturnLoan(id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Loan returned: %s\n", loan)
			if loan.Fine.IsPositive() {
				fmt.Fprintf(out, "Fine charged: %s\n", utils.FormatMoney(a.cfg.Report.CurrencySymbol, loan.Fine))
			}
			return nil
		},
	}

	var status string
	list := &cobra.Command{
		Use:         "list",
		Short:       "List loans",
		Args:        cobra.NoArgs,
		Annotations: readOnlyAnnotation(),
		RunE: func(cmd *cobra.Command, args []string) error {
			loans, err := a.library.Loans(status)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(loans) == 0 {
				fmt.Fprintln(out, "No loans found.")
				return nil
			}
			now := a.library.Now()
			for _, loan := range loans {
				marker := ""
				if loan.IsOverdue(now) {
					marker = " " + overdueMarker(out)
				}
				fmt.Fprintf(out, "[%s] %s%s\n", loan.ID, loan, marker)
			}
			return nil
		},
	}
	list.Flags().StringVar(&status, "status", service.LoanFilterAll, "active, overdue or finished")

	fine := &cobra.Command{
		Use:         "fine LOAN_ID",
		Short:       "Show the fine a loan would carry if returned now",
		Args:        cobra.ExactArgs(1),
		Annotations: readOnlyAnnotation(),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			preview, err := a.library.PreviewFine(id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Days late: %d\n", preview.DaysLate)
			fmt.Fprintf(out, "Fine: %s\n", utils.FormatMoney(a.cfg.Report.CurrencySymbol, preview.Fine))
			if preview.Overdue {
				fmt.Fprintln(out, overdueMarker(out))
			}
			return nil
		},
	}

	cmd.AddCommand(issue, ret, list, fine)
	return cmd
}

func (a *app) fineCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "fine", Short: "Settle member fines"}

	var amount, method string
	pay := &cobra.Command{
		Use:   "pay MEMBER_ID",
		Short: "Pay part or all of a member's pending fine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			value, err := utils.DecimalFromString(amount)
			if err != nil {
				return customError.WrapInvalidInput(fmt.Sprintf("amount must be a number, got '%s'", amount))
			}

			receipt, err := a.library.PayFine(id, domain.PayFineRequest{Amount: value, Method: method})
			if err != nil {
				return err
			}

			symbol := a.cfg.Report.CurrencySymbol
			fmt.Fprintf(cmd.OutOrStdout(), "Paid %s via %s. Remaining: %s\n",
				utils.FormatMoney(symbol, receipt.Amount), receipt.Method, utils.FormatMoney(symbol, receipt.Remaining))
			return nil
		},
	}
	pay.Flags().StringVar(&amount, "amount", "", "amount to pay")
	pay.Flags().StringVar(&method, "method", domain.PaymentMethodCash, "payment method (PIX, cash, ...)")

	cmd.AddCommand(pay)
	return cmd
}

func (a *app) reportCommand() *cobra.Command {
	var toStdout bool
	cmd := &cobra.Command{
		Use:         "report",
		Short:       "Write the library report",
		Args:        cobra.NoArgs,
		Annotations: readOnlyAnnotation(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if toStdout {
				return a.library.RenderReport(cmd.OutOrStdout())
			}
			if _, err := a.library.GenerateReport(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", a.cfg.Report.Path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "print the report instead of writing the file")
	return cmd
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, customError.WrapInvalidInput(fmt.Sprintf("'%s' is not a valid id", raw))
	}
	return id, nil
}
