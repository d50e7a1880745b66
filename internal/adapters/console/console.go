package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"text/tabwriter"

	"cattle-auction-service/internal/domain/lot"
	"cattle-auction-service/internal/domain/shared"
	"cattle-auction-service/internal/ports/inbound"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
)

// ErrQuitRequested is returned by Run when the operator types quit
var ErrQuitRequested = errors.New("quit requested from console")

const helpText = `Commands:
  list                              show every lot
  create <breed> <quantity> <price> open a new lot
  withdraw <id>                     remove a lot that has no bids
  close <id>                        close bidding and show the winner
  help                              show this help
  quit                              stop the server
`

// Console is the operator command loop that runs on the server terminal
type Console struct {
	service inbound.AuctionService
	in      io.Reader
	out     io.Writer
	logger  zerolog.Logger
}

type ConsoleParams struct {
	Service inbound.AuctionService
	In      io.Reader
	Out     io.Writer
	Logger  zerolog.Logger
}

func NewConsole(params ConsoleParams) *Console {
	return &Console{
		service: params.Service,
		in:      params.In,
		out:     params.Out,
		logger:  params.Logger.With().Str("component", "admin_console").Logger(),
	}
}

// Run reads commands until quit, end of input or ctx is done. End of input
// returns nil so a detached server keeps running.
func (c *Console) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)
	c.prompt()

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		if err := c.Execute(ctx, scanner.Text()); err != nil {
			if errors.Is(err, ErrQuitRequested) {
				return err
			}
			fmt.Fprintf(c.out, "error: %s\n", describe(err))
		}
		c.prompt()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read console input: %w", err)
	}
	c.logger.Info().Msg("Console input closed")
	return nil
}

// Execute runs a single command line
func (c *Console) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	command, args := strings.ToLower(fields[0]), fields[1:]
	c.logger.Debug().Str("command", command).Strs("args", args).Msg("Console command")

	switch command {
	case "list", "ls":
		c.printLots(c.service.ListLots(ctx))
		return nil

	case "create":
		if len(args) < 3 {
			return usageError("create <breed> <quantity> <price>")
		}
		// The breed may contain spaces; quantity and price are the last two fields
		n := len(args)
		created, err := c.service.CreateLot(ctx, inbound.CreateLotRequest{
			Breed:    strings.Join(args[:n-2], " "),
			Quantity: args[n-2],
			Price:    args[n-1],
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Lot #%d created.\n", created.ID)
		return nil

	case "withdraw":
		if len(args) != 1 {
			return usageError("withdraw <id>")
		}
		if err := c.service.WithdrawLot(ctx, args[0]); err != nil {
			return err
		}
		id, _ := lot.ParseID(args[0])
		fmt.Fprintf(c.out, "Lot #%d withdrawn.\n", id)
		return nil

	case "close":
		if len(args) != 1 {
			return usageError("close <id>")
		}
		result, err := c.service.CloseLot(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Lot #%d closed. Winner: %s\n", result.Lot.ID, result.Winner)
		return nil

	case "help", "?":
		fmt.Fprint(c.out, helpText)
		return nil

	case "quit", "exit":
		fmt.Fprintln(c.out, "Shutting down...")
		return ErrQuitRequested

	default:
		return fmt.Errorf("%w: unknown command %q, type help", shared.ErrInvalidInput, command)
	}
}

func (c *Console) printLots(lots []lot.Lot) {
	if len(lots) == 0 {
		fmt.Fprintln(c.out, "No lots registered.")
		return
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tBreed\tQuantity\tCurrent bid\tBidder\tStatus\t")
	for _, l := range lots {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
			l.ID,
			l.Breed,
			humanize.Comma(int64(l.Quantity)),
			FormatAmount(l),
			l.CurrentBidder,
			l.Status,
		)
	}
	_ = w.Flush()
}

// FormatAmount renders the current bid with thousands separators and two
// decimals, e.g. 1,600.00. The digits come from the decimal itself so large
// amounts keep every cent.
func FormatAmount(l lot.Lot) string {
	amount := l.CurrentBidAmount
	whole, cents, _ := strings.Cut(amount.Abs().StringFixed(2), ".")

	n, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return amount.StringFixed(2)
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	return sign + humanize.BigComma(n) + "." + cents
}

func (c *Console) prompt() {
	fmt.Fprint(c.out, "> ")
}

func usageError(usage string) error {
	return fmt.Errorf("%w: usage: %s", shared.ErrInvalidInput, usage)
}

// describe appends the error kind for anything the handler classified
func describe(err error) string {
	kind := shared.KindOf(err)
	if kind == shared.KindInternal {
		return err.Error()
	}
	return fmt.Sprintf("%s (%s)", err.Error(), kind)
}
