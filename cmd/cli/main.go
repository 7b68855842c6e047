// Command cli is a small operator tool for the auction site HTTP API:
// site management, account registration and bidding from the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/mkuznecov/auctionsite/internal/client"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: cli [-addr http://localhost:8080] <command> [flags]

commands:
  create-site    -name <site> [-tz 0] [-exp 3600] [-inc 1]
  list-sites
  register       -site <site> -user <name>
  login          -site <site> -user <name>            (prints the token)
  create-auction -site <site> -token <t> -desc <text> -ends <RFC3339> [-price 0]
  list-auctions  -site <site> [-active]
  bid            -site <site> -token <t> -auction <id> -offer <amount>
  price          -site <site> -auction <id>
  winner         -site <site> -auction <id>`)
	os.Exit(2)
}

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "password: ")
	b, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "server address")
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
	}

	ctx := context.Background()
	c := client.New(*addr)
	cmd, args := flag.Arg(0), flag.Args()[1:]

	if err := run(ctx, c, cmd, args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c *client.Client, cmd string, args []string) error {
	switch cmd {
	case "create-site":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		name := fs.String("name", "", "site name")
		tz := fs.Int("tz", 0, "timezone offset, hours")
		exp := fs.Int("exp", 3600, "session expiration, seconds")
		inc := fs.Float64("inc", 1, "minimum bid increment")
		_ = fs.Parse(args)
		site, err := c.CreateSite(ctx, *name, *tz, *exp, *inc)
		if err != nil {
			return err
		}
		fmt.Printf("created site %q (id %d)\n", site.Name, site.ID)

	case "list-sites":
		sites, err := c.ListSites(ctx)
		if err != nil {
			return err
		}
		for _, s := range sites {
			fmt.Printf("%s\ttz %+d\tincrement %.2f\n", s.Name, s.Timezone, s.MinimumBidIncrement)
		}

	case "register":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		site := fs.String("site", "", "site name")
		user := fs.String("user", "", "username")
		_ = fs.Parse(args)
		password, err := promptPassword()
		if err != nil {
			return err
		}
		u, err := c.Register(ctx, *site, *user, password)
		if err != nil {
			return err
		}
		fmt.Printf("registered %q (id %d)\n", u.Username, u.ID)

	case "login":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		site := fs.String("site", "", "site name")
		user := fs.String("user", "", "username")
		_ = fs.Parse(args)
		password, err := promptPassword()
		if err != nil {
			return err
		}
		token, err := c.Login(ctx, *site, *user, password)
		if err != nil {
			return err
		}
		fmt.Println(token)

	case "create-auction":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		site := fs.String("site", "", "site name")
		token := fs.String("token", "", "session token")
		desc := fs.String("desc", "", "description")
		ends := fs.String("ends", "", "end time, RFC3339")
		price := fs.Float64("price", 0, "starting price")
		_ = fs.Parse(args)
		endsOn, err := time.Parse(time.RFC3339, *ends)
		if err != nil {
			return fmt.Errorf("parsing -ends: %w", err)
		}
		c.SetToken(*token)
		auction, err := c.CreateAuction(ctx, *site, *desc, endsOn, *price)
		if err != nil {
			return err
		}
		fmt.Printf("created auction %d, ends %s\n", auction.ID, auction.EndsOn.Format(time.RFC3339))

	case "list-auctions":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		site := fs.String("site", "", "site name")
		active := fs.Bool("active", false, "only running auctions")
		_ = fs.Parse(args)
		auctions, err := c.ListAuctions(ctx, *site, *active)
		if err != nil {
			return err
		}
		for _, a := range auctions {
			fmt.Printf("%d\t%.2f\tends %s\t%s\n", a.ID, a.Price, a.EndsOn.Format(time.RFC3339), a.Description)
		}

	case "bid":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		site := fs.String("site", "", "site name")
		token := fs.String("token", "", "session token")
		auction := fs.Int64("auction", 0, "auction id")
		offer := fs.Float64("offer", 0, "offer amount")
		_ = fs.Parse(args)
		c.SetToken(*token)
		outcome, err := c.PlaceBid(ctx, *site, *auction, *offer)
		if err != nil {
			return err
		}
		fmt.Println(outcome)

	case "price":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		site := fs.String("site", "", "site name")
		auction := fs.Int64("auction", 0, "auction id")
		_ = fs.Parse(args)
		price, err := c.CurrentPrice(ctx, *site, *auction)
		if err != nil {
			return err
		}
		fmt.Printf("%.2f\n", price)

	case "winner":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		site := fs.String("site", "", "site name")
		auction := fs.Int64("auction", 0, "auction id")
		_ = fs.Parse(args)
		winner, err := c.CurrentWinner(ctx, *site, *auction)
		if err != nil {
			return err
		}
		if winner == nil {
			fmt.Println("no winner yet")
			return nil
		}
		fmt.Printf("%s (id %d)\n", winner.Username, winner.ID)

	default:
		usage()
	}
	return nil
}
