package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/trezcool/masomo-web/core/gateway"
	"github.com/trezcool/masomo-web/core/identity"
	"github.com/trezcool/masomo-web/core/navigation"
	"github.com/trezcool/masomo-web/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp         = errors.New("help provided")
	errUnknownRole  = errors.New("unknown role")
	errNotSignedIn  = errors.New("the token does not belong to a signed-in user")
	errTokenExpired = errors.New("the token has expired")
)

type commandLine struct {
	caches   *gateway.Registry
	resolver *identity.Resolver
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  nav -role ROLE - print the navigation menu of a role")
	fmt.Println("  signin -email EMAIL - sign in and print the session token")
	fmt.Println("  whoami -token TOKEN - print the user behind a session token")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	navCmd := flag.NewFlagSet("nav", flag.ContinueOnError)
	navRole := navCmd.String("role", "", "One of student, teacher, parent, admin or accountant.")

	signInCmd := flag.NewFlagSet("signin", flag.ContinueOnError)
	signInEmail := signInCmd.String("email", "", "The user's email. The password will be prompted next.")

	whoAmICmd := flag.NewFlagSet("whoami", flag.ContinueOnError)
	whoAmIToken := whoAmICmd.String("token", "", "A session token, as returned by signin.")

	switch args[1] {
	case "nav":
		if err := navCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *navRole == "" {
			navCmd.Usage()
			return errHelp
		}
		return cli.nav(*navRole)
	case "signin":
		if err := signInCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *signInEmail == "" {
			signInCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			signInCmd.Usage()
			return errHelp
		}
		return cli.signIn(*signInEmail, string(pwd))
	case "whoami":
		if err := whoAmICmd.Parse(args[2:]); err != nil {
			return err
		}
		if *whoAmIToken == "" {
			whoAmICmd.Usage()
			return errHelp
		}
		return cli.whoAmI(*whoAmIToken)
	default:
		cli.printUsage()
		return errHelp
	}
}

// nav prints the menu entries of role, one per line.
func (cli *commandLine) nav(name string) error {
	role := user.ParseRole(name)
	if role == "" {
		return errUnknownRole
	}
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	for _, item := range navigation.For(role) {
		fmt.Fprintf(w, "%s\t%s\n", item.Label, item.Path)
	}
	return w.Flush()
}

func (cli *commandLine) signIn(email, pwd string) error {
	creds := user.Credentials{Email: email, Password: pwd}
	creds.Clean()
	resp, err := gateway.Mutate(context.Background(), cli.caches.For(""), user.SignIn, creds)
	if err != nil {
		return err
	}
	if !resp.Success || resp.Token == "" {
		return errNotSignedIn
	}
	_, err = fmt.Fprintln(cli.out, resp.Token)
	return err
}

func (cli *commandLine) whoAmI(token string) error {
	res := cli.resolver.Resolve(context.Background(), token)
	switch {
	case res.IsAuthenticated():
	case res.TokenRejected && res.Err == nil:
		return errTokenExpired
	case res.Err != nil && !res.TokenRejected:
		return res.Err
	default:
		return errNotSignedIn
	}

	usr := res.User
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "name\t%s\n", usr.FullName())
	fmt.Fprintf(w, "email\t%s\n", usr.Email)
	fmt.Fprintf(w, "role\t%s\n", usr.Role.Label())
	for _, c := range usr.Children {
		fmt.Fprintf(w, "child\t%s\n", c.FullName())
	}
	return w.Flush()
}
