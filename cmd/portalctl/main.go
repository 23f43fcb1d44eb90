// Command portalctl is a small terminal client for the portal API:
// log in, inspect the stored session, and dry-run route guards.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spec-kit/school-portal/internal/client"
	"github.com/spec-kit/school-portal/internal/domain"
)

func main() {
	baseURL := flag.String("server", "http://127.0.0.1:8080", "portal API base URL")
	stateFile := flag.String("state", defaultStatePath(), "session state file")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	c := client.New(*baseURL, client.NewFileStorage(*stateFile))
	c.Session().Resolve()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	switch args[0] {
	case "login":
		err = runLogin(ctx, c, args[1:])
	case "logout":
		err = c.Logout(ctx)
	case "whoami":
		err = runWhoami(ctx, c)
	case "guard":
		err = runGuard(c, args[1:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runLogin(ctx context.Context, c *client.Client, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: portalctl login <username> <password>")
	}
	if err := c.Login(ctx, args[0], args[1]); err != nil {
		return err
	}
	identity := c.Session().Identity()
	fmt.Printf("logged in as %s (%s)\n", args[0], identity.Role)
	return nil
}

func runWhoami(ctx context.Context, c *client.Client) error {
	identity, route, err := c.Whoami(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("subject: %s\nrole: %s\nroute: %s\n", identity.SubjectID, identity.Role, route)
	return nil
}

func runGuard(c *client.Client, args []string) error {
	roles := make([]domain.Role, 0, len(args))
	for _, arg := range args {
		role, ok := domain.ParseRole(arg)
		if !ok {
			return fmt.Errorf("unknown role %q", arg)
		}
		roles = append(roles, role)
	}

	decision := client.Guard{AllowedRoles: roles}.Evaluate(c.Session())
	fmt.Printf("state: %s\n", decision.State)
	if decision.RedirectTo != "" {
		fmt.Printf("redirect: %s\n", decision.RedirectTo)
	}
	return nil
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".portal-session.json"
	}
	return filepath.Join(home, ".portal-session.json")
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: portalctl [flags] <command>

commands:
  login <username> <password>
  logout
  whoami
  guard [role ...]`)
}
