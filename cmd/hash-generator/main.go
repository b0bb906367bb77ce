// Command hash-generator prints bcrypt hashes for passwords given as arguments
// or read line by line from stdin, for seeding accounts directly in the database.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/taskdesk-api/internal/service/auth"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("hash-generator", flag.ContinueOnError)
	cost := fs.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return err
	}

	hasher := auth.NewBcryptHasher(*cost)
	hashOne := func(password string) error {
		if err := auth.ValidatePassword(password); err != nil {
			return fmt.Errorf("rejected password: %w", err)
		}
		hash, err := hasher.Hash(password)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, hash)
		return err
	}

	if fs.NArg() > 0 {
		for _, password := range fs.Args() {
			if err := hashOne(password); err != nil {
				return err
			}
		}
		return nil
	}

	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		if scanner.Text() == "" {
			continue
		}
		if err := hashOne(scanner.Text()); err != nil {
			return err
		}
	}
	return scanner.Err()
}
