package authctl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/azura/internal/server/config"
	"github.com/dmitrijs2005/azura/internal/server/password"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// getPassword reads a password without echo when stdin is a terminal and a
// single line from in otherwise.
func getPassword(in io.Reader, w io.Writer) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if in == os.Stdin && isTerminal(fd) {
		if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
			return nil, err
		}
		pw, err := readPassword(fd)
		fmt.Fprintln(w)
		if err != nil {
			return nil, err
		}
		return pw, nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

func passwordCmd(defaults *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Password utilities",
	}
	cmd.AddCommand(passwordHashCmd(defaults))
	return cmd
}

func passwordHashCmd(defaults *config.Config) *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Hash a password read from the terminal or stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := getPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			if len(pw) == 0 {
				return errors.New("empty password")
			}

			hash, err := password.NewBcryptHasher(cost).Hash(string(pw))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.Flags().IntVar(&cost, "cost", defaults.BcryptCost, "bcrypt cost")
	return cmd
}
