package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aussiebroadwan/siteadmin/internal/auth/domain"
	"github.com/aussiebroadwan/siteadmin/pkg/cryptox"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the siteadmin CLI. With no subcommand it serves.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "siteadmin",
		Short: "Admin authentication service for the site control panel",
		Long: `siteadmin issues admin sessions, enforces login lockouts and keeps
the login audit log.

Configuration comes from environment variables, optionally layered over a
YAML file named by SITEADMIN_CONFIG.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	root.AddCommand(
		newServeCommand(),
		newHashPasswordCommand(),
		newSetPasswordCommand(),
		newTOTPEnrollCommand(),
		newGenSecretCommand(),
	)
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	application, err := New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return application.Run()
}

func newHashPasswordCommand() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Read a password from stdin and print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}

			hash, err := cryptox.HashPassword(password, cost)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}

	cmd.Flags().IntVar(&cost, "cost", cryptox.DefaultCost, "bcrypt work factor (minimum 10)")
	return cmd
}

func newSetPasswordCommand() *cobra.Command {
	var generate bool

	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Store the admin password hash in the record store",
		Long: `set-password hashes a password read from stdin and writes it to the
admin_credentials table. A stored credential takes precedence over
ADMIN_PASSWORD_HASH. With --generate a random password is created and printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			var password string
			if generate {
				if password, err = cryptox.GeneratePassword(); err != nil {
					return err
				}
			} else if password, err = readPassword(cmd.InOrStdin()); err != nil {
				return err
			}

			hash, err := cryptox.HashPassword(password, cfg.BcryptCost)
			if err != nil {
				return err
			}

			db, err := openStore(cfg.DatabaseFile)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := db.Credentials().UpsertCredential(ctx, domain.Credential{
				Principal:    cfg.AdminSubject,
				PasswordHash: hash,
			}); err != nil {
				return fmt.Errorf("store credential: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "password updated for %q in %s\n", cfg.AdminSubject, cfg.DatabaseFile)
			if generate {
				fmt.Fprintf(out, "generated password: %s\n", password)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&generate, "generate", false, "generate a random password instead of reading stdin")
	return cmd
}

func newTOTPEnrollCommand() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "totp-enroll",
		Short: "Generate a TOTP secret for ADMIN_TOTP_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if account == "" {
				account = cfg.AdminSubject
			}

			key, err := totp.Generate(totp.GenerateOpts{
				Issuer:      cfg.Issuer,
				AccountName: account,
				Period:      30,
				Digits:      otp.DigitsSix,
				Algorithm:   otp.AlgorithmSHA1,
			})
			if err != nil {
				return fmt.Errorf("generate totp key: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ADMIN_TOTP_SECRET=%s\n", key.Secret())
			fmt.Fprintf(out, "provisioning url: %s\n", key.URL())
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "account name shown in the authenticator app (default: admin subject)")
	return cmd
}

func newGenSecretCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "gen-secret",
		Short: "Print a random signing secret for JWT_SECRET or JWT_REFRESH_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := cryptox.GenerateToken(cryptox.TokenSize512)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), secret)
			return err
		},
	}
}

// readPassword takes the first line of r without its line ending.
func readPassword(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return "", errors.New("no password on stdin")
	}

	password := strings.TrimRight(sc.Text(), "\r")
	if password == "" {
		return "", errors.New("empty password")
	}
	return password, nil
}
