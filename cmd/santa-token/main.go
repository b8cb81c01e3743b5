// Command santa-token mints bearer tokens for the API. The signing key is
// read from the same config file as the server, so API_JWT_SIGNING_KEY
// overrides apply here too.
package main

import (
	"fmt"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload" // Autoload .env file.
	"github.com/spf13/cobra"

	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/config"
	"github.com/yizeng/gab/gin/gorm/secret-santa/internal/pkg/jwthelper"
)

type options struct {
	ConfigPath string
	Admin      bool
	TTL        time.Duration
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "santa-token <name>",
		Short: "Mint a bearer token for a participant or an admin",
		Long: `Mint a bearer token for a participant or an admin.

The name becomes the token subject and is the name the caller registers
under. Example:
  santa-token "Ana" --ttl 72h
  santa-token organizer --admin`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mint(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "./cmd/app/config.yml", "path to the server config")
	cmd.Flags().BoolVar(&opts.Admin, "admin", false, "grant admin rights")
	cmd.Flags().DurationVar(&opts.TTL, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}

func mint(cmd *cobra.Command, opts *options, name string) error {
	conf, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("config.Load -> %w", err)
	}

	token, err := jwthelper.GenerateToken([]byte(conf.API.JWTSigningKey), name, opts.Admin, opts.TTL)
	if err != nil {
		return fmt.Errorf("jwthelper.GenerateToken -> %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
