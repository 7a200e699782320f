package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mbolis/recruit/apiclient"
	"github.com/mbolis/recruit/log"
	"github.com/mbolis/recruit/prompt"
	"github.com/mbolis/recruit/renderer"
	"github.com/mbolis/recruit/seen"
)

// state is what login leaves behind for later commands.
type state struct {
	Server string           `yaml:"server"`
	Email  string           `yaml:"email"`
	Tokens apiclient.Tokens `yaml:"tokens"`
}

type cli struct {
	driver    prompt.Driver
	server    string
	configDir string
	debug     bool

	state  state
	client *apiclient.Client
}

func newRootCmd(driver prompt.Driver) *cobra.Command {
	c := &cli{driver: driver}

	root := &cobra.Command{
		Use:           "recruitctl",
		Short:         "Society recruitment from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.debug {
				log.SetLevel(log.DebugLevel)
			}
			return c.init()
		},
	}

	defaultServer := os.Getenv("RECRUIT_URL")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	root.PersistentFlags().StringVar(&c.server, "server", defaultServer, "recruitment server URL")
	root.PersistentFlags().StringVar(&c.configDir, "config-dir", "", "directory for the login state and seen forms (default: user config dir)")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "log at DEBUG level")

	root.AddCommand(
		c.loginCmd(),
		c.formsCmd(),
		c.applicationsCmd(),
	)
	return root
}

func (c *cli) init() error {
	if c.configDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("locate config dir: %w", err)
		}
		c.configDir = filepath.Join(dir, "recruit")
	}

	data, err := os.ReadFile(c.statePath())
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return fmt.Errorf("read login state: %w", err)
	default:
		if err := yaml.Unmarshal(data, &c.state); err != nil {
			return fmt.Errorf("parse login state: %w", err)
		}
	}

	// tokens only hold for the server that issued them
	if c.state.Server != c.server {
		c.state = state{Server: c.server}
	}
	c.client = apiclient.New(c.server, apiclient.WithTokens(c.state.Tokens))
	return nil
}

func (c *cli) statePath() string {
	return filepath.Join(c.configDir, "session.yaml")
}

func (c *cli) seen() *seen.Store {
	return seen.Open(filepath.Join(c.configDir, "seen.yaml"))
}

func (c *cli) saveState() error {
	c.state.Tokens = c.client.Tokens()
	data, err := yaml.Marshal(c.state)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(c.statePath(), data, 0o600); err != nil {
		return fmt.Errorf("write login state: %w", err)
	}
	return nil
}

var errNotLoggedIn = errors.New("not logged in, run recruitctl login first")

// authed runs fn, refreshing the tokens once if the server rejects them.
func (c *cli) authed(ctx context.Context, fn func() error) error {
	if c.state.Tokens.AccessToken == "" {
		return errNotLoggedIn
	}

	err := fn()
	if !errors.Is(err, renderer.ErrUnauthorized) || c.state.Tokens.RefreshToken == "" {
		return err
	}

	log.Debug("access token rejected, refreshing")
	if _, rerr := c.client.Refresh(ctx); rerr != nil {
		log.Debugf("refresh: %s", rerr)
		return errNotLoggedIn
	}
	if err := c.saveState(); err != nil {
		return err
	}
	return fn()
}

func (c *cli) info(ctx context.Context, format string, args ...any) error {
	return c.driver.Info(ctx, fmt.Sprintf(format, args...))
}

func (c *cli) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Log in and remember the tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			password, err := c.driver.Password(ctx, prompt.InputConfig{Message: "Password"})
			if err != nil {
				return err
			}

			_, err = c.client.Login(ctx, args[0], password)
			if errors.Is(err, renderer.ErrUnauthorized) {
				return errors.New("invalid credentials")
			}
			if err != nil {
				return err
			}

			profile, err := c.client.Profile(ctx)
			if err != nil {
				return err
			}
			c.state.Email = profile.User.Email
			if err := c.saveState(); err != nil {
				return err
			}
			return c.info(ctx, "Logged in as %s (%s)", profile.User.Name, profile.User.Role)
		},
	}
}
