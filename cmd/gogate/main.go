// Command gogate drives a goGate session from the terminal.
//
//	gogate -config gogate.yaml -email ines@example.com -password ... [-goto /admin/students] [-logout]
//
// The session is kept in a file (or Redis with -redis-addr), so a later invocation
// without -email resumes it the way a page reload would.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/session"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

func main() {
	var (
		configPath  = flag.String("config", "", "YAML config file; defaults apply when empty")
		sessionPath = flag.String("session", "gogate-session.json", "session file")
		redisAddr   = flag.String("redis-addr", "", "keep the session in redis instead of -session")
		email       = flag.String("email", "", "sign in with this email")
		password    = flag.String("password", "", "password for -email")
		target      = flag.String("goto", "", "navigate here after sign-in")
		logout      = flag.Bool("logout", false, "log out before exiting")
		verbosity   = flag.Int("v", 0, "log verbosity")
	)
	flag.Parse()

	stdr.SetVerbosity(*verbosity)
	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, logger, options{
		configPath:  *configPath,
		sessionPath: *sessionPath,
		redisAddr:   *redisAddr,
		email:       *email,
		password:    *password,
		target:      *target,
		logout:      *logout,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "gogate:", err)
		os.Exit(1)
	}
}

type options struct {
	configPath  string
	sessionPath string
	redisAddr   string
	email       string
	password    string
	target      string
	logout      bool
}

func run(ctx context.Context, logger logr.Logger, opts options) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	b := goGate.New().
		WithConfig(cfg).
		WithLogger(logger).
		WithNavigator(goGate.NavigatorFunc(func(_ context.Context, to string) error {
			fmt.Println("->", to)
			return nil
		}))
	if opts.redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: opts.redisAddr})
		defer client.Close()
		b = b.WithRedis(client)
	} else {
		b = b.WithSubstrate(session.NewFile(opts.sessionPath))
	}

	engine, err := b.Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Close()

	if opts.email != "" {
		res, err := engine.Login(ctx, opts.email, opts.password)
		if err != nil {
			return fmt.Errorf("sign in: %w", err)
		}
		fmt.Printf("signed in as %s (%s), landing %s\n", res.Subject, res.Roles, res.Landing)
	} else if sess, err := engine.Session(ctx); err != nil {
		return fmt.Errorf("read session: %w", err)
	} else if sess != nil {
		fmt.Printf("resumed session for %s (%s)\n", sess.Identity.Subject, sess.Identity.Roles)
	}

	if opts.target != "" {
		res, err := engine.Navigate(ctx, opts.target)
		if err != nil {
			return fmt.Errorf("navigate: %w", err)
		}
		fmt.Printf("%s: %s\n", res.Path, res.Decision)
	}

	if opts.logout {
		if err := engine.Logout(ctx); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
		fmt.Println("logged out")
	}
	return nil
}

func loadConfig(path string) (goGate.Config, error) {
	cfg := goGate.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
