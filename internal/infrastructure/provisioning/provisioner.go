// Package provisioning manages the Linux logins behind rentals with the
// standard shadow-utils commands.
package provisioning

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path"
	"strings"
	"time"

	"github.com/orris-inc/leasebot/internal/shared/config"
	"github.com/orris-inc/leasebot/internal/shared/logger"
	"github.com/orris-inc/leasebot/internal/shared/utils"
)

const commandTimeout = 30 * time.Second

// Runner executes a command, feeding stdin when non-empty.
type Runner interface {
	Run(ctx context.Context, stdin string, name string, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, stdin string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return strings.TrimSpace(out.String()), err
}

type Provisioner struct {
	cfg      config.ProvisioningConfig
	runner   Runner
	logger   logger.Interface
	password func() string
}

func NewProvisioner(cfg config.ProvisioningConfig, logger logger.Interface) *Provisioner {
	return newProvisioner(cfg, execRunner{}, logger)
}

func newProvisioner(cfg config.ProvisioningConfig, runner Runner, logger logger.Interface) *Provisioner {
	if cfg.Shell == "" {
		cfg.Shell = "/bin/bash"
	}
	if cfg.HomeRoot == "" {
		cfg.HomeRoot = "/home"
	}
	return &Provisioner{cfg: cfg, runner: runner, logger: logger, password: utils.GeneratePassword}
}

func (p *Provisioner) CreateAccount(ctx context.Context, username, password string) error {
	if !p.cfg.Enabled {
		p.logger.Infow("provisioning disabled, skipping account creation", "username", username)
		return nil
	}
	if _, err := p.run(ctx, "", "useradd", "-m", "-b", p.cfg.HomeRoot, "-s", p.cfg.Shell, username); err != nil {
		return fmt.Errorf("failed to create account %s: %w", username, err)
	}
	if err := p.setPassword(ctx, username, password); err != nil {
		return err
	}
	p.logger.Infow("system account created", "username", username)
	return nil
}

func (p *Provisioner) DeleteAccount(ctx context.Context, username string) (bool, error) {
	if !p.cfg.Enabled {
		p.logger.Infow("provisioning disabled, skipping account removal", "username", username)
		return true, nil
	}
	if !p.exists(ctx, username) {
		return false, nil
	}
	p.killSessions(ctx, username)
	if _, err := p.run(ctx, "", "userdel", "-r", username); err != nil {
		return false, fmt.Errorf("failed to delete account %s: %w", username, err)
	}
	p.logger.Infow("system account deleted", "username", username)
	return true, nil
}

func (p *Provisioner) ChangePassword(ctx context.Context, username string) (string, error) {
	password := p.password()
	if !p.cfg.Enabled {
		p.logger.Infow("provisioning disabled, password only stored", "username", username)
		return password, nil
	}
	if err := p.setPassword(ctx, username, password); err != nil {
		return "", err
	}
	return password, nil
}

// RevokeRemoteAccess ends the user's sessions and removes their SSH keys. A
// missing key file is reported, not returned as an error.
func (p *Provisioner) RevokeRemoteAccess(ctx context.Context, username string) (bool, string, error) {
	if !p.cfg.Enabled {
		return false, "provisioning disabled", nil
	}
	p.killSessions(ctx, username)

	keys := path.Join(p.cfg.HomeRoot, username, ".ssh", "authorized_keys")
	if _, err := p.run(ctx, "", "rm", keys); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, fmt.Sprintf("No authorized keys found for user %s.", username), nil
		}
		return false, "", fmt.Errorf("failed to remove authorized keys for %s: %w", username, err)
	}
	return true, fmt.Sprintf("Authorized keys removed for user %s.", username), nil
}

// Sessions returns the output of w: who is logged in and what they run.
func (p *Provisioner) Sessions(ctx context.Context) (string, error) {
	out, err := p.run(ctx, "", "w")
	if err != nil {
		return "", fmt.Errorf("failed to list sessions: %w", err)
	}
	return out, nil
}

func (p *Provisioner) setPassword(ctx context.Context, username, password string) error {
	if _, err := p.run(ctx, username+":"+password+"\n", "chpasswd"); err != nil {
		return fmt.Errorf("failed to set password for %s: %w", username, err)
	}
	return nil
}

func (p *Provisioner) exists(ctx context.Context, username string) bool {
	_, err := p.run(ctx, "", "id", "-u", username)
	return err == nil
}

func (p *Provisioner) killSessions(ctx context.Context, username string) {
	if out, err := p.run(ctx, "", "pkill", "-KILL", "-u", username); err != nil {
		// pkill exits 1 when nothing matched.
		p.logger.Debugw("no sessions terminated", "username", username, "output", out)
	}
}

func (p *Provisioner) run(ctx context.Context, stdin string, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	if p.cfg.UseSudo && name != "id" && name != "w" {
		args = append([]string{"-n", name}, args...)
		name = "sudo"
	}
	out, err := p.runner.Run(ctx, stdin, name, args...)
	if err != nil {
		p.logger.Warnw("command failed",
			"command", name+" "+strings.Join(args, " "),
			"output", out,
			"error", err,
		)
		if out != "" {
			return out, fmt.Errorf("%w: %s", err, out)
		}
		return out, err
	}
	return out, nil
}
