package commands

import (
	"fmt"
	"path/filepath"

	"github.com/bankist-dev/bankist/internal/accounts"
	"github.com/bankist-dev/bankist/internal/config"
	"github.com/bankist-dev/bankist/internal/model"
)

// project is a loaded Bankist project directory.
type project struct {
	root     string
	cfg      *config.Config
	accounts []model.Account
}

func loadProject(repoDir string) (*project, error) {
	root, err := filepath.Abs(repoDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, err
	}

	accts, err := accounts.Load(filepath.Join(root, cfg.Data.Dir))
	if err != nil {
		return nil, err
	}
	return &project{root: root, cfg: cfg, accounts: accts}, nil
}

func (p *project) dataDir() string {
	return filepath.Join(p.root, p.cfg.Data.Dir)
}

func (p *project) activityLog() string {
	if filepath.IsAbs(p.cfg.Logging.ActivityLog) {
		return p.cfg.Logging.ActivityLog
	}
	return filepath.Join(p.root, p.cfg.Logging.ActivityLog)
}
