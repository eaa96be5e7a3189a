// File: cmd/seed/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"physical-ai-textbook/internal/config"
	"physical-ai-textbook/internal/domain"
	"physical-ai-textbook/internal/domain/model"
	"physical-ai-textbook/internal/infra/api"
	"physical-ai-textbook/internal/infra/i18n"
	"physical-ai-textbook/internal/infra/logging"
	"physical-ai-textbook/internal/infra/tokenstore"
	"physical-ai-textbook/internal/usecase"
)

// seed registers demo learners against a running backend. Each account gets
// its own in-memory token so the operator's stored session is untouched.
func main() {
	cfgPath := flag.String("config", "textbook.yaml", "path to YAML config file")
	file := flag.String("file", "seed.yaml", "YAML list of signup profiles")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	tr, err := i18n.Default(cfg.Locale)
	if err != nil {
		log.Fatalf("locale: %v", err)
	}

	profiles, err := loadProfiles(*file)
	if err != nil {
		log.Fatalf("seed file: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	created, skipped := 0, 0
	for _, p := range profiles {
		tokens := tokenstore.NewMemoryStore("")
		client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, tokens, logger)
		session := usecase.NewSessionManager(tokens, client, tr, logger)

		u, err := session.Signup(ctx, p)
		if err != nil {
			var ae *domain.AuthError
			if errors.As(err, &ae) && ae.Status == 400 {
				fmt.Printf("skipped: %s (%s)\n", p.Email, ae.Message)
				skipped++
				continue
			}
			log.Fatalf("signup %q: %v", p.Email, err)
		}
		fmt.Printf("seeded: %s <%s> (id=%d, software=%s, hardware=%s)\n", u.Name, u.Email, u.ID, u.SoftwareExperience, u.HardwareExperience)
		created++
	}

	fmt.Printf("Seeding complete: %d created, %d skipped.\n", created, skipped)
}

func loadProfiles(path string) ([]model.SignupProfile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var profiles []model.SignupProfile
	if err := yaml.Unmarshal(b, &profiles); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return profiles, nil
}
