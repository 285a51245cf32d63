package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"chat-proof-oracle/config"
	"chat-proof-oracle/pkgs/clients"
	"chat-proof-oracle/pkgs/fingerprint"
	"chat-proof-oracle/pkgs/metrics"
	"chat-proof-oracle/pkgs/proof"
	"chat-proof-oracle/pkgs/rediscache"
	"chat-proof-oracle/pkgs/scoring"
	"chat-proof-oracle/pkgs/utils"
)

func main() {
	utils.InitLogger()
	if err := config.LoadConfig(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := config.SettingsObj

	if cfg.MetricsEnabled {
		metrics.StartServer(cfg.MetricsPort)
	}

	raw, err := readSubmission()
	if err != nil {
		log.Fatalf("Failed to read submission: %v", err)
	}

	generator, err := buildGenerator(cfg)
	if err != nil {
		log.Fatalf("Failed to build proof generator: %v", err)
	}

	response, err := generator.Generate(context.Background(), raw)
	if err != nil {
		var infra *clients.InfrastructureError
		if errors.As(err, &infra) {
			log.Errorf("Infrastructure failure, pipeline can be retried: %v", infra)
			os.Exit(1)
		}
		log.Fatalf("Proof generation failed: %v", err)
	}

	out, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode proof response: %v", err)
	}
	fmt.Println(string(out))
}

// readSubmission loads the raw submission document from the file given as
// the first argument, or from stdin
func readSubmission() (map[string]interface{}, error) {
	var data []byte
	var err error

	if len(os.Args) > 1 {
		data, err = os.ReadFile(os.Args[1])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("submission is not a JSON object: %w", err)
	}
	return raw, nil
}

func buildGenerator(cfg *config.Settings) (*proof.Generator, error) {
	engine, err := scoring.NewEngine(scoring.Weights{
		Ownership:    cfg.OwnershipWeight,
		Authenticity: cfg.AuthenticityWeight,
		Uniqueness:   cfg.UniquenessWeight,
		Quality:      cfg.QualityWeight,
	}, cfg.ScoreThreshold, cfg.MaxFutureDrift)
	if err != nil {
		return nil, err
	}

	return proof.NewGenerator(
		proof.Config{
			DlpID:          cfg.DlpID,
			Revision:       cfg.SupportedRevision,
			FilterCapacity: cfg.FilterCapacity,
			FilterFPRate:   cfg.FilterFPRate,
		},
		fingerprint.NewHasher(cfg.FingerprintSalt),
		engine,
		clients.NewVerificationClient(cfg.VerificationURL, cfg.HttpTimeout),
		clients.NewSubmissionClient(cfg.SubmissionURL, cfg.HttpTimeout),
		rediscache.NewFilterCache(rediscache.NewRedisClient(), cfg.FilterCacheTTL),
		cfg.DedupLocalCacheSize,
	)
}
