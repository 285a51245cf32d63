package proof

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"chat-proof-oracle/pkgs/adapters"
	"chat-proof-oracle/pkgs/clients"
	"chat-proof-oracle/pkgs/fingerprint"
	"chat-proof-oracle/pkgs/metrics"
	"chat-proof-oracle/pkgs/models"
	"chat-proof-oracle/pkgs/scoring"
	"chat-proof-oracle/pkgs/uniqueness"
)

// Config sizes the generator's uniqueness filter for first-time submitters
type Config struct {
	DlpID          int
	Revision       string
	FilterCapacity int
	FilterFPRate   float64
}

// FilterCache caches historical filter blobs per (user, source) scope.
// Only blobs fetched from the authoritative store may be cached; entries
// are invalidated after a submit because the store merges concurrent
// submissions and a locally serialized blob would go stale.
type FilterCache interface {
	Get(ctx context.Context, user, source string) (string, bool)
	Set(ctx context.Context, user, source, blob string)
	Invalidate(ctx context.Context, user, source string)
}

// Generator orchestrates the proof pipeline: adapters, fingerprinting,
// uniqueness accounting, scoring, and the external collaborators.
// All per-submission state lives on the stack, so one generator can serve
// concurrent pipelines.
type Generator struct {
	cfg         Config
	engine      *scoring.Engine
	accountant  *uniqueness.Accountant
	verifier    *clients.VerificationClient
	submissions *clients.SubmissionClient
	filterCache FilterCache
}

// NewGenerator wires the pipeline components together
func NewGenerator(
	cfg Config,
	hasher *fingerprint.Hasher,
	engine *scoring.Engine,
	verifier *clients.VerificationClient,
	submissions *clients.SubmissionClient,
	filterCache FilterCache,
	localCacheSize int,
) (*Generator, error) {
	accountant, err := uniqueness.NewAccountant(hasher, localCacheSize)
	if err != nil {
		return nil, err
	}
	return &Generator{
		cfg:         cfg,
		engine:      engine,
		accountant:  accountant,
		verifier:    verifier,
		submissions: submissions,
		filterCache: filterCache,
	}, nil
}

// Generate runs the full pipeline for one raw submission document.
//
// A malformed submission yields a valid=false, score=0.0 proof record and a
// nil error: every well-formed request gets a proof, and a structurally
// broken one is a scored failure, not a system fault. Only external
// collaborator failures return an error (clients.InfrastructureError), so
// the caller can retry the whole pipeline.
func (g *Generator) Generate(ctx context.Context, raw map[string]interface{}) (*models.ProofResponse, error) {
	submittedAt := time.Now().UTC()
	timer := time.Now()
	defer func() {
		metrics.PipelineDuration.Observe(time.Since(timer).Seconds())
	}()

	data, err := adapters.BuildSourceData(raw, submittedAt)
	if err != nil {
		var malformed *models.MalformedSubmissionError
		if errors.As(err, &malformed) {
			log.Warnf("Rejecting malformed submission: %s", malformed.Reason)
			metrics.SubmissionsProcessed.WithLabelValues("unknown", "malformed").Inc()
			return g.malformedResponse(raw, submittedAt), nil
		}
		return nil, err
	}
	source := string(data.Source)

	// Ownership authority is external; the engine only folds the boolean in
	verifyResult, err := g.verifier.VerifyToken(ctx, data.SubmissionToken, data.User)
	if err != nil {
		metrics.CollaboratorErrors.WithLabelValues("verification").Inc()
		metrics.SubmissionsProcessed.WithLabelValues(source, "infra_error").Inc()
		return nil, err
	}

	filter, err := g.loadFilter(ctx, data)
	if err != nil {
		metrics.CollaboratorErrors.WithLabelValues("submission").Inc()
		metrics.SubmissionsProcessed.WithLabelValues(source, "infra_error").Inc()
		return nil, err
	}

	stats := g.accountant.Process(data, filter)
	metrics.FingerprintsClassified.WithLabelValues(source, "new").Add(float64(stats.NewCount))
	metrics.FingerprintsClassified.WithLabelValues(source, "seen").Add(float64(stats.TotalCount - stats.NewCount))
	metrics.FingerprintLocalCacheHits.WithLabelValues(source).Add(float64(stats.LocalHits))

	result := g.engine.Score(scoring.Inputs{
		Data:            data,
		TokenVerified:   verifyResult.Valid,
		UniquenessRatio: stats.Ratio(),
	})

	if err := g.pushResults(ctx, data, filter, submittedAt); err != nil {
		metrics.CollaboratorErrors.WithLabelValues("submission").Inc()
		metrics.SubmissionsProcessed.WithLabelValues(source, "infra_error").Inc()
		return nil, err
	}

	outcome := "invalid"
	if result.Valid {
		outcome = "valid"
	}
	metrics.SubmissionsProcessed.WithLabelValues(source, outcome).Inc()

	log.Infof("Proof generated: source=%s user=%s score=%.4f valid=%v uniqueness=%.2f (%d/%d new)",
		source, data.User, result.Score, result.Valid, result.Uniqueness, stats.NewCount, stats.TotalCount)

	return &models.ProofResponse{
		DlpID:        g.cfg.DlpID,
		Ownership:    result.Ownership,
		Authenticity: result.Authenticity,
		Uniqueness:   result.Uniqueness,
		Quality:      result.Quality,
		Score:        result.Score,
		Valid:        result.Valid,
		Attributes: models.ProofAttributes{
			Score:           result.Score,
			DidScoreContent: stats.TotalCount > 0,
			Source:          source,
			Revision:        g.cfg.Revision,
			SubmittedOn:     submittedAt.Format(time.RFC3339),
		},
		Metadata: models.MetaData{
			SourceID: uuid.NewString(),
			DlpID:    g.cfg.DlpID,
		},
	}, nil
}

// loadFilter fetches the historical filter for the submission's scope,
// preferring the cache; a missing blob means a first-time submitter
func (g *Generator) loadFilter(ctx context.Context, data *models.SourceData) (*uniqueness.Filter, error) {
	source := string(data.Source)

	blob, cached := g.filterCache.Get(ctx, data.User, source)
	if !cached {
		var err error
		blob, err = g.submissions.GetHistoricalData(ctx, data.User, source)
		if err != nil {
			return nil, err
		}
		// Authoritative at fetch time, safe to cache for the next run
		g.filterCache.Set(ctx, data.User, source, blob)
	}

	filter, err := uniqueness.Deserialize(blob, g.cfg.FilterCapacity, g.cfg.FilterFPRate)
	if err != nil {
		// A corrupt blob would zero every future uniqueness score if we
		// started fresh silently; surface it so the store can be repaired
		return nil, &clients.InfrastructureError{Service: "submission", Err: err}
	}
	return filter, nil
}

// pushResults returns the updated filter and chat summaries to the
// submission service, then drops the cached blob for the scope. The store
// owns read-merge-write for concurrent submissions; caching our local
// serialization here would shadow merges from other runs until the TTL.
func (g *Generator) pushResults(ctx context.Context, data *models.SourceData, filter *uniqueness.Filter, submittedAt time.Time) error {
	source := string(data.Source)

	payload := &clients.SubmissionPayload{
		User:        data.User,
		Source:      source,
		SubmittedOn: submittedAt.Format(time.RFC3339),
		Filter:      filter.Serialize(),
	}
	for _, chat := range data.Chats {
		payload.Chats = append(payload.Chats, clients.SubmittedChat{
			ChatID:           chat.ChatID,
			MessageCount:     len(chat.Contents),
			ParticipantCount: chat.ParticipantCount(),
		})
	}

	if err := g.submissions.SubmitData(ctx, payload); err != nil {
		return err
	}

	g.filterCache.Invalidate(ctx, data.User, source)
	return nil
}

// malformedResponse builds the valid=false, score=0.0 proof record for a
// submission that failed normalization
func (g *Generator) malformedResponse(raw map[string]interface{}, submittedAt time.Time) *models.ProofResponse {
	source := ""
	if s, ok := raw["source"].(string); ok {
		source = s
	}

	return &models.ProofResponse{
		DlpID: g.cfg.DlpID,
		Valid: false,
		Attributes: models.ProofAttributes{
			Score:           0.0,
			DidScoreContent: false,
			Source:          source,
			Revision:        g.cfg.Revision,
			SubmittedOn:     submittedAt.Format(time.RFC3339),
		},
		Metadata: models.MetaData{
			SourceID: uuid.NewString(),
			DlpID:    g.cfg.DlpID,
		},
	}
}
