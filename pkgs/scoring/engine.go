package scoring

import (
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"chat-proof-oracle/pkgs/models"
)

// Weights is the fixed combination applied to the four proof dimensions.
// The sum must be 1.0 for the aggregate score to be defined.
type Weights struct {
	Ownership    float64
	Authenticity float64
	Uniqueness   float64
	Quality      float64
}

// Validate checks that the weights form a convex combination
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"ownership": w.Ownership, "authenticity": w.Authenticity,
		"uniqueness": w.Uniqueness, "quality": w.Quality,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s weight must be within [0,1], got %.4f", name, v)
		}
	}
	sum := w.Ownership + w.Authenticity + w.Uniqueness + w.Quality
	if math.Abs(sum-1.0) > 1e-3 {
		return fmt.Errorf("weights must sum to 1.0, got %.4f", sum)
	}
	return nil
}

// Quality saturation points: a chat with this much substance scores 1.0 on
// the corresponding axis. Chosen so single-message single-participant chats
// still score above zero while multi-participant conversations rank higher.
const (
	fullQualityMessages     = 20.0
	fullQualityParticipants = 2.0
	fullQualityTextLength   = 32.0
)

// Inputs are the facts the engine maps to proof dimensions
type Inputs struct {
	Data            *models.SourceData
	TokenVerified   bool    // Result from the external verification collaborator
	UniquenessRatio float64 // New fingerprints over total, from uniqueness accounting
}

// Result holds the four dimensions plus the aggregate
type Result struct {
	Ownership    float64
	Authenticity float64
	Uniqueness   float64
	Quality      float64
	Score        float64
	Valid        bool
}

// Engine computes proof scores from structural facts about a submission
type Engine struct {
	weights        Weights
	threshold      float64
	maxFutureDrift time.Duration
}

// NewEngine creates a scoring engine. Weights are validated here so a
// misconfigured combination fails at startup, not per submission.
func NewEngine(weights Weights, threshold float64, maxFutureDrift time.Duration) (*Engine, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("score threshold must be within [0,1], got %.4f", threshold)
	}
	return &Engine{
		weights:        weights,
		threshold:      threshold,
		maxFutureDrift: maxFutureDrift,
	}, nil
}

// Score maps the inputs to the four proof dimensions and the aggregate.
// All dimensions are in [0,1]; valid requires the aggregate to clear the
// threshold AND a verified token.
func (e *Engine) Score(in Inputs) Result {
	ownership := 0.0
	if in.Data.User != "" && in.Data.SubmissionToken != "" && in.TokenVerified {
		ownership = 1.0
	}

	authenticity, plausible := e.authenticity(in.Data)
	quality := e.quality(plausible)
	uniq := clamp01(in.UniquenessRatio)

	score := clamp01(e.weights.Ownership*ownership +
		e.weights.Authenticity*authenticity +
		e.weights.Uniqueness*uniq +
		e.weights.Quality*quality)

	result := Result{
		Ownership:    ownership,
		Authenticity: authenticity,
		Uniqueness:   uniq,
		Quality:      quality,
		Score:        score,
		Valid:        score >= e.threshold && ownership == 1.0,
	}

	log.Debugf("Scored submission: ownership=%.2f authenticity=%.2f uniqueness=%.2f quality=%.2f score=%.4f valid=%v",
		result.Ownership, result.Authenticity, result.Uniqueness, result.Quality, result.Score, result.Valid)
	return result
}

// authenticity is the fraction of chats passing structural plausibility:
// at least one participant, non-empty contents, and no message timestamped
// past the submission time plus the allowed drift. Implausible chats are
// excluded from quality scoring, not fatal to the submission.
func (e *Engine) authenticity(data *models.SourceData) (float64, []*models.SourceChatData) {
	if len(data.Chats) == 0 {
		return 0.0, nil
	}

	deadline := data.SubmissionDate.Add(e.maxFutureDrift)
	plausible := make([]*models.SourceChatData, 0, len(data.Chats))

	for _, chat := range data.Chats {
		if e.isPlausible(chat, deadline) {
			plausible = append(plausible, chat)
		} else {
			log.Debugf("Excluding implausible chat %s from scoring", chat.ChatID)
		}
	}

	return float64(len(plausible)) / float64(len(data.Chats)), plausible
}

func (e *Engine) isPlausible(chat *models.SourceChatData, deadline time.Time) bool {
	if chat.ParticipantCount() == 0 || len(chat.Contents) == 0 {
		return false
	}
	for _, item := range chat.Contents {
		// Content dated past the submission window reads as tampering
		if item.MessageTimestamp.After(deadline) {
			return false
		}
	}
	return true
}

// quality is the mean per-chat substance score over plausible chats:
// message count, participant count, and mean text length, each saturating
// at its full-quality point. Monotonic and bounded by construction.
func (e *Engine) quality(chats []*models.SourceChatData) float64 {
	if len(chats) == 0 {
		return 0.0
	}

	total := 0.0
	for _, chat := range chats {
		textLen := 0
		for _, item := range chat.Contents {
			textLen += len(item.Text)
		}
		meanLen := float64(textLen) / float64(len(chat.Contents))

		messageScore := math.Min(1.0, float64(len(chat.Contents))/fullQualityMessages)
		participantScore := math.Min(1.0, float64(chat.ParticipantCount())/fullQualityParticipants)
		lengthScore := math.Min(1.0, meanLen/fullQualityTextLength)

		total += (messageScore + participantScore + lengthScore) / 3.0
	}
	return total / float64(len(chats))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
