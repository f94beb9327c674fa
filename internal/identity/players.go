package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"leaguesync/importer/internal/cache"
	"leaguesync/importer/internal/metrics"
	"leaguesync/importer/internal/models"
	"leaguesync/importer/internal/repository"
)

// Resolution outcomes, from strongest to weakest.
const (
	OutcomeDirect         = "direct"
	OutcomeExact          = "exact"
	OutcomeProbable       = "probable"
	OutcomeHighConfidence = "high_confidence"
	OutcomeMultipleHigh   = "multiple_high_confidence"
	OutcomeCrossLeague    = "cross_league"
	OutcomeUnresolved     = "unresolved"
)

const unresolvedSampleLimit = 25

// playerStore is the slice of the player repository the resolver reads.
type playerStore interface {
	ExistsActive(ctx context.Context, externalID string) (bool, error)
	FindByNameScope(ctx context.Context, firstName, lastName string, leagueID, clubID, seriesID int) ([]*models.Player, error)
	FindByNameAnyLeague(ctx context.Context, fullName string) ([]*models.Player, error)
}

// PlayerResolver maps a possibly-stale external player id to a currently
// valid one. Scrapes reissue ids occasionally, so a missing id falls back
// to fuzzy name matching within progressively wider scopes. Resolutions are
// cached in Redis when available; the cache is an optimization only.
type PlayerResolver struct {
	store playerStore
	cache *cache.RedisCache
}

func NewPlayerResolver(db *repository.Database, c *cache.RedisCache) *PlayerResolver {
	return &PlayerResolver{store: db.Players, cache: c}
}

// ResolutionReport accumulates the outcome of every resolution attempt and
// is surfaced at the end of the run. Each attempt records exactly one
// outcome, however many fallback scopes it walked through.
type ResolutionReport struct {
	Total            int
	Resolved         int
	Unresolved       int
	Outcomes         map[string]int
	UnresolvedSample []string
}

func NewResolutionReport() *ResolutionReport {
	return &ResolutionReport{Outcomes: make(map[string]int)}
}

// Rate returns the fraction of attempts that resolved, in [0, 1].
func (r *ResolutionReport) Rate() float64 {
	if r.Total == 0 {
		return 1
	}
	return float64(r.Resolved) / float64(r.Total)
}

func (r *ResolutionReport) record(inputID, outcome string) {
	r.Total++
	r.Outcomes[outcome]++
	metrics.RecordResolution(outcome)
	if outcome == OutcomeUnresolved {
		r.Unresolved++
		if len(r.UnresolvedSample) < unresolvedSampleLimit {
			r.UnresolvedSample = append(r.UnresolvedSample, inputID)
		}
		return
	}
	r.Resolved++
}

// Log writes the end-of-run resolution summary.
func (r *ResolutionReport) Log() {
	event := log.Info().
		Int("total", r.Total).
		Int("resolved", r.Resolved).
		Int("unresolved", r.Unresolved).
		Float64("rate", r.Rate())
	for outcome, count := range r.Outcomes {
		event = event.Int("outcome_"+outcome, count)
	}
	if len(r.UnresolvedSample) > 0 {
		event = event.Strs("unresolved_sample", r.UnresolvedSample)
	}
	event.Msg("Player resolution summary")
}

func cacheKey(externalID string, leagueID int) string {
	return fmt.Sprintf("player_resolution:%d:%s", leagueID, externalID)
}

// lookupScoped runs the id check and the widening fuzzy scopes without
// touching the report, returning the resolved id and the outcome it would
// record.
func (r *PlayerResolver) lookupScoped(ctx context.Context, externalID, firstName, lastName string, leagueID, clubID, seriesID int) (string, string, error) {
	// Fast path: the id is still valid.
	if externalID != "" {
		active, err := r.store.ExistsActive(ctx, externalID)
		if err != nil {
			return "", "", err
		}
		if active {
			return externalID, OutcomeDirect, nil
		}

		if cached, ok := r.cache.Get(ctx, cacheKey(externalID, leagueID)); ok {
			return cached, OutcomeExact, nil
		}
	}

	if firstName == "" || lastName == "" {
		return "", OutcomeUnresolved, nil
	}

	// Widening scopes: full (club+series), club only, league only. The
	// repository orders by id, so a multi-match pick is deterministic.
	scopes := []struct {
		club, series int
		single       string
	}{
		{clubID, seriesID, OutcomeExact},
		{clubID, 0, OutcomeProbable},
		{0, 0, OutcomeHighConfidence},
	}

	for _, scope := range scopes {
		matches, err := r.store.FindByNameScope(ctx, firstName, lastName, leagueID, scope.club, scope.series)
		if err != nil {
			return "", "", err
		}
		if len(matches) == 0 {
			continue
		}

		outcome := scope.single
		if len(matches) > 1 {
			outcome = OutcomeMultipleHigh
		}
		resolved := matches[0].TenniscoresPlayerID
		r.cacheResolution(ctx, externalID, leagueID, resolved)
		log.Debug().
			Str("input_id", externalID).
			Str("resolved_id", resolved).
			Str("outcome", outcome).
			Msg("Stale player id resolved by name")
		return resolved, outcome, nil
	}

	return "", OutcomeUnresolved, nil
}

// Resolve returns the currently valid external id for the input id, a flag
// reporting whether any resolution was found, and an error only for
// database failures. The scope ids narrow the fuzzy search; zero values
// widen it.
func (r *PlayerResolver) Resolve(ctx context.Context, externalID, firstName, lastName string, leagueID, clubID, seriesID int, report *ResolutionReport) (string, bool, error) {
	resolved, outcome, err := r.lookupScoped(ctx, externalID, firstName, lastName, leagueID, clubID, seriesID)
	if err != nil {
		return "", false, err
	}
	report.record(externalID, outcome)
	return resolved, outcome != OutcomeUnresolved, nil
}

// lookupByName is the last-resort path for rows that carry only a display
// name, such as substitute players in match history. It searches across all
// leagues.
func (r *PlayerResolver) lookupByName(ctx context.Context, fullName string) (string, bool, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return "", false, nil
	}

	matches, err := r.store.FindByNameAnyLeague(ctx, fullName)
	if err != nil {
		return "", false, err
	}
	if len(matches) == 0 {
		return "", false, nil
	}

	resolved := matches[0].TenniscoresPlayerID
	log.Debug().Str("name", fullName).Str("resolved_id", resolved).Msg("Player resolved cross-league by name")
	return resolved, true, nil
}

// ResolveSlot resolves one player slot (external id plus display name, as
// in a match-history line) through the full chain: scoped lookup first,
// cross-league name search as the last resort. Exactly one outcome is
// recorded per slot.
func (r *PlayerResolver) ResolveSlot(ctx context.Context, externalID, fullName string, leagueID int, report *ResolutionReport) (string, bool, error) {
	first, last := splitFullName(fullName)
	resolved, outcome, err := r.lookupScoped(ctx, externalID, first, last, leagueID, 0, 0)
	if err != nil {
		return "", false, err
	}
	if outcome != OutcomeUnresolved {
		report.record(externalID, outcome)
		return resolved, true, nil
	}

	resolved, found, err := r.lookupByName(ctx, fullName)
	if err != nil {
		return "", false, err
	}
	if found {
		report.record(externalID, OutcomeCrossLeague)
		return resolved, true, nil
	}

	report.record(externalID, OutcomeUnresolved)
	return "", false, nil
}

func splitFullName(full string) (first, last string) {
	fields := strings.Fields(full)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}

func (r *PlayerResolver) cacheResolution(ctx context.Context, externalID string, leagueID int, resolved string) {
	if externalID == "" {
		return
	}
	r.cache.Set(ctx, cacheKey(externalID, leagueID), resolved, 24*time.Hour)
}
