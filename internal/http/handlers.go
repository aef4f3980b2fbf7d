package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matchpulse/progression-engine/internal/badges"
	"github.com/matchpulse/progression-engine/internal/leaderboard"
	"github.com/matchpulse/progression-engine/internal/leveling"
	"github.com/matchpulse/progression-engine/internal/processor"
	"github.com/matchpulse/progression-engine/internal/progression"
)

// MatchCompletedRequest is the inbound payload for a finalized match,
// accepted both as a JSON POST body and as a msgpack pubsub push.
type MatchCompletedRequest struct {
	MatchID   string                 `json:"match_id" msgpack:"match_id"`
	Context   processor.MatchContext `json:"context" msgpack:"context"`
	Attendees []processor.Attendee   `json:"attendees" msgpack:"attendees"`
}

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to clear entire store")
		if err := s.Progression.Clear(); err != nil {
			log.Error("Failed to clear store", "error", err)
			http.Error(w, "Failed to clear store", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Store cleared successfully")
	}
}

// MatchCompletedHandler is the inbound trigger from the results
// collaborator. The caller guarantees a match is finalized exactly once.
func (s *Server) MatchCompletedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req MatchCompletedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode match completion payload", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		s.handleMatchCompleted(w, req, isDryRunFromContext(r))
	}
}

// PubSubMatchCompletedHandler handles the same trigger delivered as a
// pubsub push: a JSON wrapper carrying base64-encoded MessagePack data.
func (s *Server) PubSubMatchCompletedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received match completed message", "body", string(bodyBytes))
		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"` // base64-encoded message payload
			} `json:"message"`
		}

		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		var req MatchCompletedRequest
		if err := s.pubsub.ProcessMessage(rawData, &req); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}
		s.handleMatchCompleted(w, req, isDryRunFromContext(r))
	}
}

func (s *Server) handleMatchCompleted(w http.ResponseWriter, req MatchCompletedRequest, dryRun bool) {
	if req.MatchID == "" {
		http.Error(w, "match_id is required", http.StatusBadRequest)
		return
	}
	if len(req.Attendees) == 0 {
		http.Error(w, "attendees are required", http.StatusBadRequest)
		return
	}
	if req.Context.Date.IsZero() {
		req.Context.Date = time.Now()
	}

	if err := s.Processor.ProcessMatchCompletion(req.MatchID, req.Context, req.Attendees, dryRun); err != nil {
		// Partial progress is not rolled back; the caller decides whether
		// to retry the whole match.
		log.Error("Match completion processing failed", "error", err, "matchID", req.MatchID)
		http.Error(w, "Match completion processing failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Match completion processed.")
}

// AwardXPHandler grants a single ledger entry. Sources without an
// orchestrated path (confirm_h24, referral) arrive through here.
func (s *Server) AwardXPHandler() http.HandlerFunc {
	type awardRequest struct {
		UserID   string         `json:"user_id"`
		Source   string         `json:"source"`
		Amount   *int           `json:"amount,omitempty"`
		MatchID  string         `json:"match_id,omitempty"`
		Metadata map[string]any `json:"metadata,omitempty"`
	}
	type awardResponse struct {
		Granted int `json:"granted"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req awardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.UserID == "" {
			http.Error(w, "user_id is required", http.StatusBadRequest)
			return
		}

		source := progression.XPSource(req.Source)
		nominal, known := progression.SourceAmounts[source]
		if !known {
			http.Error(w, "Unknown XP source", http.StatusBadRequest)
			return
		}
		amount := nominal
		if req.Amount != nil {
			amount = *req.Amount
		}

		granted, err := s.Progression.Award(req.UserID, source, amount, req.MatchID, req.Metadata, time.Now())
		if err != nil {
			log.Error("Failed to award XP", "error", err, "userID", req.UserID, "source", source)
			http.Error(w, "Failed to award XP", http.StatusInternalServerError)
			return
		}
		s.Metrics.AddXPAwarded(float64(granted))

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(awardResponse{Granted: granted}); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) UpsertPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var players []progression.PlayerProfile
		if err := json.NewDecoder(r.Body).Decode(&players); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if err := s.Progression.UpsertPlayers(players); err != nil {
			log.Error("Failed to upsert players", "error", err)
			http.Error(w, "Failed to upsert players", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Upserted %d players", len(players))
	}
}

// GetProgressionHandler serves the aggregate progression view for the
// profile layer, including the derived level progress.
func (s *Server) GetProgressionHandler() http.HandlerFunc {
	type progressionResponse struct {
		UserID        string   `json:"user_id"`
		TotalXP       int      `json:"total_xp"`
		Level         int      `json:"level"`
		LevelName     string   `json:"level_name"`
		NextLevelXP   *int     `json:"next_level_xp,omitempty"`
		Progress      float64  `json:"progress"`
		XPToday       int      `json:"xp_today"`
		CurrentStreak int      `json:"current_streak"`
		BestStreak    int      `json:"best_streak"`
		CitiesPlayed  []string `json:"cities_played"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			http.Error(w, "user_id is required", http.StatusBadRequest)
			return
		}

		p, err := s.Progression.GetProgression(userID)
		if err != nil {
			log.Error("Failed to get progression", "error", err, "userID", userID)
			http.Error(w, "Failed to get progression", http.StatusInternalServerError)
			return
		}

		info := leveling.Compute(p.TotalXP)
		resp := progressionResponse{
			UserID:        p.UserID,
			TotalXP:       p.TotalXP,
			Level:         info.Level,
			LevelName:     info.Name,
			NextLevelXP:   info.NextLevelXP,
			Progress:      info.Progress,
			XPToday:       p.XPToday,
			CurrentStreak: p.CurrentStreak,
			BestStreak:    p.BestStreak,
			CitiesPlayed:  p.CitiesPlayed,
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) GetBadgesHandler() http.HandlerFunc {
	type badgesResponse struct {
		Unlocked []badges.UserBadge `json:"unlocked"`
		Progress []badges.Progress  `json:"progress"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			http.Error(w, "user_id is required", http.StatusBadRequest)
			return
		}

		unlocked, err := s.Badges.GetUserBadges(userID)
		if err != nil {
			log.Error("Failed to get user badges", "error", err, "userID", userID)
			http.Error(w, "Failed to get badges", http.StatusInternalServerError)
			return
		}
		progress, err := s.Badges.GetProgress(userID)
		if err != nil {
			log.Error("Failed to get badge progress", "error", err, "userID", userID)
			http.Error(w, "Failed to get badges", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(badgesResponse{Unlocked: unlocked, Progress: progress}); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) GetTransactionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			http.Error(w, "user_id is required", http.StatusBadRequest)
			return
		}
		limit := 50
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			parsed, err := strconv.Atoi(limitStr)
			if err == nil && parsed > 0 {
				limit = parsed
			} else {
				log.Warn("Invalid 'limit' parameter provided. Defaulting to 50.", "limit_param", limitStr)
			}
		}

		txns, err := s.Progression.GetTransactions(userID, limit)
		if err != nil {
			log.Error("Failed to get transactions", "error", err, "userID", userID)
			http.Error(w, "Failed to get transactions", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(txns); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) GetCareerStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			http.Error(w, "user_id is required", http.StatusBadRequest)
			return
		}

		stats, err := s.Career.GetStats(userID)
		if err != nil {
			log.Error("Failed to get career stats", "error", err, "userID", userID)
			http.Error(w, "Failed to get career stats", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(stats); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) GetLeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period, city, limit, ok := leaderboardParams(w, r)
		if !ok {
			return
		}

		entries, err := s.Leaderboard.GetLeaderboard(period, city, limit, time.Now())
		if err != nil {
			log.Error("Failed to get leaderboard", "error", err, "period", period)
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []leaderboard.Entry{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

func (s *Server) GetPlayerRankHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			http.Error(w, "user_id is required", http.StatusBadRequest)
			return
		}
		period, city, _, ok := leaderboardParams(w, r)
		if !ok {
			return
		}

		rank, err := s.Leaderboard.GetPlayerRank(userID, period, city, time.Now())
		if err != nil {
			log.Error("Failed to get player rank", "error", err, "userID", userID)
			http.Error(w, "Failed to get player rank", http.StatusInternalServerError)
			return
		}
		if rank == nil {
			http.Error(w, "Player is not ranked", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rank); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

// CountersHandler exposes the persistent counters kept alongside the
// Prometheus metrics.
func (s *Server) CountersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counters, err := s.Counters.GetAll()
		if err != nil {
			log.Error("Failed to get counters", "error", err)
			http.Error(w, "Failed to get counters", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(counters); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	}
}

// NotifyLeaderboardHandler posts the current standings to the
// notification channel.
func (s *Server) NotifyLeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period, city, limit, ok := leaderboardParams(w, r)
		if !ok {
			return
		}

		entries, err := s.Leaderboard.GetLeaderboard(period, city, limit, time.Now())
		if err != nil {
			log.Error("Failed to get leaderboard for digest", "error", err, "period", period)
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			return
		}

		if err := s.Notifier.SendLeaderboardDigest(period, entries, isDryRunFromContext(r)); err != nil {
			log.Error("Failed to send leaderboard digest", "error", err, "period", period)
			http.Error(w, "Failed to send leaderboard digest", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Leaderboard digest sent.")
	}
}

// leaderboardParams parses the shared period/city/limit query
// parameters, writing a 400 itself when the period is unknown.
func leaderboardParams(w http.ResponseWriter, r *http.Request) (leaderboard.Period, string, int, bool) {
	period := leaderboard.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = leaderboard.PeriodAllTime
	}
	if !period.Valid() {
		http.Error(w, "Unknown leaderboard period", http.StatusBadRequest)
		return "", "", 0, false
	}

	city := r.URL.Query().Get("city")

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err == nil && parsed > 0 {
			limit = parsed
		} else {
			log.Warn("Invalid 'limit' parameter provided. Defaulting to 50.", "limit_param", limitStr)
		}
	}
	return period, city, limit, true
}
