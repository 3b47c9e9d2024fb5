package controllers

import (
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/models"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/providers"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/repository"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/services"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/structures"
)

type ApiController struct {
	logger      providers.Logger
	conf        *structures.Config
	leaderboard services.LeaderboardServiceInterface
	repos       *repository.Repositories
	cache       providers.CacheProviderInterface
}

func NewApiController(conf *structures.Config, logger providers.Logger, leaderboard services.LeaderboardServiceInterface, repos *repository.Repositories, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:      logger,
		conf:        conf,
		leaderboard: leaderboard,
		repos:       repos,
		cache:       cache,
	}
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) limit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return ac.conf.Crawler.LeaderboardSize
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > 100 {
		return ac.conf.Crawler.LeaderboardSize
	}
	return n
}

// GetLeaderboard serves the ranked standings, best KD first.
func (ac *ApiController) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := ac.limit(r)
	ac.serveFromCacheOrCompute(w, "leaderboard:"+strconv.Itoa(limit), func() (any, error) {
		return ac.leaderboard.TopByKD(r.Context(), limit)
	})
}

// GetPlayer serves one player's profile and most recent recorded runs.
func (ac *ApiController) GetPlayer(w http.ResponseWriter, r *http.Request) {
	membershipID := r.URL.Query().Get("id")
	if membershipID == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	player, err := ac.repos.Players.GetByID(r.Context(), membershipID)
	if err == models.ErrPlayerNotFound {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.serveFromCacheOrCompute(w, "player:"+membershipID, func() (any, error) {
		activities, err := ac.repos.Activities.ListRecentByUser(r.Context(), membershipID, 25)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"player":     player,
			"activities": activities,
		}, nil
	})
}
