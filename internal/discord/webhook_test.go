package discord

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/models"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/structures"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/testutil"
)

func webhookConfig(url string) *structures.Config {
	return &structures.Config{Discord: structures.DiscordConfig{WebhookURL: url}}
}

func raidRecord(flawless bool) *models.ActivityRecord {
	return &models.ActivityRecord{
		InstanceID:      "i1",
		Name:            "Last Wish",
		Category:        models.CategoryRaid,
		Flawless:        flawless,
		DurationSeconds: 3725,
	}
}

func TestWebhook_SendActivity(t *testing.T) {
	var captured payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := NewWebhook(webhookConfig(srv.URL), &testutil.MockLogger{})
	roster := []models.FireteamMember{
		{DisplayName: "Guardian", Platform: "Steam", Kills: 20, Deaths: 2},
	}
	require.NoError(t, wh.SendActivity(context.Background(), raidRecord(false), roster))

	require.Len(t, captured.Embeds, 1)
	e := captured.Embeds[0]
	assert.Equal(t, "Last Wish cleared", e.Title)
	assert.Equal(t, colorRaid, e.Color)
	require.Len(t, e.Fields, 3)
	assert.Equal(t, "raid", e.Fields[0].Value)
	assert.Equal(t, "1h2m5s", e.Fields[1].Value)
	assert.Contains(t, e.Fields[2].Value, "Guardian (Steam) 20/2")
	assert.Equal(t, "Instance i1", e.Footer.Text)
}

func TestWebhook_SendActivity_FlawlessTitle(t *testing.T) {
	var captured payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &captured)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := NewWebhook(webhookConfig(srv.URL), &testutil.MockLogger{})
	require.NoError(t, wh.SendActivity(context.Background(), raidRecord(true), nil))

	require.Len(t, captured.Embeds, 1)
	assert.Equal(t, "Last Wish cleared — FLAWLESS", captured.Embeds[0].Title)
}

func TestWebhook_SendLeaderboard(t *testing.T) {
	var captured payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &captured)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := NewWebhook(webhookConfig(srv.URL), &testutil.MockLogger{})
	rows := []models.RankedRow{
		{Rank: 1, DisplayName: "Alpha", BestKD: "10.00"},
		{Rank: 2, DisplayName: "Bravo", BestKD: "2.50"},
	}
	require.NoError(t, wh.SendLeaderboard(context.Background(), rows))

	require.Len(t, captured.Embeds, 1)
	standings := captured.Embeds[0].Fields[0].Value
	assert.Contains(t, standings, "**#1** Alpha — 10.00 KD")
	assert.Contains(t, standings, "**#2** Bravo — 2.50 KD")
}

func TestWebhook_SendLeaderboard_Empty(t *testing.T) {
	var captured payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &captured)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	wh := NewWebhook(webhookConfig(srv.URL), &testutil.MockLogger{})
	require.NoError(t, wh.SendLeaderboard(context.Background(), nil))
	assert.Contains(t, captured.Embeds[0].Fields[0].Value, "No qualifying runs yet.")
}

func TestWebhook_NoURLIsNoop(t *testing.T) {
	wh := NewWebhook(webhookConfig(""), &testutil.MockLogger{})
	assert.NoError(t, wh.SendActivity(context.Background(), raidRecord(false), nil))
	assert.NoError(t, wh.SendLeaderboard(context.Background(), nil))
}

func TestWebhook_ErrorStatusSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	wh := NewWebhook(webhookConfig(srv.URL), &testutil.MockLogger{})
	assert.Error(t, wh.SendActivity(context.Background(), raidRecord(false), nil))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0m42s", formatDuration(42))
	assert.Equal(t, "31m5s", formatDuration(1865))
	assert.Equal(t, "1h2m5s", formatDuration(3725))
}
