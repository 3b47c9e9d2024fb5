package discord

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/models"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/providers"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/structures"
)

const (
	colorRaid    = 0xc0392b
	colorDungeon = 0x8e44ad
)

// Webhook posts activity summaries and the published leaderboard to a
// Discord channel. With no URL configured it degrades to a no-op; send
// failures are the caller's to log and swallow.
type Webhook struct {
	url    string
	client *http.Client
	logger providers.Logger
}

func NewWebhook(conf *structures.Config, logger providers.Logger) *Webhook {
	return &Webhook{
		url:    conf.Discord.WebhookURL,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

type payload struct {
	Embeds []embed `json:"embeds"`
}

type embed struct {
	Title  string       `json:"title"`
	Color  int          `json:"color"`
	Fields []embedField `json:"fields"`
	Footer *embedFooter `json:"footer,omitempty"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedFooter struct {
	Text string `json:"text"`
}

func (w *Webhook) SendActivity(ctx context.Context, record *models.ActivityRecord, roster []models.FireteamMember) error {
	if w.url == "" {
		return nil
	}

	title := fmt.Sprintf("%s cleared", record.Name)
	if record.Flawless {
		title = fmt.Sprintf("%s cleared — FLAWLESS", record.Name)
	}

	color := colorDungeon
	if record.Category == models.CategoryRaid {
		color = colorRaid
	}

	names := make([]string, 0, len(roster))
	for _, m := range roster {
		names = append(names, fmt.Sprintf("%s (%s) %d/%d", m.DisplayName, m.Platform, m.Kills, m.Deaths))
	}

	e := embed{
		Title: title,
		Color: color,
		Fields: []embedField{
			{Name: "Category", Value: record.Category, Inline: true},
			{Name: "Duration", Value: formatDuration(record.DurationSeconds), Inline: true},
			{Name: "Fireteam", Value: strings.Join(names, "\n")},
		},
		Footer: &embedFooter{Text: fmt.Sprintf("Instance %s", record.InstanceID)},
	}

	return w.post(ctx, payload{Embeds: []embed{e}})
}

func (w *Webhook) SendLeaderboard(ctx context.Context, rows []models.RankedRow) error {
	if w.url == "" {
		return nil
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("**#%d** %s — %s KD", row.Rank, row.DisplayName, row.BestKD))
	}
	if len(lines) == 0 {
		lines = append(lines, "No qualifying runs yet.")
	}

	e := embed{
		Title: "Top players by KD",
		Color: colorRaid,
		Fields: []embedField{
			{Name: "Standings", Value: strings.Join(lines, "\n")},
		},
	}

	return w.post(ctx, payload{Embeds: []embed{e}})
}

func (w *Webhook) post(ctx context.Context, p payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func formatDuration(seconds int) string {
	d := time.Duration(seconds) * time.Second
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, secs)
	}
	return fmt.Sprintf("%dm%ds", minutes, secs)
}
