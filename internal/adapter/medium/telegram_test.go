package medium

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"adpilot/internal/config/configs"
	"adpilot/internal/core/domain"
	"adpilot/internal/core/port"
)

// fakePlatform is an httptest-backed remote medium API. It records every
// request path in order and serves canned JSON per path prefix.
type fakePlatform struct {
	mu       sync.Mutex
	paths    []string
	hashes   []string // file_hash form values, in request order
	status   int
	body     string
	bearer   string
	response string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{response: `{"id":"rc-1"}`}
}

func (p *fakePlatform) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.paths = append(p.paths, r.URL.Path)
		p.bearer = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			p.hashes = append(p.hashes, r.FormValue("file_hash"))
		}
		status, body := p.status, p.body
		p.mu.Unlock()

		if status != 0 {
			http.Error(w, body, status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(p.response))
	}
}

func (p *fakePlatform) requestPaths() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.paths...)
}

func (p *fakePlatform) formHashes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.hashes...)
}

func (p *fakePlatform) authHeader() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bearer
}

type staticFiles map[string]port.File

func (s staticFiles) Resolve(_ context.Context, fileID string) (*port.File, error) {
	f, ok := s[fileID]
	if !ok {
		return nil, port.ErrNotFound
	}
	return &f, nil
}

func mediumConfig(srv *httptest.Server) configs.MediumAPI {
	return configs.MediumAPI{
		Enabled:           true,
		BaseURL:           srv.URL,
		Token:             "secret-token",
		Timeout:           5 * time.Second,
		DiagnosticTimeout: 5 * time.Second,
	}
}

func launchWindow() (time.Time, time.Time) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	return start, start.Add(4 * time.Hour)
}

func TestTelegramCreateCampaignUploadsScreenshotBeforeReturning(t *testing.T) {
	platform := newFakePlatform()
	srv := httptest.NewServer(platform.handler())
	defer srv.Close()

	screenshot := []byte("png bytes")
	fileID := "shots/channel.png"
	tg := NewTelegram(mediumConfig(srv), staticFiles{
		fileID: {Name: "channel.png", Content: screenshot},
	})

	start, end := launchWindow()
	c := &domain.Campaign{ID: 1, Name: "promo", ScreenshotFileID: &fileID}
	remoteID, err := tg.CreateCampaign(context.Background(), c, start, end)
	require.NoError(t, err)
	require.Equal(t, "rc-1", remoteID)

	sum := sha1.Sum(screenshot)
	require.Equal(t, []string{
		"/api/campaigns/",
		"/api/campaigns/rc-1/screenshot/",
	}, platform.requestPaths())
	require.Equal(t, []string{hex.EncodeToString(sum[:])}, platform.formHashes())
	require.Equal(t, "Bearer secret-token", platform.authHeader())
}

func TestTelegramCreateCampaignWithoutScreenshotSkipsUpload(t *testing.T) {
	platform := newFakePlatform()
	srv := httptest.NewServer(platform.handler())
	defer srv.Close()

	tg := NewTelegram(mediumConfig(srv), staticFiles{})
	start, end := launchWindow()
	_, err := tg.CreateCampaign(context.Background(), &domain.Campaign{ID: 1, Name: "promo"}, start, end)
	require.NoError(t, err)
	require.Equal(t, []string{"/api/campaigns/"}, platform.requestPaths())
}

func TestTelegramCreateFileSendsFileHash(t *testing.T) {
	platform := newFakePlatform()
	srv := httptest.NewServer(platform.handler())
	defer srv.Close()

	tg := NewTelegram(mediumConfig(srv), staticFiles{})
	file := port.File{Name: "banner.png", Content: []byte("image")}
	require.NoError(t, tg.CreateFile(context.Background(), file, "rc-1", "ct-1"))

	sum := sha1.Sum(file.Content)
	require.Equal(t, []string{"/api/campaigns/rc-1/contents/ct-1/files/"}, platform.requestPaths())
	require.Equal(t, []string{hex.EncodeToString(sum[:])}, platform.formHashes())
}

// A non-2xx response surfaces as *port.RequestError carrying the status
// and body; the launcher's error breaker keys off this contract.
func TestTelegramNon2xxBecomesRequestError(t *testing.T) {
	platform := newFakePlatform()
	platform.status = http.StatusInternalServerError
	platform.body = "upstream exploded"
	srv := httptest.NewServer(platform.handler())
	defer srv.Close()

	tg := NewTelegram(mediumConfig(srv), staticFiles{})
	start, end := launchWindow()
	_, err := tg.CreateCampaign(context.Background(), &domain.Campaign{ID: 1, Name: "promo"}, start, end)

	var reqErr *port.RequestError
	require.ErrorAs(t, err, &reqErr)
	require.Equal(t, domain.MediumTelegram, reqErr.Medium)
	require.Equal(t, "create_campaign", reqErr.Op)
	require.Equal(t, http.StatusInternalServerError, reqErr.StatusCode)
	require.Contains(t, reqErr.Body, "upstream exploded")
}

func TestTelegramCampaignReportMapsItems(t *testing.T) {
	platform := newFakePlatform()
	platform.response = `[{"content_id":"ct-1","views":42,"detail":{"clicks":3},"hourly":{"10":42}}]`
	srv := httptest.NewServer(platform.handler())
	defer srv.Close()

	tg := NewTelegram(mediumConfig(srv), staticFiles{})
	reports, err := tg.CampaignReport(context.Background(), "rc-1")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.Equal(t, "ct-1", reports[0].ContentRefID)
	require.Equal(t, int64(42), reports[0].Views)
	require.Equal(t, int64(42), reports[0].Hourly["10"])
}
