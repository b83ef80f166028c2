package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"questboard/internal/models"
	"questboard/internal/services"
	"questboard/internal/testutil"

	"github.com/samber/do"
	"github.com/uptrace/bun"
)

const testBotToken = "123456:TEST-token"

type testServer struct {
	handler http.Handler
	db      *bun.DB
	quests  []*models.Quest
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.DB(t)
	container, _ := testutil.Container(t, db)
	do.Provide(container, services.NewServiceConfig)
	do.Provide(container, services.NewServiceOnboarding)
	do.Provide(container, services.NewServiceUser)
	do.Provide(container, services.NewServiceQuestCatalog)
	do.Provide(container, services.NewServiceQuest)
	do.Provide(container, services.NewServiceReward)
	do.Provide(container, services.NewServiceAchievement)
	do.Provide(container, services.NewServiceLeaderboard)

	bot, err := services.NewBot(testBotToken, time.Hour, testutil.Logger(t))
	if err != nil {
		t.Fatal(err)
	}
	do.ProvideValue(container, bot)
	authentication, err := services.NewAuthentication("handler-secret")
	if err != nil {
		t.Fatal(err)
	}
	do.ProvideValue(container, authentication)

	quests := testutil.SeedStarterCatalog(t, context.Background(), db, 4)

	h, err := New(&Config{Container: container, Mode: "test", Origins: []string{"*"}})
	if err != nil {
		t.Fatal(err)
	}
	return &testServer{h, db, quests}
}

// call sends a request as telegramID; zero sends it without credentials.
func (s *testServer) call(t *testing.T, method, path string, telegramID int64, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if telegramID != 0 {
		req.Header.Set("Authorization", "tma "+testutil.InitData(testBotToken, telegramID, "Player", time.Now()))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(t *testing.T, telegramID int64, role models.RoleName) {
	t.Helper()
	rec := s.call(t, http.MethodPost, "/api/v1/user", telegramID, `{"role":"`+string(role)+`"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("register %d: %d %s", telegramID, rec.Code, rec.Body.String())
	}
}

func questPath(quest *models.Quest, action string) string {
	return "/api/v1/quests/" + quest.ID.String() + "/" + action
}

func TestHealthNeedsNoAuth(t *testing.T) {
	s := newTestServer(t)

	rec := s.call(t, http.MethodGet, "/api/v1/health", 0, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestProfileRequiresIdentity(t *testing.T) {
	s := newTestServer(t)

	if rec := s.call(t, http.MethodGet, "/api/v1/user", 0, "", nil); rec.Code == http.StatusOK {
		t.Fatal("anonymous profile request succeeded")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user", nil)
	req.Header.Set("Authorization", "tma "+testutil.InitData("654321:OTHER-token", 10, "Player", time.Now()))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	if rec.Code == http.StatusOK {
		t.Fatal("init data signed by another bot was accepted")
	}

	// verified but not registered yet
	if rec := s.call(t, http.MethodGet, "/api/v1/user", 10, "", nil); rec.Code == http.StatusOK {
		t.Fatal("unregistered user got a profile")
	}

	s.register(t, 10, models.RoleAdventurer)
	rec = s.call(t, http.MethodGet, "/api/v1/user", 10, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"token"`) {
		t.Fatalf("profile without token: %s", rec.Body.String())
	}
}

func TestQuestStatusCodes(t *testing.T) {
	s := newTestServer(t)
	s.register(t, 20, models.RoleAdventurer)

	if rec := s.call(t, http.MethodPost, questPath(s.quests[0], "accept"), 20, "", nil); rec.Code != http.StatusOK {
		t.Fatalf("accept: %d %s", rec.Code, rec.Body.String())
	}
	if rec := s.call(t, http.MethodPost, questPath(s.quests[0], "accept"), 20, "", nil); rec.Code != http.StatusConflict {
		t.Fatalf("second accept: %d", rec.Code)
	}
	// onboarding leaves the back half of the starter quests blocked
	if rec := s.call(t, http.MethodPost, questPath(s.quests[3], "accept"), 20, "", nil); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blocked accept: %d", rec.Code)
	}
	if rec := s.call(t, http.MethodPost, "/api/v1/quests", 20, `{"name":"Side quest"}`, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("player creating a quest: %d", rec.Code)
	}
}

func TestAcceptReplaysIdempotencyKey(t *testing.T) {
	s := newTestServer(t)
	s.register(t, 30, models.RoleAdventurer)

	headers := map[string]string{HeaderIdempotencyKey: "accept-1"}
	first := s.call(t, http.MethodPost, questPath(s.quests[1], "accept"), 30, "", headers)
	if first.Code != http.StatusOK {
		t.Fatalf("first: %d %s", first.Code, first.Body.String())
	}
	if first.Header().Get(HeaderIdempotencyReplayed) != "" {
		t.Fatal("first response marked as replayed")
	}

	second := s.call(t, http.MethodPost, questPath(s.quests[1], "accept"), 30, "", headers)
	if second.Code != http.StatusOK {
		t.Fatalf("replay: %d %s", second.Code, second.Body.String())
	}
	if second.Header().Get(HeaderIdempotencyReplayed) != "true" {
		t.Fatal("replay not marked")
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("replayed body differs:\n%s\n%s", first.Body.String(), second.Body.String())
	}

	// a fresh key runs the handler again and hits the state machine
	third := s.call(t, http.MethodPost, questPath(s.quests[1], "accept"), 30, "", map[string]string{HeaderIdempotencyKey: "accept-2"})
	if third.Code != http.StatusConflict {
		t.Fatalf("new key: %d", third.Code)
	}
}

func TestQuestLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	testutil.SeedReward(t, context.Background(), s.db, s.quests[0].ID, 100, 40, 1)
	s.register(t, 40, models.RoleAdventurer)
	s.register(t, 41, models.RoleKingdom)

	steps := []struct {
		name   string
		path   string
		actor  int64
		body   string
		status int
	}{
		{"accept", questPath(s.quests[0], "accept"), 40, "", http.StatusOK},
		{"claim early", questPath(s.quests[0], "accept_reward"), 40, "", http.StatusConflict},
		{"submit", questPath(s.quests[0], "submit"), 40, "", http.StatusOK},
		{"player reviews", questPath(s.quests[0], "complete"), 40, `{"user_id":40}`, http.StatusForbidden},
		{"mentor completes", questPath(s.quests[0], "complete"), 41, `{"user_id":40}`, http.StatusOK},
		{"complete again", questPath(s.quests[0], "complete"), 41, `{"user_id":40}`, http.StatusUnprocessableEntity},
		{"claim", questPath(s.quests[0], "accept_reward"), 40, "", http.StatusOK},
		{"claim twice", questPath(s.quests[0], "accept_reward"), 40, "", http.StatusConflict},
	}
	for _, step := range steps {
		rec := s.call(t, http.MethodPost, step.path, step.actor, step.body, nil)
		if rec.Code != step.status {
			t.Fatalf("%s: status %d, want %d: %s", step.name, rec.Code, step.status, rec.Body.String())
		}
	}

	rec := s.call(t, http.MethodGet, "/api/v1/leaderboard?timeType=week", 40, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("leaderboard: %d %s", rec.Code, rec.Body.String())
	}
}

func TestClaimRetriesAfterRejection(t *testing.T) {
	s := newTestServer(t)
	testutil.SeedReward(t, context.Background(), s.db, s.quests[0].ID, 100, 40, 1)
	s.register(t, 50, models.RoleAdventurer)
	s.register(t, 51, models.RoleKingdom)
	claim := map[string]string{HeaderIdempotencyKey: "claim-1"}

	if rec := s.call(t, http.MethodPost, questPath(s.quests[0], "accept"), 50, "", nil); rec.Code != http.StatusOK {
		t.Fatalf("accept: %d %s", rec.Code, rec.Body.String())
	}
	early := s.call(t, http.MethodPost, questPath(s.quests[0], "accept_reward"), 50, "", claim)
	if early.Code != http.StatusConflict {
		t.Fatalf("early claim: %d", early.Code)
	}

	if rec := s.call(t, http.MethodPost, questPath(s.quests[0], "submit"), 50, "", nil); rec.Code != http.StatusOK {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body.String())
	}
	if rec := s.call(t, http.MethodPost, questPath(s.quests[0], "complete"), 51, `{"user_id":50}`, nil); rec.Code != http.StatusOK {
		t.Fatalf("complete: %d %s", rec.Code, rec.Body.String())
	}

	retry := s.call(t, http.MethodPost, questPath(s.quests[0], "accept_reward"), 50, "", claim)
	if retry.Code != http.StatusOK {
		t.Fatalf("retry: %d replayed=%q %s", retry.Code, retry.Header().Get(HeaderIdempotencyReplayed), retry.Body.String())
	}
	if retry.Header().Get(HeaderIdempotencyReplayed) != "" {
		t.Fatal("retry served from the stored rejection")
	}

	again := s.call(t, http.MethodPost, questPath(s.quests[0], "accept_reward"), 50, "", claim)
	if again.Code != http.StatusOK || again.Header().Get(HeaderIdempotencyReplayed) != "true" {
		t.Fatalf("replay of the payout: %d replayed=%q", again.Code, again.Header().Get(HeaderIdempotencyReplayed))
	}
	if again.Body.String() != retry.Body.String() {
		t.Fatal("replayed payout differs from the original")
	}
}
