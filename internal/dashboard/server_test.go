package dashboard

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/n1techn1t-bit/IQFM-kontent/internal/board"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/config"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/models"
	"github.com/n1techn1t-bit/IQFM-kontent/internal/store"
)

func TestStart_NilStore(t *testing.T) {
	err := Start(context.Background(), StartOpts{Store: nil})
	if err == nil {
		t.Fatal("expected error for nil store")
	}
	if !strings.Contains(err.Error(), "store is required") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "store is required")
	}
}

func TestEmbeddedAssets(t *testing.T) {
	for _, name := range []string{"assets/style.css", "assets/app.js"} {
		data, err := assetsFS.ReadFile(name)
		if err != nil {
			t.Fatalf("%s not embedded: %v", name, err)
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestEmbeddedTemplates(t *testing.T) {
	data, err := templatesFS.ReadFile("templates/layout.html")
	if err != nil {
		t.Fatalf("layout.html not embedded: %v", err)
	}
	if !strings.Contains(string(data), "Kontent") {
		t.Error("layout.html does not contain 'Kontent'")
	}
}

// setupTestServer runs the full router against an in-memory store.
func setupTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Item{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	s := store.New(db)

	cfg := &config.Config{Project: "acme"}
	cfg.Users.Admin = config.UserConfig{ID: "admin_1", Name: "Creator"}
	cfg.Users.Client = config.UserConfig{ID: "client_1", Name: "Client"}

	boards := make(map[string]*board.Board, len(models.Variants))
	for _, variant := range models.Variants {
		b, err := board.Open(s, board.Opts{Variant: variant})
		if err != nil {
			t.Fatalf("open %s board: %v", variant, err)
		}
		boards[variant] = b
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())
	tmpl, err := parseTemplates()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	router.SetHTMLTemplate(tmpl)
	registerRoutes(router, &api{store: s, cfg: cfg, boards: boards})

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		for _, b := range boards {
			b.Close()
		}
		s.Close()
	})
	return srv, s
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeItem(t *testing.T, resp *http.Response) models.Item {
	t.Helper()
	defer resp.Body.Close()
	var item models.Item
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		t.Fatalf("decode item: %v", err)
	}
	return item
}

// waitForBoard polls the board endpoint until the predicate holds.
func waitForBoard(t *testing.T, baseURL, variant string, pred func(lanes map[string][]models.Item) bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/api/board/" + variant)
		if err != nil {
			t.Fatalf("GET board: %v", err)
		}
		var body struct {
			Lanes map[string][]models.Item `json:"lanes"`
		}
		err = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("decode board: %v", err)
		}
		if pred(body.Lanes) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("board did not reach expected state")
}

func TestIndex_RendersBoard(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	data, _ := io.ReadAll(resp.Body)
	html := string(data)
	for _, want := range []string{"Kontent", "acme", "BACKLOG", "TODO", "CHANGES_REQUIRED", "REJECTED", "TOPIC", "POST"} {
		if !strings.Contains(html, want) {
			t.Errorf("index page missing %q", want)
		}
	}
}

func TestStaticAssets(t *testing.T) {
	srv, _ := setupTestServer(t)

	for _, path := range []string{"/static/style.css", "/static/app.js"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestCreateItem(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp := postJSON(t, srv.URL+"/api/items", map[string]any{
		"title":   "spring campaign",
		"variant": models.VariantTopic,
		"tags":    []string{"seasonal"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	item := decodeItem(t, resp)
	if item.Status != models.StatusBacklog {
		t.Errorf("Status = %q, want %q", item.Status, models.StatusBacklog)
	}
	if len(item.Tags) != 1 || item.Tags[0] != "seasonal" {
		t.Errorf("Tags = %v, want [seasonal]", item.Tags)
	}

	waitForBoard(t, srv.URL, models.VariantTopic, func(lanes map[string][]models.Item) bool {
		return len(lanes[models.StatusBacklog]) == 1
	})
}

func TestCreateItem_Validation(t *testing.T) {
	srv, _ := setupTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"variant": models.VariantTopic}},
		{"blank title", map[string]any{"title": "   ", "variant": models.VariantTopic}},
		{"unknown variant", map[string]any{"title": "x", "variant": "STORY"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/items", tt.body)
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestGetItem_NotFound(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp, err := http.Get(srv.URL + "/api/items/it-missing")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestUpdateItem(t *testing.T) {
	srv, _ := setupTestServer(t)

	created := decodeItem(t, postJSON(t, srv.URL+"/api/items", map[string]any{
		"title": "draft", "variant": models.VariantPost,
	}))

	resp := doJSON(t, http.MethodPatch, srv.URL+"/api/items/"+created.ID, map[string]any{
		"title":       "final cut",
		"description": "ready for review",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	item := decodeItem(t, resp)
	if item.Title != "final cut" || item.Description != "ready for review" {
		t.Errorf("item = %q/%q, want final cut/ready for review", item.Title, item.Description)
	}
}

func TestDeleteItem(t *testing.T) {
	srv, _ := setupTestServer(t)

	created := decodeItem(t, postJSON(t, srv.URL+"/api/items", map[string]any{
		"title": "throwaway", "variant": models.VariantTopic,
	}))

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/items/"+created.ID, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/items/"+created.ID, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", resp.StatusCode)
	}
}

func TestMoveItem_ToLaneEnd(t *testing.T) {
	srv, _ := setupTestServer(t)

	created := decodeItem(t, postJSON(t, srv.URL+"/api/items", map[string]any{
		"title": "mover", "variant": models.VariantTopic,
	}))
	waitForBoard(t, srv.URL, models.VariantTopic, func(lanes map[string][]models.Item) bool {
		return len(lanes[models.StatusBacklog]) == 1
	})

	resp := postJSON(t, srv.URL+"/api/items/"+created.ID+"/move", map[string]any{
		"targetStatus": models.StatusTodo,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	moved := decodeItem(t, resp)
	if moved.Status != models.StatusTodo {
		t.Errorf("Status = %q, want %q", moved.Status, models.StatusTodo)
	}
	if moved.Order != 1000 {
		t.Errorf("Order = %v, want 1000", moved.Order)
	}
}

func TestMoveItem_BeforeTarget(t *testing.T) {
	srv, _ := setupTestServer(t)

	first := decodeItem(t, postJSON(t, srv.URL+"/api/items", map[string]any{
		"title": "first", "variant": models.VariantTopic,
	}))
	second := decodeItem(t, postJSON(t, srv.URL+"/api/items", map[string]any{
		"title": "second", "variant": models.VariantTopic,
	}))
	waitForBoard(t, srv.URL, models.VariantTopic, func(lanes map[string][]models.Item) bool {
		return len(lanes[models.StatusBacklog]) == 2
	})

	resp := postJSON(t, srv.URL+"/api/items/"+second.ID+"/move", map[string]any{
		"targetStatus": models.StatusBacklog,
		"beforeId":     first.ID,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	moved := decodeItem(t, resp)
	if moved.Order >= first.Order {
		t.Errorf("Order = %v, want below %v", moved.Order, first.Order)
	}

	waitForBoard(t, srv.URL, models.VariantTopic, func(lanes map[string][]models.Item) bool {
		lane := lanes[models.StatusBacklog]
		return len(lane) == 2 && lane[0].ID == second.ID
	})
}

// The admin and the client drop cards at the same moment. Each request
// must move exactly the card it names; a simultaneous move from the
// other user must never redirect it.
func TestMoveItem_ConcurrentClients(t *testing.T) {
	srv, s := setupTestServer(t)

	adminCard := decodeItem(t, postJSON(t, srv.URL+"/api/items", map[string]any{
		"title": "admin pick", "variant": models.VariantTopic,
	}))
	clientCard := decodeItem(t, postJSON(t, srv.URL+"/api/items", map[string]any{
		"title": "client pick", "variant": models.VariantTopic,
	}))
	waitForBoard(t, srv.URL, models.VariantTopic, func(lanes map[string][]models.Item) bool {
		return len(lanes[models.StatusBacklog]) == 2
	})

	move := func(id, status string) error {
		body, err := json.Marshal(map[string]any{"targetStatus": status})
		if err != nil {
			return err
		}
		resp, err := http.Post(srv.URL+"/api/items/"+id+"/move", "application/json", bytes.NewReader(body))
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("status = %d, want 200", resp.StatusCode)
		}
		return nil
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = move(adminCard.ID, models.StatusTodo)
	}()
	go func() {
		defer wg.Done()
		errs[1] = move(clientCard.ID, models.StatusChangesRequired)
	}()
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("move %d: %v", i, err)
		}
	}

	gotAdmin, err := s.Get(adminCard.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if gotAdmin.Status != models.StatusTodo {
		t.Errorf("admin card Status = %q, want TODO", gotAdmin.Status)
	}
	gotClient, err := s.Get(clientCard.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if gotClient.Status != models.StatusChangesRequired {
		t.Errorf("client card Status = %q, want CHANGES_REQUIRED", gotClient.Status)
	}
}

func TestMoveItem_Errors(t *testing.T) {
	srv, _ := setupTestServer(t)

	created := decodeItem(t, postJSON(t, srv.URL+"/api/items", map[string]any{
		"title": "lonely", "variant": models.VariantTopic,
	}))
	waitForBoard(t, srv.URL, models.VariantTopic, func(lanes map[string][]models.Item) bool {
		return len(lanes[models.StatusBacklog]) == 1
	})

	resp := postJSON(t, srv.URL+"/api/items/it-missing/move", map[string]any{
		"targetStatus": models.StatusTodo,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing item status = %d, want 404", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/api/items/"+created.ID+"/move", map[string]any{
		"targetStatus": "SHIPPED",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad status status = %d, want 400", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/api/items/"+created.ID+"/move", map[string]any{
		"targetStatus": models.StatusTodo,
		"beforeId":     "it-gone",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("stale target status = %d, want 404", resp.StatusCode)
	}
}

func TestComments_Lifecycle(t *testing.T) {
	srv, _ := setupTestServer(t)

	created := decodeItem(t, postJSON(t, srv.URL+"/api/items", map[string]any{
		"title": "needs feedback", "variant": models.VariantPost,
	}))

	resp := postJSON(t, srv.URL+"/api/items/"+created.ID+"/comments", map[string]any{
		"text": "please tighten the hook",
		"role": models.RoleClient,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add comment status = %d, want 201", resp.StatusCode)
	}
	var comment models.Comment
	if err := json.NewDecoder(resp.Body).Decode(&comment); err != nil {
		t.Fatalf("decode comment: %v", err)
	}
	resp.Body.Close()
	if comment.UserID != "client_1" || comment.UserName != "Client" {
		t.Errorf("author = %s/%s, want client_1/Client", comment.UserID, comment.UserName)
	}

	resp = doJSON(t, http.MethodPatch,
		srv.URL+"/api/items/"+created.ID+"/comments/"+comment.ID,
		map[string]any{"text": "tighten the hook and the CTA"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("edit comment status = %d, want 204", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete,
		srv.URL+"/api/items/"+created.ID+"/comments/"+comment.ID, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete comment status = %d, want 204", resp.StatusCode)
	}

	item := decodeItem(t, doJSON(t, http.MethodGet, srv.URL+"/api/items/"+created.ID, nil))
	if len(item.Comments) != 0 {
		t.Errorf("comments = %d, want 0 after delete", len(item.Comments))
	}
}

func TestComments_BlankTextRejected(t *testing.T) {
	srv, _ := setupTestServer(t)

	created := decodeItem(t, postJSON(t, srv.URL+"/api/items", map[string]any{
		"title": "quiet card", "variant": models.VariantTopic,
	}))

	resp := postJSON(t, srv.URL+"/api/items/"+created.ID+"/comments", map[string]any{
		"text": "   ",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestStats(t *testing.T) {
	srv, _ := setupTestServer(t)

	for _, title := range []string{"a", "b"} {
		resp := postJSON(t, srv.URL+"/api/items", map[string]any{
			"title": title, "variant": models.VariantTopic,
		})
		resp.Body.Close()
	}

	resp, err := http.Get(srv.URL + "/api/stats")
	if err != nil {
		t.Fatalf("GET stats: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Variants []VariantStats `json:"variants"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Variants) != len(models.Variants) {
		t.Fatalf("variants = %d, want %d", len(body.Variants), len(models.Variants))
	}
	for _, vs := range body.Variants {
		if vs.Variant == models.VariantTopic && vs.Lanes[models.StatusBacklog] != 2 {
			t.Errorf("TOPIC backlog count = %d, want 2", vs.Lanes[models.StatusBacklog])
		}
	}
}

func TestBoard_UnknownVariant(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp, err := http.Get(srv.URL + "/api/board/STORY")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestEvents_StreamsSnapshots(t *testing.T) {
	srv, s := setupTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events/"+models.VariantTopic, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("content-type = %q, want text/event-stream", ct)
	}

	// A write after connecting must arrive as a snapshot event.
	if _, err := s.Create(store.CreateOpts{Title: "streamed", Variant: models.VariantTopic, Order: 1000}); err != nil {
		t.Fatalf("create: %v", err)
	}

	scanner := bufio.NewScanner(resp.Body)
	sawConnected, sawSnapshot := false, false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: connected") {
			sawConnected = true
		}
		if strings.HasPrefix(line, "event: snapshot") {
			sawSnapshot = true
		}
		if sawConnected && sawSnapshot {
			break
		}
	}
	if !sawConnected {
		t.Error("stream missing connected event")
	}
	if !sawSnapshot {
		t.Error("stream missing snapshot event")
	}
}

func TestEvents_UnknownVariant(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp, err := http.Get(srv.URL + "/api/events/STORY")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestStart_ServesAndShutsDown(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Item{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	s := store.New(db)
	defer s.Close()

	port := 18080 + int(time.Now().UnixNano()%1000)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- Start(ctx, StartOpts{Store: s, Port: port})
	}()

	baseURL := fmt.Sprintf("http://localhost:%d", port)
	deadline := time.Now().Add(3 * time.Second)
	var up bool
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/static/style.css")
		if err == nil {
			resp.Body.Close()
			up = true
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if !up {
		cancel()
		t.Fatal("server did not come up")
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Start returned %v after shutdown, want nil", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
