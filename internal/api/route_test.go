package api

import (
	"EventGallery/internal/api/config"
	"EventGallery/internal/api/dto"
	"EventGallery/internal/api/handler"
	"EventGallery/internal/api/middleware"
	"EventGallery/internal/gallery"
	"EventGallery/internal/model"
	"EventGallery/internal/pkg/auth"
	"EventGallery/internal/pkg/blob"
	"EventGallery/internal/repository"
	"EventGallery/internal/service"
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

type stubProvider struct{}

func (stubProvider) Name() string { return "stub" }

func (stubProvider) Login(_ context.Context, email, password string) (*auth.Token, error) {
	if password != "secret1" {
		return nil, auth.ErrInvalidCredentials
	}
	return &auth.Token{AccessToken: "good", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (stubProvider) Authenticate(_ context.Context, token string) (*model.Session, error) {
	if token != "good" {
		return nil, auth.ErrInvalidToken
	}
	return &model.Session{UserID: "1", Email: "host@example.com", Provider: "stub", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (stubProvider) Logout(context.Context, string) error { return nil }

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	engine *gin.Engine
	store  *repository.MemoryMediaStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryMediaStore()
	for i := 0; i < 12; i++ {
		_, err := store.Insert(context.Background(), model.CollectionPhotos, &model.MediaItem{
			ID:           fmt.Sprintf("p%d", i),
			URL:          fmt.Sprintf("https://cdn.example.com/photos/p%d.jpg", i),
			UploaderName: "Ayşe",
			CreatedAt:    t0.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	blobs := blob.NewMemoryStore("https://gallery.example.com/blobs")
	authSvc := service.NewAuthService(stubProvider{})
	gallerySvc := service.NewGalleryService(gallery.NewRegistry(store, 10, time.Hour), store, nil, nil, 10)
	uploadSvc := service.NewUploadService(config.UploadConfig{
		MaxFiles:          5,
		MaxPhotoBytes:     1 << 20,
		MaxVideoBytes:     1 << 20,
		PhotoTypes:        []string{"image/jpeg", "image/png"},
		VideoTypes:        []string{"video/mp4"},
		Concurrency:       2,
		MaxUploaderLength: 64,
	}, blobs, store, nil)

	r := gin.New()
	r.Use(middleware.TraceMiddleware(), middleware.CommonMiddleware("https://gallery.example.com"))
	RegisterRoutes(r.Group("/api"), &HandlersGroup{
		AuthService:    authSvc,
		AuthHandler:    handler.NewAuthHandler(authSvc),
		GalleryHandler: handler.NewGalleryHandler(gallerySvc),
		LiveHandler:    handler.NewLiveHandler(authSvc, gallerySvc),
		UploadHandler:  handler.NewUploadHandler(uploadSvc, 8<<20),
		QRCodeHandler:  handler.NewQRCodeHandler(),
	})
	return &testServer{engine: r, store: store}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestRoutes_Ping(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, http.MethodGet, "/api/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", env.Message)
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
}

func TestRoutes_GalleryRequiresSession(t *testing.T) {
	s := newTestServer(t)

	_, env := s.do(t, http.MethodPost, "/api/gallery/views", "", nil)
	assert.Equal(t, service.Unauthorized, env.Code)

	_, env = s.do(t, http.MethodPost, "/api/gallery/views", "expired", nil)
	assert.Equal(t, service.Unauthorized, env.Code)
}

func TestRoutes_Login(t *testing.T) {
	s := newTestServer(t)

	_, env := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "host@example.com", "password": "secret1"})
	require.Equal(t, 200, env.Code)
	var token dto.TokenDTO
	require.NoError(t, json.Unmarshal(env.Data, &token))
	assert.Equal(t, "good", token.Token)

	_, env = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "host@example.com", "password": "wrong-one"})
	assert.Equal(t, service.Unauthorized, env.Code)
	assert.Equal(t, service.ErrPasswordIncorrect.Error(), env.Message)

	_, env = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "not-an-email", "password": "secret1"})
	assert.Equal(t, service.BadRequest, env.Code)

	_, env = s.do(t, http.MethodGet, "/api/auth/session", "good", nil)
	require.Equal(t, 200, env.Code)
	var session dto.SessionDTO
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.Equal(t, "host@example.com", session.Email)
}

func TestRoutes_ViewAndDelete(t *testing.T) {
	s := newTestServer(t)

	_, env := s.do(t, http.MethodPost, "/api/gallery/views", "good", nil)
	require.Equal(t, 200, env.Code)
	var view dto.ViewDTO
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.Len(t, view.Items, 10)
	base := "/api/gallery/views/" + view.ViewID

	_, env = s.do(t, http.MethodPost, base+"/sentinel", "good", nil)
	require.Equal(t, 200, env.Code)
	var load dto.LoadResultDTO
	require.NoError(t, json.Unmarshal(env.Data, &load))
	assert.True(t, load.Triggered)
	assert.Len(t, load.View.Items, 12)

	_, env = s.do(t, http.MethodPost, base+"/viewer", "good", map[string]any{})
	assert.Equal(t, service.BadRequest, env.Code)

	_, env = s.do(t, http.MethodPost, base+"/deletes", "good", map[string]string{"kind": "photo", "id": "p5"})
	require.Equal(t, 200, env.Code)
	var action dto.DeleteActionDTO
	require.NoError(t, json.Unmarshal(env.Data, &action))

	confirm := base + "/deletes/" + action.ActionID + "/confirm"
	_, env = s.do(t, http.MethodPost, confirm, "good", nil)
	require.Equal(t, 200, env.Code)
	_, env = s.do(t, http.MethodPost, confirm, "good", nil)
	require.Equal(t, 200, env.Code)
	require.NoError(t, json.Unmarshal(env.Data, &action))
	assert.Equal(t, gallery.DeleteDone.String(), action.State)
	assert.Len(t, action.View.Items, 11)

	stored, ok := s.store.Get(model.CollectionPhotos, "p5")
	require.True(t, ok)
	assert.True(t, stored.IsDeleted)

	_, env = s.do(t, http.MethodGet, "/api/gallery/deleted", "good", nil)
	require.Equal(t, 200, env.Code)
	var deleted dto.FeedPageDTO
	require.NoError(t, json.Unmarshal(env.Data, &deleted))
	require.Len(t, deleted.Items, 1)
	assert.Equal(t, "p5", deleted.Items[0].ID)

	_, env = s.do(t, http.MethodDelete, base, "good", nil)
	require.Equal(t, 200, env.Code)
	_, env = s.do(t, http.MethodGet, base, "good", nil)
	assert.Equal(t, service.NotFound, env.Code)
}

func TestRoutes_Upload(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("uploaderName", "Mehmet"))
	part, err := w.CreateFormFile("files", "clip.mp4")
	require.NoError(t, err)
	_, err = part.Write(append([]byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom"), make([]byte, 32)...))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, 200, env.Code, env.Message)
	var res dto.UploadResultDTO
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, "Mehmet", res.UploaderName)

	_, ok := s.store.Get(model.CollectionVideos, res.Files[0].ID)
	assert.True(t, ok)
}

func TestRoutes_QRCode(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/api/qrcode?size=200", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	_, env := s.do(t, http.MethodGet, "/api/qrcode?size=big", "", nil)
	assert.Equal(t, service.BadRequest, env.Code)
}

func TestRoutes_LiveView(t *testing.T) {
	s := newTestServer(t)
	_, env := s.do(t, http.MethodPost, "/api/gallery/views", "good", nil)
	require.Equal(t, 200, env.Code)
	var view dto.ViewDTO
	require.NoError(t, json.Unmarshal(env.Data, &view))

	srv := httptest.NewServer(s.engine)
	t.Cleanup(srv.Close)
	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/gallery/views/" + view.ViewID + "/live"

	_, resp, err := websocket.DefaultDialer.Dial(base+"?token=stale", nil)
	require.Error(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}

	conn, resp, err := websocket.DefaultDialer.Dial(base+"?token=good", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var frame dto.LiveFrameDTO
	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, "view", frame.Type)
	assert.Len(t, frame.View.Items, 10)

	require.NoError(t, conn.WriteJSON(dto.LiveCommandDTO{Action: "sentinel"}))
	for frame.View == nil || len(frame.View.Items) < 12 {
		frame = dto.LiveFrameDTO{}
		require.NoError(t, conn.ReadJSON(&frame))
		require.Equal(t, "view", frame.Type, frame.Message)
	}
	assert.Len(t, frame.View.Items, 12)

	require.NoError(t, conn.WriteJSON(dto.LiveCommandDTO{Action: "rewind"}))
	for frame.Type != "error" {
		frame = dto.LiveFrameDTO{}
		require.NoError(t, conn.ReadJSON(&frame))
	}
	assert.Equal(t, service.BadRequest, frame.Code)
}
