package handler

import (
	"EventGallery/internal/api/dto"
	"EventGallery/internal/api/middleware"
	"EventGallery/internal/model"
	"EventGallery/internal/pkg/response"
	"EventGallery/internal/service"
	"context"
	"errors"
	log "log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	livePollInterval = 500 * time.Millisecond
	livePingInterval = 30 * time.Second
	livePongWait     = 60 * time.Second
	liveWriteTimeout = 10 * time.Second
	liveReadLimit    = 4096

	liveActionSentinel = "sentinel"
	liveActionViewer   = "viewer"
)

var liveUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 8192,
	// 令牌随查询参数携带，不依赖 Cookie
	CheckOrigin: func(r *http.Request) bool { return true },
}

type LiveHandler struct {
	authSvc    service.AuthService
	gallerySvc service.GalleryService
}

func NewLiveHandler(authSvc service.AuthService, gallerySvc service.GalleryService) *LiveHandler {
	return &LiveHandler{authSvc: authSvc, gallerySvc: gallerySvc}
}

// Connect 浏览器 WebSocket 无法设置请求头，令牌可放在 token 查询参数
func (s *LiveHandler) Connect(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		token = c.Query("token")
	}
	session, err := s.authSvc.Authenticate(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	viewID := c.Param("view_id")
	view, err := s.gallerySvc.GetView(c.Request.Context(), *session, viewID)
	if err != nil {
		response.Error(c, err)
		return
	}

	conn, err := liveUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WarnContext(c.Request.Context(), "live view upgrade failed", "view", viewID, "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
	defer cancel()
	log.InfoContext(ctx, "live view connected", "view", viewID)

	commands := make(chan dto.LiveCommandDTO, 8)
	go readLiveCommands(ctx, cancel, conn, commands)

	s.pushLoop(ctx, conn, *session, viewID, view, commands)
	log.InfoContext(ctx, "live view disconnected", "view", viewID)
}

// pushLoop 定时拉取快照，只有变化时才下发；指令结果与一次性提示总是下发
func (s *LiveHandler) pushLoop(ctx context.Context, conn *websocket.Conn, session model.Session, viewID string, first *dto.ViewDTO, commands <-chan dto.LiveCommandDTO) {
	if writeLiveFrame(conn, dto.LiveFrameDTO{Type: "view", View: first}) != nil {
		return
	}
	last := fingerprintOf(first)

	poll := time.NewTicker(livePollInterval)
	defer poll.Stop()
	ping := time.NewTicker(livePingInterval)
	defer ping.Stop()

	for {
		var (
			view  *dto.ViewDTO
			err   error
			force bool
		)
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			if conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteTimeout)) != nil {
				return
			}
			continue
		case <-poll.C:
			view, err = s.gallerySvc.GetView(ctx, session, viewID)
		case cmd := <-commands:
			view, err = s.apply(ctx, session, viewID, cmd)
			force = true
		}

		if err != nil {
			code, message, _ := response.Resolve(err)
			if writeLiveFrame(conn, dto.LiveFrameDTO{Type: "error", Code: code, Message: message}) != nil {
				return
			}
			if errors.Is(err, service.ErrViewNotFound) || errors.Is(err, service.ErrViewForbidden) {
				return
			}
			continue
		}

		fp := fingerprintOf(view)
		// 快照已取走提示，不下发就会丢失
		if !force && fp == last && len(view.Notices) == 0 {
			continue
		}
		last = fp
		if writeLiveFrame(conn, dto.LiveFrameDTO{Type: "view", View: view}) != nil {
			return
		}
	}
}

func (s *LiveHandler) apply(ctx context.Context, session model.Session, viewID string, cmd dto.LiveCommandDTO) (*dto.ViewDTO, error) {
	var (
		res *dto.LoadResultDTO
		err error
	)
	switch cmd.Action {
	case liveActionSentinel:
		res, err = s.gallerySvc.SentinelVisible(ctx, session, viewID)
	case liveActionViewer:
		res, err = s.gallerySvc.ViewerAt(ctx, session, viewID, cmd.Index)
	default:
		return nil, service.ErrParamInvalid
	}
	if err != nil {
		return nil, err
	}
	return res.View, nil
}

// readLiveCommands 客户端断开或心跳超时时取消 ctx
func readLiveCommands(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, out chan<- dto.LiveCommandDTO) {
	defer cancel()
	conn.SetReadLimit(liveReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd dto.LiveCommandDTO
		if err = json.Unmarshal(data, &cmd); err != nil {
			log.InfoContext(ctx, "ignore malformed live command", "err", err)
			continue
		}
		select {
		case out <- cmd:
		case <-ctx.Done():
			return
		}
	}
}

func writeLiveFrame(conn *websocket.Conn, frame dto.LiveFrameDTO) error {
	_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	return conn.WriteJSON(frame)
}

type viewFingerprint struct {
	generation uint64
	items      int
	pending    int
	loading    bool
	exhausted  bool
	filter     string
}

func fingerprintOf(v *dto.ViewDTO) viewFingerprint {
	fp := viewFingerprint{
		generation: v.Generation,
		items:      len(v.Items),
		loading:    v.Loading,
		exhausted:  v.Exhausted,
		filter:     v.Filter,
	}
	for _, item := range v.Items {
		if item.DeletePending {
			fp.pending++
		}
	}
	return fp
}
