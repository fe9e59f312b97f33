package controller

import (
	"faaqs_backend/internal/service"
	"faaqs_backend/internal/util"
	"faaqs_backend/pkg/logger"
	"faaqs_backend/pkg/security"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type SessionController struct {
	Sessions *service.QuizSessionService
	upgrader websocket.Upgrader
}

// NewSessionController 浏览器不对 WebSocket 握手做 CORS 检查，这里按同一份白名单校验 Origin
func NewSessionController(sessions *service.QuizSessionService, allowedOrigins []string) *SessionController {
	return &SessionController{
		Sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     security.CheckOrigin(allowedOrigins),
		},
	}
}

type AnswerRequest struct {
	QuestionID  string `json:"questionId" binding:"required"`
	OptionIndex *int   `json:"optionIndex" binding:"required"`
}

// StartSession godoc
// @Summary 开始作答
// @Description 每次调用都会新建会话，倒计时从测验时限开始
// @Tags 作答
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Success 201 {object} util.Response{data=service.SessionView}
// @Failure 404 {object} util.Response "测验不存在"
// @Router /quizzes/{id}/sessions [post]
func (c *SessionController) StartSession(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	view, err := c.Sessions.Start(ctx.Request.Context(), session.UserID(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, view)
}

// GetSession godoc
// @Summary 会话快照
// @Tags 作答
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 403 {object} util.Response "不是自己的会话"
// @Failure 404 {object} util.Response "会话不存在"
// @Router /sessions/{id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	view, err := c.Sessions.View(session.UserID(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// SelectAnswer godoc
// @Summary 选择答案
// @Description 覆盖该题之前的选择
// @Tags 作答
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "会话ID"
// @Param body body AnswerRequest true "题目与选项序号"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 400 {object} util.Response "题目或选项无效"
// @Failure 409 {object} util.Response "会话已结束"
// @Router /sessions/{id}/answers [put]
func (c *SessionController) SelectAnswer(ctx *gin.Context) {
	var req AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	session := util.GetSessionFromContext(ctx)
	view, err := c.Sessions.SelectAnswer(session.UserID(), ctx.Param("id"), req.QuestionID, *req.OptionIndex)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Next godoc
// @Summary 下一题
// @Tags 作答
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Router /sessions/{id}/next [post]
func (c *SessionController) Next(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	view, err := c.Sessions.Next(session.UserID(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Previous godoc
// @Summary 上一题
// @Tags 作答
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Router /sessions/{id}/previous [post]
func (c *SessionController) Previous(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	view, err := c.Sessions.Previous(session.UserID(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Submit godoc
// @Summary 提交作答
// @Description 与倒计时到期互斥，只会保存一次
// @Tags 作答
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 503 {object} util.Response "保存失败"
// @Router /sessions/{id}/submit [post]
func (c *SessionController) Submit(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	view, err := c.Sessions.Submit(ctx.Request.Context(), session.UserID(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// Abandon godoc
// @Summary 放弃作答
// @Tags 作答
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "已提交或正在提交"
// @Router /sessions/{id} [delete]
func (c *SessionController) Abandon(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	if err := c.Sessions.Abandon(session.UserID(), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Stream godoc
// @Summary 倒计时推送
// @Description WebSocket，先推送一次快照，之后每秒推送 tick，提交后推送结果并关闭
// @Tags 作答
// @Security ApiKeyAuth
// @Param id path string true "会话ID"
// @Param token query string false "握手无法带请求头时使用"
// @Router /sessions/{id}/ws [get]
func (c *SessionController) Stream(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	userID := session.UserID()
	sessionID := ctx.Param("id")

	view, err := c.Sessions.View(userID, sessionID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	events, unsubscribe, err := c.Sessions.Subscribe(userID, sessionID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	defer unsubscribe()

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		logger.Log.Error("WebSocket upgrade failed", zap.Error(err), zap.String("sessionID", sessionID))
		return
	}
	defer conn.Close()

	// 只读取控制帧，连接断开时关闭 done
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(maxMessageSize)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error { conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(gin.H{"type": "snapshot", "session": view}); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-events:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
