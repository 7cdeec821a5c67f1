package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal/internal/form"
	appErrors "github.com/noah-isme/campus-portal/pkg/errors"
	"github.com/noah-isme/campus-portal/pkg/middleware/requestid"
)

// Chat replies shown to the user.
const (
	ChatFallbackReply = "Sorry, I could not process that."
	ChatFailureReply  = "Sorry, something went wrong."
)

var errUnknownChatAction = appErrors.Clone(appErrors.ErrValidation, "unknown chat action")

// ChatRequest is the text submitted to the chatbot.
type ChatRequest struct {
	Text string `json:"text" validate:"notblank"`
}

// ChatReply is the bot message returned to the user.
type ChatReply struct {
	Action string `json:"action"`
	Reply  string `json:"reply"`
}

// ChatConfig points at the chatbot backend.
type ChatConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ChatService relays translate and summarize requests to the chatbot backend.
type ChatService struct {
	cfg       ChatConfig
	client    *http.Client
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewChatService constructs a ChatService. A nil client gets one with cfg.Timeout.
func NewChatService(cfg ChatConfig, client *http.Client, metrics *MetricsService, logger *zap.Logger) *ChatService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &ChatService{cfg: cfg, client: client, validator: form.NewValidator(), metrics: metrics, logger: logger}
}

// Relay sends the text to /ai/{action}/. When the backend fails, the returned reply
// carries ChatFailureReply alongside a gateway error.
func (s *ChatService) Relay(ctx context.Context, action string, req ChatRequest) (ChatReply, error) {
	if action != "translate" && action != "summarize" {
		return ChatReply{}, errUnknownChatAction
	}
	if err := form.Check(s.validator, req); err != nil {
		return ChatReply{}, err
	}

	reply := ChatReply{Action: action}
	text, err := s.call(ctx, action, req)
	if err != nil {
		s.metrics.RecordChatRelay(action, "error")
		s.logger.Warn("chat relay failed", zap.String("action", action), zap.Error(err))
		reply.Reply = ChatFailureReply
		return reply, appErrors.Wrap(err, appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, ChatFailureReply)
	}
	s.metrics.RecordChatRelay(action, "ok")
	reply.Reply = text
	return reply, nil
}

func (s *ChatService) call(ctx context.Context, action string, req ChatRequest) (string, error) {
	payload, err := json.Marshal(map[string]string{"text": req.Text})
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/ai/%s/", s.cfg.BaseURL, action)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	requestid.Propagate(ctx, httpReq)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("chatbot returned status %d", resp.StatusCode)
	}

	var body struct {
		Summary        string `json:"summary"`
		TranslatedText string `json:"translated_text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode chatbot response: %w", err)
	}
	switch {
	case body.Summary != "":
		return body.Summary, nil
	case body.TranslatedText != "":
		return body.TranslatedText, nil
	default:
		return ChatFallbackReply, nil
	}
}

// IsChatFailure reports whether err came from the backend rather than the input.
func IsChatFailure(err error) bool {
	return errors.Is(err, appErrors.ErrGateway)
}
