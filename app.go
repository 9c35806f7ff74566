package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"blogchat/internal/bootstrap"
	"blogchat/internal/config"
	"blogchat/internal/domain"
	"blogchat/internal/ports"
	"blogchat/internal/usecase"
)

const (
	eventStatus     = "blogchat:status"
	eventTranscript = "blogchat:transcript"
	eventTyping     = "blogchat:typing"
	eventError      = "blogchat:error"
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	controller *usecase.ChatController
	ask        ports.AnswerClient
	cfg        config.Config
	bootErr    error
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a, &wailsClipboard{})
	if err != nil {
		a.bootErr = err
		a.ChatError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.cfg = services.Config
	a.controller = services.Controller
	a.ask = services.Ask
	a.ConnectionStateChanged(domain.ConnStateIdle, domain.ConnReasonSessionReady)
}

// Connect opens the streaming connection to the chat backend.
func (a *App) Connect() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.controller.Connect(a.ctx); err != nil {
		return a.controller.Status(), err
	}
	return a.controller.Status(), nil
}

// Send submits one user query over the streaming connection.
func (a *App) Send(text string) (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	err := a.controller.Submit(text)
	if errors.Is(err, usecase.ErrEmptyQuery) {
		// Nothing sent, nothing appended; not worth an error banner.
		return a.controller.Status(), nil
	}
	return a.controller.Status(), err
}

// Disconnect tears down the streaming connection.
func (a *App) Disconnect() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.controller.Disconnect()
}

// Ask queries the non-streaming chat endpoint and waits for the full answer.
func (a *App) Ask(text string) (domain.Answer, error) {
	if err := a.requireReady(); err != nil {
		return domain.Answer{}, err
	}
	answer, err := a.ask.Ask(a.ctx, text)
	if err != nil {
		a.ChatError(domain.ErrorCodeAsk, err.Error())
		return domain.Answer{}, err
	}
	return answer, nil
}

// Health probes the backend health endpoint.
func (a *App) Health() (map[string]string, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	return a.ask.Health(a.ctx)
}

// GetStatus returns the current connection status.
func (a *App) GetStatus() domain.Status {
	if a.controller == nil {
		if a.bootErr != nil {
			return domain.Status{State: domain.ConnStateErrored, Message: a.bootErr.Error()}
		}
		return domain.Status{State: domain.ConnStateIdle}
	}
	return a.controller.Status()
}

// GetTranscript returns the current transcript snapshot.
func (a *App) GetTranscript() []domain.Turn {
	if a.controller == nil {
		return nil
	}
	return a.controller.Transcript()
}

// CopyTranscript writes the rendered transcript to the system clipboard.
func (a *App) CopyTranscript() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.controller.CopyTranscript(a.ctx)
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}
	if a.controller == nil {
		return map[string]string{}
	}

	return map[string]string{
		"backend":    a.cfg.Server.BaseURL,
		"streamPath": a.cfg.Server.StreamPath,
		"askPath":    a.cfg.Server.AskPath,
		"session":    a.controller.SessionID(),
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// ConnectionStateChanged emits connection lifecycle updates to the frontend.
func (a *App) ConnectionStateChanged(state domain.ConnState, reason domain.ConnReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventStatus, map[string]string{
		"state":   string(state),
		"reason":  string(reason),
		"message": connReasonMessage(reason),
	})
}

// TranscriptChanged emits the updated transcript snapshot.
func (a *App) TranscriptChanged(turns []domain.Turn, awaiting bool) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventTranscript, map[string]interface{}{
		"turns":    turns,
		"awaiting": awaiting,
	})
}

// TypingChanged emits the ephemeral typing indicator.
func (a *App) TypingChanged(active bool) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventTyping, map[string]bool{"active": active})
}

// ChatError emits backend errors to the UI.
func (a *App) ChatError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.LogWarningf(a.ctx, "chat error (%s): %s", code, detail)
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func connReasonMessage(reason domain.ConnReason) string {
	switch reason {
	case domain.ConnReasonSessionReady:
		return "Ready to connect"
	case domain.ConnReasonDialing:
		return "Connecting to BlogBot..."
	case domain.ConnReasonConnected:
		return "Connected"
	case domain.ConnReasonDialFailed:
		return "Could not reach the chat backend"
	case domain.ConnReasonClosedByUser:
		return "Disconnected"
	case domain.ConnReasonRemoteClosed:
		return "The chat backend closed the connection"
	case domain.ConnReasonStreamFailed:
		return "The connection failed"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeDial:
		return "Connection attempt failed"
	case domain.ErrorCodeStream:
		return "Streaming issue"
	case domain.ErrorCodeFrame:
		return "Received an unreadable message"
	case domain.ErrorCodeSubmit:
		return "Message not sent"
	case domain.ErrorCodeAsk:
		return "Question failed"
	case domain.ErrorCodeClipboard:
		return "Clipboard write failed"
	case domain.ErrorCodeTimeout:
		return "The assistant took too long to answer"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}

type wailsClipboard struct{}

func (c *wailsClipboard) SetText(ctx context.Context, text string) error {
	return runtime.ClipboardSetText(ctx, text)
}
