package bootstrap

import (
	"blogchat/internal/config"
	"blogchat/internal/ports"
	"blogchat/internal/providers/blogbot"
	"blogchat/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Controller *usecase.ChatController
	Ask        ports.AnswerClient
	Config     config.Config
}

// Build wires all backend dependencies for the current runtime.
func Build(eventSink ports.EventSink, clipboard ports.Clipboard) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	providerCfg := blogbot.Config{
		BaseURL:          cfg.Server.BaseURL,
		StreamPath:       cfg.Server.StreamPath,
		AskPath:          cfg.Server.AskPath,
		HealthPath:       cfg.Server.HealthPath,
		EventBuffer:      cfg.Session.EventBuffer,
		HandshakeTimeout: cfg.Session.DialTimeout,
	}

	controller := usecase.NewChatController(
		blogbot.NewDialer(providerCfg),
		clipboard,
		eventSink,
		usecase.Config{
			ResponseTimeout: cfg.Session.ResponseTimeout,
			ErrorFallback:   cfg.Session.ErrorFallback,
		},
	)

	return Services{
		Controller: controller,
		Ask:        blogbot.NewAskClient(providerCfg, cfg.Session.AskTimeout),
		Config:     cfg,
	}, nil
}
