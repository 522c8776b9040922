package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"steelbot/internal/app/chat"
	"steelbot/internal/app/events"
	"steelbot/internal/domain"
	"steelbot/internal/infrastructure/config"
	"steelbot/internal/infrastructure/persistence/sqlite"
	twitchinfra "steelbot/internal/infrastructure/platform/twitch"
	"steelbot/internal/usecase/aliases"
	"steelbot/internal/usecase/auth"
	"steelbot/internal/usecase/chatlog"
	"steelbot/internal/usecase/commands"
	"steelbot/internal/usecase/credentials"
	"steelbot/internal/usecase/currency"
	"steelbot/internal/usecase/idle"
	"steelbot/internal/usecase/notifications"
	"steelbot/internal/usecase/scripts"
	"steelbot/internal/usecase/settings"
	"steelbot/internal/usecase/words"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := sqlite.NewStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	provider := credentials.NewProvider(store, credentials.Config{
		ClientID:     cfg.TwitchClientID,
		ClientSecret: cfg.TwitchClientSecret,
	})
	provider.Start(ctx, 30*time.Minute)

	// a refreshed token is a dependency change; the running session leaves
	// gracefully and the supervisor reconnects with the new token
	depChanged := make(chan struct{}, 1)
	provider.RegisterHook(func(ctx context.Context, cred *domain.Credential) {
		select {
		case depChanged <- struct{}{}:
		default:
		}
	})
	bus := events.NewBus()
	notifications.Start(ctx, bus)

	liveSettings, err := settings.Load(ctx, store)
	if err != nil {
		return err
	}
	grants := auth.New()

	channel := "#" + cfg.StreamerChannel
	aliasStore, err := aliases.Load(ctx, store, channel)
	if err != nil {
		return err
	}
	cmdStore, err := commands.LoadStore(ctx, store, channel)
	if err != nil {
		return err
	}
	wordStore, err := words.Load(ctx, store)
	if err != nil {
		return err
	}

	hooks := commands.NewHooks()
	registry := commands.NewRegistry()

	cur := currency.New(store,
		liveSettings.Bool(settings.KeyCurrencyEnabled, false),
		liveSettings.String(settings.KeyCurrencyName, ""))
	curHandler := &currency.Handler{Currency: cur}

	idleTracker := idle.New(liveSettings.Int(settings.KeyIdleThreshold, 5))
	sink := chatlog.NewSink(store, liveSettings.Bool(settings.KeyChatLogEnabled, false))

	scriptMgr := scripts.NewManager(cfg.ScriptsDir)
	if err := scriptMgr.LoadDir(); err != nil {
		log.Printf("bot: %v", err)
	}
	var scriptEvents <-chan scripts.Event
	if cfg.ScriptsDir != "" {
		scriptEvents, err = scripts.Watch(ctx, cfg.ScriptsDir)
		if err != nil {
			log.Printf("bot: %v", err)
		}
	}

	registry.Register("!ping", &commands.Ping{Notify: func() {
		bus.Publish(events.TopicPing, events.NewNotificationDTO("ping", "pong"))
	}})
	registry.Register("!command", &commands.CommandAdmin{Store: cmdStore})
	registry.Register("!alias", &commands.AliasAdmin{Store: aliasStore})
	registry.Register("!word", &commands.WordAdmin{Store: wordStore})
	registry.Register("!poll", &commands.Poll{Hooks: hooks})
	registry.Register("!theme", &commands.ThemeAdmin{Repo: store})
	registry.Register("!afterstream", &commands.AfterStream{Repo: store})

	// one Helix client across reconnects; NewDeps runs on the supervisor
	// goroutine only, so the lazy init needs no lock
	var client *twitchinfra.Client

	supervisor := &chat.Supervisor{
		DepChanged: depChanged,
		NewDeps: func(ctx context.Context) (chat.Deps, error) {
			token, err := provider.Token(ctx, credentials.RoleStreamer)
			if err != nil {
				return chat.Deps{}, err
			}
			if client == nil {
				client, err = twitchinfra.NewClient(cfg.TwitchClientID, token)
				if err != nil {
					return chat.Deps{}, err
				}
			} else {
				client.SetToken(token)
			}
			bot, err := client.UserByLogin(ctx, cfg.BotUsername)
			if err != nil {
				return chat.Deps{}, err
			}
			streamer, err := client.UserByLogin(ctx, cfg.StreamerChannel)
			if err != nil {
				return chat.Deps{}, err
			}

			return chat.Deps{
				Bus:             bus,
				Settings:        liveSettings,
				Auth:            grants,
				Aliases:         aliasStore,
				Commands:        cmdStore,
				Registry:        registry,
				Hooks:           hooks,
				Words:           wordStore,
				Currency:        cur,
				CurrencyHandler: curHandler,
				Scripts:         scriptMgr,
				ScriptEvents:    scriptEvents,
				ChatLog:         sink,
				Idle:            idleTracker,
				Credentials:     provider,
				Subscribers:     client,
				Bot:             bot,
				Streamer:        streamer,
				DepChanged:      depChanged,
			}, nil
		},
	}

	return supervisor.Run(ctx)
}
