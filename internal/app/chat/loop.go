package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"steelbot/internal/app/events"
	"steelbot/internal/irc"
	"steelbot/internal/usecase/aliases"
	"steelbot/internal/usecase/auth"
	"steelbot/internal/usecase/commands"
	"steelbot/internal/usecase/credentials"
	"steelbot/internal/usecase/scripts"
	"steelbot/internal/usecase/settings"
)

type settingUpdate struct {
	key   string
	value string
}

// Run connects, joins the channel, and services the event loop until a
// fatal error or a graceful leave. A nil return means the supervisor may
// reconnect immediately.
func (s *Session) Run(ctx context.Context) error {
	token, err := s.deps.Credentials.Token(ctx, credentials.RoleBot)
	if err != nil {
		return err
	}

	conn, err := irc.Dial(ctx, serverAddr)
	if err != nil {
		return err
	}
	defer conn.Close()

	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sender := irc.NewSender(s.channel)
	s.sender = sender
	go sender.Run(sctx, conn)

	lines, readErrs := conn.ReadLines(sctx)

	s.sender.SendImmediate("PASS oauth:" + token)
	s.sender.SendImmediate("NICK " + s.deps.Bot.Login)
	s.sender.CapReq("twitch.tv/tags")
	s.sender.CapReq("twitch.tv/commands")
	s.sender.SendImmediate("JOIN " + s.channel)

	aliasCh, unsubAliases := s.deps.Aliases.Subscribe()
	defer unsubAliases()
	cmdCh, unsubCommands := s.deps.Commands.Subscribe()
	defer unsubCommands()

	settingCh := make(chan settingUpdate, 16)
	unsubscribe := s.followSettings(sctx, settingCh,
		settings.KeyBadWordsEnabled,
		settings.KeyURLWhitelistEnabled,
		settings.KeyWhitelistedHosts,
		settings.KeyModeratorCooldown,
		settings.KeyChatLogEnabled,
		settings.KeyAPIURL,
		settings.KeyCurrencyEnabled,
		settings.KeyCurrencyName,
	)
	defer unsubscribe()

	busCh, unsubBus := s.deps.Bus.Subscribe(events.TopicRawCommand)
	defer unsubBus()

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()
	membersTicker := time.NewTicker(membersRefresh)
	defer membersTicker.Stop()
	idleTicker := time.NewTicker(idleInterval)
	defer idleTicker.Stop()

	log.Printf("chat: connected to %s as %s", s.channel, s.deps.Bot.Login)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				return fmt.Errorf("chat: transport closed")
			}
			msg, err := irc.ParseMessage(line)
			if err != nil {
				log.Printf("chat: bad line: %v", err)
				continue
			}
			if err := s.handle(sctx, msg); err != nil {
				return err
			}

		case err := <-readErrs:
			return fmt.Errorf("chat: read: %w", err)

		case <-pingTicker.C:
			s.sender.Ping("steelbot")
			s.pongFuse.Arm(pongTimeout)

		case <-s.pongFuse.C():
			return ErrLiveness

		case <-membersTicker.C:
			s.sender.Mods()
			s.sender.Vips()

		case <-idleTicker.C:
			s.deps.Idle.Tick()

		case payload := <-busCh:
			if dto, ok := payload.(events.RawCommandDTO); ok {
				s.processCommand(sctx, "", "", dto.Text, true)
			}

		case snap := <-aliasCh:
			s.aliasSnap = snap

		case snap := <-cmdCh:
			s.cmdSnap = snap

		case update := <-settingCh:
			s.applySetting(update)

		case <-s.depChanged():
			if !s.leaveFuse.Armed() {
				log.Printf("chat: dependencies changed, leaving %s shortly", s.channel)
				s.leaveFuse.Arm(leaveGrace)
			}

		case ev, ok := <-s.scriptEvents():
			s.onScriptEvent(ev, ok)

		case err := <-s.sender.Done():
			return fmt.Errorf("chat: sender ended: %w", err)

		case <-s.leaveFuse.C():
			farewell := s.deps.Settings.String(settings.KeyLeaveMessage, defaultLeaveMessage)
			if err := conn.WriteLine("PRIVMSG " + s.channel + " :" + farewell); err != nil {
				log.Printf("chat: farewell: %v", err)
			}
			return nil
		}
	}
}

func (s *Session) depChanged() <-chan struct{} {
	return s.deps.DepChanged
}

func (s *Session) scriptEvents() <-chan scripts.Event {
	return s.deps.ScriptEvents
}

func (s *Session) onScriptEvent(ev scripts.Event, ok bool) {
	if !ok {
		// the watcher has stopped; a nil channel blocks instead of
		// spinning on the closed one
		s.deps.ScriptEvents = nil
		return
	}
	if ev.Remove {
		s.deps.Scripts.Unload(ev.Path)
	} else if err := s.deps.Scripts.Reload(ev.Path); err != nil {
		log.Printf("chat: %v", err)
	}
}

// followSettings forwards each key's change stream into one channel the
// loop selects on.
func (s *Session) followSettings(ctx context.Context, out chan<- settingUpdate, keys ...string) func() {
	var cancels []func()
	for _, key := range keys {
		ch, cancel := s.deps.Settings.Stream(key)
		cancels = append(cancels, cancel)
		go func(key string, ch <-chan string) {
			for {
				select {
				case <-ctx.Done():
					return
				case v, ok := <-ch:
					if !ok {
						return
					}
					select {
					case out <- settingUpdate{key: key, value: v}:
					case <-ctx.Done():
						return
					}
				}
			}
		}(key, ch)
	}
	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}

func (s *Session) applySetting(update settingUpdate) {
	switch update.key {
	case settings.KeyBadWordsEnabled:
		s.modCfg.badWordsEnabled = parseBool(update.value)
	case settings.KeyURLWhitelistEnabled:
		s.modCfg.urlWhitelistEnabled = parseBool(update.value)
	case settings.KeyWhitelistedHosts:
		s.modCfg.whitelistedHosts = settings.ParseStringSet(update.value)
	case settings.KeyModeratorCooldown:
		if seconds, err := time.ParseDuration(update.value + "s"); err == nil {
			s.cooldown = seconds
		}
	case settings.KeyChatLogEnabled:
		if s.deps.ChatLog != nil {
			s.deps.ChatLog.SetEnabled(parseBool(update.value))
		}
	case settings.KeyAPIURL:
		s.apiURL = update.value
	case settings.KeyCurrencyEnabled:
		if s.deps.Currency != nil {
			s.deps.Currency.SetEnabled(parseBool(update.value))
		}
	case settings.KeyCurrencyName:
		if s.deps.Currency != nil {
			s.deps.Currency.SetName(update.value)
		}
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// handle dispatches one parsed protocol message. A non-nil error ends the
// session.
func (s *Session) handle(ctx context.Context, m irc.Message) error {
	switch m.Command {
	case "PING":
		s.sender.Pong(m.Trailing())

	case "PONG":
		s.pongFuse.Clear()

	case "CAP":
		s.handleCapAck(m)

	case "PRIVMSG":
		s.processMessage(ctx, m)

	case "NOTICE":
		return s.handleNotice(ctx, m)

	case "CLEARMSG":
		tags := irc.TagsFrom(m.RawTags)
		if s.deps.ChatLog != nil && tags.TargetMsgID != nil {
			id := *tags.TargetMsgID
			go s.deps.ChatLog.DeleteByID(ctx, id)
		}

	case "CLEARCHAT":
		if s.deps.ChatLog == nil {
			break
		}
		if user := m.Trailing(); user != "" {
			go s.deps.ChatLog.DeleteByUser(ctx, s.channel, user)
		} else {
			go s.deps.ChatLog.DeleteAll(ctx, s.channel)
		}
	}
	return nil
}

func (s *Session) handleCapAck(m irc.Message) {
	if len(m.Params) < 2 || m.Params[1] != "ACK" {
		return
	}

	if strings.Contains(m.Trailing(), "twitch.tv/commands") {
		s.sender.Mods()
		s.sender.Vips()
	}

	if !s.greeted {
		s.greeted = true
		if greeting := s.deps.Settings.String(settings.KeyJoinMessage, ""); greeting != "" {
			s.sender.Privmsg(greeting)
		}
	}
}

func (s *Session) handleNotice(ctx context.Context, m irc.Message) error {
	text := m.Trailing()

	if text == authFailureNotice {
		if err := s.deps.Credentials.ForceRefresh(ctx, credentials.RoleBot); err != nil {
			log.Printf("chat: force refresh: %v", err)
		}
		return ErrAuthentication
	}

	tags := irc.TagsFrom(m.RawTags)
	if tags.MsgID == nil {
		return nil
	}

	switch *tags.MsgID {
	case noticeNoMods:
		s.members.ClearMods()
	case noticeRoomMods:
		s.members.SetMods(parseRoomMembers(text))
	case noticeNoVips:
		s.members.ClearVips()
	case noticeVipsSuccess:
		s.members.SetVips(parseRoomMembers(text))
	}
	return nil
}

// processMessage runs the PRIVMSG pipeline: hooks, idle, chat log, alias
// expansion, table commands, action commands, moderation.
func (s *Session) processMessage(ctx context.Context, m irc.Message) {
	login := strings.ToLower(m.Nick())
	text := m.Trailing()
	if login == "" || text == "" {
		return
	}

	tags := irc.TagsFrom(m.RawTags)
	display := tags.DisplayNameOr(login)

	go s.deps.Hooks.Run(login, text)
	// the streamer talking does not make the stream less idle
	if s.deps.Idle != nil && login != strings.ToLower(s.deps.Streamer.Login) {
		s.deps.Idle.Seen()
	}
	if s.deps.ChatLog != nil && tags.ID != nil && s.deps.ChatLog.Enabled() {
		id := *tags.ID
		observed := text
		go s.deps.ChatLog.Observe(ctx, id, s.channel, login, observed)
	}

	expanded, _, err := s.aliasSnap.ExpandAll(text)
	if err != nil {
		var cycle *aliases.CycleError
		if errors.As(err, &cycle) {
			s.respondTo(display, fmt.Sprintf("Recursion found in alias expansion: %s :(", strings.Join(cycle.Path, " -> ")))
		}
		return
	}
	text = expanded

	if out, ok := s.cmdSnap.Resolve(ctx, text, login, s.channel); ok {
		s.sender.Privmsg(out)
	}

	if strings.HasPrefix(text, "!") {
		s.processCommand(ctx, login, display, text, false)
	}

	s.moderateMessage(ctx, tags, login, text)
}

func (s *Session) moderateMessage(ctx context.Context, tags irc.Tags, login, text string) {
	callerRoles := roles(s.members, s.deps.Streamer.Login, login, false)
	if isModerator(callerRoles) {
		return
	}

	bypassURL := s.deps.Auth.TestAny(auth.ScopeBypassURLWhitelist, callerRoles)
	if !bypassURL && s.modCfg.urlWhitelistEnabled && s.deps.Subscribers != nil && tags.UserID != nil {
		if isSub, err := s.deps.Subscribers.IsSubscriber(ctx, s.deps.Streamer.ID, *tags.UserID); err == nil && isSub {
			callerRoles = roles(s.members, s.deps.Streamer.Login, login, true)
			bypassURL = s.deps.Auth.TestAny(auth.ScopeBypassURLWhitelist, callerRoles)
		}
	}

	v := moderate(s.modCfg, s.deps.Words.Tester(), text, login, s.channel, false, bypassURL)
	if v.response != "" {
		s.sender.Privmsg(v.response)
	}
	if v.deleteMessage && tags.ID != nil {
		id := *tags.ID
		s.sender.Delete(id)
		if s.deps.ChatLog != nil {
			go s.deps.ChatLog.DeleteByID(ctx, id)
		}
	}
}

// processCommand resolves and runs a !command. Injected commands come from
// the bus and bypass authorization.
func (s *Session) processCommand(ctx context.Context, login, display, text string, injected bool) {
	name, rest := aliases.SplitFirst(text)
	if !strings.HasPrefix(name, "!") {
		return
	}
	name = strings.ToLower(name)

	var handler commands.Handler
	if s.deps.Currency != nil && s.deps.CurrencyHandler != nil {
		if reserved, ok := s.deps.Currency.CommandName(); ok && name == reserved {
			handler = s.deps.CurrencyHandler
		}
	}
	if handler == nil {
		if h, ok := s.deps.Registry.Resolve(name); ok {
			handler = h
		}
	}
	if handler == nil && s.deps.Scripts != nil {
		if h, ok := s.deps.Scripts.Handler(strings.TrimPrefix(name, "!")); ok {
			handler = h
		}
	}
	if handler == nil {
		return
	}

	rs := roles(s.members, s.deps.Streamer.Login, login, false)

	if scope := handler.Scope(); scope != "" && !injected {
		if !s.deps.Auth.TestAny(scope, rs) {
			if isModerator(rs) {
				s.respondTo(display, "You are not allowed to run that command")
			} else {
				s.respondTo(display, "Do you think this is a democracy? LUL")
			}
			return
		}
	}

	if !injected && s.cooldown > 0 && isModerator(rs) {
		if since := time.Since(s.lastModCommand); since < s.cooldown {
			s.respondTo(display, "A moderator action is already in progress, please wait")
			return
		}
		s.lastModCommand = time.Now()
	}

	cmd := commands.NewContext(s.sender, s.deps.Auth, s.channel, login, display, rs, injected, rest)
	cmd.APIURL = s.apiURL

	go func() {
		if err := handler.Handle(ctx, cmd); err != nil {
			var userErr commands.UserError
			if errors.As(err, &userErr) {
				cmd.Respond("%s", string(userErr))
				return
			}
			log.Printf("chat: command %s: %v", name, err)
			cmd.Respond("Sorry, something went wrong :(")
		}
	}()
}

func (s *Session) respondTo(display, text string) {
	if display == "" {
		s.sender.Privmsg(text)
		return
	}
	s.sender.Privmsg(display + " -> " + text)
}
