// Package currency implements the stream currency: viewer balances and the
// reserved admin command named after the currency itself.
package currency

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"steelbot/internal/domain"
	"steelbot/internal/usecase/auth"
	"steelbot/internal/usecase/commands"
)

// Currency binds the configured currency name to viewer balances. The
// command name tracks the currency/name setting.
type Currency struct {
	repo domain.BalanceRepository

	mu      sync.RWMutex
	enabled bool
	name    string
}

func New(repo domain.BalanceRepository, enabled bool, name string) *Currency {
	return &Currency{repo: repo, enabled: enabled, name: strings.ToLower(strings.TrimSpace(name))}
}

// SetEnabled toggles the currency feature.
func (c *Currency) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}

// SetName renames the currency, moving the reserved command with it.
func (c *Currency) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = strings.ToLower(strings.TrimSpace(name))
}

// Name returns the configured currency name, or empty when unset.
func (c *Currency) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// CommandName returns the reserved command name (!<currency>) when the
// currency is enabled and named.
func (c *Currency) CommandName() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.enabled || c.name == "" {
		return "", false
	}
	return "!" + c.name, true
}

// BalanceOf returns user's balance in channel.
func (c *Currency) BalanceOf(ctx context.Context, channel, user string) (int64, error) {
	return c.repo.BalanceOf(ctx, channel, strings.ToLower(user))
}

// Add credits (or with a negative amount debits) user.
func (c *Currency) Add(ctx context.Context, channel, user string, amount int64) error {
	return c.repo.AddBalance(ctx, channel, strings.ToLower(user), amount)
}

// Transfer moves amount from one user to another, failing on insufficient
// balance.
func (c *Currency) Transfer(ctx context.Context, channel, from, to string, amount int64) error {
	return c.repo.TransferBalance(ctx, channel, strings.ToLower(from), strings.ToLower(to), amount)
}

// Handler is the reserved currency command. Balance display is open to
// everyone; give moves the caller's own funds; boost and windfall are
// admin-only.
type Handler struct {
	Currency *Currency
	Viewers  func() []string
}

func (h *Handler) Scope() auth.Scope { return "" }

func (h *Handler) Handle(ctx context.Context, cmd *commands.Context) error {
	name := h.Currency.Name()

	sub, ok := cmd.Next()
	if !ok {
		return h.show(ctx, cmd, name)
	}

	switch sub {
	case "show":
		return h.show(ctx, cmd, name)
	case "give":
		return h.give(ctx, cmd, name)
	case "boost":
		return h.boost(ctx, cmd, name)
	case "windfall":
		return h.windfall(ctx, cmd, name)
	default:
		return commands.Errorf("expected: show, give, boost, or windfall")
	}
}

func (h *Handler) show(ctx context.Context, cmd *commands.Context, name string) error {
	balance, err := h.Currency.BalanceOf(ctx, cmd.Channel, cmd.Login)
	if err != nil {
		return err
	}
	cmd.Respond("You have %d %s.", balance, name)
	return nil
}

func (h *Handler) give(ctx context.Context, cmd *commands.Context, name string) error {
	target, ok := cmd.Next()
	if !ok {
		return commands.Errorf("expected: give <user> <amount>")
	}
	amount, err := parseAmount(cmd)
	if err != nil {
		return err
	}

	target = strings.ToLower(strings.TrimPrefix(target, "@"))
	if target == strings.ToLower(cmd.Login) {
		return commands.Errorf("you cannot give %s to yourself", name)
	}

	if err := h.Currency.Transfer(ctx, cmd.Channel, cmd.Login, target, amount); err != nil {
		return commands.Errorf("could not give %d %s to %s", amount, name, target)
	}
	cmd.Respond("Gave %s %d %s!", target, amount, name)
	return nil
}

func (h *Handler) boost(ctx context.Context, cmd *commands.Context, name string) error {
	if !cmd.HasScope(auth.ScopeCurrencyAdmin) {
		return commands.Errorf("you are not allowed to boost %s", name)
	}

	target, ok := cmd.Next()
	if !ok {
		return commands.Errorf("expected: boost <user> <amount>")
	}
	amount, err := parseAmount(cmd)
	if err != nil {
		return err
	}

	target = strings.ToLower(strings.TrimPrefix(target, "@"))
	if err := h.Currency.Add(ctx, cmd.Channel, target, amount); err != nil {
		return err
	}
	cmd.Respond("Gave %s %d %s!", target, amount, name)
	return nil
}

func (h *Handler) windfall(ctx context.Context, cmd *commands.Context, name string) error {
	if !cmd.HasScope(auth.ScopeCurrencyAdmin) {
		return commands.Errorf("you are not allowed to windfall %s", name)
	}

	amount, err := parseAmount(cmd)
	if err != nil {
		return err
	}

	var viewers []string
	if h.Viewers != nil {
		viewers = h.Viewers()
	}
	if len(viewers) == 0 {
		return commands.Errorf("no viewers to reward")
	}

	for _, viewer := range viewers {
		if err := h.Currency.Add(ctx, cmd.Channel, viewer, amount); err != nil {
			return err
		}
	}
	cmd.Privmsg("/me gave %d %s to EVERYONE!", amount, name)
	return nil
}

func parseAmount(cmd *commands.Context) (int64, error) {
	raw, ok := cmd.Next()
	if !ok {
		return 0, commands.Errorf("expected an amount")
	}
	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || amount <= 0 {
		return 0, commands.Errorf("%s is not a valid amount", raw)
	}
	return amount, nil
}
