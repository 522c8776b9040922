package currency

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"steelbot/internal/usecase/auth"
	"steelbot/internal/usecase/commands"
)

type memBalances struct {
	balances map[string]int64
}

func newMemBalances() *memBalances {
	return &memBalances{balances: make(map[string]int64)}
}

func (m *memBalances) key(channel, user string) string { return channel + "/" + user }

func (m *memBalances) BalanceOf(ctx context.Context, channel, user string) (int64, error) {
	return m.balances[m.key(channel, user)], nil
}

func (m *memBalances) AddBalance(ctx context.Context, channel, user string, amount int64) error {
	m.balances[m.key(channel, user)] += amount
	return nil
}

func (m *memBalances) TransferBalance(ctx context.Context, channel, from, to string, amount int64) error {
	if m.balances[m.key(channel, from)] < amount {
		return fmt.Errorf("insufficient balance")
	}
	m.balances[m.key(channel, from)] -= amount
	m.balances[m.key(channel, to)] += amount
	return nil
}

type fakeSender struct {
	sent []string
}

func (f *fakeSender) Privmsg(text string)          { f.sent = append(f.sent, text) }
func (f *fakeSender) PrivmsgImmediate(text string) { f.sent = append(f.sent, text) }

func testContext(sender *fakeSender, roles []auth.Role, rest string) *commands.Context {
	return commands.NewContext(sender, auth.New(), "#setbac", "viewer", "Viewer", roles, false, rest)
}

func TestCommandNameFollowsSettings(t *testing.T) {
	c := New(newMemBalances(), true, "Thingies")

	name, ok := c.CommandName()
	if !ok || name != "!thingies" {
		t.Fatalf("name = %q, ok = %v", name, ok)
	}

	c.SetEnabled(false)
	if _, ok := c.CommandName(); ok {
		t.Error("disabled currency should not reserve a command")
	}

	c.SetEnabled(true)
	c.SetName("bits")
	if name, _ := c.CommandName(); name != "!bits" {
		t.Errorf("name = %q", name)
	}
}

func TestShowBalance(t *testing.T) {
	repo := newMemBalances()
	repo.balances["#setbac/viewer"] = 42
	h := &Handler{Currency: New(repo, true, "thingies")}
	sender := &fakeSender{}

	if err := h.Handle(context.Background(), testContext(sender, nil, "")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "Viewer -> You have 42 thingies." {
		t.Errorf("sent = %v", sender.sent)
	}
}

func TestGiveTransfers(t *testing.T) {
	repo := newMemBalances()
	repo.balances["#setbac/viewer"] = 100
	h := &Handler{Currency: New(repo, true, "thingies")}
	sender := &fakeSender{}

	err := h.Handle(context.Background(), testContext(sender, nil, "give @Friend 30"))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if repo.balances["#setbac/viewer"] != 70 || repo.balances["#setbac/friend"] != 30 {
		t.Errorf("balances = %v", repo.balances)
	}
}

func TestGiveInsufficientIsUserError(t *testing.T) {
	h := &Handler{Currency: New(newMemBalances(), true, "thingies")}

	err := h.Handle(context.Background(), testContext(&fakeSender{}, nil, "give friend 30"))
	var userErr commands.UserError
	if err == nil || !strings.Contains(err.Error(), "could not give") {
		t.Fatalf("err = %v", err)
	}
	if ok := asUserError(err, &userErr); !ok {
		t.Fatalf("err is %T", err)
	}
}

func asUserError(err error, target *commands.UserError) bool {
	u, ok := err.(commands.UserError)
	if ok {
		*target = u
	}
	return ok
}

func TestBoostRequiresAdminScope(t *testing.T) {
	repo := newMemBalances()
	h := &Handler{Currency: New(repo, true, "thingies")}

	err := h.Handle(context.Background(), testContext(&fakeSender{}, []auth.Role{auth.RoleEveryone}, "boost friend 10"))
	if err == nil || !strings.Contains(err.Error(), "not allowed") {
		t.Fatalf("err = %v", err)
	}
	if repo.balances["#setbac/friend"] != 0 {
		t.Error("boost executed without scope")
	}

	err = h.Handle(context.Background(), testContext(&fakeSender{}, []auth.Role{auth.RoleModerator}, "boost friend 10"))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if repo.balances["#setbac/friend"] != 10 {
		t.Errorf("balances = %v", repo.balances)
	}
}

func TestWindfallRewardsEveryone(t *testing.T) {
	repo := newMemBalances()
	h := &Handler{
		Currency: New(repo, true, "thingies"),
		Viewers:  func() []string { return []string{"alice", "bob"} },
	}
	sender := &fakeSender{}

	err := h.Handle(context.Background(), testContext(sender, []auth.Role{auth.RoleStreamer}, "windfall 5"))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if repo.balances["#setbac/alice"] != 5 || repo.balances["#setbac/bob"] != 5 {
		t.Errorf("balances = %v", repo.balances)
	}
}
