package domain

import "context"

type CredentialRepository interface {
	Get(ctx context.Context, platform Platform, role string) (*Credential, error)
	Save(ctx context.Context, cred *Credential) error
	List(ctx context.Context) ([]*Credential, error)
}

type AliasRepository interface {
	ListAliases(ctx context.Context, channel string) ([]*Alias, error)
	UpsertAlias(ctx context.Context, alias *Alias) error
	DeleteAlias(ctx context.Context, channel, name string) error
	RenameAlias(ctx context.Context, channel, from, to string) error
}

type CommandRepository interface {
	ListCommands(ctx context.Context, channel string) ([]*CommandSpec, error)
	UpsertCommand(ctx context.Context, spec *CommandSpec) error
	DeleteCommand(ctx context.Context, channel, name string) error
	IncrementCommandCount(ctx context.Context, channel, name string) error
}

type WordRepository interface {
	ListWords(ctx context.Context) ([]*Word, error)
	UpsertWord(ctx context.Context, word *Word) error
	DeleteWord(ctx context.Context, word string) error
}

type SettingRepository interface {
	ListSettings(ctx context.Context) (map[string]string, error)
	SaveSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

type BalanceRepository interface {
	BalanceOf(ctx context.Context, channel, user string) (int64, error)
	AddBalance(ctx context.Context, channel, user string, amount int64) error
	TransferBalance(ctx context.Context, channel, from, to string, amount int64) error
}

type ThemeRepository interface {
	ListThemes(ctx context.Context, channel string) ([]*Theme, error)
	UpsertTheme(ctx context.Context, theme *Theme) error
	DeleteTheme(ctx context.Context, channel, name string) error
}

type AfterStreamRepository interface {
	AddAfterStream(ctx context.Context, entry *AfterStream) error
	ListAfterStreams(ctx context.Context, channel string) ([]*AfterStream, error)
	DeleteAfterStream(ctx context.Context, id int64) error
}

type MessageLogRepository interface {
	InsertMessage(ctx context.Context, id, channel, user, text string) error
	DeleteMessageByID(ctx context.Context, id string) error
	DeleteMessagesByUser(ctx context.Context, channel, user string) error
	DeleteAllMessages(ctx context.Context, channel string) error
}
