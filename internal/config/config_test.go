package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYAML = `
telegram:
  token: yaml-token
  admin_id: 77
logging:
  level: debug
storage:
  driver: sqlite
database:
  path: /tmp/habits.db
bot:
  currency: USD
reminder:
  hour: 0
  minute: 30
workout:
  rotation: random
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadYAMLWithEnvOverlay(t *testing.T) {
	t.Setenv("BOT_TOKEN", "env-token")
	t.Setenv("REMINDER_MINUTE", "45")

	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "env-token" {
		t.Fatalf("env must override yaml, token = %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.AdminID != 77 || cfg.Logging.Level != "debug" {
		t.Fatalf("yaml values lost: %+v", cfg.Config)
	}
	if !cfg.UsesDatabase() || cfg.Database.Driver != StorageSQLite || cfg.Database.Path != "/tmp/habits.db" {
		t.Fatalf("storage = %+v database = %+v", cfg.Storage, cfg.Database)
	}
	if *cfg.Reminder.Hour != 0 || cfg.Reminder.Minute != 45 {
		t.Fatalf("explicit midnight must survive defaults: %d:%d", *cfg.Reminder.Hour, cfg.Reminder.Minute)
	}
	if cfg.Bot.Currency != "USD" || cfg.Workout.Rotation != "random" {
		t.Fatalf("bot = %+v workout = %+v", cfg.Bot, cfg.Workout)
	}
	if cfg.CoreConfig().Telegram.RunMode != "longpoll" {
		t.Fatalf("run mode = %q", cfg.CoreConfig().Telegram.RunMode)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "t")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Driver != StorageFile || cfg.UsesDatabase() {
		t.Fatalf("driver = %q", cfg.Storage.Driver)
	}
	if cfg.Storage.LedgerDoc != "data.json" || cfg.Storage.CatalogDoc != "trainings.yaml" || cfg.Storage.SubscribersDoc != "subscribers.json" {
		t.Fatalf("docs = %+v", cfg.Storage)
	}
	if cfg.Location().String() != "Europe/Kiev" || cfg.Bot.Currency != "грн" {
		t.Fatalf("bot = %+v loc = %s", cfg.Bot, cfg.Location())
	}
	if *cfg.Reminder.Hour != 8 || !cfg.ReminderEnabled() {
		t.Fatalf("reminder = %+v", cfg.Reminder)
	}
	if cfg.Workout.Rotation != "fixed" {
		t.Fatalf("rotation = %q", cfg.Workout.Rotation)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"missing token": "storage:\n  driver: file\n",
		"bad driver":    "telegram:\n  token: x\nstorage:\n  driver: mongo\n",
		"bad hour":      "telegram:\n  token: x\nreminder:\n  hour: 24\n",
		"bad zone":      "telegram:\n  token: x\nbot:\n  timezone: Mars/Olympus\n",
		"bad rotation":  "telegram:\n  token: x\nworkout:\n  rotation: weekly\n",
		"postgres host": "telegram:\n  token: x\nstorage:\n  driver: postgres\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("BOT_TOKEN", "")
			os.Unsetenv("BOT_TOKEN")
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "telegram: [unclosed"))
	if err == nil || !strings.Contains(err.Error(), "YAML") {
		t.Fatalf("err = %v", err)
	}
}
