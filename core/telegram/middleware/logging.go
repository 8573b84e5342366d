package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/habitbot/core/logger"
	tghelpers "github.com/m3rciful/habitbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// recentUpdates keeps processed update IDs for a short while so a receipt is
// logged once even when the middleware wraps several branches.
type recentUpdates struct {
	mu   sync.Mutex
	seen map[int]time.Time
	ttl  time.Duration
}

var recent = &recentUpdates{seen: make(map[int]time.Time), ttl: 10 * time.Second}

func (r *recentUpdates) firstTime(updateID int, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ts := range r.seen {
		if now.Sub(ts) > r.ttl {
			delete(r.seen, id)
		}
	}
	if _, ok := r.seen[updateID]; ok {
		return false
	}
	r.seen[updateID] = now
	return true
}

// LoggerMiddleware assigns the request id, stores the logging context and
// writes one sampled debug receipt per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		chatID := tghelpers.ChatID(c)
		var userID int64
		if user := c.Sender(); user != nil {
			userID = user.ID
		}

		if _, ok := c.Get("rid").(string); !ok {
			c.Set("rid", logger.BuildRID(upd.ID, chatID, userID))
		}
		ctx := tghelpers.BuildContext(c)

		if logger.ShouldSampleDebug() && recent.firstTime(upd.ID, time.Now()) {
			attrs := []slog.Attr{slog.String("status", "ok")}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
			}
			if user := c.Sender(); user != nil && user.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
			}
			if upd.Message != nil {
				if t := c.Text(); t != "" {
					attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
				}
				if doc := upd.Message.Document; doc != nil {
					attrs = append(attrs, slog.String("document", logger.SanitizeLimit(doc.FileName, 128)))
				}
			}
			logger.Debug(ctx, "tg", "update.received", attrs...)
		}

		return next(c)
	}
}
