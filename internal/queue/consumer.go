package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log/slog"
    "os"
    "path/filepath"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer listens to the recipe.created queue and appends one line per
// event to <LogDir>/recipes.log.
type Consumer struct {
    URL    string
    LogDir string
    Log    *slog.Logger
}

// Run dials the broker and consumes until ctx is cancelled, reconnecting
// with exponential backoff.  Messages that cannot be handled are rejected
// without requeue so a bad payload cannot loop.
func (c *Consumer) Run(ctx context.Context) error {
    if c.Log == nil {
        c.Log = slog.Default()
    }
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            c.Log.Warn("recipe consumer: dial failed", "err", err, "retry_in", backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.Log.Warn("recipe consumer: consume loop ended; reconnecting", "err", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.Log.Warn("recipe consumer: set QoS failed", "err", err)
    }
    if _, err := ch.QueueDeclare(RecipeCreatedQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(RecipeCreatedQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.handle(d.Body); err != nil {
                c.Log.Error("recipe consumer: handle message failed", "err", err)
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func (c *Consumer) handle(body []byte) error {
    var ev RecipeCreatedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if err := os.MkdirAll(c.LogDir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", c.LogDir, err)
    }
    f, err := os.OpenFile(filepath.Join(c.LogDir, "recipes.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(formatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

func formatLine(ev RecipeCreatedEvent) string {
    return fmt.Sprintf("[%s] Recipe created | recipe_id=%d | user_id=%d | title=%q | time_minutes=%d | tags=%s | ingredients=%s\n",
        ev.CreatedAt, ev.RecipeID, ev.UserID, ev.Title, ev.TimeMinutes, joinIDs(ev.TagIDs), joinIDs(ev.IngredientIDs))
}

func joinIDs(ids []uint64) string {
    parts := make([]string, 0, len(ids))
    for _, id := range ids {
        parts = append(parts, fmt.Sprint(id))
    }
    return "[" + strings.Join(parts, ",") + "]"
}

// sleep waits for d or until ctx is done; it reports whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
