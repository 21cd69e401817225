package rabbitmq

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// Config holds broker connection settings. Attempts/Backoff bound the
// startup dial loop; after the budget is spent the error is fatal to the
// owning process.
type Config struct {
	URL      string
	Attempts int
	Backoff  time.Duration
}

func (c Config) withDefaults() Config {
	if c.Attempts <= 0 {
		c.Attempts = 10
	}
	if c.Backoff <= 0 {
		c.Backoff = 2 * time.Second
	}
	return c
}

// Connection wraps the single long-lived broker connection shared by every
// channel in the process. If the link drops, the next Channel call redials
// under the same bounded retry policy.
type Connection struct {
	cfg Config

	mu   sync.Mutex
	conn *amqp.Connection
}

// Dial establishes the connection, retrying up to cfg.Attempts times with a
// fixed cfg.Backoff between attempts before giving up.
func Dial(cfg Config) (*Connection, error) {
	cfg = cfg.withDefaults()
	conn, err := dialWithRetry(cfg)
	if err != nil {
		return nil, err
	}
	return &Connection{cfg: cfg, conn: conn}, nil
}

func dialWithRetry(cfg Config) (*amqp.Connection, error) {
	var lastErr error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		conn, err := amqp.Dial(cfg.URL)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		log.Warn().Int("attempt", attempt).Int("max", cfg.Attempts).Err(err).
			Msg("broker connect failed, backing off")
		if attempt < cfg.Attempts {
			time.Sleep(cfg.Backoff)
		}
	}
	return nil, errors.Wrapf(lastErr, "broker unreachable after %d attempts", cfg.Attempts)
}

// Channel opens a fresh channel, redialing the underlying connection first
// if it has been closed.
func (c *Connection) Channel() (Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || c.conn.IsClosed() {
		conn, err := dialWithRetry(c.cfg)
		if err != nil {
			return nil, err
		}
		c.conn = conn
	}
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "open channel")
	}
	return ch, nil
}

func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.conn.IsClosed() {
		return nil
	}
	return c.conn.Close()
}
