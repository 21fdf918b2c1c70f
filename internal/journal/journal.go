// Package journal persists the terminal outcome of each relayed stream in
// Redis. Request ids are stable across client retries, so a retry (or an
// operator) can look up how the previous attempt ended after the SSE
// connection is long gone. Journaling is optional; a nil *Journal is a
// no-op.
package journal

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound reports that no outcome is journaled for a request id.
var ErrNotFound = errors.New("journal: not found")

const keyPrefix = "agentgw:journal:"

// Outcome is the journaled terminal state of one stream.
type Outcome struct {
	ReqID      string    `json:"reqId"`
	AgentType  string    `json:"agentType"`
	Status     string    `json:"status"`
	ErrorMsg   string    `json:"errorMsg,omitempty"`
	Records    int       `json:"records"`
	DurationMS int64     `json:"durationMs"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Journal stores outcomes with a TTL.
type Journal struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// New connects to Redis at addr and returns a Journal. addr may be a
// plain host:port or a redis:// / rediss:// URL with an optional db path.
func New(addr string, ttl time.Duration) (*Journal, error) {
	opts, err := parseRedisURL(addr)
	if err != nil {
		return nil, err
	}
	c := redis.NewUniversalClient(opts)
	if err := c.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("journal: ping: %w", err)
	}
	return &Journal{client: c, ttl: ttl}, nil
}

// Record writes the outcome for a request id, replacing any previous
// attempt's entry.
func (j *Journal) Record(ctx context.Context, o Outcome) error {
	if j == nil {
		return nil
	}
	b, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return j.client.Set(ctx, keyPrefix+o.ReqID, b, j.ttl).Err()
}

// Lookup returns the journaled outcome for a request id.
func (j *Journal) Lookup(ctx context.Context, reqID string) (*Outcome, error) {
	if j == nil {
		return nil, ErrNotFound
	}
	b, err := j.client.Get(ctx, keyPrefix+reqID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var o Outcome
	if err := json.Unmarshal(b, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Close releases the Redis connection.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.client.Close()
}

// parseRedisURL converts addr into UniversalOptions. An addr without a
// scheme is treated as a plain host:port string.
func parseRedisURL(addr string) (*redis.UniversalOptions, error) {
	if !strings.Contains(addr, "://") {
		return &redis.UniversalOptions{Addrs: []string{addr}}, nil
	}
	u, err := url.Parse(addr)
	if err != nil {
		return nil, err
	}
	opts := &redis.UniversalOptions{Addrs: strings.Split(u.Host, ",")}
	if u.User != nil {
		opts.Username = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			opts.Password = pw
		}
	}
	switch u.Scheme {
	case "redis", "rediss":
		if p := strings.TrimPrefix(u.Path, "/"); p != "" {
			db, err := strconv.Atoi(p)
			if err != nil {
				return nil, fmt.Errorf("journal: invalid db in %q: %v", addr, err)
			}
			opts.DB = db
		}
		if u.Scheme == "rediss" {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
	default:
		return nil, fmt.Errorf("journal: unsupported scheme %q", u.Scheme)
	}
	return opts, nil
}
