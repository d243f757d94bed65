package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"foodgram/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens when Redis cannot be reached.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed rejects the request with 503.
	FailClosed
)

var errNoRedis = errors.New("redis client is nil")

// fixedWindow increments the counter and starts the window on the first hit in
// one round trip, so a counter can never outlive its window without a TTL.
var fixedWindow = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {n, redis.call('PTTL', KEYS[1])}
`)

// RateRule is a fixed-window quota for one family of routes, e.g. login.
type RateRule struct {
	Name     string
	Limit    int
	Window   time.Duration
	Policy   FailPolicy
	Disabled bool
}

// RateDecision is the outcome of one counted request.
type RateDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Key returns the Redis counter key for subject under this rule.
func (r RateRule) Key(subject string) string {
	return "rl:" + r.Name + ":" + subject
}

// Take counts one request by subject against the rule.
func (r RateRule) Take(ctx context.Context, rdb *redis.Client, subject string) (RateDecision, error) {
	if r.Disabled {
		return RateDecision{Allowed: true, Remaining: r.Limit}, nil
	}
	if rdb == nil {
		return RateDecision{}, errNoRedis
	}

	res, err := fixedWindow.Run(ctx, rdb, []string{r.Key(subject)}, r.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return RateDecision{}, err
	}
	if len(res) != 2 {
		return RateDecision{}, errors.New("unexpected rate limit script reply")
	}

	count, ttl := res[0], time.Duration(res[1])*time.Millisecond
	d := RateDecision{Allowed: count <= int64(r.Limit)}
	if d.Allowed {
		d.Remaining = r.Limit - int(count)
	} else {
		d.RetryAfter = ttl
	}
	return d, nil
}

// rateSubject keys authenticated callers by user and everyone else by IP.
func rateSubject(c *fiber.Ctx) string {
	if uid, ok := c.Locals("userID").(uint); ok && uid != 0 {
		return "user:" + strconv.FormatUint(uint64(uid), 10)
	}
	return "ip:" + c.IP()
}

// RateLimit enforces rule on the route it is mounted on.
func RateLimit(rdb *redis.Client, rule RateRule) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := rule.Take(c.UserContext(), rdb, rateSubject(c))
		if err != nil {
			if rule.Policy == FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit store unavailable, failing closed",
					slog.String("rule", rule.Name),
					slog.String("error", err.Error()),
				)
				return models.RespondWithAppError(c, models.NewUnavailableError("rate limit unavailable"))
			}
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(rule.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			secs := int((d.RetryAfter + time.Second - 1) / time.Second)
			if secs < 1 {
				secs = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(secs))
			Logger.InfoContext(c.UserContext(), "rate limit exceeded", slog.String("rule", rule.Name))
			return models.RespondWithAppError(c, models.NewRateLimitedError("too many "+rule.Name+" attempts, try again later"))
		}
		return c.Next()
	}
}
