// Package bot runs the daily posting loop: it works out how many
// counter values are owed, and for each one publishes a quote tweet
// chained to the previous day's post, advancing the persisted counter
// by exactly one per confirmed publish.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/simjow/shomar/internal/config"
	"github.com/simjow/shomar/internal/farsi"
	"github.com/simjow/shomar/internal/history"
	"github.com/simjow/shomar/internal/notify"
	"github.com/simjow/shomar/internal/schedule"
	"github.com/simjow/shomar/internal/state"
	"github.com/simjow/shomar/internal/twitter"
)

// PlatformClient is the slice of the twitter client the bot uses.
type PlatformClient interface {
	Me(ctx context.Context) (twitter.User, error)
	UserTweets(ctx context.Context, userID string, max int) ([]twitter.Tweet, error)
	CreateQuoteTweet(ctx context.Context, text, quotedID string) (string, error)
}

// StateStore persists the counter and the rate-limit cooldown marker.
type StateStore interface {
	ReadState() state.State
	WriteState(state.State) error
	ReadCooldown() (time.Time, bool)
	WriteCooldown(time.Time) error
	ClearCooldown() error
	CooldownExists() bool
}

// Ledger records publishes for auditing. May be absent.
type Ledger interface {
	Record(history.Entry) error
}

var (
	// ErrInvalidStoredCounter means the state file exists but holds a
	// value the schedule can never produce. Requires a human.
	ErrInvalidStoredCounter = errors.New("stored counter is invalid")

	// ErrPersistAfterPublish is the one failure the bot must never
	// retry: the tweet went out, the counter write did not. Retrying
	// would double-post; the operator reconciles by hand.
	ErrPersistAfterPublish = errors.New("tweet posted but counter not persisted")
)

// Result summarizes a run so the caller can report state changes to a
// wrapping CI job.
type Result struct {
	Posted       int
	StateChanged bool
}

type Bot struct {
	cfg      config.BotConfig
	start    time.Time
	client   PlatformClient
	store    StateStore
	notifier notify.Notifier
	ledger   Ledger

	// Now and CI are overridable in tests.
	Now func() time.Time
	CI  bool
}

// New builds a Bot. ledger may be nil when history is disabled.
func New(cfg config.BotConfig, client PlatformClient, store StateStore, notifier notify.Notifier, ledger Ledger) (*Bot, error) {
	start, err := cfg.Start()
	if err != nil {
		return nil, err
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Bot{
		cfg:      cfg,
		start:    start,
		client:   client,
		store:    store,
		notifier: notifier,
		ledger:   ledger,
		Now:      time.Now,
		CI:       schedule.IsCI(),
	}, nil
}

// Run executes one posting run. A nil error with Posted == 0 covers
// both "nothing owed today" and recoverable stops (rate limit,
// platform error, missing anchor); those are retried by the next
// scheduled run. Errors are fatal conditions needing a human.
func (b *Bot) Run(ctx context.Context) (Result, error) {
	var res Result

	st := b.store.ReadState()
	if st.Counter < b.cfg.MinCounter {
		return res, fmt.Errorf("%w: %d", ErrInvalidStoredCounter, st.Counter)
	}

	expected := schedule.ExpectedCounter(b.Now(), b.start, b.cfg.MinCounter, b.cfg.MaxCounter)
	log.Printf("[bot] stored counter: %d, expected counter: %d", st.Counter, expected)

	if expected == 0 {
		log.Printf("[bot] schedule not active today, nothing to do")
		return res, nil
	}
	if st.Counter >= expected {
		log.Printf("[bot] stored counter is up to date, no post needed")
		return res, nil
	}

	lag := expected - st.Counter
	log.Printf("[bot] stored counter is behind by %d day(s)", lag)

	cur := st
	for i := 0; i < lag; i++ {
		next := cur.Counter + 1
		log.Printf("[bot] processing counter value %d", next)

		proceed, err := b.waitCooldown(ctx, &res)
		if err != nil {
			return res, err
		}
		if !proceed {
			return res, nil
		}

		newState, ok, err := b.postOne(ctx, cur, next, &res)
		if err != nil {
			return res, err
		}
		if !ok {
			// First failed iteration stops the run: skipping ahead
			// would leave a gap in the chain.
			return res, nil
		}
		cur = newState
	}

	return res, nil
}

// waitCooldown enforces the rate-limit window. In CI it stops the run
// so the scheduler retries later; otherwise it sleeps the window out,
// honoring cancellation. Returns false when the run should stop.
func (b *Bot) waitCooldown(ctx context.Context, res *Result) (bool, error) {
	for {
		at, ok := b.store.ReadCooldown()
		if !ok {
			return true, nil
		}

		remaining := b.cfg.Cooldown() - b.Now().Sub(at)
		if remaining <= 0 {
			if err := b.store.ClearCooldown(); err != nil {
				log.Printf("[bot] clear cooldown marker: %v", err)
			} else {
				res.StateChanged = true
			}
			log.Printf("[bot] cooldown window elapsed, proceeding")
			return true, nil
		}

		if b.CI {
			log.Printf("[bot] cooldown active for another %s, exiting so the scheduler can retry", remaining.Round(time.Second))
			if b.store.CooldownExists() {
				res.StateChanged = true
			}
			return false, nil
		}

		log.Printf("[bot] cooldown active, waiting %s", remaining.Round(time.Second))
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(remaining):
		}
	}
}

// postOne publishes the quote tweet for next and persists the new
// state. ok is false on recoverable failures; err is reserved for
// fatal conditions.
func (b *Bot) postOne(ctx context.Context, cur state.State, next int, res *Result) (newState state.State, ok bool, err error) {
	user, err := b.client.Me(ctx)
	if err != nil {
		log.Printf("[bot] authenticate: %v", err)
		return cur, false, nil
	}

	tweets, err := b.client.UserTweets(ctx, user.ID, b.cfg.PageSize)
	if err != nil {
		if errors.Is(err, twitter.ErrRateLimited) {
			b.recordRateLimit(res)
		} else {
			log.Printf("[bot] fetch recent posts: %v", err)
		}
		return cur, false, nil
	}

	text := b.renderText(next)

	// A quote post already carrying today's text means another run got
	// here first (e.g. two schedules racing). Adopt it instead of
	// posting a duplicate.
	for _, tw := range tweets {
		if tw.IsQuote() && tw.Text == text {
			log.Printf("[bot] counter %d already posted: %s, adopting", next, twitter.TweetURL(user.Username, tw.ID))
			adopted := state.State{Counter: next, LastPostID: tw.ID}
			if werr := b.store.WriteState(adopted); werr != nil {
				return cur, false, b.persistFailure(next, tw.ID, text, werr)
			}
			res.StateChanged = true
			return adopted, true, nil
		}
	}

	anchorID := b.locateAnchor(cur, tweets)
	if anchorID == "" {
		log.Printf("[bot] no anchor post found for counter %d, stopping", next)
		return cur, false, nil
	}

	log.Printf("[bot] posting quote tweet for counter %d: %s", next, text)
	publishedID, err := b.client.CreateQuoteTweet(ctx, text, anchorID)
	if err != nil {
		if errors.Is(err, twitter.ErrRateLimited) {
			b.recordRateLimit(res)
		} else {
			log.Printf("[bot] publish: %v", err)
		}
		return cur, false, nil
	}
	log.Printf("[bot] quote tweet posted: %s", twitter.TweetURL(user.Username, publishedID))

	newState = state.State{Counter: next, LastPostID: publishedID}
	if werr := b.store.WriteState(newState); werr != nil {
		return cur, false, b.persistFailure(next, publishedID, text, werr)
	}

	b.record(history.Entry{
		Counter:  next,
		TweetID:  publishedID,
		Text:     text,
		Status:   history.StatusPosted,
		PostedAt: b.Now(),
	})
	res.Posted++
	res.StateChanged = true
	return newState, true, nil
}

// locateAnchor picks the post today's quote must chain to: the
// persisted last post ID when available, otherwise the most recent
// quote post whose text matches the previous counter's rendering. On
// the first day any quote post qualifies, since there is no previous
// rendering to match yet.
func (b *Bot) locateAnchor(cur state.State, tweets []twitter.Tweet) string {
	if cur.LastPostID != "" {
		return cur.LastPostID
	}
	prevText := b.renderText(cur.Counter)
	for _, tw := range tweets {
		if !tw.IsQuote() {
			continue
		}
		if cur.Counter == b.cfg.MinCounter || tw.Text == prevText {
			return tw.ID
		}
	}
	return ""
}

// renderText returns the tweet text for a counter value: the terminal
// phrase on the final day, otherwise the Persian numeral plus suffix.
func (b *Bot) renderText(counter int) string {
	if counter == b.cfg.MaxCounter {
		return b.cfg.TerminalText
	}
	return farsi.Convert(counter) + b.cfg.TextSuffix
}

func (b *Bot) recordRateLimit(res *Result) {
	log.Printf("[bot] rate limit hit, recording cooldown marker")
	if err := b.store.WriteCooldown(b.Now()); err != nil {
		log.Printf("[bot] write cooldown marker: %v", err)
		return
	}
	res.StateChanged = true
}

func (b *Bot) persistFailure(counter int, tweetID, text string, cause error) error {
	log.Printf("[bot] tweet %s posted but counter %d not persisted: %v", tweetID, counter, cause)
	b.record(history.Entry{
		Counter:  counter,
		TweetID:  tweetID,
		Text:     text,
		Status:   history.StatusPostedUnpersisted,
		PostedAt: b.Now(),
	})
	msg := fmt.Sprintf(
		"shomar: counter %d went out as tweet %s but could not be persisted (%v); update counter.txt by hand before the next run",
		counter, tweetID, cause,
	)
	if nerr := b.notifier.Alert(msg); nerr != nil {
		log.Printf("[bot] operator alert failed: %v", nerr)
	}
	return fmt.Errorf("%w: counter %d, tweet %s: %v", ErrPersistAfterPublish, counter, tweetID, cause)
}

func (b *Bot) record(e history.Entry) {
	if b.ledger == nil {
		return
	}
	if err := b.ledger.Record(e); err != nil {
		log.Printf("[bot] record history: %v", err)
	}
}
