package flavor

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/nightfall/internal/cache"
	"github.com/ppiankov/nightfall/internal/claim"
	"github.com/ppiankov/nightfall/internal/llm"
	"github.com/ppiankov/nightfall/internal/logging"
	"github.com/ppiankov/nightfall/internal/model"
	"github.com/ppiankov/nightfall/internal/worker"
)

// Keys whose wording carries game information are never rewritten
var literalPrefixes = []string{claim.TemplatePrefix, "reveal."}

// Options configure a Narrator
type Options struct {
	Cache    cache.Cache
	TTL      time.Duration
	Provider llm.Provider // nil disables embellishment
	Limiter  *worker.Limiter
	Logger   *logging.Logger
	Seed     int64
}

// Narrator turns template keys into display lines. It is safe for
// concurrent use by several games.
type Narrator struct {
	lib        *Library
	cache      cache.Cache
	ttl        time.Duration
	provider   llm.Provider
	limiter    *worker.Limiter
	log        *logging.Logger
	classifier *claim.Classifier

	mu  sync.Mutex
	rng *rand.Rand
}

// NewNarrator creates a narrator over lib
func NewNarrator(lib *Library, opts Options) *Narrator {
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewMemoryCache(time.Hour, 10*time.Minute)
	}
	if opts.Limiter == nil {
		opts.Limiter = worker.NewLimiter(0, 1)
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	return &Narrator{
		lib:        lib,
		cache:      opts.Cache,
		ttl:        opts.TTL,
		provider:   opts.Provider,
		limiter:    opts.Limiter,
		log:        opts.Logger,
		classifier: claim.NewClassifier(),
		rng:        rand.New(rand.NewSource(opts.Seed)),
	}
}

// Line returns speaker's line for key. Missing keys fall back to the
// library default; embellishment failures fall back to the template text.
func (n *Narrator) Line(ctx context.Context, speaker *model.Player, key string, vars Vars) string {
	name := ""
	if speaker != nil {
		name = speaker.Name
	}

	lines, err := n.lib.Lookup(name, key)
	if err != nil {
		if errors.Is(err, ErrUnknownKey) {
			n.log.Debug("flavor key missing", "key", key, "speaker", name)
		}
		return n.lib.Default
	}

	n.mu.Lock()
	line := lines[n.rng.Intn(len(lines))]
	n.mu.Unlock()

	text := Render(line, vars)
	if n.provider == nil || literal(key) {
		return text
	}
	return n.embellish(ctx, name, key, text, vars)
}

func (n *Narrator) embellish(ctx context.Context, speaker, key, text string, vars Vars) string {
	cacheKey := cache.CacheKey(speaker, key, text)
	if cached, ok := n.cache.Get(cacheKey); ok {
		return string(cached)
	}

	if err := n.limiter.Wait(ctx, n.provider.Name()); err != nil {
		return text
	}

	var names []string
	for _, v := range vars {
		names = append(names, v)
	}
	resp, err := n.provider.Embellish(ctx, llm.EmbellishRequest{Speaker: speaker, Line: text, Names: names})
	if err != nil {
		n.log.Warn("embellish failed", "key", key, "error", err)
		return text
	}

	// A rewrite must not turn plain talk into a role claim
	if _, claims := n.classifier.Classify(resp.Line); claims {
		n.log.Warn("embellish discarded: reads as a claim", "key", key, "line", resp.Line)
		return text
	}

	_ = n.cache.Set(cacheKey, []byte(resp.Line), n.ttl)
	return resp.Line
}

func literal(key string) bool {
	for _, p := range literalPrefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}
