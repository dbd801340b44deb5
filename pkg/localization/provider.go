package localization

import (
	"errors"
	"sync"
	"sync/atomic"

	i18n "github.com/goliatone/go-i18n"
	"github.com/goliatone/go-widgets/pkg/interfaces/logger"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrTranslatorRequired indicates the provider cannot operate without a translator.
var ErrTranslatorRequired = errors.New("localization: translator is required")

const defaultCacheSize = 32

// Option customizes a Provider.
type Option func(*Provider)

// WithDefaultLocale sets the locale used when callers pass an empty one.
func WithDefaultLocale(locale string) Option {
	return func(p *Provider) {
		if locale != "" {
			p.defaultLocale = locale
		}
	}
}

// WithRTLLocales lists the locales whose text runs right to left. Region
// subtags are ignored when matching, so "ar" covers "ar-EG".
func WithRTLLocales(locales ...string) Option {
	return func(p *Provider) {
		p.rtl = make(map[string]struct{}, len(locales))
		for _, locale := range locales {
			p.rtl[baseLanguage(locale)] = struct{}{}
		}
	}
}

// WithCacheSize bounds how many locales keep bound functions around.
func WithCacheSize(size int) Option {
	return func(p *Provider) {
		if size > 0 {
			p.cacheSize = size
		}
	}
}

// WithLogger sets the provider logger.
func WithLogger(lgr logger.Logger) Option {
	return func(p *Provider) {
		if lgr != nil {
			p.logger = lgr
		}
	}
}

// Provider hands out translation functions bound to a locale. Bound values
// are cached per locale and rebuilt after the translation data changes.
type Provider struct {
	mu            sync.RWMutex
	translator    i18n.Translator
	defaultLocale string
	rtl           map[string]struct{}
	cacheSize     int
	cache         *lru.Cache[string, *Functions]
	logger        logger.Logger

	version atomic.Uint64

	subMu       sync.Mutex
	subscribers map[uint64]func()
	nextSubID   uint64
}

// NewProvider builds a provider over translator.
func NewProvider(translator i18n.Translator, opts ...Option) (*Provider, error) {
	if translator == nil {
		return nil, ErrTranslatorRequired
	}
	p := &Provider{
		translator:    translator,
		defaultLocale: "en",
		cacheSize:     defaultCacheSize,
		logger:        &logger.Nop{},
		subscribers:   make(map[uint64]func()),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	cache, err := lru.New[string, *Functions](p.cacheSize)
	if err != nil {
		return nil, err
	}
	p.cache = cache
	return p, nil
}

// DefaultLocale reports the locale used for empty locale requests.
func (p *Provider) DefaultLocale() string {
	return p.defaultLocale
}

// Functions returns the translation functions bound to locale.
func (p *Provider) Functions(locale string) *Functions {
	if locale == "" {
		locale = p.defaultLocale
	}
	if fns, ok := p.cache.Get(locale); ok && fns.version == p.version.Load() {
		return fns
	}

	p.mu.RLock()
	translator := p.translator
	p.mu.RUnlock()

	_, rtl := p.rtl[baseLanguage(locale)]
	fns := &Functions{
		locale:     locale,
		translator: translator,
		rtl:        rtl,
		version:    p.version.Load(),
	}
	p.cache.Add(locale, fns)
	return fns
}

// SetTranslator swaps the translation data and notifies subscribers.
func (p *Provider) SetTranslator(translator i18n.Translator) error {
	if translator == nil {
		return ErrTranslatorRequired
	}
	p.mu.Lock()
	p.translator = translator
	p.mu.Unlock()
	p.Notify()
	return nil
}

// Subscribe registers fn to run after every change notification. The
// returned function removes the subscription.
func (p *Provider) Subscribe(fn func()) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	p.subMu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn
	p.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.subMu.Lock()
			delete(p.subscribers, id)
			p.subMu.Unlock()
		})
	}
}

// Notify invalidates bound functions and calls every subscriber.
func (p *Provider) Notify() {
	version := p.version.Add(1)
	p.cache.Purge()

	p.subMu.Lock()
	subscribers := make([]func(), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subscribers = append(subscribers, fn)
	}
	p.subMu.Unlock()

	p.logger.Debug("localization data changed",
		logger.Field{Key: "version", Value: version},
		logger.Field{Key: "subscribers", Value: len(subscribers)},
	)
	for _, fn := range subscribers {
		fn()
	}
}
