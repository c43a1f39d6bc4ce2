package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/cashflow-service/internal/cache"
	"github.com/Dan9191/cashflow-service/internal/categorize"
	"github.com/Dan9191/cashflow-service/internal/config"
	"github.com/Dan9191/cashflow-service/internal/engine"
	"github.com/Dan9191/cashflow-service/internal/ledger"
	"github.com/Dan9191/cashflow-service/internal/lock"
	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Login for any user/password mismatch
var ErrInvalidCredentials = errors.New("invalid credentials")

// RateSource supplies the default monthly loan rate in percent
type RateSource interface {
	MonthlyRate(ctx context.Context) (decimal.Decimal, error)
}

// Service handles business logic
type Service struct {
	store      ledger.Store
	engine     *engine.Engine
	locker     lock.DayLocker
	cache      cache.Cache
	categories *categorize.Categorizer
	rates      RateSource
	strategy   string
	log        *logrus.Logger
	config     *config.Config
}

// Option customizes a Service
type Option func(*Service)

// WithClock replaces time.Now; tests pin "today" with it
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.engine = engine.New(s.store, s.engine.Policy(), now) }
}

// WithLocker replaces the process-local day locker
func WithLocker(l lock.DayLocker) Option {
	return func(s *Service) { s.locker = l }
}

// WithCache enables report caching
func WithCache(c cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithCategorizer replaces the built-in category rules
func WithCategorizer(c *categorize.Categorizer) Option {
	return func(s *Service) { s.categories = c }
}

// WithRateSource sets where default loan rates come from
func WithRateSource(r RateSource) Option {
	return func(s *Service) { s.rates = r }
}

// WithStatusStrategy sets the strategy used when a caller does not name one
func WithStatusStrategy(name string) Option {
	return func(s *Service) { s.strategy = name }
}

// PolicyFrom builds the engine policy from configuration overrides
func PolicyFrom(cfg *config.Config) engine.Policy {
	p := engine.DefaultPolicy()
	if cfg == nil {
		return p
	}
	if !cfg.PrescribedDaily.IsZero() {
		p.PrescribedDaily = cfg.PrescribedDaily
	}
	if !cfg.CriticalFallback.IsZero() {
		p.CriticalFallback = cfg.CriticalFallback
	}
	if !cfg.LowBalance.IsZero() {
		p.LowBalance = cfg.LowBalance
	}
	return p
}

// NewService initializes a new service over a writable ledger
func NewService(store ledger.Store, log *logrus.Logger, cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		store:      store,
		engine:     engine.New(store, PolicyFrom(cfg), nil),
		locker:     lock.NewMemory(),
		cache:      cache.Noop{},
		categories: categorize.New(nil, ""),
		strategy:   engine.StrategyMonthPerformance,
		log:        log,
		config:     cfg,
	}
	if cfg != nil && cfg.StatusStrategy != "" {
		s.strategy = cfg.StatusStrategy
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine exposes the underlying calculator
func (s *Service) Engine() *engine.Engine {
	return s.engine
}

// Today is the service's current calendar day
func (s *Service) Today() time.Time {
	return s.engine.Today()
}

// Login checks the admin password against its bcrypt hash and returns a JWT token
func (s *Service) Login(username, password string) (string, error) {
	if s.config == nil || s.config.AdminPasswordHash == "" || username != s.config.AdminUser {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.config.AdminPasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", username)
	return tokenString, nil
}

// Settings returns the user's planning parameters
func (s *Service) Settings(ctx context.Context) models.Result[models.UserSettings] {
	st, err := s.store.Settings(ctx)
	if err != nil {
		return fail[models.UserSettings](s, "settings", fmt.Errorf("%w: %v", models.ErrDataUnavailable, err))
	}
	return models.OK(st)
}

// SaveSettings validates and stores the user's planning parameters
func (s *Service) SaveSettings(ctx context.Context, st models.UserSettings) models.Result[models.UserSettings] {
	writer, ok := s.store.(ledger.SettingsStore)
	if !ok {
		return fail[models.UserSettings](s, "save settings", models.ErrUnsupported)
	}
	if err := validateSettings(st); err != nil {
		return fail[models.UserSettings](s, "save settings", err)
	}
	if err := writer.SaveSettings(ctx, st); err != nil {
		return fail[models.UserSettings](s, "save settings", fmt.Errorf("%w: %v", models.ErrDataUnavailable, err))
	}
	s.cache.Invalidate(ctx)
	s.log.Infof("Settings saved: average income %s", st.AverageIncome)
	return models.OK(st)
}

func validateSettings(st models.UserSettings) error {
	if st.AverageIncome.IsNegative() || st.EmergencyReserve.IsNegative() || st.DailyAverageExpense.IsNegative() {
		return fmt.Errorf("%w: money fields must not be negative", models.ErrInvalidInput)
	}
	hundred := decimal.NewFromInt(100)
	if st.WarningThresholdPct.IsNegative() || st.WarningThresholdPct.GreaterThan(hundred) ||
		st.CriticalThresholdPct.IsNegative() || st.CriticalThresholdPct.GreaterThan(hundred) {
		return fmt.Errorf("%w: thresholds must be between 0 and 100", models.ErrInvalidInput)
	}
	if st.WarningThresholdPct.GreaterThan(st.CriticalThresholdPct) {
		return fmt.Errorf("%w: warning threshold above critical threshold", models.ErrInvalidInput)
	}
	return nil
}

// fail logs a failed operation and wraps it in a result envelope
func fail[T any](s *Service, op string, err error) models.Result[T] {
	if errors.Is(err, models.ErrInvalidInput) || errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrContention) {
		s.log.Warnf("%s: %v", op, err)
	} else {
		s.log.Errorf("%s: %v", op, err)
	}
	return models.Fail[T](err)
}
