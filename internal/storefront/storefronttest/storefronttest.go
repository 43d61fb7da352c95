// Package storefronttest runs a seeded storefront double on a loopback port.
package storefronttest

import (
	"net"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tokoadmin/internal/storefront"
)

// Password of every seeded account.
const Password = "password123"

// Secret signs the double's tokens.
const Secret = "storefront-test-secret"

// Event is a recorded publish.
type Event struct {
	Type    string
	Payload any
}

// Recorder is a rabbitmq.Publisher that keeps every event.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish records the event.
func (r *Recorder) Publish(eventType string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Type: eventType, Payload: payload})
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Instance is a running storefront double.
type Instance struct {
	URL        string // base URL including /api/v1
	Server     *storefront.Server
	DB         *gorm.DB
	Seed       *storefront.SeedData
	AdminToken string
	Events     *Recorder
}

// Start serves a freshly seeded double until the test ends.
func Start(t *testing.T) *Instance {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	rec := &Recorder{}
	srv, err := storefront.New(storefront.Options{
		DB:         db,
		Publisher:  rec,
		JWTSecret:  Secret,
		BcryptCost: bcrypt.MinCost,
		Quiet:      true,
		Log:        zerolog.Nop(),
	})
	require.NoError(t, err)

	seed, err := srv.Seed(Password)
	require.NoError(t, err)
	adminToken, err := srv.Auth().IssueToken(&seed.Admin)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.App().Listener(ln) }()

	t.Cleanup(func() {
		_ = srv.App().Shutdown()
		_ = sqlDB.Close()
	})

	return &Instance{
		URL:        "http://" + ln.Addr().String() + "/api/v1",
		Server:     srv,
		DB:         db,
		Seed:       seed,
		AdminToken: adminToken,
		Events:     rec,
	}
}
