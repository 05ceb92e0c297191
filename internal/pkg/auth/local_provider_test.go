package auth

import (
	"EventGallery/internal/model"
	"EventGallery/internal/pkg/security"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHostRepo struct {
	mu     sync.Mutex
	hosts  map[string]*model.Host
	nextID uint64
}

func newFakeHostRepo() *fakeHostRepo {
	return &fakeHostRepo{hosts: make(map[string]*model.Host)}
}

func (r *fakeHostRepo) GetHostByEmail(_ context.Context, email string) (*model.Host, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hosts[email]
	if !ok {
		return nil, nil
	}
	cp := *h
	return &cp, nil
}

func (r *fakeHostRepo) GetHostById(_ context.Context, id uint64) (*model.Host, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.hosts {
		if h.ID == id {
			cp := *h
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeHostRepo) CreateHost(_ context.Context, host *model.Host) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	host.ID = r.nextID
	cp := *host
	r.hosts[host.Email] = &cp
	return nil
}

func (r *fakeHostRepo) Migrate(context.Context) error { return nil }

func newLocal(t *testing.T) (*LocalProvider, *fakeHostRepo) {
	t.Helper()
	security.Configure("local-provider-test", time.Hour)
	repo := newFakeHostRepo()
	p := NewLocalProvider(repo, NewMemoryBlacklist())
	require.NoError(t, p.EnsureHost(context.Background(), " Host@Example.com ", "hunter22"))
	return p, repo
}

func TestLocalProvider_LoginAuthenticateLogout(t *testing.T) {
	p, _ := newLocal(t)
	ctx := context.Background()

	tok, err := p.Login(ctx, "host@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "1", tok.Session.UserID)
	assert.Equal(t, model.SessionProviderLocal, tok.Session.Provider)

	session, err := p.Authenticate(ctx, tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "host@example.com", session.Email)
	assert.True(t, session.Active(time.Now()))

	require.NoError(t, p.Logout(ctx, tok.AccessToken))
	_, err = p.Authenticate(ctx, tok.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLocalProvider_BadCredentials(t *testing.T) {
	p, repo := newLocal(t)
	ctx := context.Background()

	_, err := p.Login(ctx, "host@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = p.Login(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	repo.hosts["host@example.com"].IsDisabled = true
	_, err = p.Login(ctx, "host@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrHostDisabled)
}

func TestLocalProvider_EnsureHostIdempotent(t *testing.T) {
	p, repo := newLocal(t)
	require.NoError(t, p.EnsureHost(context.Background(), "host@example.com", "other"))
	assert.Len(t, repo.hosts, 1)

	_, err := p.Login(context.Background(), "host@example.com", "hunter22")
	assert.NoError(t, err, "existing password must not be overwritten")
}

func TestLocalProvider_GarbageToken(t *testing.T) {
	p, _ := newLocal(t)
	_, err := p.Authenticate(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, p.Logout(context.Background(), "a.b.c"), ErrInvalidToken)
}

func TestMemoryBlacklist_Expiry(t *testing.T) {
	now := time.Unix(1000, 0)
	b := NewMemoryBlacklist()
	b.now = func() time.Time { return now }

	require.NoError(t, b.Add(context.Background(), "sig", time.Minute))
	ok, _ := b.Contains(context.Background(), "sig")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = b.Contains(context.Background(), "sig")
	assert.False(t, ok)
}
