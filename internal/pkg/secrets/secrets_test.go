package secrets

import (
	"EventGallery/internal/api/config"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher map[string]string

func (f fakeFetcher) Access(_ context.Context, name string) (string, error) {
	v, ok := f[name]
	if !ok {
		return "", errors.New("not found: " + name)
	}
	return v, nil
}

func TestResourceName(t *testing.T) {
	name, err := ResourceName("demo", "jwt-secret")
	require.NoError(t, err)
	assert.Equal(t, "projects/demo/secrets/jwt-secret/versions/latest", name)

	name, err = ResourceName("", "projects/p/secrets/s")
	require.NoError(t, err)
	assert.Equal(t, "projects/p/secrets/s/versions/latest", name)

	name, err = ResourceName("", "projects/p/secrets/s/versions/3")
	require.NoError(t, err)
	assert.Equal(t, "projects/p/secrets/s/versions/3", name)

	_, err = ResourceName("", "short")
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	cfg := &config.Config{
		Firebase: config.FirebaseConfig{ProjectID: "demo", APIKeySecretName: "web-api-key", APIKey: "from-file"},
		Auth:     config.AuthConfig{JWTSecretName: "jwt", JWTSecret: "from-file"},
	}
	require.True(t, Required(cfg))

	err := Apply(context.Background(), cfg, fakeFetcher{
		"projects/demo/secrets/jwt/versions/latest":         "s3cr3t",
		"projects/demo/secrets/web-api-key/versions/latest": "AIza-test",
	})
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", cfg.Auth.JWTSecret)
	assert.Equal(t, "AIza-test", cfg.Firebase.APIKey)
}

func TestApply_MissingSecret(t *testing.T) {
	cfg := &config.Config{
		Firebase: config.FirebaseConfig{ProjectID: "demo"},
		Auth:     config.AuthConfig{JWTSecretName: "jwt", JWTSecret: "keep"},
	}
	assert.Error(t, Apply(context.Background(), cfg, fakeFetcher{}))
	assert.Equal(t, "keep", cfg.Auth.JWTSecret)
	assert.False(t, Required(&config.Config{}))
}
