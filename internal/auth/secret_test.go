package auth

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSettings struct {
	values map[string]string
	err    error
}

func (m *mapSettings) Setting(_ context.Context, key string) (string, bool, error) {
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mapSettings) SetSetting(_ context.Context, key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func TestGenerateSecretFormat(t *testing.T) {
	s, err := GenerateSecret()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), s)

	other, err := GenerateSecret()
	require.NoError(t, err)
	assert.NotEqual(t, s, other)
}

func TestEnsureSecretGeneratesOnceAndReuses(t *testing.T) {
	ctx := context.Background()
	st := &mapSettings{values: map[string]string{}}

	first, created, err := EnsureSecret(ctx, st)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, first, st.values[SettingKey])

	second, created, err := EnsureSecret(ctx, st)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first, second)
}

func TestEnsureSecretStoreError(t *testing.T) {
	boom := errors.New("boom")
	_, _, err := EnsureSecret(context.Background(), &mapSettings{err: boom})
	require.ErrorIs(t, err, boom)
}

func TestPrincipalDoesNotLeakToken(t *testing.T) {
	p := NewPrincipal("0123456789abcdef0123456789abcdef")
	assert.Len(t, p.ID, 18)
	assert.NotContains(t, p.ID, "0123456789abcdef")

	ctx := WithPrincipal(context.Background(), p)
	assert.Same(t, p, PrincipalFromContext(ctx))
	assert.Nil(t, PrincipalFromContext(context.Background()))
}
