package keys

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProvider_EnsureAndLoad(t *testing.T) {
	dir := t.TempDir()
	p := NewProvider(dir)

	require.NoError(t, p.Ensure())

	priv, err := p.Private()
	require.NoError(t, err)
	pub, err := p.Public()
	require.NoError(t, err)

	require.Equal(t, priv.PublicKey.N, pub.N, "public file must match private file")
}

func TestProvider_EnsureIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	p := NewProvider(dir)

	require.NoError(t, p.Ensure())
	first, err := os.ReadFile(filepath.Join(dir, privateFileName))
	require.NoError(t, err)

	require.NoError(t, p.Ensure())
	second, err := os.ReadFile(filepath.Join(dir, privateFileName))
	require.NoError(t, err)

	require.Equal(t, first, second, "existing pair must not be regenerated")
}

func TestProvider_MissingKey(t *testing.T) {
	p := NewProvider(t.TempDir())

	_, err := p.Private()
	require.ErrorIs(t, err, ErrKeyMissing)

	_, err = p.Public()
	require.ErrorIs(t, err, ErrKeyMissing)
}

func TestProvider_GarbagePEM(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, publicFileName), []byte("not pem"), 0o644))

	_, err := NewProvider(dir).Public()
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrKeyMissing)
}
