package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProviderRoundTrip(t *testing.T) {
	p, err := NewLocalProvider(t.TempDir(), "http://localhost:3000/")
	require.NoError(t, err)

	key := "docs/abc/contract.pdf"
	require.NoError(t, p.Write(context.Background(), key, []byte("contract body")))

	data, err := p.Read(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, []byte("contract body"), data)
}

func TestLocalProviderIssueUploadURL(t *testing.T) {
	p, err := NewLocalProvider(t.TempDir(), "http://localhost:3000/")
	require.NoError(t, err)

	ticket, err := p.IssueUploadURL(context.Background(), "docs/abc/contract.pdf")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/api/upload/v1/object/docs/abc/contract.pdf", ticket.UploadURL)
	assert.Equal(t, "docs/abc/contract.pdf", ticket.Key)
	assert.Equal(t, 3600, ticket.ExpiresIn)
}

func TestValidateKeyRejectsTraversal(t *testing.T) {
	p, err := NewLocalProvider(t.TempDir(), "http://localhost:3000")
	require.NoError(t, err)

	for _, key := range []string{"", "../etc/passwd", "docs/../../x", "/absolute/path"} {
		_, err := p.IssueUploadURL(context.Background(), key)
		assert.Error(t, err, "key %q", key)

		assert.Error(t, p.Write(context.Background(), key, []byte("x")), "key %q", key)

		_, err = p.Read(context.Background(), key)
		assert.Error(t, err, "key %q", key)
	}
}

func TestLocalProviderReadMissing(t *testing.T) {
	p, err := NewLocalProvider(t.TempDir(), "http://localhost:3000")
	require.NoError(t, err)

	_, err = p.Read(context.Background(), "docs/none/missing.pdf")
	assert.Error(t, err)
}
