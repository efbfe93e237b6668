package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sc "github.com/dmitrijs2005/rdb/internal/server/config"
	"github.com/dmitrijs2005/rdb/internal/logging"
	"github.com/dmitrijs2005/rdb/internal/server/models"
)

type fakePutter struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, b)
	return &s3.PutObjectOutput{}, nil
}

type warnCounter struct {
	logging.Nop
	warns int
}

func (w *warnCounter) Warn(context.Context, string, ...any) { w.warns++ }

func TestArchiver_UploadsPublicSnapshot(t *testing.T) {
	putter := &fakePutter{}
	a := NewArchiver(putter, "releases", logging.Nop{})

	entry := &models.ModEntry{
		ID:     "alice/foo",
		Secret: "top-secret",
		Info:   models.ModInfo{Version: "1.2.3", Binaries: []string{"https://cdn.discordapp.com/attachments/1/2/a.zip"}},
	}
	a.AfterWrite(context.Background(), entry, models.OutcomeCreated)

	require.Len(t, putter.inputs, 1)
	in := putter.inputs[0]
	assert.Equal(t, "releases", aws.ToString(in.Bucket))
	assert.Equal(t, "mods/alice/foo/1.2.3.json", aws.ToString(in.Key))
	assert.Equal(t, "application/json", aws.ToString(in.ContentType))
	assert.NotContains(t, string(putter.bodies[0]), "top-secret")

	var pub models.PublicMod
	require.NoError(t, json.Unmarshal(putter.bodies[0], &pub))
	assert.Equal(t, "alice", pub.Owner)
	assert.Equal(t, "foo", pub.Name)
	assert.Equal(t, "1.2.3", pub.Version)
}

func TestArchiver_FailureIsOnlyLogged(t *testing.T) {
	log := &warnCounter{}
	a := NewArchiver(&fakePutter{err: errors.New("access denied")}, "releases", log)

	assert.NotPanics(t, func() {
		a.AfterWrite(context.Background(), &models.ModEntry{ID: "a/b", Info: models.ModInfo{Version: "1.0.0"}}, models.OutcomeUpdated)
	})
	assert.Equal(t, 1, log.warns)
}

func TestNewS3Client(t *testing.T) {
	c := &sc.Config{}
	c.LoadDefaults()
	c.S3RootUser = "user"
	c.S3RootPassword = "password"
	c.S3BaseEndpoint = "http://127.0.0.1:9000"

	client, err := NewS3Client(context.Background(), c)
	require.NoError(t, err)

	opts := client.Options()
	assert.Equal(t, "us-east-1", opts.Region)
	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)

	creds, err := opts.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "user", creds.AccessKeyID)
}
