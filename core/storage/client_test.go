package storage_test

import (
	"testing"

	"grocer/core/storage"

	"github.com/stretchr/testify/assert"
)

func TestNewClient(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			Bucket:    "test-bucket",
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithScheme", func(t *testing.T) {
		for _, endpoint := range []string{"http://localhost:9000", "https://s3.amazonaws.com"} {
			client, err := storage.NewClient(storage.Config{Endpoint: endpoint, UseSSL: true})
			assert.NoError(t, err, endpoint)
			assert.NotNil(t, client, endpoint)
		}
	})
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "exports/milk.json", storage.ObjectName("exports", "milk.json"))
	assert.Equal(t, "exports/milk.json", storage.ObjectName("/exports/", "milk.json"))
	assert.Equal(t, "milk.json", storage.ObjectName("", "milk.json"))
}
