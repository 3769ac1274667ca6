package config

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func envFrom(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	assert := assert.New(t)

	spec, err := Load(afero.NewMemMapFs(), "", noEnv)
	require.NoError(t, err)

	assert.Equal("us-east-1", spec.Region)
	assert.Equal("10.0.0.0/16", spec.VpcCidr)
	assert.Equal(3, spec.AzCount)
	assert.Equal("t3.micro", spec.InstanceType)
	assert.False(spec.BucketPublic)
	assert.Equal("webapp", spec.DbName)
	assert.Equal(1, spec.MinSize)
	assert.Equal(3, spec.MaxSize)
	assert.Equal(2, spec.DesiredCapacity)
}

func TestLoad_GeneratesBucketName(t *testing.T) {
	assert := assert.New(t)

	spec, err := Load(afero.NewMemMapFs(), "", noEnv)
	require.NoError(t, err)
	assert.True(strings.HasPrefix(spec.BucketName, "webfleet-site-"))
	assert.Greater(len(spec.BucketName), len("webfleet-site-"))

	other, err := Load(afero.NewMemMapFs(), "", noEnv)
	require.NoError(t, err)
	assert.NotEqual(spec.BucketName, other.BucketName)
}

func TestLoad_SpecFile(t *testing.T) {
	assert := assert.New(t)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "spec.yaml", []byte(`
region: eu-west-1
az_count: 2
bucket_name: my-site
bucket_public: true
min_size: 2
max_size: 6
`), 0644))

	spec, err := Load(fs, "spec.yaml", noEnv)
	require.NoError(t, err)

	assert.Equal("eu-west-1", spec.Region)
	assert.Equal(2, spec.AzCount)
	assert.Equal("my-site", spec.BucketName)
	assert.True(spec.BucketPublic)
	assert.Equal(2, spec.MinSize)
	assert.Equal(6, spec.MaxSize)
	// unset keys keep their defaults
	assert.Equal("t3.micro", spec.InstanceType)
	assert.Equal(2, spec.DesiredCapacity)
}

func TestLoad_MissingSpecFile(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "nope.yaml", noEnv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read spec file")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	assert := assert.New(t)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "spec.yaml", []byte("region: eu-west-1\ndesired_capacity: 4\n"), 0644))

	spec, err := Load(fs, "spec.yaml", envFrom(map[string]string{
		"WEBFLEET_REGION":           "ap-southeast-2",
		"WEBFLEET_DESIRED_CAPACITY": "5",
		"WEBFLEET_BUCKET_PUBLIC":    "true",
	}))
	require.NoError(t, err)

	assert.Equal("ap-southeast-2", spec.Region)
	assert.Equal(5, spec.DesiredCapacity)
	assert.True(spec.BucketPublic)
}

func TestLoad_InvalidEnvValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad int", map[string]string{"WEBFLEET_AZ_COUNT": "three"}},
		{"bad bool", map[string]string{"WEBFLEET_BUCKET_PUBLIC": "yep"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(afero.NewMemMapFs(), "", envFrom(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid value for")
		})
	}
}

// Capacity bounds are taken as given even when inconsistent, so the
// provisioning backend is the one to reject them.
func TestLoad_NoCapacityClamping(t *testing.T) {
	assert := assert.New(t)

	spec, err := Load(afero.NewMemMapFs(), "", envFrom(map[string]string{
		"WEBFLEET_MIN_SIZE":         "10",
		"WEBFLEET_MAX_SIZE":         "2",
		"WEBFLEET_DESIRED_CAPACITY": "7",
	}))
	require.NoError(t, err)

	assert.Equal(10, spec.MinSize)
	assert.Equal(2, spec.MaxSize)
	assert.Equal(7, spec.DesiredCapacity)
}

func TestStackValues(t *testing.T) {
	assert := assert.New(t)

	spec := Default()
	spec.BucketName = "my-site"
	plain, secret := spec.StackValues()

	assert.Equal("my-site", plain["webfleet:bucket_name"])
	assert.Equal("3", plain["webfleet:az_count"])
	assert.Equal("false", plain["webfleet:bucket_public"])

	assert.Equal("dbadmin", secret["webfleet:db_username"])
	assert.Equal("changeme1234", secret["webfleet:db_password"])

	// credentials never travel in the plain set
	for key := range plain {
		assert.NotContains(key, "password")
		assert.NotContains(key, "username")
	}
}
