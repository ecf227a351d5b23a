package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo(t *testing.T) {
	info := Info()

	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.NotZero(t, info.BuildTime)
}

func TestBuildInfoString(t *testing.T) {
	info := Info()
	rendered := info.String()

	assert.Contains(t, rendered, "janitor preprocessing service")
	assert.Contains(t, rendered, "Version: "+info.Version)
	assert.Contains(t, rendered, "Go Version: "+info.GoVersion)
}

func TestUserAgent(t *testing.T) {
	assert.Equal(t, "janitor/"+Version, UserAgent())
}

func TestIsRelease(t *testing.T) {
	assert.False(t, IsRelease())

	original := Version
	defer func() { Version = original }()

	Version = "1.2.0"
	assert.True(t, IsRelease())

	Version = "1.2.0-rc.1"
	assert.False(t, IsRelease())
}
