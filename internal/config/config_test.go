package config

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := NewAppConfig()

	require.Equal(t, ":8080", c.APIAddr())
	require.Equal(t, "missionboard.sqlite", c.DB())
	require.Equal(t, time.Hour*24*7, c.JWTTTL())
	require.Equal(t, 10*1024*1024, c.BodyLimit())
	require.True(t, c.Metrics())
}

func TestLoad(t *testing.T) {
	f, err := os.CreateTemp("", "missionboard_*.yml")
	require.NoError(t, err)
	defer os.Remove(f.Name())

	fmt.Fprint(f, "---\napi_addr: \":9090\"\njwt:\n    secret: abc\n    ttl: 1h\n")
	f.Close()

	c := NewAppConfig()
	require.False(t, c.Load("/nonexistent/missionboard.yml"))
	require.True(t, c.Load(f.Name()))

	require.Equal(t, ":9090", c.APIAddr())
	require.Equal(t, "abc", c.JWTSecret())
	require.Equal(t, time.Hour, c.JWTTTL())
	require.Equal(t, "missionboard.sqlite", c.DB())
}

func TestEnv(t *testing.T) {
	t.Setenv("MISSIONBOARD_JWT_SECRET", "from-env")
	t.Setenv("MISSIONBOARD_DB", "mysql:user:pw@/board")

	c := NewAppConfig()
	c.LoadEnv()

	require.Equal(t, "from-env", c.JWTSecret())
	require.Equal(t, "mysql:user:pw@/board", c.DB())
}
