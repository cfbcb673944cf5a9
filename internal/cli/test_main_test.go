package cli

import (
	"fmt"
	"os"
	"testing"

	"github.com/urfave/cli/v3"
)

func TestMain(m *testing.M) {
	// urfave/cli's default exit handling calls os.Exit, which would kill
	// the test binary before any results are reported.
	oldExiter := cli.OsExiter
	cli.OsExiter = func(int) {}

	tempHome, err := os.MkdirTemp("", "skillkit-home-")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp HOME: %v\n", err)
		os.Exit(1)
	}

	oldHome, hadHome := os.LookupEnv("HOME")
	if err := os.Setenv("HOME", tempHome); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set HOME: %v\n", err)
		_ = os.RemoveAll(tempHome)
		os.Exit(1)
	}

	// Config and cache paths honor XDG variables, so those must not
	// leak in from the host environment either.
	oldXDGConfig, hadXDGConfig := os.LookupEnv("XDG_CONFIG_HOME")
	oldXDGCache, hadXDGCache := os.LookupEnv("XDG_CACHE_HOME")
	_ = os.Unsetenv("XDG_CONFIG_HOME")
	_ = os.Unsetenv("XDG_CACHE_HOME")

	code := m.Run()

	if hadHome {
		_ = os.Setenv("HOME", oldHome)
	} else {
		_ = os.Unsetenv("HOME")
	}
	if hadXDGConfig {
		_ = os.Setenv("XDG_CONFIG_HOME", oldXDGConfig)
	}
	if hadXDGCache {
		_ = os.Setenv("XDG_CACHE_HOME", oldXDGCache)
	}
	_ = os.RemoveAll(tempHome)
	cli.OsExiter = oldExiter

	os.Exit(code)
}
