package config

import (
	"testing"
)

func TestGetValidator(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	// Should return the same instance (singleton)
	if v1 != v2 {
		t.Error("GetValidator should return the same instance (singleton pattern)")
	}
}

func TestCustomTags(t *testing.T) {
	v := GetValidator()

	tests := []struct {
		name     string
		tag      string
		value    string
		expected bool
	}{
		{"semver simple", "semver", "1.0.0", true},
		{"semver prerelease", "semver", "1.0.0-alpha", true},
		{"semver build", "semver", "2.1.3-beta.2+build.123", true},
		{"semver short", "semver", "1.0", false},
		{"semver prefix", "semver", "v1.0.0", false},

		{"component id", "component_id", "wine-staging", true},
		{"component id digits", "component_id", "7zip", true},
		{"component id leading dash", "component_id", "-steam", false},
		{"component id upper", "component_id", "Steam", false},
		{"component id underscore", "component_id", "proton_up", false},
		{"component id empty", "component_id", "", false},

		{"app id", "app_id", "net.lutris.Lutris", true},
		{"app id dashes", "app_id", "com.heroicgameslauncher.hgl", true},
		{"app id underscore", "app_id", "org.freedesktop.Platform.GL.nvidia-535-113-01", true},
		{"app id two parts", "app_id", "lutris.Lutris", false},
		{"app id spaces", "app_id", "net.lutris. Lutris", false},
		{"app id empty", "app_id", "", true},

		{"package", "package_name", "steam-installer", true},
		{"package arch", "package_name", "libgamemode0:i386", true},
		{"package plus", "package_name", "libstdc++6", true},
		{"package upper", "package_name", "Steam", false},
		{"package empty", "package_name", "", true},

		{"env kind", "env_kind", "nvidia", true},
		{"env kind virtual", "env_kind", "kvm-qemu", true},
		{"env kind unknown token", "env_kind", "amiga", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Var(tt.value, tt.tag)
			got := err == nil

			if got != tt.expected {
				t.Errorf("%s validation for %q: got %v, expected %v (error: %v)", tt.tag, tt.value, got, tt.expected, err)
			}
		})
	}
}
