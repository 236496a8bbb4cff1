// pkg/platform/detect.go
package platform

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Linux distribution families that have a native package manager
const (
	DistroDebian = "debian"
	DistroFedora = "fedora"
	DistroArch   = "arch"
	DistroSUSE   = "suse"
	DistroAlpine = "alpine"
)

// Platform represents the detected system platform
type Platform struct {
	OS     string // linux, darwin, windows
	Arch   string // amd64, arm64, 386, arm
	Distro string // Linux distribution family, empty when unknown
}

// Detect detects the current platform
func Detect() *Platform {
	p := &Platform{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}
	if p.OS == "linux" {
		data, _ := os.ReadFile("/etc/os-release")
		p.Distro = DetectDistro(string(data), fileExists)
	}
	return p
}

// DetectDistro classifies a Linux host from its os-release content, falling
// back to the legacy release files when os-release is missing
func DetectDistro(osRelease string, exists func(string) bool) string {
	ids := releaseIDs(osRelease)
	if len(ids) == 0 {
		switch {
		case exists("/etc/alpine-release"):
			return DistroAlpine
		case exists("/etc/fedora-release"), exists("/etc/redhat-release"):
			return DistroFedora
		case exists("/etc/arch-release"):
			return DistroArch
		case exists("/etc/SuSE-release"):
			return DistroSUSE
		case exists("/etc/debian_version"):
			return DistroDebian
		}
		return ""
	}

	// ID is checked before ID_LIKE
	for _, id := range ids {
		switch {
		case id == "alpine":
			return DistroAlpine
		case id == "fedora", id == "rhel", id == "centos":
			return DistroFedora
		case id == "arch", id == "manjaro", id == "endeavouros":
			return DistroArch
		case strings.HasPrefix(id, "opensuse"), id == "sles", id == "suse":
			return DistroSUSE
		case id == "debian", id == "ubuntu":
			return DistroDebian
		}
	}
	return ""
}

// releaseIDs returns the ID value followed by the ID_LIKE values of os-release
func releaseIDs(osRelease string) []string {
	var id string
	var like []string
	for _, line := range strings.Split(osRelease, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		value = strings.ToLower(strings.Trim(value, `"'`))
		switch key {
		case "ID":
			id = value
		case "ID_LIKE":
			like = strings.Fields(value)
		}
	}
	if id == "" {
		return like
	}
	return append([]string{id}, like...)
}

// String returns a string representation of the platform
func (p *Platform) String() string {
	if p.Distro != "" {
		return fmt.Sprintf("%s/%s (%s)", p.OS, p.Arch, p.Distro)
	}
	return fmt.Sprintf("%s/%s", p.OS, p.Arch)
}
