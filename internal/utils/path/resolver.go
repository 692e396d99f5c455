package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	homeShortcutConstant              = "~"
	homeShortcutForwardPrefixConstant = "~/"
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// Resolver turns configured directory values into absolute filesystem paths.
// A leading "~" expands to the home directory; any other relative value is
// anchored at the base directory supplied by the caller.
type Resolver struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	homeLookupGuard       sync.Once
}

// NewResolver constructs a Resolver using the operating system home lookup.
func NewResolver() *Resolver {
	return NewResolverWithHomeProvider(os.UserHomeDir)
}

// NewResolverWithHomeProvider constructs a Resolver with a custom home provider.
func NewResolverWithHomeProvider(provider HomeDirectoryProvider) *Resolver {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &Resolver{homeDirectoryProvider: provider}
}

// ExpandHome resolves a leading home shortcut. Values without one are returned unchanged.
func (resolver *Resolver) ExpandHome(candidatePath string) string {
	if resolver == nil || !strings.HasPrefix(candidatePath, homeShortcutConstant) {
		return candidatePath
	}

	homeDirectory := resolver.lookupHomeDirectory()
	if len(homeDirectory) == 0 {
		return candidatePath
	}

	if candidatePath == homeShortcutConstant {
		return homeDirectory
	}

	for _, shortcutPrefix := range []string{homeShortcutForwardPrefixConstant, homeShortcutConstant + string(os.PathSeparator)} {
		if strings.HasPrefix(candidatePath, shortcutPrefix) {
			return filepath.Join(homeDirectory, strings.TrimPrefix(candidatePath, shortcutPrefix))
		}
	}

	return candidatePath
}

// Resolve expands the home shortcut and anchors relative paths at baseDirectory.
// Empty values stay empty so callers can detect unset settings.
func (resolver *Resolver) Resolve(baseDirectory string, candidatePath string) string {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		return ""
	}

	expandedPath := resolver.ExpandHome(trimmedPath)
	if filepath.IsAbs(expandedPath) || len(baseDirectory) == 0 {
		return filepath.Clean(expandedPath)
	}

	return filepath.Join(resolver.ExpandHome(baseDirectory), expandedPath)
}

func (resolver *Resolver) lookupHomeDirectory() string {
	resolver.homeLookupGuard.Do(func() {
		resolver.homeDirectory, resolver.homeDirectoryError = resolver.homeDirectoryProvider()
	})
	if resolver.homeDirectoryError != nil {
		return ""
	}
	return resolver.homeDirectory
}
