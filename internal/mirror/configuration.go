package mirror

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultRemoteName is used when a repository does not name a remote.
	DefaultRemoteName = "origin"
	// DefaultBranchName is used when a repository does not name a default branch.
	DefaultBranchName = "main"

	redactedPasswordConstant                     = "******"
	repositoryURIRequiredTemplateConstant        = "%w: repository %d: uri must be provided"
	repositoryDirectoryRequiredTemplateConstant  = "%w: repository %d (%s): dir must be provided"
	duplicateRepositoryDirectoryTemplateConstant = "%w: repository %d: dir %q is already used by repository %d"
	invalidConfigurationMessageConstant          = "invalid repository configuration"
)

// ErrInvalidConfiguration wraps every repository validation failure.
var ErrInvalidConfiguration = errors.New(invalidConfigurationMessageConstant)

// Configuration lists the repositories to mirror and how to pack them.
type Configuration struct {
	Repositories []RepositorySpecification `mapstructure:"repos" yaml:"repos"`
	Pack         PackingSpecification      `mapstructure:"pack" yaml:"pack"`
}

// RepositorySpecification describes one mirrored repository.
type RepositorySpecification struct {
	URI         string `mapstructure:"uri" yaml:"uri"`
	Directory   string `mapstructure:"dir" yaml:"dir"`
	IsSubmodule bool   `mapstructure:"is_submodule" yaml:"is_submodule"`
	Remote      string `mapstructure:"remote" yaml:"remote"`
	Branch      string `mapstructure:"branch" yaml:"branch"`
}

// PackingSpecification controls archive creation after each repository is synchronized.
type PackingSpecification struct {
	Enable   bool   `mapstructure:"enable" yaml:"enable"`
	Target   string `mapstructure:"target" yaml:"target"`
	Password string `mapstructure:"password" yaml:"password"`
}

// DefaultConfigurationValues returns the viper defaults for the mirror keys.
// pack.password is listed so an environment override is picked up without a file entry.
func DefaultConfigurationValues() map[string]any {
	return map[string]any{
		"pack.enable":   false,
		"pack.target":   "",
		"pack.password": "",
	}
}

// Sanitize trims values and fills the remote and branch defaults.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := Configuration{
		Repositories: make([]RepositorySpecification, 0, len(configuration.Repositories)),
		Pack: PackingSpecification{
			Enable:   configuration.Pack.Enable,
			Target:   strings.TrimSpace(configuration.Pack.Target),
			Password: configuration.Pack.Password,
		},
	}

	for _, repository := range configuration.Repositories {
		sanitizedRepository := RepositorySpecification{
			URI:         strings.TrimSpace(repository.URI),
			Directory:   strings.TrimSpace(repository.Directory),
			IsSubmodule: repository.IsSubmodule,
			Remote:      strings.TrimSpace(repository.Remote),
			Branch:      strings.TrimSpace(repository.Branch),
		}
		if len(sanitizedRepository.Remote) == 0 {
			sanitizedRepository.Remote = DefaultRemoteName
		}
		if len(sanitizedRepository.Branch) == 0 {
			sanitizedRepository.Branch = DefaultBranchName
		}
		sanitized.Repositories = append(sanitized.Repositories, sanitizedRepository)
	}

	return sanitized
}

// Validate reports the first repository that lacks a uri or dir, or reuses a dir.
func (configuration Configuration) Validate() error {
	seenDirectories := make(map[string]int, len(configuration.Repositories))
	for repositoryIndex, repository := range configuration.Repositories {
		if len(strings.TrimSpace(repository.URI)) == 0 {
			return fmt.Errorf(repositoryURIRequiredTemplateConstant, ErrInvalidConfiguration, repositoryIndex)
		}
		directory := strings.TrimSpace(repository.Directory)
		if len(directory) == 0 {
			return fmt.Errorf(repositoryDirectoryRequiredTemplateConstant, ErrInvalidConfiguration, repositoryIndex, repository.URI)
		}
		if previousIndex, seen := seenDirectories[directory]; seen {
			return fmt.Errorf(duplicateRepositoryDirectoryTemplateConstant, ErrInvalidConfiguration, repositoryIndex, directory, previousIndex)
		}
		seenDirectories[directory] = repositoryIndex
	}
	return nil
}

// Redacted returns a copy safe to print, with the packing password masked.
func (configuration Configuration) Redacted() Configuration {
	redacted := configuration
	redacted.Repositories = append([]RepositorySpecification(nil), configuration.Repositories...)
	if len(redacted.Pack.Password) > 0 {
		redacted.Pack.Password = redactedPasswordConstant
	}
	return redacted
}
