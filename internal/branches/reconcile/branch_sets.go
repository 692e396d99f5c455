package reconcile

import "strings"

const (
	symbolicReferenceMarkerConstant = "->"
	remoteBranchSeparatorConstant   = "/"
	localBranchMarkerCharsConstant  = "*+ \t"
	detachedHeadPrefixConstant      = "("
)

// ParseRemoteBranches extracts branch names from `git branch -r` output.
// Symbolic references are dropped, only entries under the given remote are
// kept, and the "<remote>/" prefix is stripped. Listing order is preserved.
func ParseRemoteBranches(listing string, remoteName string) []string {
	remotePrefix := remoteName + remoteBranchSeparatorConstant
	branchNames := make([]string, 0)
	seenBranches := make(map[string]struct{})

	for _, line := range strings.Split(listing, "\n") {
		if strings.Contains(line, symbolicReferenceMarkerConstant) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if !strings.HasPrefix(fields[0], remotePrefix) {
			continue
		}
		branchName := strings.TrimPrefix(fields[0], remotePrefix)
		if len(branchName) == 0 {
			continue
		}
		if _, seen := seenBranches[branchName]; seen {
			continue
		}
		seenBranches[branchName] = struct{}{}
		branchNames = append(branchNames, branchName)
	}

	return branchNames
}

// ParseLocalBranches extracts branch names from `git branch` output, dropping
// the current and worktree markers and any detached HEAD entry.
func ParseLocalBranches(listing string) []string {
	branchNames := make([]string, 0)

	for _, line := range strings.Split(listing, "\n") {
		trimmedLine := strings.TrimLeft(line, localBranchMarkerCharsConstant)
		if strings.HasPrefix(trimmedLine, detachedHeadPrefixConstant) {
			continue
		}
		fields := strings.Fields(trimmedLine)
		if len(fields) == 0 {
			continue
		}
		branchNames = append(branchNames, fields[0])
	}

	return branchNames
}

// subtractBranches returns the members of minuend absent from subtrahend, in minuend order.
func subtractBranches(minuend []string, subtrahend []string) []string {
	excluded := make(map[string]struct{}, len(subtrahend))
	for _, branchName := range subtrahend {
		excluded[branchName] = struct{}{}
	}

	remaining := make([]string, 0)
	for _, branchName := range minuend {
		if _, isExcluded := excluded[branchName]; isExcluded {
			continue
		}
		remaining = append(remaining, branchName)
	}
	return remaining
}
