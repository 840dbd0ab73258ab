package source

import "regexp"

var (
	// Crate names start with a letter and contain letters, digits, '-' and '_'.
	crateNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

	// GitHub user and organisation logins; Gitea additionally allows '.' and '_'.
	ownerRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

	repoNameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
)

func isValidCrateName(name string) bool {
	if name == "" || len(name) > 64 {
		return false
	}
	return crateNameRegex.MatchString(name)
}

func isValidOwner(owner string) bool {
	if owner == "" || len(owner) > 100 {
		return false
	}
	return ownerRegex.MatchString(owner)
}

func isValidRepoName(name string) bool {
	if name == "" || len(name) > 100 || name == "." || name == ".." {
		return false
	}
	return repoNameRegex.MatchString(name)
}
