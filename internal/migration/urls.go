package migration

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	gitlabTokenUsernameConstant        = "oauth2"
	githubTokenUsernameConstant        = "x-access-token"
	cloneURLParseErrorTemplateConstant = "unable to parse clone url %q: %w"
	cloneURLRequiredMessageConstant    = "clone url must not be empty"
)

// Credentials carries the userinfo embedded into authenticated clone URLs.
type Credentials struct {
	Username string
	Token    string
}

// GitLabCredentials builds the userinfo GitLab accepts for token-based git access.
func GitLabCredentials(accessToken string) Credentials {
	return Credentials{Username: gitlabTokenUsernameConstant, Token: accessToken}
}

// GitHubCredentials builds the userinfo GitHub accepts for token-based git access.
func GitHubCredentials(accessToken string) Credentials {
	return Credentials{Username: githubTokenUsernameConstant, Token: accessToken}
}

// authenticatedCloneURL embeds the supplied credentials into an HTTP(S) clone URL.
func authenticatedCloneURL(cloneURL string, credentials Credentials) (string, error) {
	if len(strings.TrimSpace(cloneURL)) == 0 {
		return "", errors.New(cloneURLRequiredMessageConstant)
	}
	parsedURL, parseError := url.Parse(strings.TrimSpace(cloneURL))
	if parseError != nil {
		return "", fmt.Errorf(cloneURLParseErrorTemplateConstant, cloneURL, parseError)
	}
	if len(credentials.Token) > 0 {
		parsedURL.User = url.UserPassword(credentials.Username, credentials.Token)
	}
	return parsedURL.String(), nil
}
