package gitrepo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lynxkit/forge/internal/gitrepo"
)

func TestParseRemoteURL(testInstance *testing.T) {
	testCases := []struct {
		name          string
		input         string
		expected      gitrepo.RemoteURL
		expectFailure bool
	}{
		{
			name:  "ssh_remote",
			input: "git@github.com:lynxkit/acme-shopapp.git",
			expected: gitrepo.RemoteURL{
				Protocol:   gitrepo.RemoteProtocolSSH,
				Host:       "github.com",
				Owner:      "lynxkit",
				Repository: "acme-shopapp",
			},
		},
		{
			name:  "https_remote",
			input: "https://github.com/lynxkit/acme-shopapp.git",
			expected: gitrepo.RemoteURL{
				Protocol:   gitrepo.RemoteProtocolHTTPS,
				Host:       "github.com",
				Owner:      "lynxkit",
				Repository: "acme-shopapp",
			},
		},
		{
			name:          "unsupported_remote",
			input:         "ftp://example.com/repo",
			expectFailure: true,
		},
		{
			name:          "empty_remote",
			input:         "   ",
			expectFailure: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			parsedRemote, parseError := gitrepo.ParseRemoteURL(testCase.input)
			if testCase.expectFailure {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expected, parsedRemote)
		})
	}
}

func TestFormatRemoteURLRoundTrip(testInstance *testing.T) {
	structuredRemote := gitrepo.NewGitHubRemoteURL(gitrepo.RemoteProtocolHTTPS, "lynxkit", "acme-shopapp")

	formattedRemote, formatError := gitrepo.FormatRemoteURL(structuredRemote)
	require.NoError(testInstance, formatError)
	require.Equal(testInstance, "https://github.com/lynxkit/acme-shopapp.git", formattedRemote)

	parsedRemote, parseError := gitrepo.ParseRemoteURL(formattedRemote)
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, structuredRemote, parsedRemote)
}
