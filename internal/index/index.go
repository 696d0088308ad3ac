// Package index writes the .well-known/badge-index.json file describing the
// badges processed by a batch run.
package index

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FormatVersion is the version of the index file layout.
const FormatVersion = "1.0"

// FileName is the index file name inside the .well-known directory.
const FileName = "badge-index.json"

// BadgeIndex represents the .well-known/badge-index.json structure
type BadgeIndex struct {
	// Version is the index format version
	Version string `json:"version"`

	// RunID identifies the batch run that produced the index
	RunID string `json:"run_id"`

	// Generated is the timestamp when the index was generated
	Generated string `json:"generated"`

	// Repository contains information about the source repository
	Repository RepositoryInfo `json:"repository"`

	// Target is the badge version conversions were written in, if any
	Target string `json:"target,omitempty"`

	// Badges contains one entry per document, sorted by source file
	Badges []Entry `json:"badges"`
}

// RepositoryInfo contains Git repository information
type RepositoryInfo struct {
	// URL is the repository URL
	URL string `json:"url"`

	// Owner is the repository owner/organization
	Owner string `json:"owner"`

	// Name is the repository name
	Name string `json:"name"`

	// Branch is the source branch
	Branch string `json:"branch"`

	// Commit is the commit SHA
	Commit string `json:"commit"`
}

// Entry describes one badge document
type Entry struct {
	// SourceFile is the path of the badge document, relative to the input
	SourceFile string `json:"source_file"`

	// OutputFile is the path of the converted document, if one was written
	OutputFile string `json:"output_file,omitempty"`

	// ID is the badge id
	ID string `json:"id,omitempty"`

	// Version is OB2 or OB3, empty when the document is not a badge
	Version string `json:"version,omitempty"`

	// Name is the badge display name
	Name string `json:"name,omitempty"`

	// Issuer is the issuer id
	Issuer string `json:"issuer,omitempty"`

	// Valid reports whether validation found no errors
	Valid bool `json:"valid"`

	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	// Integrity is the SRI digest of the source file
	Integrity string `json:"integrity,omitempty"`

	// LastModified is the timestamp of the last modification
	LastModified string `json:"last_modified"`

	// CommitHistory contains recent commits affecting this file
	CommitHistory []CommitInfo `json:"commit_history,omitempty"`
}

// CommitInfo contains information about a Git commit
type CommitInfo struct {
	// SHA is the commit hash
	SHA string `json:"sha"`

	// Message is the commit message
	Message string `json:"message"`

	// Author is the commit author
	Author string `json:"author"`

	// Date is the commit date
	Date string `json:"date"`
}

// New builds an index for entries with a fresh run id.
func New(target string, entries []Entry) *BadgeIndex {
	badges := append([]Entry(nil), entries...)
	sort.SliceStable(badges, func(i, j int) bool {
		return badges[i].SourceFile < badges[j].SourceFile
	})
	if badges == nil {
		badges = []Entry{}
	}
	return &BadgeIndex{
		Version:    FormatVersion,
		RunID:      uuid.NewString(),
		Generated:  time.Now().UTC().Format(time.RFC3339),
		Repository: getRepositoryInfo(),
		Target:     target,
		Badges:     badges,
	}
}

// Path returns the index location under outputDir.
func Path(outputDir string) string {
	return filepath.Join(outputDir, ".well-known", FileName)
}

// Write writes the index to outputDir/.well-known/badge-index.json.
func (idx *BadgeIndex) Write(outputDir string) error {
	wellKnownDir := filepath.Join(outputDir, ".well-known")
	if err := os.MkdirAll(wellKnownDir, 0755); err != nil {
		return fmt.Errorf("index: failed to create .well-known directory: %w", err)
	}

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("index: failed to serialize index: %w", err)
	}

	if err := os.WriteFile(Path(outputDir), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("index: failed to write index file: %w", err)
	}

	return nil
}

// Load reads an index written by Write.
func Load(outputDir string) (*BadgeIndex, error) {
	data, err := os.ReadFile(Path(outputDir))
	if err != nil {
		return nil, fmt.Errorf("index: failed to read index file: %w", err)
	}
	var idx BadgeIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("index: failed to parse index file: %w", err)
	}
	return &idx, nil
}

// Integrity returns the SRI sha256 digest of a file.
func Integrity(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return "sha256-" + base64.StdEncoding.EncodeToString(hash.Sum(nil)), nil
}

// getRepositoryInfo extracts repository information from git and environment
func getRepositoryInfo() RepositoryInfo {
	info := RepositoryInfo{}

	// GitHub Actions environment first
	if repo := os.Getenv("GITHUB_REPOSITORY"); repo != "" {
		parts := strings.SplitN(repo, "/", 2)
		if len(parts) == 2 {
			info.Owner = parts[0]
			info.Name = parts[1]
		}
		info.URL = "https://github.com/" + repo
	}

	if ref := os.Getenv("GITHUB_REF_NAME"); ref != "" {
		info.Branch = ref
	}

	if sha := os.Getenv("GITHUB_SHA"); sha != "" {
		info.Commit = sha
	}

	if info.URL == "" {
		if url, err := runGitCommand("config", "--get", "remote.origin.url"); err == nil {
			info.URL = strings.TrimSpace(url)
		}
	}

	if info.Branch == "" {
		if branch, err := runGitCommand("rev-parse", "--abbrev-ref", "HEAD"); err == nil {
			info.Branch = strings.TrimSpace(branch)
		}
	}

	if info.Commit == "" {
		if commit, err := runGitCommand("rev-parse", "HEAD"); err == nil {
			info.Commit = strings.TrimSpace(commit)
		}
	}

	if info.Owner == "" || info.Name == "" {
		info.Owner, info.Name = parseRepoURL(info.URL)
	}

	return info
}

// GetFileCommitHistory returns up to limit commits touching a file
func GetFileCommitHistory(filePath string, limit int) []CommitInfo {
	var commits []CommitInfo

	format := "%H|%s|%an|%aI"
	output, err := runGitCommand("log", fmt.Sprintf("--format=%s", format), fmt.Sprintf("-n%d", limit), "--", filePath)
	if err != nil {
		return commits
	}

	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 4)
		if len(parts) == 4 {
			commits = append(commits, CommitInfo{
				SHA:     parts[0],
				Message: parts[1],
				Author:  parts[2],
				Date:    parts[3],
			})
		}
	}

	return commits
}

// GetFileLastModified returns the last modification time of a file, from git
// when the file is tracked and from the file system otherwise.
func GetFileLastModified(filePath string) string {
	output, err := runGitCommand("log", "-1", "--format=%aI", "--", filePath)
	if s := strings.TrimSpace(output); err == nil && s != "" {
		return s
	}
	if fi, err := os.Stat(filePath); err == nil {
		return fi.ModTime().UTC().Format(time.RFC3339)
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func runGitCommand(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(output), nil
}

// parseRepoURL extracts owner and name from a repository URL
func parseRepoURL(url string) (owner, name string) {
	// git@github.com:owner/repo.git
	if strings.HasPrefix(url, "git@") {
		url = strings.TrimPrefix(url, "git@")
		url = strings.Replace(url, ":", "/", 1)
	}

	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimSuffix(url, ".git")

	parts := strings.Split(url, "/")
	if len(parts) >= 3 {
		owner = parts[1]
		name = parts[2]
	}

	return
}
