// Package profile loads TOML agent profiles. A profile supplies the optional state fields
// (instructions, knowledge, RAG corpus) sent with every run request.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Profile represents the structure of a TOML profile file
type Profile struct {
	Instructions string `toml:"instructions"`
	Knowledge    string `toml:"knowledge"`
	RagCorpus    string `toml:"rag_corpus"`
}

// LoadProfile loads a profile file and returns its contents
func LoadProfile(filePath string) (*Profile, error) {
	var profile Profile
	if _, err := toml.DecodeFile(filePath, &profile); err != nil {
		return nil, fmt.Errorf("error decoding profile file: %v", err)
	}
	return &profile, nil
}

// Find resolves a profile by name or path.
// A name is looked up as <dir>/<name>.toml in every directory; later directories take precedence.
func Find(name string, profileDirs []string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("profile name is empty")
	}

	if strings.ContainsRune(name, filepath.Separator) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("profile file '%s' not found", name)
		}
		return name, nil
	}

	profileFile := name
	if !strings.HasSuffix(profileFile, ".toml") {
		profileFile = profileFile + ".toml"
	}

	var profilePath string
	for _, dir := range profileDirs {
		candidatePath := filepath.Join(dir, profileFile)
		if _, err := os.Stat(candidatePath); err == nil {
			profilePath = candidatePath
		}
	}

	if profilePath == "" {
		return "", fmt.Errorf("profile file '%s' not found in any of the profile directories: %v", profileFile, profileDirs)
	}
	return profilePath, nil
}

// Resolve finds, loads and renders a profile
func Resolve(name string, profileDirs []string, args []string) (*Profile, error) {
	path, err := Find(name, profileDirs)
	if err != nil {
		return nil, err
	}
	p, err := LoadProfile(path)
	if err != nil {
		return nil, fmt.Errorf("error loading profile file: %v", err)
	}
	argMap, err := ParseArgs(args)
	if err != nil {
		return nil, fmt.Errorf("error processing arguments: %v", err)
	}
	return p.Render(argMap), nil
}

// Render returns a copy of the profile with every {{key}} placeholder replaced
func (p *Profile) Render(values map[string]string) *Profile {
	out := *p
	for key, value := range values {
		placeholder := fmt.Sprintf("{{%s}}", key)
		out.Instructions = strings.ReplaceAll(out.Instructions, placeholder, value)
		out.Knowledge = strings.ReplaceAll(out.Knowledge, placeholder, value)
		out.RagCorpus = strings.ReplaceAll(out.RagCorpus, placeholder, value)
	}
	return &out
}

// ParseArgs processes "key:value" arguments into a map
func ParseArgs(args []string) (map[string]string, error) {
	result := make(map[string]string)
	for _, arg := range args {
		// Handle quoted values
		arg = strings.TrimSpace(arg)
		if strings.HasPrefix(arg, `"`) && strings.HasSuffix(arg, `"`) {
			arg = strings.Trim(arg, `"`)
		}

		parts := strings.SplitN(arg, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid argument format: %s. Expected format: key:value", arg)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			return nil, fmt.Errorf("invalid argument format: %s. Key cannot be empty", arg)
		}

		value = strings.ReplaceAll(value, `\:`, ":")
		value = strings.ReplaceAll(value, `\"`, `"`)
		result[key] = value
	}
	return result, nil
}
