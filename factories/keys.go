package factories

import "os"

// APIKeys bundles the provider credentials. Process-wide defaults come from
// the environment; request-scoped overrides are merged in per call and take
// precedence.
type APIKeys struct {
	AssemblyAI string `json:"assemblyai,omitempty"`
	Gemini     string `json:"gemini,omitempty"`
	Murf       string `json:"murf,omitempty"`
	OpenAI     string `json:"openai,omitempty"`
}

// LoadAPIKeysFromEnv reads the provider keys from environment variables.
func LoadAPIKeysFromEnv() APIKeys {
	return APIKeys{
		AssemblyAI: os.Getenv("ASSEMBLYAI_API_KEY"),
		Gemini:     os.Getenv("GEMINI_API_KEY"),
		Murf:       os.Getenv("MURF_API_KEY"),
		OpenAI:     os.Getenv("OPENAI_API_KEY"),
	}
}

// Merge returns a copy where every non-empty override wins over the receiver.
func (k APIKeys) Merge(overrides APIKeys) APIKeys {
	merged := k
	if overrides.AssemblyAI != "" {
		merged.AssemblyAI = overrides.AssemblyAI
	}
	if overrides.Gemini != "" {
		merged.Gemini = overrides.Gemini
	}
	if overrides.Murf != "" {
		merged.Murf = overrides.Murf
	}
	if overrides.OpenAI != "" {
		merged.OpenAI = overrides.OpenAI
	}
	return merged
}

// Empty reports whether no key is set at all.
func (k APIKeys) Empty() bool {
	return k == APIKeys{}
}
