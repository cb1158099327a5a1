package update

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// uiState is the locally persisted UI state.
type uiState struct {
	Theme string `json:"pm-theme"`
}

func saveUIState(path string, state uiState) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func loadUIState(path string) (uiState, error) {
	var state uiState
	path = strings.TrimSpace(path)
	if path == "" {
		return state, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return state, err
	}
	if strings.TrimSpace(string(raw)) == "" {
		return state, nil
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return uiState{}, err
	}
	state.Theme = strings.TrimSpace(state.Theme)
	return state, nil
}
