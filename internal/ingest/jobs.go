package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/A-Ariannejad/KayaScraper/internal/models"
)

const maxJobNameLen = 100

type jobEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ImportJobsFile seeds the skill table from a JSON file, either a bare array
// of {id, name} objects or an object wrapping it under "jobs". Entries
// missing an id or a name are skipped. Returns how many rows were created.
func ImportJobsFile(ctx context.Context, store StorePort, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read jobs file: %w", err)
	}

	var entries []jobEntry
	trimmed := strings.TrimLeft(string(data), " \t\r\n")
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(data, &entries); err != nil {
			return 0, fmt.Errorf("parse jobs file: %w", err)
		}
	} else {
		var wrapper struct {
			Jobs []jobEntry `json:"jobs"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return 0, fmt.Errorf("parse jobs file: %w", err)
		}
		entries = wrapper.Jobs
	}

	created := 0
	for _, e := range entries {
		name := strings.TrimSpace(e.Name)
		if e.ID == 0 || name == "" {
			log.Printf("skipping job entry id=%d name=%q", e.ID, e.Name)
			continue
		}
		if r := []rune(name); len(r) > maxJobNameLen {
			name = string(r[:maxJobNameLen])
		}
		isNew, err := store.UpsertJob(ctx, models.Job{ExternalID: e.ID, Name: name})
		if err != nil {
			log.Printf("skipping job entry id=%d: %v", e.ID, err)
			continue
		}
		if isNew {
			created++
		}
	}
	return created, nil
}
