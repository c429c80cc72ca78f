package util

import (
	"encoding/json"
	"fmt"
	"os"

	"discover-server/models"
)

// ReadEstablishmentRecordsFromJSON loads establishment records from a JSON array on disk.
func ReadEstablishmentRecordsFromJSON(filePath string) ([]models.EstablishmentRecord, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", filePath, err)
	}
	var records []models.EstablishmentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal establishment records: %w", err)
	}
	return records, nil
}

// ReadEstablishmentsFromJSON loads a get_establishments response from JSON on disk.
func ReadEstablishmentsFromJSON(filePath string) ([]models.Establishment, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", filePath, err)
	}
	var establishments []models.Establishment
	if err := json.Unmarshal(data, &establishments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal establishments: %w", err)
	}
	return establishments, nil
}

// PrintEstablishmentsPartially prints one line per establishment.
func PrintEstablishmentsPartially(establishments []models.Establishment) {
	fmt.Printf("Establishments: %d\n", len(establishments))
	for i := range establishments {
		fmt.Println(establishments[i].ToString())
	}
}
